package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/chime/job"
)

// Recover returns middleware that recovers from panics in the handler chain.
// Panics are converted to errors and logged with a stack trace, so a
// panicking handler counts as a failed attempt instead of crashing the
// scheduler.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, exec *job.Execution, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("job handler panicked",
					slog.String("job_id", exec.JobID),
					slog.String("run_id", exec.ID.String()),
					slog.Int("attempt", exec.Attempt),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in job %s: %v", exec.JobID, r)
			}
		}()
		return next(ctx)
	}
}
