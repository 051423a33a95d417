package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/chime/job"
)

// Logging returns middleware that logs attempt start and completion.
// Because the chain keeps running even when the scheduler has stopped
// waiting for a timed-out attempt, the completion log line reflects the
// handler's real finish time.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, exec *job.Execution, next Handler) error {
		logger.Info("job attempt started",
			slog.String("job_id", exec.JobID),
			slog.String("run_id", exec.ID.String()),
			slog.Int("attempt", exec.Attempt),
			slog.Bool("manual", exec.Manual),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("job attempt failed",
				slog.String("job_id", exec.JobID),
				slog.String("run_id", exec.ID.String()),
				slog.Int("attempt", exec.Attempt),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("job attempt completed",
				slog.String("job_id", exec.JobID),
				slog.String("run_id", exec.ID.String()),
				slog.Int("attempt", exec.Attempt),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
