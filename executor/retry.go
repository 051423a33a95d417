package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/chime/job"
)

// retrySequence runs retry attempts after a failed initial attempt.
// Attempt n waits base×2^(n-1) before running, carries the job's normal
// timeout, and goes through the same middleware chain. The first retry
// to succeed ends the sequence; exhausting the budget leaves the job
// Failed. Intermediate retry failures bump no counters, so a sequence
// contributes at most one success and one failure to the job's totals.
func (x *Executor) retrySequence(ctx context.Context, run job.Run, params job.Params, firstErr error, start time.Time) Result {
	strategy := x.backoff(run.RetryDelay)
	lastErr := firstErr
	attempts := 1

	for n := 1; n <= run.MaxRetries; n++ {
		delay := strategy.Delay(n)
		x.setRetrying(run.JobID, n, lastErr)
		x.logger.Info("scheduling retry",
			slog.String("job_id", run.JobID),
			slog.Int("attempt", n),
			slog.Duration("delay", delay),
			slog.String("error", lastErr.Error()),
		)

		if !sleepCtx(ctx, delay) {
			x.logger.Debug("retry backoff aborted by shutdown",
				slog.String("job_id", run.JobID),
				slog.Int("attempt", n),
			)
			break
		}

		exec := x.newExec(run, n)
		value, err := x.runAttempt(ctx, run, params, &exec)
		attempts++

		if err == nil {
			x.record(run.JobID, exec, value, true, false)
			x.clearRetry(run.JobID)
			x.hooks.EmitRetrySucceeded(ctx, &exec, value)
			x.endRun(run.JobID, true)
			return Result{
				JobID:    run.JobID,
				Success:  true,
				Value:    value,
				Attempts: attempts,
				Duration: time.Since(start),
			}
		}

		x.record(run.JobID, exec, nil, false, false)
		x.hooks.EmitRetryFailed(ctx, &exec, err)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	x.clearRetry(run.JobID)
	x.endRun(run.JobID, false)
	x.logger.Warn("execution sequence failed",
		slog.String("job_id", run.JobID),
		slog.Int("attempts", attempts),
		slog.String("error", lastErr.Error()),
	)
	return Result{
		JobID:    run.JobID,
		Success:  false,
		Err:      lastErr,
		Attempts: attempts,
		Duration: time.Since(start),
	}
}

func (x *Executor) setRetrying(jobID string, attempt int, lastErr error) {
	if err := x.registry.SetRetrying(jobID, attempt, lastErr.Error()); err != nil {
		x.logger.Debug("dropping retry state for removed job", slog.String("job_id", jobID))
	}
}

func (x *Executor) clearRetry(jobID string) {
	if err := x.registry.ClearRetry(jobID); err != nil {
		x.logger.Debug("dropping retry state for removed job", slog.String("job_id", jobID))
	}
}

// sleepCtx waits for d and reports whether the wait ran to completion.
// A canceled context aborts the wait early.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
