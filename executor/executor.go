package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/chime/backoff"
	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/id"
	"github.com/xraph/chime/job"
	"github.com/xraph/chime/middleware"
)

// TimeoutError reports that an attempt exceeded the job's timeout. The
// handler may still be running when this is returned; the executor has
// stopped waiting for it.
type TimeoutError struct {
	JobID   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("chime: job %s timed out after %s", e.JobID, e.Timeout)
}

// HandlerError wraps an error returned by the job handler (or produced
// by the middleware chain, such as a recovered panic).
type HandlerError struct {
	JobID string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("chime: job %s failed: %v", e.JobID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Result is the terminal outcome of one execution sequence.
type Result struct {
	JobID   string
	Success bool

	// Value is the handler's return value from the successful attempt.
	Value any

	// Err is the last attempt's error: a *TimeoutError or *HandlerError.
	Err error

	// Attempts is the number of physical attempts performed.
	Attempts int

	// Duration is the wall-clock time of the whole sequence, including
	// backoff sleeps between retries.
	Duration time.Duration
}

// BackoffFactory builds the delay strategy for a job's retry sequence
// from the job's configured retry delay.
type BackoffFactory func(base time.Duration) backoff.Strategy

// DefaultBackoffFactory doubles the job's retry delay on every retry
// with no cap.
func DefaultBackoffFactory(base time.Duration) backoff.Strategy {
	return backoff.NewExponential(base, 0)
}

// Option configures an Executor.
type Option func(*Executor)

// WithMiddleware sets the middleware chain run around every attempt.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(x *Executor) { x.chain = middleware.Chain(mws...) }
}

// WithBackoffFactory replaces the retry delay strategy.
func WithBackoffFactory(f BackoffFactory) Option {
	return func(x *Executor) { x.backoff = f }
}

// Executor runs execution sequences against the registry. It is safe
// for concurrent use; any number of sequences may be in flight at once.
type Executor struct {
	registry *job.Registry
	hooks    *hook.Registry
	logger   *slog.Logger
	chain    middleware.Middleware
	backoff  BackoffFactory
}

// New creates an Executor.
func New(registry *job.Registry, hooks *hook.Registry, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	x := &Executor{
		registry: registry,
		hooks:    hooks,
		logger:   logger,
		chain:    middleware.Chain(),
		backoff:  DefaultBackoffFactory,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Run drives one execution sequence to its terminal outcome. The run
// grant must come from a successful Registry.BeginRun; Run releases the
// grant via EndRun before returning. overrides are merged over the
// job's default params, with overrides winning.
//
// Run blocks until the sequence ends. Callers that need asynchronous
// execution spawn it in a goroutine.
func (x *Executor) Run(ctx context.Context, run job.Run, overrides job.Params) Result {
	start := time.Now()
	params := run.Params.Merge(overrides)

	exec := x.newExec(run, 0)
	x.hooks.EmitJobStarted(ctx, &exec)

	value, err := x.runAttempt(ctx, run, params, &exec)
	if err == nil {
		x.record(run.JobID, exec, value, true, false)
		x.hooks.EmitJobCompleted(ctx, &exec, value)
		x.endRun(run.JobID, true)
		return Result{
			JobID:    run.JobID,
			Success:  true,
			Value:    value,
			Attempts: 1,
			Duration: time.Since(start),
		}
	}

	// The initial failure is the one that counts toward FailureCount,
	// whatever the retries go on to do.
	x.record(run.JobID, exec, nil, false, true)
	x.hooks.EmitJobFailed(ctx, &exec, err)

	if run.MaxRetries <= 0 || ctx.Err() != nil {
		x.endRun(run.JobID, false)
		return Result{
			JobID:    run.JobID,
			Success:  false,
			Err:      err,
			Attempts: 1,
			Duration: time.Since(start),
		}
	}

	return x.retrySequence(ctx, run, params, err, start)
}

// runAttempt executes a single attempt: the middleware chain and handler
// in their own goroutine, raced against the attempt deadline. It fills
// in the execution's outcome fields and returns the handler value or a
// *TimeoutError / *HandlerError.
func (x *Executor) runAttempt(ctx context.Context, run job.Run, params job.Params, exec *job.Execution) (any, error) {
	// A non-positive timeout disables the deadline.
	var tctx context.Context
	var cancel context.CancelFunc
	if run.Timeout > 0 {
		tctx, cancel = context.WithTimeout(ctx, run.Timeout)
	} else {
		tctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var value any
	base := func(c context.Context) error {
		v, herr := run.Handler(c, params)
		if herr == nil {
			value = v
		}
		return herr
	}

	done := make(chan error, 1)
	go func() {
		done <- x.chain(tctx, exec, base)
	}()

	select {
	case cerr := <-done:
		exec.EndedAt = time.Now()
		exec.Duration = exec.EndedAt.Sub(exec.StartedAt)
		if cerr != nil {
			exec.Success = false
			exec.Error = cerr.Error()
			return nil, &HandlerError{JobID: run.JobID, Err: cerr}
		}
		exec.Success = true
		return value, nil

	case <-tctx.Done():
		exec.EndedAt = time.Now()
		exec.Duration = exec.EndedAt.Sub(exec.StartedAt)
		exec.Success = false

		if errors.Is(tctx.Err(), context.Canceled) {
			// Parent context canceled (forced shutdown), not a timeout.
			exec.Error = tctx.Err().Error()
			return nil, &HandlerError{JobID: run.JobID, Err: tctx.Err()}
		}

		terr := &TimeoutError{JobID: run.JobID, Timeout: run.Timeout}
		exec.Error = terr.Error()

		// The handler goroutine is still out there. Log whenever it
		// finally returns, then drop the result.
		go func(jobID string, runID id.RunID, attempt int, startedAt time.Time) {
			lateErr := <-done
			x.logger.Warn("timed-out job attempt completed late",
				slog.String("job_id", jobID),
				slog.String("run_id", runID.String()),
				slog.Int("attempt", attempt),
				slog.Duration("total", time.Since(startedAt)),
				slog.Bool("late_success", lateErr == nil),
			)
		}(exec.JobID, exec.ID, exec.Attempt, exec.StartedAt)

		return nil, terr
	}
}

func (x *Executor) newExec(run job.Run, attempt int) job.Execution {
	return job.Execution{
		ID:        id.NewRunID(),
		JobID:     run.JobID,
		JobName:   run.Name,
		Attempt:   attempt,
		Manual:    run.Manual,
		StartedAt: time.Now(),
	}
}

// record writes one finished attempt into the registry. A job removed
// mid-sequence is not an error worth surfacing; the bookkeeping is
// simply dropped.
func (x *Executor) record(jobID string, exec job.Execution, result any, bumpSuccess, bumpFailure bool) {
	if err := x.registry.RecordAttempt(jobID, exec, result, bumpSuccess, bumpFailure); err != nil {
		x.logger.Debug("dropping bookkeeping for removed job",
			slog.String("job_id", jobID),
			slog.String("run_id", exec.ID.String()),
		)
	}
}

func (x *Executor) endRun(jobID string, success bool) {
	if err := x.registry.EndRun(jobID, success); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			x.logger.Debug("job removed before run ended", slog.String("job_id", jobID))
			return
		}
		x.logger.Warn("run guard release failed",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
}
