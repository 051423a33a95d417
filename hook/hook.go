package hook

import (
	"context"
	"time"

	"github.com/xraph/chime/job"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// Stall describes a running job that exceeded its advisory stall
// deadline (1.5x its configured timeout). The job is not terminated;
// the event exists so operators can see it.
type Stall struct {
	JobID      string
	JobName    string
	StartedAt  time.Time
	RunningFor time.Duration
	Timeout    time.Duration
}

// Health summarizes one stall monitor sweep.
type Health struct {
	Jobs    int
	Running int
	Stalled int
}

// ──────────────────────────────────────────────────
// Job lifecycle hooks
// ──────────────────────────────────────────────────

// JobScheduled is called after a job is registered with a valid schedule.
type JobScheduled interface {
	OnJobScheduled(ctx context.Context, view job.View) error
}

// JobStarted is called when an execution sequence begins. The execution
// record carries the attempt metadata; its end fields are not yet set.
type JobStarted interface {
	OnJobStarted(ctx context.Context, exec *job.Execution) error
}

// JobCompleted is called when the initial attempt of a sequence
// finishes successfully.
type JobCompleted interface {
	OnJobCompleted(ctx context.Context, exec *job.Execution, result any) error
}

// JobFailed is called when the initial attempt of a sequence fails.
// Retries may still follow; their outcomes arrive via RetrySucceeded
// and RetryFailed.
type JobFailed interface {
	OnJobFailed(ctx context.Context, exec *job.Execution, err error) error
}

// RetrySucceeded is called when a retry attempt recovers the sequence.
type RetrySucceeded interface {
	OnRetrySucceeded(ctx context.Context, exec *job.Execution, result any) error
}

// RetryFailed is called when a retry attempt fails.
type RetryFailed interface {
	OnRetryFailed(ctx context.Context, exec *job.Execution, err error) error
}

// JobStalled is called when the stall monitor finds a running job past
// its advisory deadline.
type JobStalled interface {
	OnJobStalled(ctx context.Context, stall Stall) error
}

// ──────────────────────────────────────────────────
// Scheduler lifecycle hooks
// ──────────────────────────────────────────────────

// SchedulerInitialized is called once initialization completes, with
// the number of jobs registered at that point.
type SchedulerInitialized interface {
	OnSchedulerInitialized(ctx context.Context, jobs int) error
}

// SchedulerPaused is called when all jobs are paused at once.
type SchedulerPaused interface {
	OnSchedulerPaused(ctx context.Context) error
}

// SchedulerResumed is called when all jobs are resumed at once.
type SchedulerResumed interface {
	OnSchedulerResumed(ctx context.Context) error
}

// Healthcheck is called after every stall monitor sweep.
type Healthcheck interface {
	OnHealthcheck(ctx context.Context, health Health) error
}

// SchedulerShutdown is called during graceful shutdown.
type SchedulerShutdown interface {
	OnSchedulerShutdown(ctx context.Context) error
}
