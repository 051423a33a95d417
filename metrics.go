package chime

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
)

// metricsWindow is the number of recent attempt durations averaged in
// MetricsSnapshot.AverageDuration.
const metricsWindow = 100

// MetricsSnapshot is a point-in-time aggregate of scheduler activity.
// A sequence that fails and then succeeds on retry counts toward both
// TotalFailed and TotalSucceeded.
type MetricsSnapshot struct {
	// Jobs is the number of registered jobs.
	Jobs int
	// Running is the number of in-flight execution sequences.
	Running int

	// TotalScheduled counts registrations, replacements included.
	TotalScheduled uint64
	// TotalExecuted counts finished attempts, retries included.
	TotalExecuted uint64
	// TotalSucceeded counts sequences that ended in success.
	TotalSucceeded uint64
	// TotalFailed counts initial-attempt failures.
	TotalFailed uint64

	// AverageDuration is the mean of the last hundred attempt durations.
	AverageDuration time.Duration
}

// Compile-time interface checks.
var (
	_ hook.Extension      = (*collector)(nil)
	_ hook.JobScheduled   = (*collector)(nil)
	_ hook.JobCompleted   = (*collector)(nil)
	_ hook.JobFailed      = (*collector)(nil)
	_ hook.RetrySucceeded = (*collector)(nil)
	_ hook.RetryFailed    = (*collector)(nil)
)

// collector is the always-on extension behind Scheduler.Metrics. It
// folds lifecycle hooks into monotonic counters and keeps a bounded
// ring of recent attempt durations for the rolling average.
type collector struct {
	mu        sync.Mutex
	scheduled uint64
	executed  uint64
	succeeded uint64
	failed    uint64

	durations [metricsWindow]time.Duration
	filled    int
	next      int
}

func newCollector() *collector {
	return &collector{}
}

func (c *collector) Name() string { return "metrics-collector" }

func (c *collector) OnJobScheduled(_ context.Context, _ job.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduled++
	return nil
}

func (c *collector) OnJobCompleted(_ context.Context, exec *job.Execution, _ any) error {
	c.succeed(exec)
	return nil
}

func (c *collector) OnJobFailed(_ context.Context, exec *job.Execution, _ error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
	c.attempt(exec)
	return nil
}

func (c *collector) OnRetrySucceeded(_ context.Context, exec *job.Execution, _ any) error {
	c.succeed(exec)
	return nil
}

func (c *collector) OnRetryFailed(_ context.Context, exec *job.Execution, _ error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempt(exec)
	return nil
}

func (c *collector) succeed(exec *job.Execution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.succeeded++
	c.attempt(exec)
}

// attempt records one finished attempt. Caller holds the lock.
func (c *collector) attempt(exec *job.Execution) {
	c.executed++
	c.durations[c.next] = exec.Duration
	c.next = (c.next + 1) % metricsWindow
	if c.filled < metricsWindow {
		c.filled++
	}
}

// snapshot returns the counter state. Jobs and Running are filled in by
// the scheduler from its registry.
func (c *collector) snapshot() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var avg time.Duration
	if c.filled > 0 {
		var sum time.Duration
		for i := 0; i < c.filled; i++ {
			sum += c.durations[i]
		}
		avg = sum / time.Duration(c.filled)
	}

	return MetricsSnapshot{
		TotalScheduled:  c.scheduled,
		TotalExecuted:   c.executed,
		TotalSucceeded:  c.succeeded,
		TotalFailed:     c.failed,
		AverageDuration: avg,
	}
}
