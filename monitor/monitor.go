// Package monitor watches running jobs for stalls.
//
// A job is considered stalled when its current run has been in flight
// for more than 1.5 times its timeout. That points at a handler that
// ignored its context deadline: the executor has long since recorded
// the timeout and moved on, but the goroutine is still going. Stall
// detection is advisory. The monitor emits JobStalled and Healthcheck
// hooks and never terminates anything.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
)

// stallFactor scales a job's timeout into its stall threshold.
const stallFactor = 1.5

// Monitor periodically sweeps the registry for stalled runs and emits a
// healthcheck summary after every sweep.
type Monitor struct {
	registry *job.Registry
	hooks    *hook.Registry
	logger   *slog.Logger
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Monitor sweeping at the given interval. A non-positive
// interval falls back to one minute.
func New(registry *job.Registry, hooks *hook.Registry, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		registry: registry,
		hooks:    hooks,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
	m.logger.Info("stall monitor started", slog.Duration("interval", m.interval))
}

// Stop halts the sweep loop and waits for it to finish. Stop is safe to
// call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
	m.logger.Info("stall monitor stopped")
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep checks every in-flight run against its stall threshold, emits
// JobStalled for each offender and a Healthcheck summary afterwards. It
// returns the number of stalled runs found.
func (m *Monitor) Sweep() int {
	ctx := context.Background()
	now := time.Now()

	running := m.registry.Running()
	stalled := 0

	for _, r := range running {
		if r.Timeout <= 0 {
			continue
		}
		threshold := time.Duration(float64(r.Timeout) * stallFactor)
		elapsed := now.Sub(r.StartedAt)
		if elapsed <= threshold {
			continue
		}

		stalled++
		m.logger.Warn("job appears stalled",
			slog.String("job_id", r.ID),
			slog.String("job_name", r.Name),
			slog.Duration("running_for", elapsed),
			slog.Duration("timeout", r.Timeout),
		)
		m.hooks.EmitJobStalled(ctx, hook.Stall{
			JobID:      r.ID,
			JobName:    r.Name,
			StartedAt:  r.StartedAt,
			RunningFor: elapsed,
			Timeout:    r.Timeout,
		})
	}

	m.hooks.EmitHealthcheck(ctx, hook.Health{
		Jobs:    m.registry.Len(),
		Running: len(running),
		Stalled: stalled,
	})

	m.logger.Debug("sweep finished",
		slog.Int("running", len(running)),
		slog.Int("stalled", stalled),
	)
	return stalled
}
