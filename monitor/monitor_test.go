package monitor_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
	"github.com/xraph/chime/monitor"
)

// healthSpy records stall and healthcheck emissions.
type healthSpy struct {
	mu      sync.Mutex
	stalls  []hook.Stall
	healths []hook.Health
}

func (s *healthSpy) Name() string { return "health-spy" }

func (s *healthSpy) OnJobStalled(_ context.Context, stall hook.Stall) error {
	s.mu.Lock()
	s.stalls = append(s.stalls, stall)
	s.mu.Unlock()
	return nil
}

func (s *healthSpy) OnHealthcheck(_ context.Context, h hook.Health) error {
	s.mu.Lock()
	s.healths = append(s.healths, h)
	s.mu.Unlock()
	return nil
}

func (s *healthSpy) Stalls() []hook.Stall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hook.Stall, len(s.stalls))
	copy(out, s.stalls)
	return out
}

func (s *healthSpy) Healths() []hook.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hook.Health, len(s.healths))
	copy(out, s.healths)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEntry(jobID string, timeout time.Duration) *job.Entry {
	return job.NewEntry(jobID, job.Definition{
		Name: strings.ToUpper(jobID),
		Handler: func(_ context.Context, _ job.Params) (any, error) {
			return nil, nil
		},
	}, job.Options{Timeout: timeout})
}

func TestSweep_DetectsStall(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("era-import", 100*time.Millisecond))

	// Begin a run that started well past the 150ms stall threshold.
	startedAt := time.Now().Add(-1 * time.Second)
	if _, err := registry.BeginRun("era-import", false, startedAt); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, time.Minute, discardLogger())
	if got := m.Sweep(); got != 1 {
		t.Fatalf("Sweep returned %d, want 1", got)
	}

	stalls := spy.Stalls()
	if len(stalls) != 1 {
		t.Fatalf("got %d stall events, want 1", len(stalls))
	}
	s := stalls[0]
	if s.JobID != "era-import" {
		t.Errorf("stall JobID = %q, want era-import", s.JobID)
	}
	if s.Timeout != 100*time.Millisecond {
		t.Errorf("stall Timeout = %v, want 100ms", s.Timeout)
	}
	if s.RunningFor < time.Second {
		t.Errorf("stall RunningFor = %v, want >= 1s", s.RunningFor)
	}
}

func TestSweep_WithinThresholdNotStalled(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("claim-scrub", 10*time.Second))
	if _, err := registry.BeginRun("claim-scrub", false, time.Now()); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, time.Minute, discardLogger())
	if got := m.Sweep(); got != 0 {
		t.Fatalf("Sweep returned %d, want 0", got)
	}
	if len(spy.Stalls()) != 0 {
		t.Errorf("got stall events for a healthy run: %+v", spy.Stalls())
	}

	healths := spy.Healths()
	if len(healths) != 1 {
		t.Fatalf("got %d healthcheck events, want 1", len(healths))
	}
	if healths[0].Jobs != 1 || healths[0].Running != 1 || healths[0].Stalled != 0 {
		t.Errorf("health = %+v, want {Jobs:1 Running:1 Stalled:0}", healths[0])
	}
}

func TestSweep_HealthcheckCounts(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("claim-scrub", 10*time.Second))
	registry.Put(newEntry("era-import", 10*time.Second))
	registry.Put(newEntry("denial-digest", 10*time.Second))

	if _, err := registry.BeginRun("era-import", false, time.Now()); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, time.Minute, discardLogger())
	m.Sweep()

	healths := spy.Healths()
	if len(healths) != 1 {
		t.Fatalf("got %d healthcheck events, want 1", len(healths))
	}
	if healths[0].Jobs != 3 || healths[0].Running != 1 || healths[0].Stalled != 0 {
		t.Errorf("health = %+v, want {Jobs:3 Running:1 Stalled:0}", healths[0])
	}
}

func TestSweep_AdvisoryOnly(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("era-import", 50*time.Millisecond))
	if _, err := registry.BeginRun("era-import", false, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, time.Minute, discardLogger())
	m.Sweep()
	m.Sweep()

	// A stalled run is reported on every sweep and its state is never
	// touched.
	if len(spy.Stalls()) != 2 {
		t.Errorf("got %d stall events after two sweeps, want 2", len(spy.Stalls()))
	}
	v, ok := registry.View("era-import")
	if !ok {
		t.Fatal("job vanished")
	}
	if v.Status != job.StatusRunning {
		t.Errorf("Status = %q, want running (stall must not change state)", v.Status)
	}
}

func TestMonitor_StartStopLoop(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("era-import", 10*time.Millisecond))
	if _, err := registry.BeginRun("era-import", false, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, 10*time.Millisecond, discardLogger())
	m.Start()

	deadline := time.After(2 * time.Second)
	for len(spy.Stalls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the loop to detect the stall")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	m.Stop()
	m.Stop() // idempotent
}

func TestMonitor_NoTimeoutNeverStalls(t *testing.T) {
	registry := job.NewRegistry()
	spy := &healthSpy{}
	hooks := hook.NewRegistry(discardLogger())
	hooks.Register(spy)

	registry.Put(newEntry("unbounded", 0))
	if _, err := registry.BeginRun("unbounded", false, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	m := monitor.New(registry, hooks, time.Minute, discardLogger())
	if got := m.Sweep(); got != 0 {
		t.Errorf("Sweep returned %d, want 0 for a job without a timeout", got)
	}
}
