package chime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/chime/executor"
	"github.com/xraph/chime/gate"
	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/id"
	"github.com/xraph/chime/job"
	"github.com/xraph/chime/middleware"
	"github.com/xraph/chime/monitor"
	"github.com/xraph/chime/observability"
	"github.com/xraph/chime/trigger"
)

// shutdownPollInterval is how often a graceful Shutdown re-checks the
// in-flight count while draining.
const shutdownPollInterval = 50 * time.Millisecond

// Scheduler owns the full job lifecycle: registration, trigger fires,
// execution with timeout and retries, pause state, stall monitoring,
// and metrics. Create one with New, then Initialize it.
type Scheduler struct {
	id     id.SchedulerID
	config Config
	logger *slog.Logger

	hooks     *hook.Registry
	registry  *job.Registry
	gate      *gate.Gate
	engine    *trigger.Engine
	executor  *executor.Executor
	collector *collector

	// Option state consumed by New.
	extensions     []hook.Extension
	extraMws       []middleware.Middleware
	backoffFactory executor.BackoffFactory
	defaultJobs    []defaultJob
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu          sync.Mutex
	initialized bool
	started     bool
	monitor     *monitor.Monitor
	runCtx      context.Context
	cancelRun   context.CancelFunc
}

// New creates a Scheduler from a validated config and options. Nothing
// runs until Initialize is called.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		id:     id.NewSchedulerID(),
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backoffFactory == nil {
		s.backoffFactory = executor.DefaultBackoffFactory
	}

	s.registry = job.NewRegistry()
	s.hooks = hook.NewRegistry(s.logger)
	s.gate = gate.New(cfg.MaxConcurrentJobs, cfg.FireRate, cfg.FireBurst)
	s.engine = trigger.NewEngine(s.logger)

	s.collector = newCollector()
	s.hooks.Register(s.collector)

	// Register the scheduler-wide observability extension.
	var obsExt *observability.MetricsExtension
	if s.meterProvider != nil {
		obsExt = observability.NewMetricsExtensionWithMeter(s.meterProvider.Meter("github.com/xraph/chime/observability"))
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	s.hooks.Register(obsExt)

	for _, e := range s.extensions {
		s.hooks.Register(e)
	}

	// Build tracing middleware (custom provider or global).
	var tracingMw middleware.Middleware
	if s.tracerProvider != nil {
		tracingMw = middleware.TracingWithTracer(s.tracerProvider.Tracer("github.com/xraph/chime"))
	} else {
		tracingMw = middleware.Tracing()
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw middleware.Middleware
	if s.meterProvider != nil {
		metricsMw = middleware.MetricsWithMeter(s.meterProvider.Meter("github.com/xraph/chime"))
	} else {
		metricsMw = middleware.Metrics()
	}

	// Default chain: recover → tracing → metrics → logging, then any
	// caller-supplied middleware.
	mws := []middleware.Middleware{
		middleware.Recover(s.logger),
		tracingMw,
		metricsMw,
		middleware.Logging(s.logger),
	}
	mws = append(mws, s.extraMws...)

	s.executor = executor.New(s.registry, s.hooks, s.logger,
		executor.WithMiddleware(mws...),
		executor.WithBackoffFactory(s.backoffFactory),
	)

	return s, nil
}

// ID returns this scheduler instance's identifier.
func (s *Scheduler) ID() id.SchedulerID { return s.id }

// Initialize registers the configured default jobs, starts the stall
// monitor, and, when AutoStart is set, starts the trigger engine.
// Calling Initialize on an initialized scheduler warns and returns nil.
func (s *Scheduler) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		s.logger.Warn("scheduler already initialized")
		return nil
	}

	for _, dj := range s.defaultJobs {
		if err := s.registerLocked(dj.id, dj.spec, dj.def, dj.opts...); err != nil {
			return fmt.Errorf("register default job %q: %w", dj.id, err)
		}
	}

	s.runCtx, s.cancelRun = context.WithCancel(context.Background())
	s.monitor = monitor.New(s.registry, s.hooks, s.config.HealthCheckInterval, s.logger)
	s.monitor.Start()
	s.initialized = true

	if s.config.AutoStart {
		s.startLocked()
	}

	s.hooks.EmitSchedulerInitialized(ctx, s.registry.Len())
	s.logger.Info("scheduler initialized",
		slog.String("scheduler_id", s.id.String()),
		slog.Int("jobs", s.registry.Len()),
		slog.Bool("auto_start", s.config.AutoStart),
	)
	return nil
}

// Start begins trigger fires. It is the explicit path for schedulers
// initialized with AutoStart disabled and is idempotent.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.startLocked()
	return nil
}

func (s *Scheduler) startLocked() {
	if s.started {
		return
	}
	s.engine.Start()
	s.started = true
	s.logger.Info("trigger engine started", slog.Int("jobs", s.registry.Len()))
}

// Register adds a job under the given id with a cron schedule. An
// invalid expression or empty id is rejected with no side effects.
// Registering over an existing id replaces it: the old trigger is
// removed and counters and history start fresh.
func (s *Scheduler) Register(jobID, spec string, def job.Definition, opts ...job.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(jobID, spec, def, opts...)
}

func (s *Scheduler) registerLocked(jobID, spec string, def job.Definition, opts ...job.Option) error {
	if jobID == "" {
		return ErrEmptyJobID
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: job %s", ErrNilHandler, jobID)
	}

	o := s.jobOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sched, err := trigger.ParseSpec(spec, o.Timezone)
	if err != nil {
		return err
	}

	if prev, ok := s.registry.Remove(jobID); ok {
		s.engine.Remove(trigger.ID(prev.TriggerID))
		s.logger.Warn("replacing registered job", slog.String("job_id", jobID))
	}

	e := job.NewEntry(jobID, def, o)
	e.Schedule = spec
	s.registry.Put(e)

	tid := s.engine.Schedule(sched, func() { s.fire(jobID) })
	next := sched.Next(time.Now())
	if err := s.registry.SetTrigger(jobID, int(tid), next); err != nil {
		// Entry vanished between Put and SetTrigger; drop the stray trigger.
		s.engine.Remove(tid)
		return err
	}

	if v, ok := s.registry.View(jobID); ok {
		s.hooks.EmitJobScheduled(context.Background(), v)
	}
	s.logger.Info("job registered",
		slog.String("job_id", jobID),
		slog.String("schedule", spec),
		slog.Time("next_run", next),
	)
	return nil
}

// jobOptions seeds per-job options from the scheduler defaults.
func (s *Scheduler) jobOptions() job.Options {
	return job.Options{
		Timezone:   s.config.Timezone,
		Timeout:    s.config.DefaultJobTimeout,
		MaxRetries: s.config.DefaultMaxRetries,
		RetryDelay: s.config.DefaultRetryDelay,
	}
}

// Unregister removes a job and its trigger. An in-flight sequence for
// the job finishes on its own; its remaining bookkeeping is discarded.
func (s *Scheduler) Unregister(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.registry.Remove(jobID)
	if !ok {
		return ErrJobNotFound
	}
	s.engine.Remove(trigger.ID(e.TriggerID))
	s.logger.Info("job unregistered", slog.String("job_id", jobID))
	return nil
}

// fire is the trigger engine callback for one job. It admits through
// the gate, claims the run guard, and hands the sequence to the
// executor on a fresh goroutine so the engine is never blocked.
func (s *Scheduler) fire(jobID string) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	if !s.gate.Acquire() {
		s.logger.Warn("trigger fire rejected by admission gate", slog.String("job_id", jobID))
		return
	}

	run, err := s.registry.BeginRun(jobID, false, time.Now())
	if err != nil {
		s.gate.Release()
		s.logger.Debug("trigger fire skipped",
			slog.String("job_id", jobID),
			slog.String("reason", err.Error()),
		)
		return
	}

	go func() {
		defer s.gate.Release()
		s.executor.Run(ctx, run, nil)
		s.advance(jobID)
	}()
}

// advance recomputes NextRunAt from the trigger entry after a
// trigger-fired sequence finishes.
func (s *Scheduler) advance(jobID string) {
	tid, err := s.registry.TriggerHandle(jobID)
	if err != nil {
		return
	}
	next := s.engine.Next(trigger.ID(tid))
	if next.IsZero() {
		s.logger.Error("trigger entry missing, resetting next run time", slog.String("job_id", jobID))
		next = time.Now()
	}
	if err := s.registry.SetNextRun(jobID, next); err != nil {
		s.logger.Debug("next run update dropped",
			slog.String("job_id", jobID),
			slog.String("reason", err.Error()),
		)
	}
}

// ExecuteNow runs a job immediately through the same execution pipeline
// as a trigger fire, retries included, and returns the final outcome
// synchronously. It refuses jobs that are running or paused and
// bypasses the admission gate.
func (s *Scheduler) ExecuteNow(ctx context.Context, jobID string, params job.Params) (*executor.Result, error) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return nil, ErrNotInitialized
	}

	run, err := s.registry.BeginRun(jobID, true, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("manual execution requested", slog.String("job_id", jobID))
	res := s.executor.Run(ctx, run, params)
	return &res, nil
}

// Pause suspends trigger fires and manual runs for one job. A sequence
// already in flight finishes normally.
func (s *Scheduler) Pause(jobID string) error {
	if err := s.registry.Pause(jobID); err != nil {
		return err
	}
	s.logger.Info("job paused", slog.String("job_id", jobID))
	return nil
}

// Resume lifts a pause on one job.
func (s *Scheduler) Resume(jobID string) error {
	if err := s.registry.Resume(jobID); err != nil {
		return err
	}
	s.logger.Info("job resumed", slog.String("job_id", jobID))
	return nil
}

// PauseAll pauses every job and reports how many changed.
func (s *Scheduler) PauseAll() int {
	n := s.registry.PauseAll()
	s.hooks.EmitSchedulerPaused(context.Background())
	s.logger.Info("all jobs paused", slog.Int("changed", n))
	return n
}

// ResumeAll resumes every paused job and reports how many changed.
func (s *Scheduler) ResumeAll() int {
	n := s.registry.ResumeAll()
	s.hooks.EmitSchedulerResumed(context.Background())
	s.logger.Info("all jobs resumed", slog.Int("changed", n))
	return n
}

// Status returns the current view of one job.
func (s *Scheduler) Status(jobID string) (job.View, error) {
	v, ok := s.registry.View(jobID)
	if !ok {
		return job.View{}, ErrJobNotFound
	}
	return v, nil
}

// ListJobs returns views of all registered jobs ordered by id.
func (s *Scheduler) ListJobs() []job.View { return s.registry.List() }

// History returns the retained execution records of one job in
// chronological order.
func (s *Scheduler) History(jobID string) ([]job.Execution, error) {
	h, ok := s.registry.History(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	return h, nil
}

// Metrics returns a point-in-time aggregate of scheduler activity.
func (s *Scheduler) Metrics() MetricsSnapshot {
	snap := s.collector.snapshot()
	snap.Jobs = s.registry.Len()
	snap.Running = s.registry.RunningCount()
	return snap
}

// Shutdown stops the monitor and the trigger engine, pauses all jobs,
// and drains in-flight sequences for up to ShutdownGracePeriod, polling
// every 50ms. With force set it skips the drain and cancels running
// sequences immediately. Either way the registry is cleared and the
// scheduler must be re-initialized before further use.
func (s *Scheduler) Shutdown(ctx context.Context, force bool) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	s.initialized = false
	s.started = false
	mon := s.monitor
	cancel := s.cancelRun
	s.mu.Unlock()

	s.logger.Info("scheduler shutting down", slog.Bool("force", force))

	mon.Stop()
	s.engine.Stop()
	s.registry.PauseAll()

	if force {
		cancel()
		if n := s.registry.RunningCount(); n > 0 {
			s.logger.Warn("forced shutdown with sequences in flight", slog.Int("running", n))
		}
	} else {
		s.drain(ctx)
		cancel()
	}

	for _, e := range s.registry.Clear() {
		s.engine.Remove(trigger.ID(e.TriggerID))
	}
	s.hooks.EmitSchedulerShutdown(ctx)
	s.logger.Info("scheduler shutdown complete")
	return nil
}

// drain polls the in-flight count until it reaches zero or the grace
// period or caller context runs out. Stragglers are logged, never
// killed.
func (s *Scheduler) drain(ctx context.Context) {
	deadline := time.Now().Add(s.config.ShutdownGracePeriod)
	for s.registry.RunningCount() > 0 {
		if time.Now().After(deadline) {
			s.logger.Warn("grace period elapsed with sequences in flight",
				slog.Int("running", s.registry.RunningCount()))
			return
		}
		select {
		case <-ctx.Done():
			s.logger.Warn("shutdown context canceled while draining",
				slog.Int("running", s.registry.RunningCount()))
			return
		case <-time.After(shutdownPollInterval):
		}
	}
}
