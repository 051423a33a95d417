package chime

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/chime/executor"
	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
	"github.com/xraph/chime/middleware"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// defaultJob is a registration deferred until Initialize.
type defaultJob struct {
	id   string
	spec string
	def  job.Definition
	opts []job.Option
}

// WithLogger sets the structured logger for the scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithExtension registers a lifecycle extension with the scheduler.
func WithExtension(e hook.Extension) Option {
	return func(s *Scheduler) {
		s.extensions = append(s.extensions, e)
	}
}

// WithMiddleware appends middleware to the execution chain, after the
// built-in recover, tracing, metrics, and logging layers.
func WithMiddleware(m middleware.Middleware) Option {
	return func(s *Scheduler) {
		s.extraMws = append(s.extraMws, m)
	}
}

// WithBackoffFactory sets the retry backoff strategy constructor.
// If not set, exponential doubling without jitter is used.
func WithBackoffFactory(f executor.BackoffFactory) Option {
	return func(s *Scheduler) {
		s.backoffFactory = f
	}
}

// WithDefaultJob queues a job registration to be performed during
// Initialize, after which it behaves exactly like a Register call.
func WithDefaultJob(id, spec string, def job.Definition, opts ...job.Option) Option {
	return func(s *Scheduler) {
		s.defaultJobs = append(s.defaultJobs, defaultJob{id: id, spec: spec, def: def, opts: opts})
	}
}

// WithTracerProvider sets a custom OTel TracerProvider for the scheduler.
// When set, the tracing middleware uses this provider instead of the global one.
// If not set, the global otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Scheduler) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the scheduler.
// When set, both the metrics middleware and the observability extension
// use this provider instead of the global one.
// If not set, the global otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Scheduler) {
		s.meterProvider = mp
	}
}
