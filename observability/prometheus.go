package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
)

// Compile-time interface checks.
var (
	_ hook.Extension      = (*PrometheusExtension)(nil)
	_ hook.JobScheduled   = (*PrometheusExtension)(nil)
	_ hook.JobCompleted   = (*PrometheusExtension)(nil)
	_ hook.JobFailed      = (*PrometheusExtension)(nil)
	_ hook.RetrySucceeded = (*PrometheusExtension)(nil)
	_ hook.RetryFailed    = (*PrometheusExtension)(nil)
	_ hook.JobStalled     = (*PrometheusExtension)(nil)
	_ hook.Healthcheck    = (*PrometheusExtension)(nil)
)

// PrometheusExtension exposes scheduler lifecycle metrics through a
// Prometheus registry. Completed and failed counters fold retry
// outcomes into the same series as initial attempts; the in-flight
// gauge follows the monitor's healthcheck rather than pairing
// start/end events, because an exhausted retry sequence ends without
// a terminal hook.
type PrometheusExtension struct {
	Scheduled *prometheus.CounterVec
	Completed *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Retries   *prometheus.CounterVec
	Stalls    *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	InFlight  prometheus.Gauge
}

// NewPrometheusExtension creates a PrometheusExtension registered on
// the default registerer.
func NewPrometheusExtension() *PrometheusExtension {
	return NewPrometheusExtensionWithRegisterer(prometheus.DefaultRegisterer)
}

// NewPrometheusExtensionWithRegisterer creates a PrometheusExtension
// registered on an explicit registerer.
func NewPrometheusExtensionWithRegisterer(reg prometheus.Registerer) *PrometheusExtension {
	factory := promauto.With(reg)

	return &PrometheusExtension{
		Scheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_jobs_scheduled_total",
				Help: "The total number of jobs registered with the scheduler.",
			},
			[]string{"job_id"},
		),
		Completed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_jobs_completed_total",
				Help: "The total number of successful job attempts, retries included.",
			},
			[]string{"job_id"},
		),
		Failed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_jobs_failed_total",
				Help: "The total number of failed job attempts, retries included.",
			},
			[]string{"job_id"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_job_retries_total",
				Help: "The total number of retry attempts.",
			},
			[]string{"job_id"},
		),
		Stalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_jobs_stalled_total",
				Help: "The total number of stall detections.",
			},
			[]string{"job_id"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chime_job_duration_seconds",
				Help:    "A histogram of job attempt durations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job_id", "success"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chime_jobs_in_flight",
				Help: "The number of execution sequences in flight at the last healthcheck.",
			},
		),
	}
}

// Name implements hook.Extension.
func (p *PrometheusExtension) Name() string { return "observability-prometheus" }

// ── Job lifecycle hooks ─────────────────────────────

// OnJobScheduled implements hook.JobScheduled.
func (p *PrometheusExtension) OnJobScheduled(_ context.Context, view job.View) error {
	p.Scheduled.WithLabelValues(view.ID).Inc()
	return nil
}

// OnJobCompleted implements hook.JobCompleted.
func (p *PrometheusExtension) OnJobCompleted(_ context.Context, exec *job.Execution, _ any) error {
	p.Completed.WithLabelValues(exec.JobID).Inc()
	p.observeDuration(exec, true)
	return nil
}

// OnJobFailed implements hook.JobFailed.
func (p *PrometheusExtension) OnJobFailed(_ context.Context, exec *job.Execution, _ error) error {
	p.Failed.WithLabelValues(exec.JobID).Inc()
	p.observeDuration(exec, false)
	return nil
}

// OnRetrySucceeded implements hook.RetrySucceeded.
func (p *PrometheusExtension) OnRetrySucceeded(_ context.Context, exec *job.Execution, _ any) error {
	p.Retries.WithLabelValues(exec.JobID).Inc()
	p.Completed.WithLabelValues(exec.JobID).Inc()
	p.observeDuration(exec, true)
	return nil
}

// OnRetryFailed implements hook.RetryFailed.
func (p *PrometheusExtension) OnRetryFailed(_ context.Context, exec *job.Execution, _ error) error {
	p.Retries.WithLabelValues(exec.JobID).Inc()
	p.Failed.WithLabelValues(exec.JobID).Inc()
	p.observeDuration(exec, false)
	return nil
}

// ── Monitor hooks ───────────────────────────────────

// OnJobStalled implements hook.JobStalled.
func (p *PrometheusExtension) OnJobStalled(_ context.Context, stall hook.Stall) error {
	p.Stalls.WithLabelValues(stall.JobID).Inc()
	return nil
}

// OnHealthcheck implements hook.Healthcheck.
func (p *PrometheusExtension) OnHealthcheck(_ context.Context, health hook.Health) error {
	p.InFlight.Set(float64(health.Running))
	return nil
}

func (p *PrometheusExtension) observeDuration(exec *job.Execution, success bool) {
	label := "false"
	if success {
		label = "true"
	}
	p.Duration.WithLabelValues(exec.JobID, label).Observe(exec.Duration.Seconds())
}
