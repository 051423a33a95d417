package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/chime/hook"
	"github.com/xraph/chime/job"
)

const meterName = "github.com/xraph/chime/observability"

// Compile-time interface checks.
var (
	_ hook.Extension      = (*MetricsExtension)(nil)
	_ hook.JobScheduled   = (*MetricsExtension)(nil)
	_ hook.JobCompleted   = (*MetricsExtension)(nil)
	_ hook.JobFailed      = (*MetricsExtension)(nil)
	_ hook.RetrySucceeded = (*MetricsExtension)(nil)
	_ hook.RetryFailed    = (*MetricsExtension)(nil)
	_ hook.JobStalled     = (*MetricsExtension)(nil)
	_ hook.Healthcheck    = (*MetricsExtension)(nil)
)

// MetricsExtension records scheduler-wide lifecycle metrics through
// OpenTelemetry. The executions counter carries an outcome attribute
// (completed, failed, retry_succeeded, retry_failed) so a single series
// covers the whole attempt taxonomy; the running gauge tracks the
// monitor's healthcheck numbers.
type MetricsExtension struct {
	Scheduled  metric.Int64Counter
	Executions metric.Int64Counter
	Retries    metric.Int64Counter
	Stalled    metric.Int64Counter
	Duration   metric.Float64Histogram
	Running    metric.Int64Gauge
}

// NewMetricsExtension creates a MetricsExtension on the global meter
// provider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension recording
// against an explicit meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// Creation errors are discarded: the OTel API returns noop
	// instruments on error, so recording stays safe.
	scheduled, _ := meter.Int64Counter(
		"chime.scheduler.jobs.scheduled",
		metric.WithDescription("Number of jobs registered with the scheduler"),
		metric.WithUnit("{job}"),
	)
	executions, _ := meter.Int64Counter(
		"chime.scheduler.executions",
		metric.WithDescription("Number of finished job attempts by outcome"),
		metric.WithUnit("{execution}"),
	)
	retries, _ := meter.Int64Counter(
		"chime.scheduler.retries",
		metric.WithDescription("Number of retry attempts"),
		metric.WithUnit("{retry}"),
	)
	stalled, _ := meter.Int64Counter(
		"chime.scheduler.jobs.stalled",
		metric.WithDescription("Number of stall detections"),
		metric.WithUnit("{detection}"),
	)
	duration, _ := meter.Float64Histogram(
		"chime.scheduler.job.duration",
		metric.WithDescription("Duration of finished job attempts"),
		metric.WithUnit("s"),
	)
	running, _ := meter.Int64Gauge(
		"chime.scheduler.jobs.running",
		metric.WithDescription("In-flight execution sequences at the last healthcheck"),
		metric.WithUnit("{job}"),
	)

	return &MetricsExtension{
		Scheduled:  scheduled,
		Executions: executions,
		Retries:    retries,
		Stalled:    stalled,
		Duration:   duration,
		Running:    running,
	}
}

// Name implements hook.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ── Job lifecycle hooks ─────────────────────────────

// OnJobScheduled implements hook.JobScheduled.
func (m *MetricsExtension) OnJobScheduled(ctx context.Context, view job.View) error {
	m.Scheduled.Add(ctx, 1, metric.WithAttributes(attribute.String("job_id", view.ID)))
	return nil
}

// OnJobCompleted implements hook.JobCompleted.
func (m *MetricsExtension) OnJobCompleted(ctx context.Context, exec *job.Execution, _ any) error {
	m.recordAttempt(ctx, exec, "completed", true)
	return nil
}

// OnJobFailed implements hook.JobFailed.
func (m *MetricsExtension) OnJobFailed(ctx context.Context, exec *job.Execution, _ error) error {
	m.recordAttempt(ctx, exec, "failed", false)
	return nil
}

// OnRetrySucceeded implements hook.RetrySucceeded.
func (m *MetricsExtension) OnRetrySucceeded(ctx context.Context, exec *job.Execution, _ any) error {
	m.Retries.Add(ctx, 1, metric.WithAttributes(attribute.String("job_id", exec.JobID)))
	m.recordAttempt(ctx, exec, "retry_succeeded", true)
	return nil
}

// OnRetryFailed implements hook.RetryFailed.
func (m *MetricsExtension) OnRetryFailed(ctx context.Context, exec *job.Execution, _ error) error {
	m.Retries.Add(ctx, 1, metric.WithAttributes(attribute.String("job_id", exec.JobID)))
	m.recordAttempt(ctx, exec, "retry_failed", false)
	return nil
}

// ── Monitor hooks ───────────────────────────────────

// OnJobStalled implements hook.JobStalled.
func (m *MetricsExtension) OnJobStalled(ctx context.Context, stall hook.Stall) error {
	m.Stalled.Add(ctx, 1, metric.WithAttributes(attribute.String("job_id", stall.JobID)))
	return nil
}

// OnHealthcheck implements hook.Healthcheck.
func (m *MetricsExtension) OnHealthcheck(ctx context.Context, health hook.Health) error {
	m.Running.Record(ctx, int64(health.Running))
	return nil
}

func (m *MetricsExtension) recordAttempt(ctx context.Context, exec *job.Execution, outcome string, success bool) {
	m.Executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job_id", exec.JobID),
		attribute.String("outcome", outcome),
	))
	m.Duration.Record(ctx, exec.Duration.Seconds(), metric.WithAttributes(
		attribute.String("job_id", exec.JobID),
		attribute.Bool("success", success),
	))
}
