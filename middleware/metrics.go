package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/chime/job"
)

const meterName = "github.com/xraph/chime"

// Metrics returns middleware that records per-attempt duration and outcome
// counts using the global OpenTelemetry meter provider. Callers that manage
// their own providers should use MetricsWithMeter instead.
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter is like Metrics but records against an explicit meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	duration, dErr := meter.Float64Histogram(
		"chime.job.duration",
		metric.WithDescription("Duration of job attempts"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	executions, eErr := meter.Int64Counter(
		"chime.job.executions",
		metric.WithDescription("Number of job attempts"),
		metric.WithUnit("{execution}"),
	)
	_ = eErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, exec *job.Execution, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("job_id", exec.JobID),
			attribute.String("status", status),
			attribute.Bool("manual", exec.Manual),
		)

		duration.Record(ctx, elapsed.Seconds(), attrs)
		executions.Add(ctx, 1, attrs)

		return err
	}
}
