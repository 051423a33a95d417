package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/chime/job"
)

const tracerName = "github.com/xraph/chime"

// Tracing returns middleware that wraps each attempt in an OpenTelemetry
// span using the global tracer provider. Callers that manage their own
// providers should use TracingWithTracer instead.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer is like Tracing but creates spans from an explicit
// tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, exec *job.Execution, next Handler) error {
		ctx, span := tracer.Start(ctx, "chime.job.execute",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("chime.job.id", exec.JobID),
				attribute.String("chime.job.name", exec.JobName),
				attribute.String("chime.run.id", exec.ID.String()),
				attribute.Int("chime.attempt", exec.Attempt),
				attribute.Bool("chime.manual", exec.Manual),
			),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
