package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mw "github.com/xraph/chime/middleware"
)

// runInstrumented drives one attempt through the metrics middleware
// against a fresh manual reader and returns everything it recorded.
func runInstrumented(t *testing.T, handlerErr error) metricdata.ResourceMetrics {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := mw.MetricsWithMeter(mp.Meter("test"))

	_ = m(context.Background(), newTestExec(), func(_ context.Context) error {
		return handlerErr
	})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	return rm
}

func metricByName(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func attrString(set attribute.Set, key string) string {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return ""
	}
	return v.AsString()
}

func TestMetrics_ExecutionsCounter(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
		wantStatus string
	}{
		{"success counts as ok", nil, "ok"},
		{"failure counts as error", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := runInstrumented(t, tt.handlerErr)

			m, ok := metricByName(rm, "chime.job.executions")
			if !ok {
				t.Fatal("chime.job.executions not recorded")
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("executions: expected Sum[int64], got %T", m.Data)
			}
			if len(sum.DataPoints) != 1 {
				t.Fatalf("executions: expected 1 data point, got %d", len(sum.DataPoints))
			}

			dp := sum.DataPoints[0]
			if dp.Value != 1 {
				t.Errorf("executions value = %d, want 1", dp.Value)
			}
			if got := attrString(dp.Attributes, "status"); got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
			if got := attrString(dp.Attributes, "job_id"); got != "claim-aging-sweep" {
				t.Errorf("job_id = %q, want %q", got, "claim-aging-sweep")
			}
		})
	}
}

func TestMetrics_DurationHistogram(t *testing.T) {
	rm := runInstrumented(t, nil)

	m, ok := metricByName(rm, "chime.job.duration")
	if !ok {
		t.Fatal("chime.job.duration not recorded")
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration: expected Histogram[float64], got %T", m.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("duration: expected 1 data point, got %d", len(hist.DataPoints))
	}

	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Errorf("duration count = %d, want 1", dp.Count)
	}
	if got := attrString(dp.Attributes, "job_id"); got != "claim-aging-sweep" {
		t.Errorf("job_id = %q, want %q", got, "claim-aging-sweep")
	}
	if got := attrString(dp.Attributes, "status"); got != "ok" {
		t.Errorf("status = %q, want %q", got, "ok")
	}
}

func TestMetrics_GlobalProviderDefaultsToNoop(t *testing.T) {
	m := mw.Metrics()

	called := false
	err := m(context.Background(), newTestExec(), func(_ context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
}
