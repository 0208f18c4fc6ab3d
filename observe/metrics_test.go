package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOperationMetrics_RecordOperation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewOperationMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("NewOperationMetrics failed: %v", err)
	}

	meta := ServiceMeta{Service: "calendly", Operation: "list_events"}
	metrics.RecordOperation(context.Background(), meta, 250*time.Millisecond, 2, true)
	metrics.RecordOperation(context.Background(), meta, 100*time.Millisecond, 0, false)

	data := collect(t, reader)

	total, ok := data["connector.op.total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("connector.op.total missing or wrong type")
	}
	if got := total.DataPoints[0].Value; got != 2 {
		t.Errorf("total = %d, want 2", got)
	}

	errs, ok := data["connector.op.errors"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("connector.op.errors missing or wrong type")
	}
	if got := errs.DataPoints[0].Value; got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}

	dur, ok := data["connector.op.duration_ms"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("connector.op.duration_ms missing or wrong type")
	}
	if got := dur.DataPoints[0].Count; got != 2 {
		t.Errorf("duration count = %d, want 2", got)
	}

	retries, ok := data["connector.op.retries"].Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatal("connector.op.retries missing or wrong type")
	}
	if got := retries.DataPoints[0].Sum; got != 2 {
		t.Errorf("retries sum = %d, want 2", got)
	}
}

func TestNoopOperationMetrics(t *testing.T) {
	m := NoopOperationMetrics()
	// Must not panic
	m.RecordOperation(context.Background(), ServiceMeta{Service: "svc"}, time.Second, 1, false)
}
