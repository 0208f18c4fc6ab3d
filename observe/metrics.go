package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OperationMetrics records execution metrics for connector operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type OperationMetrics interface {
	// RecordOperation records one call through a connector with its total
	// duration, the number of retries performed, and the final outcome.
	RecordOperation(ctx context.Context, meta ServiceMeta, duration time.Duration, retries int, success bool)
}

// metricsImpl is the concrete implementation of OperationMetrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	retryHist    metric.Int64Histogram
}

// NewOperationMetrics creates an OperationMetrics instance with the given meter.
func NewOperationMetrics(meter metric.Meter) (OperationMetrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"connector.op.total",
		metric.WithDescription("Total number of connector operations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"connector.op.errors",
		metric.WithDescription("Total number of failed connector operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"connector.op.duration_ms",
		metric.WithDescription("Connector operation duration in milliseconds, including backoff"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retryHist, err := meter.Int64Histogram(
		"connector.op.retries",
		metric.WithDescription("Retries performed per connector operation"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		retryHist:    retryHist,
	}, nil
}

// RecordOperation records metrics for one connector call.
func (m *metricsImpl) RecordOperation(ctx context.Context, meta ServiceMeta, duration time.Duration, retries int, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("connector.service", meta.Service),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("connector.operation", meta.Operation))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if !success {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
	m.retryHist.Record(ctx, int64(retries), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOperation(ctx context.Context, meta ServiceMeta, duration time.Duration, retries int, success bool) {
}

// NoopOperationMetrics returns an OperationMetrics that discards everything.
func NoopOperationMetrics() OperationMetrics {
	return &noopMetrics{}
}
