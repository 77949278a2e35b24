package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/biolens/gateway/probe"
)

// Metrics records outcomes of dependency probes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records one dependency check with duration and outcome.
	RecordProbe(ctx context.Context, dependency string, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"probe.checks.total",
		metric.WithDescription("Total number of dependency probes"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"probe.checks.errors",
		metric.WithDescription("Total number of failed dependency probes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"probe.check.duration_ms",
		metric.WithDescription("Dependency probe duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordProbe records metrics for one dependency check.
func (m *metricsImpl) RecordProbe(ctx context.Context, dependency string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("dependency.name", dependency),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("probe.error_kind", probe.Kind(err)))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

// NoopMetrics is a metrics implementation that does nothing.
type NoopMetrics struct{}

func (m *NoopMetrics) RecordProbe(ctx context.Context, dependency string, duration time.Duration, err error) {
}
