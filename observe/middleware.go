package observe

import (
	"context"
	"time"

	"github.com/biolens/gateway/probe"
)

// Middleware wraps dependency probes with observability (tracing, metrics,
// logging).
//
// Contract:
//   - Concurrency: Wrap() returns a Prober safe for concurrent use.
//   - Context: Propagates context through tracing spans.
//   - Ownership: Probe results pass through unmodified; a failed probe is
//     recorded as data, never converted into a fault.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a Prober with tracing, metrics, and logging.
func (m *Middleware) Wrap(p probe.Prober) probe.Prober {
	return probe.ProberFunc(func(ctx context.Context, target probe.Target) probe.Result {
		ctx, span := m.tracer.StartProbe(ctx, target.Name)
		start := time.Now()

		result := p.Probe(ctx, target)

		duration := time.Since(start)
		m.tracer.EndProbe(span, result.Err)
		m.metrics.RecordProbe(ctx, target.Name, duration, result.Err)

		fields := []Field{
			{Key: "dependency", Value: target.Name},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			{Key: "reachable", Value: result.Reachable},
		}
		if result.Err != nil {
			fields = append(fields, Field{Key: "error", Value: probe.Kind(result.Err)})
			m.logger.Warn(ctx, "dependency probe failed", fields...)
		} else {
			m.logger.Debug(ctx, "dependency probe completed", fields...)
		}

		return result
	})
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
