package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/biolens/gateway/probe"
	"github.com/biolens/gateway/resilience"
)

// Aggregator dispatches one probe per configured dependency and combines
// the results into a single report.
type Aggregator struct {
	prober   probe.Prober
	targets  []probe.Target
	sem      *semaphore.Weighted
	deadline *resilience.Timeout
	retry    *resilience.Retry
	breakers map[string]*resilience.CircuitBreaker
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxConcurrent bounds how many probes run at once. Zero or negative
// means unbounded, which is the default.
func WithMaxConcurrent(n int64) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithProbeDeadline hard-bounds each probe attempt. The HTTP prober already
// honors its target timeout, but a custom Prober is free to ignore its
// context; this bound keeps such a prober from stalling the whole
// aggregation. A probe cut off by the bound is recorded as a timeout result.
func WithProbeDeadline(d time.Duration) Option {
	return func(a *Aggregator) {
		a.deadline = resilience.NewTimeout(resilience.TimeoutConfig{Timeout: d})
	}
}

// WithRetry retries failed probes with the given policy. The probe itself
// never retries; this is the caller-level policy.
func WithRetry(config resilience.RetryConfig) Option {
	return func(a *Aggregator) {
		a.retry = resilience.NewRetry(config)
	}
}

// WithCircuitBreaker gives each target its own circuit breaker so a
// flapping dependency fails fast instead of consuming its full timeout on
// every request. A rejected probe is recorded as unreachable data.
func WithCircuitBreaker(config resilience.CircuitBreakerConfig) Option {
	return func(a *Aggregator) {
		a.breakers = make(map[string]*resilience.CircuitBreaker, len(a.targets))
		for _, t := range a.targets {
			a.breakers[t.Name] = resilience.NewCircuitBreaker(config)
		}
	}
}

// NewAggregator creates an aggregator over the given targets. Targets are
// validated up front; any violation is a configuration error and the
// process must refuse to serve.
func NewAggregator(prober probe.Prober, targets []probe.Target, opts ...Option) (*Aggregator, error) {
	if prober == nil {
		return nil, ErrNilProber
	}

	seen := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", probe.ErrInvalidTarget, t.Name)
		}
		seen[t.Name] = struct{}{}
	}

	a := &Aggregator{
		prober:  prober,
		targets: append([]probe.Target(nil), targets...),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Targets returns the configured targets in configuration order.
func (a *Aggregator) Targets() []probe.Target {
	return append([]probe.Target(nil), a.targets...)
}

// Aggregate probes every configured dependency concurrently and reduces
// the outcomes into one report. Total latency is bounded by the slowest
// probe that has not timed out, not by the sum of all probes. A probe
// failure is data, never a propagated fault.
func (a *Aggregator) Aggregate(ctx context.Context) Report {
	results := make([]probe.Result, len(a.targets))

	var wg sync.WaitGroup
	for i, target := range a.targets {
		wg.Add(1)
		go func(i int, target probe.Target) {
			defer wg.Done()
			results[i] = a.check(ctx, target)
		}(i, target)
	}
	wg.Wait()

	return Report{
		Overall:     Reduce(results),
		Services:    results,
		GeneratedAt: time.Now().UTC(),
	}
}

// Check probes a single named dependency. Returns ErrTargetNotFound when
// the name is not configured.
func (a *Aggregator) Check(ctx context.Context, name string) (probe.Result, error) {
	for _, target := range a.targets {
		if target.Name == name {
			return a.check(ctx, target), nil
		}
	}
	return probe.Result{}, ErrTargetNotFound
}

// check runs one probe through the optional concurrency bound, circuit
// breaker, and retry policy. A panic below this point becomes unreachable
// data rather than crashing the aggregation.
func (a *Aggregator) check(ctx context.Context, target probe.Target) (result probe.Result) {
	defer func() {
		if v := recover(); v != nil {
			result = probe.Result{
				ServiceName: target.Name,
				CheckedAt:   time.Now().UTC(),
				Err:         fmt.Errorf("%w: %v", ErrInternalFault, v),
			}
		}
	}()

	if a.sem != nil {
		if err := a.sem.Acquire(ctx, 1); err != nil {
			return probe.Result{
				ServiceName: target.Name,
				CheckedAt:   time.Now().UTC(),
				Err:         probe.ErrTimeout,
			}
		}
		defer a.sem.Release(1)
	}

	attempt := func(ctx context.Context) probe.Result {
		return a.prober.Probe(ctx, target)
	}

	if a.deadline != nil {
		inner := attempt
		attempt = func(ctx context.Context) probe.Result {
			// Buffered: a probe finishing after the deadline must not
			// block, and the result stays off shared state.
			resCh := make(chan probe.Result, 1)
			start := time.Now()
			err := a.deadline.Execute(ctx, func(ctx context.Context) error {
				// The bounded probe runs on its own goroutine, out of
				// reach of check's recover.
				defer func() {
					if v := recover(); v != nil {
						resCh <- probe.Result{
							ServiceName: target.Name,
							CheckedAt:   start.UTC(),
							Err:         fmt.Errorf("%w: %v", ErrInternalFault, v),
						}
					}
				}()
				r := inner(ctx)
				resCh <- r
				return r.Err
			})
			select {
			case r := <-resCh:
				return r
			default:
				return probe.Result{
					ServiceName: target.Name,
					Latency:     time.Since(start),
					CheckedAt:   start.UTC(),
					Err:         fmt.Errorf("%w: %v", probe.ErrTimeout, err),
				}
			}
		}
	}

	run := func(ctx context.Context) error {
		result = attempt(ctx)
		return result.Err
	}

	if a.retry != nil {
		inner := run
		run = func(ctx context.Context) error {
			return a.retry.Execute(ctx, inner)
		}
	}

	if breaker, ok := a.breakers[target.Name]; ok {
		inner := run
		run = func(ctx context.Context) error {
			return breaker.Execute(ctx, inner)
		}
	}

	if err := run(ctx); errors.Is(err, resilience.ErrCircuitOpen) {
		// The breaker rejected the call before the probe ran.
		result = probe.Result{
			ServiceName: target.Name,
			CheckedAt:   time.Now().UTC(),
			Err:         probe.ErrConnectionFailed,
		}
	}
	return result
}
