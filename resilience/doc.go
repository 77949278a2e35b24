// Package resilience provides failure-handling patterns for the gateway's
// dependency probes.
//
// A probe against a dependent service can hang, flap, or fail outright.
// The patterns here keep those failures cheap and bounded:
//
//   - Timeout: ensures an operation completes within a time limit.
//
//   - Retry: re-runs a failed operation with configurable backoff
//     (exponential, linear, constant). Probes never retry on their own;
//     the caller decides whether and how to retry.
//
//   - Circuit Breaker: stops probing a dependency that keeps failing, so a
//     dead service costs an immediate rejection instead of a full timeout
//     on every health request.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    MaxFailures:  5,
//	    ResetTimeout: time.Minute,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return checkDependency(ctx)
//	})
//	if errors.Is(err, resilience.ErrCircuitOpen) {
//	    // dependency is being shed; report it down without probing
//	}
package resilience
