package probe

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Target identifies one dependent service and how to reach it.
// Targets come from configuration at process start and are immutable.
type Target struct {
	// Name is the service name as reported in health output.
	Name string

	// BaseURL is the service's base URL; the health path is appended to it.
	BaseURL string

	// Timeout bounds a single probe against this target. Must be > 0.
	Timeout time.Duration
}

// Validate reports whether the target is usable. A target that fails
// validation is a configuration error and must be rejected at startup.
func (t Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTarget)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("%w: %s: timeout must be positive, got %v", ErrInvalidTarget, t.Name, t.Timeout)
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTarget, t.Name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidTarget, t.Name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s: missing host in %q", ErrInvalidTarget, t.Name, t.BaseURL)
	}
	return nil
}

// HealthURL returns the target's health endpoint.
func (t Target) HealthURL() string {
	u, err := url.JoinPath(t.BaseURL, "health")
	if err != nil {
		// Validate catches malformed URLs before a prober ever sees them.
		return t.BaseURL + "/health"
	}
	return u
}

// Result contains the outcome of a single probe. It is immutable once
// produced and is discarded after aggregation.
type Result struct {
	// ServiceName is the name of the probed target.
	ServiceName string

	// Reachable is true when the service answered within the timeout with a
	// well-formed health body.
	Reachable bool

	// Latency is the measured round-trip time.
	Latency time.Duration

	// Err classifies the failure when Reachable is false.
	Err error

	// ModelLoaded is the service's own readiness signal, passed through
	// when the health body reports one. Nil when the service does not
	// report it.
	ModelLoaded *bool

	// CheckedAt is when the probe started.
	CheckedAt time.Time
}

// Prober is the interface for health checks against a single target.
type Prober interface {
	// Probe performs one bounded-time health check. Failures are recorded
	// in the Result, never returned as a fault.
	Probe(ctx context.Context, target Target) Result
}

// ProberFunc is an adapter to allow ordinary functions to be used as Probers.
type ProberFunc func(ctx context.Context, target Target) Result

// Probe performs the health check.
func (f ProberFunc) Probe(ctx context.Context, target Target) Result {
	return f(ctx, target)
}
