package health

import (
	"time"

	"github.com/biolens/gateway/probe"
)

// Status represents the overall availability of the gateway's dependencies.
type Status int

const (
	// StatusHealthy indicates every configured dependency is reachable.
	StatusHealthy Status = iota
	// StatusDegraded indicates some but not all dependencies are reachable.
	StatusDegraded
	// StatusUnavailable indicates no configured dependency is reachable,
	// including the case where none are configured at all.
	StatusUnavailable
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the status onto the transport-level code the fleet uses:
// 200 while any dependency can serve, 503 when none can.
func (s Status) HTTPStatus() int {
	if s == StatusUnavailable {
		return 503
	}
	return 200
}

// Report is one availability snapshot. It is constructed fresh on every
// health request so it always reflects current state; it is never cached.
type Report struct {
	// Overall is a pure function of Services; no hidden state feeds it.
	Overall Status

	// Services holds one result per configured dependency, in
	// configuration order regardless of probe completion order.
	Services []probe.Result

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time
}

// Reduce computes the overall status from a set of probe results. The
// reduction is commutative over the set; ordering only matters for
// presentation. An empty set is reported as unavailable, not silently
// healthy.
func Reduce(results []probe.Result) Status {
	if len(results) == 0 {
		return StatusUnavailable
	}

	reachable := 0
	for _, r := range results {
		if r.Reachable {
			reachable++
		}
	}

	switch reachable {
	case 0:
		return StatusUnavailable
	case len(results):
		return StatusHealthy
	default:
		return StatusDegraded
	}
}
