// Package probe implements bounded-time health checks against the
// dependent services the gateway fronts.
//
// A Target names one dependent service and where to reach it. A Prober
// issues a single idempotent request to the target's health path and
// classifies the outcome into a Result: either the service answered with a
// well-formed health body, or it failed in one of three ways (ErrTimeout,
// ErrConnectionFailed, ErrUnexpectedResponse). A probe never retries on its
// own; retry policy belongs to the caller.
//
// # Basic Usage
//
//	prober := probe.NewHTTPProber()
//	result := prober.Probe(ctx, probe.Target{
//	    Name:    "biobert-service",
//	    BaseURL: "http://localhost:8001",
//	    Timeout: 5 * time.Second,
//	})
//	if !result.Reachable {
//	    log.Printf("biobert-service down: %v", result.Err)
//	}
package probe
