// Package health aggregates per-dependency probes into one availability
// signal for the gateway.
//
// This package implements the readiness side of the gateway: it dispatches
// one probe per configured dependent service, combines the outcomes into a
// single overall status, and exposes the result over HTTP. Liveness (the
// gateway process itself is running) is reported separately by the identity
// endpoint and never depends on dependency state.
//
// # Core Concepts
//
// An Aggregator holds the ordered set of configured targets and a Prober.
// Aggregate runs every probe concurrently and reduces the results:
// Unavailable when nothing is reachable (or nothing is configured), Healthy
// when everything is, Degraded in between. A down dependency is data, not a
// fault; Aggregate never fails because of one.
//
// # Basic Usage
//
//	agg, err := health.NewAggregator(probe.NewHTTPProber(), targets)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report := agg.Aggregate(ctx)
//	if report.Overall == health.StatusUnavailable {
//	    log.Print("no dependency reachable")
//	}
//
// # HTTP Endpoints
//
// The package provides the handlers every service in the fleet exposes:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg, health.Identity{
//	    Service: "biolens-backend",
//	    Version: "0.1.0",
//	})
package health
