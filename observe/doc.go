// Package observe provides the gateway's telemetry: OpenTelemetry tracing
// and metrics plus a structured JSON logger.
//
// An Observer bundles the three concerns behind one setup and one
// shutdown. The probe middleware wraps a probe.Prober so every dependency
// check is traced, measured, and logged without the health package knowing
// about telemetry.
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "biolens-backend",
//	    Version:     "0.1.0",
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Shutdown(ctx)
//
//	mw, err := observe.MiddlewareFromObserver(obs)
//	prober := mw.Wrap(probe.NewHTTPProber())
package observe
