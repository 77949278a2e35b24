package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/biolens/gateway/config"
	"github.com/biolens/gateway/health"
	"github.com/biolens/gateway/observe"
	"github.com/biolens/gateway/probe"
	"github.com/biolens/gateway/resilience"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "gateway.yaml", "path to the configuration file")
	flag.Parse()

	// Optional; environment variables may come from the process instead.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Observe.TracingExporter != "",
			Exporter:  cfg.Observe.TracingExporter,
			SamplePct: cfg.Observe.SampleRate,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.Observe.MetricsExporter != "",
			Exporter: cfg.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.Observe.LogLevel,
		},
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		_ = obs.Shutdown(context.Background())
	}()

	log := obs.Logger().WithService(observe.ServiceMeta{
		Name:    cfg.Service.Name,
		Version: cfg.Service.Version,
	})

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return fmt.Errorf("setup probe middleware: %w", err)
	}
	prober := mw.Wrap(probe.NewHTTPProber())

	agg, err := health.NewAggregator(prober, cfg.Targets(), aggregatorOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("setup aggregator: %w", err)
	}

	srv, err := NewServer(ServerOptions{
		Addr:       cfg.HTTP.Listen,
		Logger:     log,
		Aggregator: agg,
		Identity: health.Identity{
			Service: cfg.Service.Name,
			Version: cfg.Service.Version,
		},
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		TrustedHosts:    cfg.HTTP.TrustedHosts,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout.Std(),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	log.Info(ctx, "starting gateway",
		observe.Field{Key: "listen", Value: cfg.HTTP.Listen},
		observe.Field{Key: "dependencies", Value: len(cfg.Dependencies)},
	)
	return srv.Run(ctx)
}

func aggregatorOptions(cfg *config.Config) []health.Option {
	var opts []health.Option

	if cfg.Probes.MaxConcurrent > 0 {
		opts = append(opts, health.WithMaxConcurrent(cfg.Probes.MaxConcurrent))
	}
	if cfg.Probes.HardDeadline.Std() > 0 {
		opts = append(opts, health.WithProbeDeadline(cfg.Probes.HardDeadline.Std()))
	}
	if cfg.Probes.RetryAttempts > 1 {
		opts = append(opts, health.WithRetry(resilience.RetryConfig{
			MaxAttempts:  cfg.Probes.RetryAttempts,
			InitialDelay: cfg.Probes.RetryDelay.Std(),
		}))
	}
	if cfg.Probes.BreakerMaxFailures > 0 {
		opts = append(opts, health.WithCircuitBreaker(resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.Probes.BreakerMaxFailures,
			ResetTimeout: cfg.Probes.BreakerResetTimeout.Std(),
		}))
	}

	return opts
}
