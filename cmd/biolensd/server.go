package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/biolens/gateway/health"
	"github.com/biolens/gateway/observe"
)

// Server is the gateway's HTTP boundary.
type Server struct {
	log             observe.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

// ServerOptions configures the HTTP boundary.
type ServerOptions struct {
	Addr            string
	Logger          observe.Logger
	Aggregator      *health.Aggregator
	Identity        health.Identity
	AllowedOrigins  []string
	TrustedHosts    []string
	ShutdownTimeout time.Duration
}

// NewServer builds the router and wraps it with the boundary middleware
// stack: request ID, real IP, trusted hosts, CORS, and the fault barrier.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Aggregator == nil {
		return nil, errors.New("aggregator is required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(trustedHosts(opts.TrustedHosts))
	r.Use(cors(opts.AllowedOrigins))
	r.Use(health.FaultBarrier(func(v any) {
		opts.Logger.Error(context.Background(), "panic recovered in request handler",
			observe.Field{Key: "panic", Value: v},
		)
	}))

	r.Get("/", health.IdentityHandler(opts.Identity))
	r.Get("/health", health.Handler(opts.Aggregator, opts.Identity))
	for _, target := range opts.Aggregator.Targets() {
		r.Get("/health/"+target.Name, health.ServiceHandler(opts.Aggregator, target.Name))
	}

	return &Server{
		log: opts.Logger,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: opts.ShutdownTimeout,
	}, nil
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails. Cancellation drains in-flight requests within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info(ctx, "HTTP server started", observe.Field{Key: "addr", Value: s.httpServer.Addr})
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info(context.Background(), "HTTP server stopped")
	return nil
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// trustedHosts rejects requests whose Host header is not on the allowlist.
// An empty allowlist or a "*" entry trusts every host. A "*.domain" entry
// trusts any subdomain of domain, not domain itself.
func trustedHosts(hosts []string) func(http.Handler) http.Handler {
	trustAll := len(hosts) == 0
	allowed := make(map[string]bool, len(hosts))
	var wildcards []string
	for _, h := range hosts {
		h = strings.ToLower(h)
		switch {
		case h == "*":
			trustAll = true
		case strings.HasPrefix(h, "*."):
			wildcards = append(wildcards, h[1:])
		default:
			allowed[h] = true
		}
	}

	hostTrusted := func(host string) bool {
		if allowed[host] {
			return true
		}
		for _, suffix := range wildcards {
			if strings.HasSuffix(host, suffix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if trustAll {
				next.ServeHTTP(w, r)
				return
			}

			host := strings.ToLower(r.Host)
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if !hostTrusted(host) {
				http.Error(w, "Invalid host header", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cors applies the allowlist CORS policy used across the fleet. Only
// configured origins are echoed back; preflight requests short-circuit
// with 204.
func cors(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				h := w.Header()
				if allowAll {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
