package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/biolens/gateway/probe"
)

// Identity is the static identity of the running service. Created at
// process start from configuration; never mutated.
type Identity struct {
	Service string
	Version string
}

// IdentityResponse is the JSON body of the root endpoint.
type IdentityResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status       string               `json:"status"`
	Service      string               `json:"service"`
	Version      string               `json:"version"`
	GeneratedAt  string               `json:"generated_at"`
	Dependencies []DependencyResponse `json:"dependencies"`
}

// DependencyResponse is the JSON body for a single probed dependency.
type DependencyResponse struct {
	Name        string  `json:"name"`
	Reachable   bool    `json:"reachable"`
	LatencyMs   float64 `json:"latency_ms"`
	Error       string  `json:"error,omitempty"`
	ModelLoaded *bool   `json:"model_loaded,omitempty"`
}

// ErrorResponse is the fleet-wide body for boundary-level faults.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IdentityHandler returns the handler for the root endpoint. It reports
// liveness only: it succeeds unconditionally, independent of dependency
// state.
func IdentityHandler(id Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, IdentityResponse{
			Message: id.Service + " is running",
			Version: id.Version,
		})
	}
}

// Handler returns the handler for the health endpoint. It aggregates all
// configured dependencies and maps the overall status onto the transport
// code: 200 for healthy or degraded, 503 for unavailable.
func Handler(agg *Aggregator, id Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.Aggregate(r.Context())

		deps := make([]DependencyResponse, 0, len(report.Services))
		for _, result := range report.Services {
			deps = append(deps, toDependencyResponse(result))
		}

		writeJSON(w, report.Overall.HTTPStatus(), HealthResponse{
			Status:       report.Overall.String(),
			Service:      id.Service,
			Version:      id.Version,
			GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
			Dependencies: deps,
		})
	}
}

// ServiceHandler returns a handler that checks a single named dependency.
func ServiceHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := agg.Check(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "Not found",
				Message: "unknown dependency: " + name,
			})
			return
		}

		code := http.StatusOK
		if !result.Reachable {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, toDependencyResponse(result))
	}
}

// RegisterHandlers registers the fleet-standard endpoints on the given mux:
// the identity root, the aggregate health endpoint, and one sub-endpoint
// per configured dependency.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator, id Identity) {
	mux.HandleFunc("GET /{$}", IdentityHandler(id))
	mux.HandleFunc("GET /health", Handler(agg, id))
	for _, target := range agg.Targets() {
		mux.HandleFunc("GET /health/"+target.Name, ServiceHandler(agg, target.Name))
	}
}

// FaultBarrier converts a panic anywhere below it into the fleet-wide 500
// contract. Every entry point is wrapped once at the boundary instead of
// duplicating recovery per route; the body never leaks internal detail.
func FaultBarrier(onPanic func(v any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if onPanic != nil {
						onPanic(v)
					}
					writeJSON(w, http.StatusInternalServerError, ErrorResponse{
						Error:   "Internal server error",
						Message: "An unexpected error occurred",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func toDependencyResponse(result probe.Result) DependencyResponse {
	return DependencyResponse{
		Name:        result.ServiceName,
		Reachable:   result.Reachable,
		LatencyMs:   float64(result.Latency) / float64(time.Millisecond),
		Error:       probe.Kind(result.Err),
		ModelLoaded: result.ModelLoaded,
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
