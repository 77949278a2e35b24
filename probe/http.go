package probe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// userAgent identifies gateway probes to the fleet.
	userAgent = "biolens-gateway/0.1.0 health check"

	// maxHealthBodySize caps how much of a health response is read.
	maxHealthBodySize = 64 * 1024
)

// HTTPProberConfig configures the HTTP prober.
type HTTPProberConfig struct {
	// Client is the HTTP client used for probes.
	// Default: a client with keep-alives disabled.
	Client *http.Client
}

// HTTPProber probes dependent services over HTTP.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a new HTTP prober.
func NewHTTPProber(config ...HTTPProberConfig) *HTTPProber {
	cfg := HTTPProberConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		}
	}
	return &HTTPProber{client: cfg.Client}
}

// healthBody is the minimal health response shape shared across the fleet.
type healthBody struct {
	Status      string `json:"status"`
	ModelLoaded *bool  `json:"model_loaded"`
}

// Probe issues a single GET against the target's health path. The probe
// carries its own deadline derived from the target's timeout; cancelling it
// never affects sibling probes.
func (p *HTTPProber) Probe(ctx context.Context, target Target) Result {
	start := time.Now()
	result := Result{
		ServiceName: target.Name,
		CheckedAt:   start.UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.HealthURL(), nil)
	if err != nil {
		result.Err = ErrConnectionFailed
		return result
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = classify(err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = ErrUnexpectedResponse
		return result
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxHealthBodySize)).Decode(&body); err != nil {
		result.Err = ErrUnexpectedResponse
		return result
	}
	if body.Status == "" {
		result.Err = ErrUnexpectedResponse
		return result
	}

	result.Reachable = true
	result.ModelLoaded = body.ModelLoaded
	return result
}

// classify maps a transport error onto the probe error taxonomy.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrConnectionFailed
}
