package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/biolens/gateway/probe"
)

// ErrInvalid indicates configuration that must stop the process at startup.
var ErrInvalid = errors.New("config: invalid configuration")

// Defaults applied when the file leaves a knob unset.
const (
	DefaultListen          = ":8000"
	DefaultVersion         = "0.1.0"
	DefaultProbeTimeout    = 5 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the gateway's full runtime configuration.
type Config struct {
	Service      ServiceSettings      `yaml:"service"`
	HTTP         HTTPSettings         `yaml:"http"`
	Probes       ProbeSettings        `yaml:"probes"`
	Dependencies []DependencySettings `yaml:"dependencies"`
	Observe      ObserveSettings      `yaml:"observe"`
}

// ServiceSettings is the gateway's static identity.
type ServiceSettings struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// HTTPSettings configures the boundary surface.
type HTTPSettings struct {
	Listen          string   `yaml:"listen"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedHosts    []string `yaml:"trusted_hosts"`
}

// ProbeSettings configures how dependencies are probed.
type ProbeSettings struct {
	// MaxConcurrent bounds how many probes run at once. Zero means
	// unbounded.
	MaxConcurrent int64 `yaml:"max_concurrent"`

	// HardDeadline cuts off a probe attempt even if the prober ignores
	// its own timeout. Zero disables the bound.
	HardDeadline Duration `yaml:"hard_deadline"`

	// RetryAttempts is the total attempts per probe, including the first.
	// Zero or one means no retry.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryDelay is the delay before a retry. Default 100ms when retries
	// are enabled.
	RetryDelay Duration `yaml:"retry_delay"`

	// BreakerMaxFailures opens a dependency's circuit after this many
	// consecutive failures. Zero disables the breaker.
	BreakerMaxFailures int `yaml:"breaker_max_failures"`

	// BreakerResetTimeout is how long an open circuit waits before a
	// recovery probe.
	BreakerResetTimeout Duration `yaml:"breaker_reset_timeout"`
}

// DependencySettings names one dependent service.
type DependencySettings struct {
	Name    string   `yaml:"name"`
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// ObserveSettings configures telemetry.
type ObserveSettings struct {
	LogLevel        string  `yaml:"log_level"`
	TracingExporter string  `yaml:"tracing_exporter"`
	MetricsExporter string  `yaml:"metrics_exporter"`
	SampleRate      float64 `yaml:"sample_rate"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalid, raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads, expands, and validates the configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Parse(raw)
}

// Parse loads configuration from raw YAML bytes.
func Parse(raw []byte) (*Config, error) {
	expanded, err := expandEnvStrict(string(raw))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Version == "" {
		c.Service.Version = DefaultVersion
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	for i := range c.Dependencies {
		if c.Dependencies[i].Timeout <= 0 {
			c.Dependencies[i].Timeout = Duration(DefaultProbeTimeout)
		}
	}
	if c.Probes.RetryAttempts > 1 && c.Probes.RetryDelay <= 0 {
		c.Probes.RetryDelay = Duration(100 * time.Millisecond)
	}
	if c.Probes.BreakerMaxFailures > 0 && c.Probes.BreakerResetTimeout <= 0 {
		c.Probes.BreakerResetTimeout = Duration(30 * time.Second)
	}
	if c.Observe.LogLevel == "" {
		c.Observe.LogLevel = "info"
	}
}

// Validate reports the first configuration violation found.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrInvalid)
	}

	seen := make(map[string]struct{}, len(c.Dependencies))
	for _, dep := range c.Dependencies {
		target := dep.Target()
		if err := target.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if _, dup := seen[dep.Name]; dup {
			return fmt.Errorf("%w: duplicate dependency %q", ErrInvalid, dep.Name)
		}
		seen[dep.Name] = struct{}{}
	}

	if c.Observe.SampleRate < 0 || c.Observe.SampleRate > 1 {
		return fmt.Errorf("%w: sample_rate must be between 0.0 and 1.0, got %f", ErrInvalid, c.Observe.SampleRate)
	}

	return nil
}

// Target converts the settings into a probe target.
func (d DependencySettings) Target() probe.Target {
	return probe.Target{
		Name:    d.Name,
		BaseURL: d.URL,
		Timeout: d.Timeout.Std(),
	}
}

// Targets returns the configured dependencies as probe targets, in
// configuration order.
func (c *Config) Targets() []probe.Target {
	targets := make([]probe.Target, 0, len(c.Dependencies))
	for _, dep := range c.Dependencies {
		targets = append(targets, dep.Target())
	}
	return targets
}
