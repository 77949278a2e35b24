package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
service:
  name: biolens-backend
  version: 0.1.0
http:
  listen: ":8000"
  allowed_origins:
    - http://localhost:3000
  trusted_hosts:
    - localhost
probes:
  hard_deadline: 8s
dependencies:
  - name: biobert-service
    url: http://localhost:8001
    timeout: 2s
  - name: image-analysis-service
    url: http://localhost:8002
observe:
  log_level: debug
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Service.Name != "biolens-backend" {
		t.Errorf("Service.Name = %q, want 'biolens-backend'", cfg.Service.Name)
	}
	if cfg.HTTP.Listen != ":8000" {
		t.Errorf("HTTP.Listen = %q, want ':8000'", cfg.HTTP.Listen)
	}
	if len(cfg.Dependencies) != 2 {
		t.Fatalf("Expected 2 dependencies, got %d", len(cfg.Dependencies))
	}
	if cfg.Dependencies[0].Timeout.Std() != 2*time.Second {
		t.Errorf("Dependencies[0].Timeout = %v, want 2s", cfg.Dependencies[0].Timeout.Std())
	}
	// Unset timeout gets the default.
	if cfg.Dependencies[1].Timeout.Std() != DefaultProbeTimeout {
		t.Errorf("Dependencies[1].Timeout = %v, want default %v", cfg.Dependencies[1].Timeout.Std(), DefaultProbeTimeout)
	}
	if cfg.Probes.HardDeadline.Std() != 8*time.Second {
		t.Errorf("Probes.HardDeadline = %v, want 8s", cfg.Probes.HardDeadline.Std())
	}
	if cfg.Observe.LogLevel != "debug" {
		t.Errorf("Observe.LogLevel = %q, want 'debug'", cfg.Observe.LogLevel)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("service:\n  name: biolens-backend\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Service.Version != DefaultVersion {
		t.Errorf("Service.Version = %q, want %q", cfg.Service.Version, DefaultVersion)
	}
	if cfg.HTTP.Listen != DefaultListen {
		t.Errorf("HTTP.Listen = %q, want %q", cfg.HTTP.Listen, DefaultListen)
	}
	if cfg.HTTP.ShutdownTimeout.Std() != DefaultShutdownTimeout {
		t.Errorf("HTTP.ShutdownTimeout = %v, want %v", cfg.HTTP.ShutdownTimeout.Std(), DefaultShutdownTimeout)
	}
	if cfg.Observe.LogLevel != "info" {
		t.Errorf("Observe.LogLevel = %q, want 'info'", cfg.Observe.LogLevel)
	}
	if len(cfg.Targets()) != 0 {
		t.Errorf("Targets() = %d entries, want 0", len(cfg.Targets()))
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("BIOBERT_URL", "http://biobert.internal:8001")

	cfg, err := Parse([]byte(`
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: ${BIOBERT_URL}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Dependencies[0].URL != "http://biobert.internal:8001" {
		t.Errorf("URL = %q, want expanded value", cfg.Dependencies[0].URL)
	}
}

func TestParse_MissingEnvVar(t *testing.T) {
	_, err := Parse([]byte(`
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: ${DEFINITELY_NOT_SET_992}
`))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Parse() error = %v, want ErrInvalid", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing service name",
			yaml: "http:\n  listen: ':8000'\n",
		},
		{
			name: "negative timeout",
			yaml: `
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: http://localhost:8001
    timeout: -1s
`,
		},
		{
			name: "bad dependency url",
			yaml: `
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: not-a-url
`,
		},
		{
			name: "duplicate dependency",
			yaml: `
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: http://localhost:8001
  - name: biobert-service
    url: http://localhost:8002
`,
		},
		{
			name: "bad sample rate",
			yaml: `
service:
  name: biolens-backend
observe:
  sample_rate: 1.5
`,
		},
		{
			name: "unparseable duration",
			yaml: `
service:
  name: biolens-backend
dependencies:
  - name: biobert-service
    url: http://localhost:8001
    timeout: soon
`,
		},
		{
			name: "not yaml",
			yaml: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "biolens-backend" {
		t.Errorf("Service.Name = %q, want 'biolens-backend'", cfg.Service.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestConfig_Targets_Order(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	targets := cfg.Targets()
	if targets[0].Name != "biobert-service" || targets[1].Name != "image-analysis-service" {
		t.Errorf("Targets() order = [%s %s], want configuration order", targets[0].Name, targets[1].Name)
	}
}
