package config

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("GATEWAY_TEST_HOST", "biobert.internal")

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"no variables", "http://localhost:8001", "http://localhost:8001", false},
		{"braced variable", "http://${GATEWAY_TEST_HOST}:8001", "http://biobert.internal:8001", false},
		{"escaped dollar", "cost is $$5", "cost is $5", false},
		{"missing variable", "http://${GATEWAY_TEST_MISSING_771}:8001", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvStrict(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvStrict() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error = %v, want ErrInvalid", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("expandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_ReportsAllMissing(t *testing.T) {
	_, err := expandEnvStrict("${GATEWAY_MISS_B} ${GATEWAY_MISS_A}")
	if err == nil {
		t.Fatal("expandEnvStrict() error = nil, want error")
	}
	want := "GATEWAY_MISS_A, GATEWAY_MISS_B"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error = %q, want it to list %q", got, want)
	}
}
