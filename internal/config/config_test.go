package config

import (
	"encoding/json"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got %s", cfg.LogLevel)
	}
	if cfg.Verbose {
		t.Error("Expected verbose to be false")
	}

	// QR defaults
	if cfg.QR.ErrorLevel != "m" {
		t.Errorf("Expected error_level 'm', got %s", cfg.QR.ErrorLevel)
	}
	if cfg.QR.Border != 4 {
		t.Errorf("Expected border 4, got %d", cfg.QR.Border)
	}
	if !slices.Equal(cfg.QR.Sizes, []int{270, 360, 450}) {
		t.Errorf("Expected sizes [270 360 450], got %v", cfg.QR.Sizes)
	}
	if cfg.QR.Engine != "native" {
		t.Errorf("Expected engine 'native', got %s", cfg.QR.Engine)
	}

	// Batch defaults
	if cfg.Batch.Workers != runtime.NumCPU() {
		t.Errorf("Expected batch workers %d, got %d", runtime.NumCPU(), cfg.Batch.Workers)
	}
	if cfg.Batch.ReportFormat != "text" {
		t.Errorf("Expected report format 'text', got %s", cfg.Batch.ReportFormat)
	}

	// Server defaults
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected server host 'localhost', got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBorder != 32 {
		t.Errorf("Expected server max border 32, got %d", cfg.Server.MaxBorder)
	}
	if cfg.Server.RateLimitEnabled {
		t.Error("Expected rate limiting to be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

// TestDefaultConfigSizesAreCopied verifies that callers cannot mutate shared defaults.
func TestDefaultConfigSizesAreCopied(t *testing.T) {
	a := DefaultConfig()
	a.QR.Sizes[0] = 1
	if b := DefaultConfig(); b.QR.Sizes[0] != 270 {
		t.Errorf("DefaultConfig() sizes share storage: got %v", b.QR.Sizes)
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, ""},
		{"invalid log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"long level name", func(c *Config) { c.QR.ErrorLevel = "High" }, ""},
		{"invalid error level", func(c *Config) { c.QR.ErrorLevel = "x" }, "must be one of: l, m, q, h"},
		{"zero border", func(c *Config) { c.QR.Border = 0 }, ""},
		{"negative border", func(c *Config) { c.QR.Border = -1 }, "invalid border"},
		{"huge border", func(c *Config) { c.QR.Border = 2000000000 }, "invalid border: 2000000000 (must be between 0 and 256)"},
		{"widest border", func(c *Config) { c.QR.Border = raster.MaxBorder }, ""},
		{"no sizes", func(c *Config) { c.QR.Sizes = nil }, "at least one size"},
		{"zero size", func(c *Config) { c.QR.Sizes = []int{270, 0} }, "invalid size: 0"},
		{"huge size", func(c *Config) { c.QR.Sizes = []int{270, raster.MaxSide + 1} }, "invalid size: 4097"},
		{"skip2 engine", func(c *Config) { c.QR.Engine = "skip2" }, ""},
		{"unknown engine", func(c *Config) { c.QR.Engine = "zint" }, "invalid engine"},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, "invalid batch workers"},
		{"yaml report", func(c *Config) { c.Batch.ReportFormat = "yaml" }, ""},
		{"empty report format", func(c *Config) { c.Batch.ReportFormat = "" }, ""},
		{"invalid report format", func(c *Config) { c.Batch.ReportFormat = "xml" }, "invalid report format"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"max size zero", func(c *Config) { c.Server.MaxSize = 0 }, "invalid max size"},
		{"max size too large", func(c *Config) { c.Server.MaxSize = raster.MaxSide + 1 }, "invalid max size"},
		{"zero max border", func(c *Config) { c.Server.MaxBorder = 0 }, ""},
		{"negative max border", func(c *Config) { c.Server.MaxBorder = -1 }, "invalid max border"},
		{"max border too large", func(c *Config) { c.Server.MaxBorder = raster.MaxBorder + 1 }, "invalid max border"},
		{"timeout zero", func(c *Config) { c.Server.TimeoutSec = 0 }, "invalid timeout"},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = -1 }, "invalid shutdown timeout"},
		{"negative limits when disabled", func(c *Config) { c.Server.RequestsPerHour = -1 }, ""},
		{"negative limits when enabled", func(c *Config) {
			c.Server.RateLimitEnabled = true
			c.Server.RequestsPerHour = -1
		}, "invalid rate limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(&cfg)

			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

// TestValidateErrorLevelWrapsSentinel verifies the qr sentinel is preserved.
func TestValidateErrorLevelWrapsSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QR.ErrorLevel = "z"
	if err := cfg.Validate(); !errors.Is(err, qr.ErrInvalidLevel) {
		t.Errorf("Validate() error = %v, want qr.ErrInvalidLevel", err)
	}
}

// TestToBatchConfig tests conversion to the batch configuration.
func TestToBatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QR.ErrorLevel = "q"
	cfg.QR.Sizes = []int{100}
	cfg.QR.Border = 2
	cfg.QR.Engine = "skip2"
	cfg.Batch.Input = "in.txt"
	cfg.Batch.OutputDir = "out"
	cfg.Batch.Workers = 7
	cfg.Batch.Verify = true

	bc, err := cfg.ToBatchConfig()
	if err != nil {
		t.Fatalf("ToBatchConfig() unexpected error: %v", err)
	}
	if bc.InputFile != "in.txt" || bc.OutputDir != "out" {
		t.Errorf("Unexpected paths: %s, %s", bc.InputFile, bc.OutputDir)
	}
	if bc.Level != qr.Quartile {
		t.Errorf("Expected level Q, got %v", bc.Level)
	}
	if !slices.Equal(bc.Sizes, []int{100}) || bc.Border != 2 {
		t.Errorf("Unexpected sizes/border: %v, %d", bc.Sizes, bc.Border)
	}
	if bc.Engine != "skip2" || !bc.Verify || bc.Workers != 7 {
		t.Errorf("Unexpected engine/verify/workers: %s, %v, %d", bc.Engine, bc.Verify, bc.Workers)
	}

	cfg.QR.Sizes[0] = 5
	if bc.Sizes[0] != 100 {
		t.Error("ToBatchConfig() should copy sizes")
	}

	cfg.QR.ErrorLevel = "bogus"
	if _, err := cfg.ToBatchConfig(); err == nil {
		t.Error("ToBatchConfig() expected error for invalid level")
	}
}

// TestServerConfigHelpers tests the derived server values.
func TestServerConfigHelpers(t *testing.T) {
	s := DefaultConfig().Server
	if s.Addr() != "localhost:8080" {
		t.Errorf("Expected addr localhost:8080, got %s", s.Addr())
	}
	if s.ReadTimeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", s.ReadTimeout())
	}
}

// TestConfigMarshaling tests that the struct tags produce the documented keys.
func TestConfigMarshaling(t *testing.T) {
	cfg := DefaultConfig()

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	for _, key := range []string{`"log_level"`, `"error_level"`, `"output_dir"`, `"max_requests_per_day"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("JSON output missing %s: %s", key, data)
		}
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error: %v", err)
	}
	var back Config
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	if back.Server.CORSOrigin != "*" || !slices.Equal(back.QR.Sizes, cfg.QR.Sizes) {
		t.Errorf("YAML round trip lost values: %+v", back)
	}
}
