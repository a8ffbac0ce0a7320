//nolint:lll
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/batch"
	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

// Config represents the complete configuration for qrbatch.
// It includes settings for all commands (generate, encode, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Symbol and image settings shared by all commands
	QR QRConfig `mapstructure:"qr" yaml:"qr" json:"qr"`

	// Batch processing configuration (generate command)
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Server configuration (serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// QRConfig contains symbol encoding and rasterization settings.
type QRConfig struct {
	ErrorLevel string `mapstructure:"error_level" yaml:"error_level" json:"error_level"`
	Border     int    `mapstructure:"border" yaml:"border" json:"border"`
	Sizes      []int  `mapstructure:"sizes" yaml:"sizes" json:"sizes"`
	Engine     string `mapstructure:"engine" yaml:"engine" json:"engine"`
}

// BatchConfig contains batch generation settings.
type BatchConfig struct {
	Input        string `mapstructure:"input" yaml:"input" json:"input"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Workers      int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	Verify       bool   `mapstructure:"verify" yaml:"verify" json:"verify"`
	ReportFormat string `mapstructure:"report_format" yaml:"report_format" json:"report_format"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxSize         int    `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBorder       int    `mapstructure:"max_border" yaml:"max_border" json:"max_border"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Rate limiting per client IP
	RateLimitEnabled  bool `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int  `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		QR: QRConfig{
			ErrorLevel: "m",
			Border:     batch.DefaultBorder,
			Sizes:      append([]int(nil), batch.DefaultSizes...),
			Engine:     barcode.EngineNative,
		},
		Batch: BatchConfig{
			Input:        batch.DefaultInputFile,
			OutputDir:    batch.DefaultOutputDir,
			Workers:      runtime.NumCPU(),
			Verify:       false,
			ReportFormat: "text",
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxSize:           2048,
			MaxBorder:         32,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			RateLimitEnabled:  false,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 10000,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if err := c.validateQR(); err != nil {
		return err
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	if c.Batch.ReportFormat != "" && !contains(batch.Formats, c.Batch.ReportFormat) {
		return fmt.Errorf("invalid report format: %s (must be one of: %s)", c.Batch.ReportFormat, strings.Join(batch.Formats, ", "))
	}

	return c.validateServer()
}

func (c *Config) validateQR() error {
	if _, err := qr.ParseLevel(c.QR.ErrorLevel); err != nil {
		return err
	}
	if c.QR.Border < 0 || c.QR.Border > raster.MaxBorder {
		return fmt.Errorf("invalid border: %d (must be between 0 and %d)", c.QR.Border, raster.MaxBorder)
	}
	if len(c.QR.Sizes) == 0 {
		return fmt.Errorf("invalid sizes: at least one size is required")
	}
	for _, s := range c.QR.Sizes {
		if s <= 0 || s > raster.MaxSide {
			return fmt.Errorf("invalid size: %d (must be between 1 and %d)", s, raster.MaxSide)
		}
	}
	if !contains(barcode.EngineNames(), c.QR.Engine) {
		return fmt.Errorf("invalid engine: %s (must be one of: %s)", c.QR.Engine, strings.Join(barcode.EngineNames(), ", "))
	}
	return nil
}

func (c *Config) validateServer() error {
	s := c.Server
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", s.Port)
	}
	if s.MaxSize <= 0 || s.MaxSize > raster.MaxSide {
		return fmt.Errorf("invalid max size: %d (must be between 1 and %d)", s.MaxSize, raster.MaxSide)
	}
	if s.MaxBorder < 0 || s.MaxBorder > raster.MaxBorder {
		return fmt.Errorf("invalid max border: %d (must be between 0 and %d)", s.MaxBorder, raster.MaxBorder)
	}
	if s.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", s.TimeoutSec)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", s.ShutdownTimeout)
	}
	if s.RateLimitEnabled && (s.RequestsPerMinute < 0 || s.RequestsPerHour < 0 || s.MaxRequestsPerDay < 0) {
		return fmt.Errorf("invalid rate limits: %d/min, %d/hour, %d/day (must not be negative)",
			s.RequestsPerMinute, s.RequestsPerHour, s.MaxRequestsPerDay)
	}
	return nil
}

// Level returns the parsed error correction level.
func (c *Config) Level() (qr.Level, error) {
	return qr.ParseLevel(c.QR.ErrorLevel)
}

// ToBatchConfig converts the config to the batch processing configuration.
// Progress, logging and output settings stay at their defaults for the caller to fill in.
func (c *Config) ToBatchConfig() (*batch.Config, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	cfg := batch.DefaultConfig()
	cfg.InputFile = c.Batch.Input
	cfg.OutputDir = c.Batch.OutputDir
	cfg.Level = level
	cfg.Sizes = append([]int(nil), c.QR.Sizes...)
	cfg.Border = c.QR.Border
	cfg.Engine = c.QR.Engine
	cfg.Verify = c.Batch.Verify
	cfg.Workers = c.Batch.Workers
	return cfg, nil
}

// ReadTimeout returns the server request timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
