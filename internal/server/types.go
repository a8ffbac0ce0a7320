package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/qrbatch/internal/barcode"
	"github.com/MeKo-Tech/qrbatch/internal/qr"
	"github.com/MeKo-Tech/qrbatch/internal/raster"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	engine      barcode.Engine
	corsOrigin  string
	maxSize     int
	maxBorder   int
	defaults    renderParams
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxSize    int
	TimeoutSec int

	// MaxBorder caps the border a request may ask for. Zero allows only
	// the default border.
	MaxBorder int

	// Engine names the symbol encoder, see barcode.EngineNames.
	Engine string

	// Defaults for requests that omit the parameter.
	Level  qr.Level
	Size   int
	Border int

	RateLimit RateLimitConfig
	Logger    *slog.Logger
}

// RateLimitConfig holds per-client request limits. Zero disables a window.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version,omitempty"`
	Engine  string   `json:"engine,omitempty"`
	Levels  []string `json:"levels,omitempty"`
	Time    string   `json:"time"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a new QR rendering server instance.
func NewServer(config Config) (*Server, error) {
	engine, err := barcode.NewEngine(config.Engine)
	if err != nil {
		return nil, err
	}
	if !config.Level.Valid() {
		return nil, fmt.Errorf("%w: %d", qr.ErrInvalidLevel, int(config.Level))
	}
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("invalid max size: %d (must be positive)", config.MaxSize)
	}
	if config.Size <= 0 || config.Size > config.MaxSize {
		return nil, fmt.Errorf("invalid default size: %d (must be between 1 and %d)", config.Size, config.MaxSize)
	}
	if config.MaxBorder < 0 || config.MaxBorder > raster.MaxBorder {
		return nil, fmt.Errorf("invalid max border: %d (must be between 0 and %d)", config.MaxBorder, raster.MaxBorder)
	}
	if config.Border < 0 || config.Border > raster.MaxBorder {
		return nil, fmt.Errorf("invalid default border: %d (must be between 0 and %d)", config.Border, raster.MaxBorder)
	}

	log := config.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		engine:     engine,
		corsOrigin: config.CORSOrigin,
		maxSize:    config.MaxSize,
		maxBorder:  max(config.MaxBorder, config.Border),
		defaults: renderParams{
			level:  config.Level,
			size:   config.Size,
			border: config.Border,
		},
		log: log,
	}
	if rl := config.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/qr", s.corsMiddleware(s.rateLimitMiddleware(s.qrHandler)))
	mux.Handle("/metrics", promhttp.Handler())
}

// NewHTTPServer wraps handler in an http.Server with the configured
// address and timeouts.
func NewHTTPServer(config Config, handler http.Handler) *http.Server {
	timeout := time.Duration(config.TimeoutSec) * time.Second
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
}

func (s *Server) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.Default()
}
