package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/qrbatch/internal/config"
	"github.com/MeKo-Tech/qrbatch/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for on-demand QR codes",
		Long: `Start an HTTP server that renders QR codes as PNG on request.

The server provides the following endpoints:
  GET|POST /v1/qr   - Render data as PNG (parameters: data, size, level, border;
                      size is capped by --max-size, border by --max-border)
  GET      /health  - Health check endpoint
  GET      /metrics - Prometheus metrics

Examples:
  qrbatch serve
  qrbatch serve --port 8080
  qrbatch serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	f := serveCmd.Flags()
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-size", 2048, "largest image size a request may ask for, in pixels")
	f.Int("max-border", 32, "widest quiet zone a request may ask for, in modules")
	f.Int("timeout", 30, "request timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.StringP("error-level", "e", "m", "default error correction level: l, m, q, h")
	f.Int("border", 4, "default quiet zone width in modules")
	f.String("engine", "native", "symbol encoder")
	// Rate limiting flags
	f.Bool("rate-limit-enabled", false, "enable rate limiting")
	f.Int("requests-per-minute", 60, "maximum requests per minute per client")
	f.Int("requests-per-hour", 1000, "maximum requests per hour per client")
	f.Int("max-requests-per-day", 10000, "maximum requests per day per client")

	return serveCmd
}

// applyServeFlags overrides cfg with explicitly set serve flags.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	overrideString(cmd, "host", &cfg.Server.Host)
	overrideInt(cmd, "port", &cfg.Server.Port)
	overrideString(cmd, "cors-origin", &cfg.Server.CORSOrigin)
	overrideInt(cmd, "max-size", &cfg.Server.MaxSize)
	overrideInt(cmd, "max-border", &cfg.Server.MaxBorder)
	overrideInt(cmd, "timeout", &cfg.Server.TimeoutSec)
	overrideInt(cmd, "shutdown-timeout", &cfg.Server.ShutdownTimeout)
	overrideString(cmd, "error-level", &cfg.QR.ErrorLevel)
	overrideInt(cmd, "border", &cfg.QR.Border)
	overrideString(cmd, "engine", &cfg.QR.Engine)
	overrideBool(cmd, "rate-limit-enabled", &cfg.Server.RateLimitEnabled)
	overrideInt(cmd, "requests-per-minute", &cfg.Server.RequestsPerMinute)
	overrideInt(cmd, "requests-per-hour", &cfg.Server.RequestsPerHour)
	overrideInt(cmd, "max-requests-per-day", &cfg.Server.MaxRequestsPerDay)
}

// serverConfig maps the resolved configuration to the server's. The default
// image size is the largest configured size, capped at the server maximum.
func serverConfig(cfg *config.Config) (server.Config, error) {
	level, err := cfg.Level()
	if err != nil {
		return server.Config{}, err
	}
	s := cfg.Server
	return server.Config{
		Host:       s.Host,
		Port:       s.Port,
		CORSOrigin: s.CORSOrigin,
		MaxSize:    s.MaxSize,
		MaxBorder:  s.MaxBorder,
		TimeoutSec: s.TimeoutSec,
		Engine:     cfg.QR.Engine,
		Level:      level,
		Size:       min(slices.Max(cfg.QR.Sizes), s.MaxSize),
		Border:     cfg.QR.Border,
		RateLimit: server.RateLimitConfig{
			Enabled:           s.RateLimitEnabled,
			RequestsPerMinute: s.RequestsPerMinute,
			RequestsPerHour:   s.RequestsPerHour,
			MaxRequestsPerDay: s.MaxRequestsPerDay,
		},
	}, nil
}

func (a *app) runServe(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	if err := validate(cfg); err != nil {
		return err
	}

	srvCfg, err := serverConfig(cfg)
	if err != nil {
		return err
	}
	srvCfg.Logger = a.log

	qrServer, err := server.NewServer(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	qrServer.SetupRoutes(mux)
	httpServer := server.NewHTTPServer(srvCfg, mux)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting QR server", "host", srvCfg.Host, "port", srvCfg.Port,
			"engine", srvCfg.Engine, "rate_limit", srvCfg.RateLimit.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.log.Info("received shutdown signal")
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	a.log.Info("starting graceful shutdown", "timeout", shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	a.log.Info("graceful shutdown completed")
	return nil
}
