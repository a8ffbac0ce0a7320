package cmd

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbatch/internal/config"
	"github.com/MeKo-Tech/qrbatch/internal/qr"
)

func TestServerConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.QR.ErrorLevel = "q"
	cfg.Server.RateLimitEnabled = true

	sc, err := serverConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, "localhost", sc.Host)
	assert.Equal(t, 8080, sc.Port)
	assert.Equal(t, qr.Quartile, sc.Level)
	assert.Equal(t, 450, sc.Size)
	assert.Equal(t, 4, sc.Border)
	assert.Equal(t, 32, sc.MaxBorder)
	assert.True(t, sc.RateLimit.Enabled)
	assert.Equal(t, 60, sc.RateLimit.RequestsPerMinute)

	cfg.Server.MaxSize = 300
	sc, err = serverConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 300, sc.Size)

	cfg.QR.ErrorLevel = "z"
	_, err = serverConfig(&cfg)
	assert.Error(t, err)
}

func TestApplyServeFlags(t *testing.T) {
	cmd := newServeCmd(&app{})
	require.NoError(t, cmd.ParseFlags([]string{"-p", "9090", "--rate-limit-enabled", "--requests-per-minute", "5", "--max-border", "8"}))

	cfg := config.DefaultConfig()
	cfg.Server.Host = "0.0.0.0"
	applyServeFlags(cmd, &cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.RateLimitEnabled)
	assert.Equal(t, 5, cfg.Server.RequestsPerMinute)
	assert.Equal(t, 8, cfg.Server.MaxBorder)
	// Unset flags keep the configured value.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1000, cfg.Server.RequestsPerHour)
}

func serveCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"serve"}, args...))
	cmd.SetOut(&syncBuffer{})
	cmd.SetErr(&syncBuffer{})
	return cmd
}

func TestServe_AddressInUse(t *testing.T) {
	isolate(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	err = serveCommand(t, "-H", "127.0.0.1", "-p", strconv.Itoa(port)).Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	isolate(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = serveCommand(t, "-H", "127.0.0.1", "-p", strconv.Itoa(port)).ExecuteContext(ctx)
	assert.NoError(t, err)
}

func TestServe_InvalidConfig(t *testing.T) {
	isolate(t)

	err := serveCommand(t, "--max-size", "0").Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid max size")

	err = serveCommand(t, "--max-border", "100000").Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid max border")

	err = serveCommand(t, "--border", "2000000000").Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid border")

	err = serveCommand(t, "-p", "70000").Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

// syncBuffer is a bytes.Buffer safe for the server goroutine's log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
