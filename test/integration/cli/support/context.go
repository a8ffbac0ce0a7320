package support

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastStderr    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	EnvVars    map[string]string

	// Server management
	HTTPTestServer *httptest.Server

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   []byte
	LastHTTPHeaders    http.Header
}

// NewTestContext creates a new test context with its own working directory.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.MkdirTemp("", "qrbatch-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: workingDir,
		EnvVars:    map[string]string{},
	}, nil
}

// Cleanup stops the server and removes the working directory.
func (testCtx *TestContext) Cleanup() error {
	testCtx.StopServer()

	if err := os.RemoveAll(testCtx.WorkingDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.WorkingDir, err)
	}
	return nil
}

// StopServer stops the test HTTP server if one is running.
func (testCtx *TestContext) StopServer() {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Close()
		testCtx.HTTPTestServer = nil
	}
}

// AddEnvVar sets an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars[name] = value
}

// path resolves name against the scenario's working directory.
func (testCtx *TestContext) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.WorkingDir, name)
}
