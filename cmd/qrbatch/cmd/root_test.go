package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbatch/internal/config"
)

// isolate runs the test in an empty working directory without user config
// files or QRBATCH_ variables, and returns the directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "QRBATCH_") {
			name, _, _ := strings.Cut(env, "=")
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Chdir(dir)
	return dir
}

// execute runs a fresh command tree with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := GetRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "qrbatch", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "QR code images")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandNoArgs(t *testing.T) {
	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "qrbatch version dev (commit: unknown, built: unknown)\n", out)
}

func TestRootCommandSubcommands(t *testing.T) {
	var names []string
	for _, sub := range NewRootCommand().Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"generate", "encode", "serve", "config"} {
		assert.Contains(t, names, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, errOut, err := execute(t, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, errOut, "unknown flag")
}

func TestRootCommandTreesAreIndependent(t *testing.T) {
	isolate(t)
	a := NewRootCommand()
	a.SetArgs([]string{"config", "show", "--log-level", "debug"})
	a.SetOut(&bytes.Buffer{})
	a.SetErr(&bytes.Buffer{})
	require.NoError(t, a.Execute())

	out, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: info")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()

	cfg.LogLevel = "warn"
	log := newLogger(&buf, &cfg)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	cfg.Verbose = true
	newLogger(&buf, &cfg).Debug("debugging")
	assert.Contains(t, buf.String(), "debugging")
}
