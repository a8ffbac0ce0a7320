package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrbatch/cmd/qrbatch/cmd"
)

// aURLListContaining writes the default input file.
func (testCtx *TestContext) aURLListContaining(content *godog.DocString) error {
	return testCtx.aFileContaining("URL_List.txt", content)
}

// aFileContaining writes a file into the working directory.
func (testCtx *TestContext) aFileContaining(name string, content *godog.DocString) error {
	path := testCtx.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content.Content+"\n"), 0o600)
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, value)
	return nil
}

// iRunCommand runs a qrbatch command line in-process, inside the scenario's
// working directory and with the scenario's environment variables.
func (testCtx *TestContext) iRunCommand(command string) error {
	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "qrbatch" {
		return fmt.Errorf("unsupported command %q", parts[0])
	}

	restore, err := testCtx.enter()
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	root := cmd.NewRootCommand()
	root.SetArgs(parts[1:])
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err = root.ExecuteContext(ctx)
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	if err != nil {
		testCtx.LastExitCode = 1
	} else {
		testCtx.LastExitCode = 0
	}
	return nil
}

// enter switches into the working directory and applies the scenario's
// environment. The returned function undoes both.
func (testCtx *TestContext) enter() (func(), error) {
	prevDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(testCtx.WorkingDir); err != nil {
		return nil, err
	}

	type saved struct {
		value string
		set   bool
	}
	prevEnv := map[string]saved{}
	for _, name := range []string{"HOME", "XDG_CONFIG_HOME"} {
		if _, ok := testCtx.EnvVars[name]; !ok {
			testCtx.EnvVars[name] = testCtx.WorkingDir
		}
	}
	for name, value := range testCtx.EnvVars {
		v, ok := os.LookupEnv(name)
		prevEnv[name] = saved{v, ok}
		_ = os.Setenv(name, value)
	}

	return func() {
		for name, s := range prevEnv {
			if s.set {
				_ = os.Setenv(name, s.value)
			} else {
				_ = os.Unsetenv(name)
			}
		}
		_ = os.Chdir(prevDir)
	}, nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s\nStderr: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeEmpty() error {
	if testCtx.LastOutput != "" {
		return fmt.Errorf("expected no output, got: %s", testCtx.LastOutput)
	}
	return nil
}

// theLogShouldContain checks the command's error stream, which carries logs.
func (testCtx *TestContext) theLogShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastStderr, expectedText) {
		return fmt.Errorf("log output does not contain '%s'\nActual log: %s", expectedText, testCtx.LastStderr)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies the output is valid JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	var v interface{}
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &v); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, testCtx.LastOutput)
	}
	return nil
}

// theErrorShouldMention verifies the command error mentions the given text.
func (testCtx *TestContext) theErrorShouldMention(expectedText string) error {
	if testCtx.LastError == nil {
		return errors.New("expected an error but command succeeded")
	}
	if !strings.Contains(strings.ToLower(testCtx.LastError.Error()), strings.ToLower(expectedText)) {
		return fmt.Errorf("error does not mention '%s'\nError: %v", expectedText, testCtx.LastError)
	}
	return nil
}

// theFileShouldExist verifies a file exists.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	if _, err := os.Stat(testCtx.path(filename)); err != nil {
		return fmt.Errorf("file %s does not exist", filename)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(filename string) error {
	if _, err := os.Stat(testCtx.path(filename)); err == nil {
		return fmt.Errorf("file %s exists but should not", filename)
	}
	return nil
}

// theFileShouldContain verifies a file's content.
func (testCtx *TestContext) theFileShouldContain(filename, content string) error {
	data, err := os.ReadFile(testCtx.path(filename))
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), content) {
		return fmt.Errorf("file %s does not contain '%s'\nContent: %s", filename, content, data)
	}
	return nil
}

// theDirectoryShouldContainPNGFiles counts the PNG files in a directory.
func (testCtx *TestContext) theDirectoryShouldContainPNGFiles(dir string, count int) error {
	matches, err := filepath.Glob(filepath.Join(testCtx.path(dir), "*.png"))
	if err != nil {
		return err
	}
	if len(matches) != count {
		return fmt.Errorf("expected %d PNG files in %s, found %d: %v", count, dir, len(matches), matches)
	}
	return nil
}

// RegisterCommonSteps registers the command and file steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	// Setup steps
	sc.Step(`^a URL list containing:$`, testCtx.aURLListContaining)
	sc.Step(`^a file "([^"]*)" containing:$`, testCtx.aFileContaining)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)

	// Command execution
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)

	// Output verification
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be empty$`, testCtx.theOutputShouldBeEmpty)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the log should contain "([^"]*)"$`, testCtx.theLogShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	// File verification
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the directory "([^"]*)" should contain (\d+) PNG files?$`, testCtx.theDirectoryShouldContainPNGFiles)
}
