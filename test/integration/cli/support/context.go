package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	DatasetDir string
	EnvVars    []string
}

// NewTestContext creates a new test context. Commands run inside a fresh
// temporary directory so that no tilecrop.yaml from the repository leaks in.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "tilecrop-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: tempDir,
		TempDir:    tempDir,
		DatasetDir: filepath.Join(tempDir, "dataset"),
		EnvVars:    []string{"HOME=" + tempDir, "XDG_CONFIG_HOME=" + filepath.Join(tempDir, ".config")},
	}, nil
}

// Cleanup removes the temporary directory of the scenario.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// substituteCommandVariables expands {dataset} and {tmp} placeholders.
func (testCtx *TestContext) substituteCommandVariables(s string) string {
	return strings.NewReplacer(
		"{dataset}", testCtx.DatasetDir,
		"{tmp}", testCtx.TempDir,
	).Replace(s)
}

// datasetPath resolves a path relative to the dataset root.
func (testCtx *TestContext) datasetPath(rel string) string {
	return filepath.Join(testCtx.DatasetDir, filepath.FromSlash(rel))
}

// tempPath resolves a path relative to the scenario directory.
func (testCtx *TestContext) tempPath(rel string) string {
	return filepath.Join(testCtx.TempDir, filepath.FromSlash(rel))
}
