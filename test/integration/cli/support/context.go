package support

import (
	"fmt"
	"image"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/state"
	"github.com/tablesight/tablesight/internal/testutil"
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
	EnvVars    []string

	// Generated fixture locations, set once the synthetic data step ran
	DataDir      string
	TemplatesDir string
	ProfilePath  string
	ScenesDir    string

	// In-process recognition state
	Streets   []recognition.Street
	LastCards cards.Result
	HaveCards bool

	// In-process table state
	Engine       *testutil.ScriptedEngine
	TableProfile *layout.Profile
	TableFrame   *image.RGBA
	GameState    *state.GameState

	// Preview server state
	HTTPServer          *httptest.Server
	LastHTTPStatusCode  int
	LastHTTPResponse    string
	LastHTTPContentType string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	// Get current working directory
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// If we're in a subdirectory (test execution might cd), find project
	// root by looking for go.mod
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached filesystem root, use current directory
			break
		}
		currentDir = parentDir
	}

	// Create temporary directory for test artifacts
	tempDir, err := os.MkdirTemp("", "tablesight-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: workingDir,
		TempDir:    tempDir,
		EnvVars:    []string{},
	}, nil
}

// Cleanup removes temporary state created during the scenario.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// GetTempFile returns a path to a temporary file.
func (testCtx *TestContext) GetTempFile(suffix string) string {
	return filepath.Join(testCtx.TempDir, fmt.Sprintf("test-%d%s", time.Now().UnixNano(), suffix))
}

// GetTempDir returns a path to a temporary directory under the
// scenario's temp root.
func (testCtx *TestContext) GetTempDir(prefix string) string {
	return filepath.Join(testCtx.TempDir, fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()))
}

// substituteCommandVariables replaces fixture placeholders in a command
// line with the paths generated for this scenario.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	replacements := map[string]string{
		"{data_dir}":      testCtx.DataDir,
		"{templates_dir}": testCtx.TemplatesDir,
		"{profile}":       testCtx.ProfilePath,
		"{scenes_dir}":    testCtx.ScenesDir,
		"{temp_dir}":      testCtx.TempDir,
	}
	for placeholder, value := range replacements {
		if value != "" {
			command = strings.ReplaceAll(command, placeholder, value)
		}
	}
	return command
}
