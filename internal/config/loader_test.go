package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/tablesight/tablesight/internal/recognition"
)

// clearTablesightEnvVars clears all TABLESIGHT_ environment variables so
// ambient shell state cannot leak into the assertions.
func clearTablesightEnvVars() {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, EnvPrefix+"_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) > 0 {
				_ = os.Unsetenv(parts[0]) // Ignore error in cleanup function
			}
		}
	}
}

// newTestLoader returns a loader over a fresh viper instance so tests do
// not share state through the global one.
func newTestLoader() *Loader {
	return NewLoaderWith(viper.New())
}

// TestNewLoader tests loader creation.
func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.v == nil {
		t.Error("Loader viper instance is nil")
	}
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	clearTablesightEnvVars()

	// Change into an empty directory so no stray tablesight.yaml is found.
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }() // Ignore error in cleanup

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Errorf("Load() unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Should get default values
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Recognition.Interval != recognition.DefaultInterval {
		t.Errorf("Expected default interval %s, got %s", recognition.DefaultInterval, cfg.Recognition.Interval)
	}
}

// TestLoadWithValidYAMLFile tests loading from a valid YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	clearTablesightEnvVars()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "tablesight.yaml")

	yamlContent := `
log_level: debug
log_format: json
profile: /profiles/acme-club.json
capture:
  source: dir
  path: /captures/session-01
  loop: false
cards:
  strict: true
  board_gate:
    min_score: 0.2
text:
  engine:
    kind: onnx
    model_path: /models/rec.onnx
    language: deu
recognition:
  interval: 250ms
server:
  host: 0.0.0.0
  port: 9090
  push_interval: 100ms
output:
  format: json
`

	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := newTestLoader()
	cfg, err := loader.LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected log format 'json', got %s", cfg.LogFormat)
	}
	if cfg.ProfilePath != "/profiles/acme-club.json" {
		t.Errorf("Expected profile path '/profiles/acme-club.json', got %s", cfg.ProfilePath)
	}
	if cfg.Capture.Source != "dir" {
		t.Errorf("Expected capture source 'dir', got %s", cfg.Capture.Source)
	}
	if cfg.Capture.Path != "/captures/session-01" {
		t.Errorf("Expected capture path '/captures/session-01', got %s", cfg.Capture.Path)
	}
	if cfg.Capture.Loop {
		t.Error("Expected capture loop to be disabled")
	}
	if !cfg.Cards.Strict {
		t.Error("Expected strict card gating")
	}
	if cfg.Cards.BoardGate.MinScore != 0.2 {
		t.Errorf("Expected board gate min_score 0.2, got %f", cfg.Cards.BoardGate.MinScore)
	}
	if cfg.Text.Engine.Kind != "onnx" {
		t.Errorf("Expected engine kind 'onnx', got %s", cfg.Text.Engine.Kind)
	}
	if cfg.Text.Engine.ModelPath != "/models/rec.onnx" {
		t.Errorf("Expected model path '/models/rec.onnx', got %s", cfg.Text.Engine.ModelPath)
	}
	if cfg.Text.Engine.Language != "deu" {
		t.Errorf("Expected language 'deu', got %s", cfg.Text.Engine.Language)
	}
	if cfg.Recognition.Interval != 250*time.Millisecond {
		t.Errorf("Expected interval 250ms, got %s", cfg.Recognition.Interval)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host '0.0.0.0', got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.PushInterval != 100*time.Millisecond {
		t.Errorf("Expected push interval 100ms, got %s", cfg.Server.PushInterval)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Expected output format 'json', got %s", cfg.Output.Format)
	}

	// Keys the file does not mention keep their defaults.
	if cfg.Cards.CanonicalSize != 56 {
		t.Errorf("Expected default canonical size 56, got %d", cfg.Cards.CanonicalSize)
	}
	if cfg.Text.CLAHETiles != 4 {
		t.Errorf("Expected default CLAHE tiles 4, got %d", cfg.Text.CLAHETiles)
	}
	if cfg.Cards.HeroGate.MinScore != 0.15 {
		t.Errorf("Expected default hero gate min_score 0.15, got %f", cfg.Cards.HeroGate.MinScore)
	}
}

// TestLoadWithInvalidYAMLFile tests loading from a malformed YAML file.
func TestLoadWithInvalidYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "tablesight.yaml")

	invalidYAML := `
log_level: debug
  bad indentation here
    more bad indentation
`

	if err := os.WriteFile(configFile, []byte(invalidYAML), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := newTestLoader()
	_, err := loader.LoadWithFile(configFile)

	if err == nil {
		t.Error("LoadWithFile() expected error for invalid YAML, got nil")
	}
}

// TestLoadWithNonExistentFile tests loading from a non-existent file.
func TestLoadWithNonExistentFile(t *testing.T) {
	loader := newTestLoader()
	_, err := loader.LoadWithFile("/nonexistent/path/to/config.yaml")

	if err == nil {
		t.Fatal("LoadWithFile() expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

// TestLoadWithValidationFailure tests that invalid file values are rejected.
func TestLoadWithValidationFailure(t *testing.T) {
	clearTablesightEnvVars()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "tablesight.yaml")

	yamlContent := `
log_level: invalid_level
server:
  port: 0
`

	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := newTestLoader()
	_, err := loader.LoadWithFile(configFile)

	if err == nil {
		t.Error("LoadWithFile() expected validation error, got nil")
	}
}

// TestEnvironmentVariableOverride tests that environment variables beat
// file values.
func TestEnvironmentVariableOverride(t *testing.T) {
	clearTablesightEnvVars()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "tablesight.yaml")

	yamlContent := `
log_level: warn
server:
  port: 8000
`

	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("TABLESIGHT_LOG_LEVEL", "debug")
	t.Setenv("TABLESIGHT_SERVER_PORT", "9191")

	loader := newTestLoader()
	cfg, err := loader.LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug' from env, got %s", cfg.LogLevel)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Expected port 9191 from env, got %d", cfg.Server.Port)
	}
}

// TestEnvironmentVariableWithUnderscores tests nested keys through the
// dot-to-underscore replacer.
func TestEnvironmentVariableWithUnderscores(t *testing.T) {
	clearTablesightEnvVars()

	t.Setenv("TABLESIGHT_CARDS_UNCERTAIN_BELOW", "0.5")
	t.Setenv("TABLESIGHT_TEXT_ENGINE_LANGUAGE", "deu")
	t.Setenv("TABLESIGHT_SERVER_PUSH_INTERVAL", "250ms")

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }() // Ignore error in cleanup

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	loader := newTestLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cards.UncertainBelow != 0.5 {
		t.Errorf("Expected uncertain_below 0.5 from env, got %f", cfg.Cards.UncertainBelow)
	}
	if cfg.Text.Engine.Language != "deu" {
		t.Errorf("Expected language 'deu' from env, got %s", cfg.Text.Engine.Language)
	}
	if cfg.Server.PushInterval != 250*time.Millisecond {
		t.Errorf("Expected push interval 250ms from env, got %s", cfg.Server.PushInterval)
	}
}

// TestGetSetConfigValues tests Get and Set methods.
func TestGetSetConfigValues(t *testing.T) {
	loader := newTestLoader()

	loader.Set("test_key", "test_value")

	value := loader.Get("test_key")
	if value != "test_value" {
		t.Errorf("Expected 'test_value', got %v", value)
	}
}

// TestGetConfigFileUsed tests getting the config file path.
func TestGetConfigFileUsed(t *testing.T) {
	clearTablesightEnvVars()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "tablesight.yaml")

	yamlContent := `log_level: debug`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	loader := newTestLoader()
	_, err := loader.LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() error: %v", err)
	}

	usedFile := loader.GetConfigFileUsed()
	if usedFile != configFile {
		t.Errorf("Expected config file %s, got %s", configFile, usedFile)
	}
}

// TestGetViper tests getting the viper instance.
func TestGetViper(t *testing.T) {
	loader := newTestLoader()
	v := loader.GetViper()

	if v == nil {
		t.Error("GetViper() returned nil")
	}
	if v != loader.v {
		t.Error("GetViper() returned different instance")
	}
}

// TestGetConfigSearchPaths tests the search path list.
func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()

	if len(paths) == 0 {
		t.Fatal("GetConfigSearchPaths() returned no paths")
	}
	if paths[0] != "." {
		t.Errorf("Expected first search path '.', got %s", paths[0])
	}

	found := false
	for _, p := range paths {
		if p == "/etc/tablesight" {
			found = true
		}
	}
	if !found {
		t.Error("Expected /etc/tablesight in search paths")
	}
}

// TestGenerateDefaultConfigFile tests generating a default config file.
func TestGenerateDefaultConfigFile(t *testing.T) {
	clearTablesightEnvVars()

	tmpDir := t.TempDir()
	outputFile := filepath.Join(tmpDir, "default.yaml")

	if err := GenerateDefaultConfigFile(outputFile); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}

	if _, err := os.Stat(outputFile); os.IsNotExist(err) {
		t.Fatal("Default config file was not generated")
	}

	// The generated file must load back cleanly with the defaults intact.
	loader := newTestLoader()
	cfg, err := loader.LoadWithFile(outputFile)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080 in generated config, got %d", cfg.Server.Port)
	}
	if cfg.Recognition.Interval != recognition.DefaultInterval {
		t.Errorf("Expected interval %s in generated config, got %s", recognition.DefaultInterval, cfg.Recognition.Interval)
	}
}

// TestGenerateDefaultConfigFileWithEmptyFilename tests the default filename.
func TestGenerateDefaultConfigFileWithEmptyFilename(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }() // Ignore error in cleanup

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	if err := GenerateDefaultConfigFile(""); err != nil {
		t.Fatalf("GenerateDefaultConfigFile(\"\") error: %v", err)
	}

	expectedFile := filepath.Join(tmpDir, "tablesight.yaml")
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		t.Error("tablesight.yaml was not created")
	}
}
