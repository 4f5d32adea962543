package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "tablesight"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "TABLESIGHT"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	// Use the global viper instance to ensure flag bindings work
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader over a specific viper instance. Tests
// use this to avoid touching global state.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables and
// defaults, then validates it. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")

	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults, env vars and flags still apply.
	}

	return l.unmarshal()
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	// Current directory
	l.v.AddConfigPath(".")

	// User's home directory
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	// System-wide configuration
	l.v.AddConfigPath("/etc/tablesight")

	// XDG config directory
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "tablesight"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "tablesight"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()

	// Replace dots and dashes with underscores in env var names
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	// Global settings
	l.v.SetDefault("profile", defaults.ProfilePath)
	l.v.SetDefault("templates_dir", defaults.TemplatesDir)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("log_format", defaults.LogFormat)

	// Capture defaults
	l.v.SetDefault("capture.source", defaults.Capture.Source)
	l.v.SetDefault("capture.path", defaults.Capture.Path)
	l.v.SetDefault("capture.loop", defaults.Capture.Loop)

	// Card recognizer defaults
	l.v.SetDefault("cards.canonical_size", defaults.Cards.CanonicalSize)
	l.v.SetDefault("cards.blank_std", defaults.Cards.BlankStd)
	l.v.SetDefault("cards.edge_std", defaults.Cards.EdgeStd)
	l.v.SetDefault("cards.edge_low", defaults.Cards.EdgeLow)
	l.v.SetDefault("cards.edge_high", defaults.Cards.EdgeHigh)
	l.v.SetDefault("cards.board_gate.min_score", defaults.Cards.BoardGate.MinScore)
	l.v.SetDefault("cards.board_gate.min_margin", defaults.Cards.BoardGate.MinMargin)
	l.v.SetDefault("cards.hero_gate.min_score", defaults.Cards.HeroGate.MinScore)
	l.v.SetDefault("cards.hero_gate.min_margin", defaults.Cards.HeroGate.MinMargin)
	l.v.SetDefault("cards.nominal_gate.min_score", defaults.Cards.NominalGate.MinScore)
	l.v.SetDefault("cards.nominal_gate.min_margin", defaults.Cards.NominalGate.MinMargin)
	l.v.SetDefault("cards.strict", defaults.Cards.Strict)
	l.v.SetDefault("cards.sigmoid_alpha", defaults.Cards.SigmoidAlpha)
	l.v.SetDefault("cards.sigmoid_beta", defaults.Cards.SigmoidBeta)
	l.v.SetDefault("cards.uncertain_below", defaults.Cards.UncertainBelow)

	// Text recognizer defaults
	l.v.SetDefault("text.min_detection_confidence", defaults.Text.MinDetectionConfidence)
	l.v.SetDefault("text.valid_confidence", defaults.Text.ValidConfidence)
	l.v.SetDefault("text.upscale_floor_px", defaults.Text.UpscaleFloorPx)
	l.v.SetDefault("text.clahe_clip", defaults.Text.CLAHEClip)
	l.v.SetDefault("text.clahe_tiles", defaults.Text.CLAHETiles)
	l.v.SetDefault("text.threshold_window", defaults.Text.ThresholdWindow)
	l.v.SetDefault("text.threshold_bias", defaults.Text.ThresholdBias)
	l.v.SetDefault("text.close_kernel", defaults.Text.CloseKernel)
	l.v.SetDefault("text.ema_alpha", defaults.Text.EMAAlpha)
	l.v.SetDefault("text.max_relative_jump", defaults.Text.MaxRelativeJump)
	l.v.SetDefault("text.sanity_ceiling", defaults.Text.SanityCeiling)
	l.v.SetDefault("text.engine.kind", defaults.Text.Engine.Kind)
	l.v.SetDefault("text.engine.language", defaults.Text.Engine.Language)
	l.v.SetDefault("text.engine.model_path", defaults.Text.Engine.ModelPath)
	l.v.SetDefault("text.engine.dict_path", defaults.Text.Engine.DictPath)
	l.v.SetDefault("text.engine.image_height", defaults.Text.Engine.ImageHeight)
	l.v.SetDefault("text.engine.num_threads", defaults.Text.Engine.NumThreads)
	l.v.SetDefault("text.engine.use_gpu", defaults.Text.Engine.UseGPU)

	// Recognition loop defaults
	l.v.SetDefault("recognition.interval", defaults.Recognition.Interval)

	// Server defaults
	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.push_interval", defaults.Server.PushInterval)

	// Output defaults
	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "tablesight"))
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "tablesight"))
	}

	paths = append(paths, "/etc/tablesight")

	return paths
}

// GenerateDefaultConfigFile writes a config file holding the defaults.
func GenerateDefaultConfigFile(filename string) error {
	loader := NewLoaderWith(viper.New())
	loader.setDefaults()

	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}

	return loader.v.WriteConfigAs(filename)
}
