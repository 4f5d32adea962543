// Package config holds the application configuration: structs with
// file/env/flag bindings, defaults derived from the component packages,
// validation, and bridges into the per-package tuning types.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/server"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/textrec"
)

// Config represents the complete configuration for the tablesight
// application. It covers all commands (recognize, watch, serve) and
// loads from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	ProfilePath  string `mapstructure:"profile" yaml:"profile" json:"profile"`
	TemplatesDir string `mapstructure:"templates_dir" yaml:"templates_dir" json:"templates_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	// Capture source selection
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture" json:"capture"`

	// Card recognizer tuning
	Cards CardsConfig `mapstructure:"cards" yaml:"cards" json:"cards"`

	// Text recognizer tuning
	Text TextConfig `mapstructure:"text" yaml:"text" json:"text"`

	// Recognition loop settings
	Recognition RecognitionConfig `mapstructure:"recognition" yaml:"recognition" json:"recognition"`

	// Preview server settings (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// CaptureConfig selects where frames come from.
type CaptureConfig struct {
	// Source is "file" (one image, repeated) or "dir" (lexically sorted
	// replay).
	Source string `mapstructure:"source" yaml:"source" json:"source"`
	Path   string `mapstructure:"path" yaml:"path" json:"path"`
	Loop   bool   `mapstructure:"loop" yaml:"loop" json:"loop"`
}

// GateConfig is a score/margin acceptance pair.
type GateConfig struct {
	MinScore  float64 `mapstructure:"min_score" yaml:"min_score" json:"min_score"`
	MinMargin float64 `mapstructure:"min_margin" yaml:"min_margin" json:"min_margin"`
}

// CardsConfig contains card template matching settings.
type CardsConfig struct {
	CanonicalSize  int        `mapstructure:"canonical_size" yaml:"canonical_size" json:"canonical_size"`
	BlankStd       float64    `mapstructure:"blank_std" yaml:"blank_std" json:"blank_std"`
	EdgeStd        float64    `mapstructure:"edge_std" yaml:"edge_std" json:"edge_std"`
	EdgeLow        float64    `mapstructure:"edge_low" yaml:"edge_low" json:"edge_low"`
	EdgeHigh       float64    `mapstructure:"edge_high" yaml:"edge_high" json:"edge_high"`
	BoardGate      GateConfig `mapstructure:"board_gate" yaml:"board_gate" json:"board_gate"`
	HeroGate       GateConfig `mapstructure:"hero_gate" yaml:"hero_gate" json:"hero_gate"`
	NominalGate    GateConfig `mapstructure:"nominal_gate" yaml:"nominal_gate" json:"nominal_gate"`
	Strict         bool       `mapstructure:"strict" yaml:"strict" json:"strict"`
	SigmoidAlpha   float64    `mapstructure:"sigmoid_alpha" yaml:"sigmoid_alpha" json:"sigmoid_alpha"`
	SigmoidBeta    float64    `mapstructure:"sigmoid_beta" yaml:"sigmoid_beta" json:"sigmoid_beta"`
	UncertainBelow float64    `mapstructure:"uncertain_below" yaml:"uncertain_below" json:"uncertain_below"`
}

// TextConfig contains OCR and smoothing settings.
type TextConfig struct {
	MinDetectionConfidence float64      `mapstructure:"min_detection_confidence" yaml:"min_detection_confidence" json:"min_detection_confidence"`
	ValidConfidence        float64      `mapstructure:"valid_confidence" yaml:"valid_confidence" json:"valid_confidence"`
	UpscaleFloorPx         int          `mapstructure:"upscale_floor_px" yaml:"upscale_floor_px" json:"upscale_floor_px"`
	CLAHEClip              float64      `mapstructure:"clahe_clip" yaml:"clahe_clip" json:"clahe_clip"`
	CLAHETiles             int          `mapstructure:"clahe_tiles" yaml:"clahe_tiles" json:"clahe_tiles"`
	ThresholdWindow        int          `mapstructure:"threshold_window" yaml:"threshold_window" json:"threshold_window"`
	ThresholdBias          float64      `mapstructure:"threshold_bias" yaml:"threshold_bias" json:"threshold_bias"`
	CloseKernel            int          `mapstructure:"close_kernel" yaml:"close_kernel" json:"close_kernel"`
	EMAAlpha               float64      `mapstructure:"ema_alpha" yaml:"ema_alpha" json:"ema_alpha"`
	MaxRelativeJump        float64      `mapstructure:"max_relative_jump" yaml:"max_relative_jump" json:"max_relative_jump"`
	SanityCeiling          float64      `mapstructure:"sanity_ceiling" yaml:"sanity_ceiling" json:"sanity_ceiling"`
	Engine                 EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`
}

// EngineConfig selects and configures the OCR backend.
type EngineConfig struct {
	Kind        string `mapstructure:"kind" yaml:"kind" json:"kind"`
	Language    string `mapstructure:"language" yaml:"language" json:"language"`
	ModelPath   string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	DictPath    string `mapstructure:"dict_path" yaml:"dict_path" json:"dict_path"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	NumThreads  int    `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	UseGPU      bool   `mapstructure:"use_gpu" yaml:"use_gpu" json:"use_gpu"`
}

// RecognitionConfig contains loop settings.
type RecognitionConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host" json:"host"`
	Port         int           `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin   string        `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	PushInterval time.Duration `mapstructure:"push_interval" yaml:"push_interval" json:"push_interval"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration with the component defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Capture: CaptureConfig{
			Source: "file",
			Loop:   true,
		},
		Cards:       defaultCardsConfig(),
		Text:        defaultTextConfig(),
		Recognition: RecognitionConfig{Interval: recognition.DefaultInterval},
		Server:      defaultServerConfig(),
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// defaultCardsConfig mirrors the card recognizer's nominal tuning.
func defaultCardsConfig() CardsConfig {
	cfg := cards.DefaultConfig()
	return CardsConfig{
		CanonicalSize:  cfg.CanonicalSize,
		BlankStd:       cfg.BlankStd,
		EdgeStd:        cfg.EdgeStd,
		EdgeLow:        float64(cfg.EdgeLow),
		EdgeHigh:       float64(cfg.EdgeHigh),
		BoardGate:      GateConfig{MinScore: cfg.BoardGate.MinScore, MinMargin: cfg.BoardGate.MinMargin},
		HeroGate:       GateConfig{MinScore: cfg.HeroGate.MinScore, MinMargin: cfg.HeroGate.MinMargin},
		NominalGate:    GateConfig{MinScore: cfg.NominalGate.MinScore, MinMargin: cfg.NominalGate.MinMargin},
		Strict:         cfg.Strict,
		SigmoidAlpha:   cfg.SigmoidAlpha,
		SigmoidBeta:    cfg.SigmoidBeta,
		UncertainBelow: cfg.UncertainBelow,
	}
}

// defaultTextConfig mirrors the text recognizer's nominal tuning.
func defaultTextConfig() TextConfig {
	cfg := textrec.DefaultConfig()
	return TextConfig{
		MinDetectionConfidence: cfg.MinDetectionConfidence,
		ValidConfidence:        cfg.ValidConfidence,
		UpscaleFloorPx:         cfg.UpscaleFloorPx,
		CLAHEClip:              cfg.CLAHEClip,
		CLAHETiles:             cfg.CLAHETiles,
		ThresholdWindow:        cfg.ThresholdWindow,
		ThresholdBias:          cfg.ThresholdBias,
		CloseKernel:            cfg.CloseKernel,
		EMAAlpha:               cfg.EMAAlpha,
		MaxRelativeJump:        cfg.MaxRelativeJump,
		SanityCeiling:          cfg.SanityCeiling,
		Engine: EngineConfig{
			Kind:     string(cfg.Engine.Kind),
			Language: cfg.Engine.Language,
		},
	}
}

// defaultServerConfig mirrors the preview server defaults.
func defaultServerConfig() ServerConfig {
	cfg := server.DefaultConfig()
	return ServerConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		CORSOrigin:   cfg.CORSOrigin,
		PushInterval: cfg.PushInterval,
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.LogFormat, strings.Join(validLogFormats, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	validSources := []string{"", "file", "dir"}
	if !contains(validSources, c.Capture.Source) {
		return fmt.Errorf("invalid capture source: %s (must be one of: file, dir)", c.Capture.Source)
	}

	validEngines := []string{"", string(textrec.EngineTesseract), string(textrec.EngineONNX)}
	if !contains(validEngines, c.Text.Engine.Kind) {
		return fmt.Errorf("invalid OCR engine kind: %s (must be one of: tesseract, onnx)", c.Text.Engine.Kind)
	}

	if c.Recognition.Interval <= 0 {
		return fmt.Errorf("invalid recognition interval: %s (must be positive)", c.Recognition.Interval)
	}

	if err := c.ToCardsConfig().Validate(); err != nil {
		return fmt.Errorf("cards configuration: %w", err)
	}
	if err := c.ToTextConfig().Validate(); err != nil {
		return fmt.Errorf("text configuration: %w", err)
	}
	if err := c.ToServerConfig().Validate(); err != nil {
		return fmt.Errorf("server configuration: %w", err)
	}

	return nil
}

// ToCardsConfig converts to the card recognizer's tuning type.
func (c *Config) ToCardsConfig() cards.Config {
	return cards.Config{
		CanonicalSize:  c.Cards.CanonicalSize,
		BlankStd:       c.Cards.BlankStd,
		EdgeStd:        c.Cards.EdgeStd,
		EdgeLow:        float32(c.Cards.EdgeLow),
		EdgeHigh:       float32(c.Cards.EdgeHigh),
		BoardGate:      cards.Gate{MinScore: c.Cards.BoardGate.MinScore, MinMargin: c.Cards.BoardGate.MinMargin},
		HeroGate:       cards.Gate{MinScore: c.Cards.HeroGate.MinScore, MinMargin: c.Cards.HeroGate.MinMargin},
		NominalGate:    cards.Gate{MinScore: c.Cards.NominalGate.MinScore, MinMargin: c.Cards.NominalGate.MinMargin},
		Strict:         c.Cards.Strict,
		SigmoidAlpha:   c.Cards.SigmoidAlpha,
		SigmoidBeta:    c.Cards.SigmoidBeta,
		UncertainBelow: c.Cards.UncertainBelow,
	}
}

// ToTextConfig converts to the text recognizer's tuning type.
func (c *Config) ToTextConfig() textrec.Config {
	return textrec.Config{
		MinDetectionConfidence: c.Text.MinDetectionConfidence,
		ValidConfidence:        c.Text.ValidConfidence,
		UpscaleFloorPx:         c.Text.UpscaleFloorPx,
		CLAHEClip:              c.Text.CLAHEClip,
		CLAHETiles:             c.Text.CLAHETiles,
		ThresholdWindow:        c.Text.ThresholdWindow,
		ThresholdBias:          c.Text.ThresholdBias,
		CloseKernel:            c.Text.CloseKernel,
		EMAAlpha:               c.Text.EMAAlpha,
		MaxRelativeJump:        c.Text.MaxRelativeJump,
		SanityCeiling:          c.Text.SanityCeiling,
		Engine: textrec.EngineConfig{
			Kind:        textrec.EngineKind(c.Text.Engine.Kind),
			Language:    c.Text.Engine.Language,
			ModelPath:   c.Text.Engine.ModelPath,
			DictPath:    c.Text.Engine.DictPath,
			ImageHeight: c.Text.Engine.ImageHeight,
			NumThreads:  c.Text.Engine.NumThreads,
			UseGPU:      c.Text.Engine.UseGPU,
		},
	}
}

// ToServerConfig converts to the preview server's configuration type.
func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		CORSOrigin:   c.Server.CORSOrigin,
		PushInterval: c.Server.PushInterval,
	}
}

// ResolveTemplatesDir resolves the template directory: the configured
// path, or the environment/project-root fallback chain.
func (c *Config) ResolveTemplatesDir() string {
	return templates.GetTemplatesDir(c.TemplatesDir)
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
