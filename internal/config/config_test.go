package config

import (
	"testing"
	"time"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/server"
	"github.com/tablesight/tablesight/internal/textrec"
)

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Global settings
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got %s", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log_format 'text', got %s", cfg.LogFormat)
	}
	if cfg.ProfilePath != "" {
		t.Errorf("Expected empty profile path, got %s", cfg.ProfilePath)
	}

	// Capture defaults
	if cfg.Capture.Source != "file" {
		t.Errorf("Expected capture source 'file', got %s", cfg.Capture.Source)
	}
	if !cfg.Capture.Loop {
		t.Error("Expected capture loop to be enabled by default")
	}

	// Recognition defaults
	if cfg.Recognition.Interval != recognition.DefaultInterval {
		t.Errorf("Expected interval %s, got %s", recognition.DefaultInterval, cfg.Recognition.Interval)
	}

	// Server defaults
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected server host 'localhost', got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.PushInterval != 500*time.Millisecond {
		t.Errorf("Expected push interval 500ms, got %s", cfg.Server.PushInterval)
	}

	// Output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Expected output format 'text', got %s", cfg.Output.Format)
	}
}

// TestDefaultCardsConfig verifies the card matcher defaults survive the
// round trip through the configuration layer.
func TestDefaultCardsConfig(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.ToCardsConfig()
	want := cards.DefaultConfig()
	if got != want {
		t.Errorf("ToCardsConfig() = %+v, want %+v", got, want)
	}
}

// TestDefaultTextConfig verifies the text recognizer defaults survive
// the round trip through the configuration layer.
func TestDefaultTextConfig(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.ToTextConfig()
	want := textrec.DefaultConfig()
	if got != want {
		t.Errorf("ToTextConfig() = %+v, want %+v", got, want)
	}
	if got.Engine.Kind != textrec.EngineTesseract {
		t.Errorf("Expected default engine 'tesseract', got %s", got.Engine.Kind)
	}
}

// TestDefaultServerConfig verifies the preview server defaults survive
// the round trip through the configuration layer.
func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.ToServerConfig()
	want := server.DefaultConfig()
	if got != want {
		t.Errorf("ToServerConfig() = %+v, want %+v", got, want)
	}
}

// TestValidate tests full-config validation.
func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*Config)
		wantError bool
	}{
		{
			name:      "defaults are valid",
			setup:     func(c *Config) {},
			wantError: false,
		},
		{
			name: "invalid log level",
			setup: func(c *Config) {
				c.LogLevel = "loud"
			},
			wantError: true,
		},
		{
			name: "invalid log format",
			setup: func(c *Config) {
				c.LogFormat = "xml"
			},
			wantError: true,
		},
		{
			name: "invalid output format",
			setup: func(c *Config) {
				c.Output.Format = "csv"
			},
			wantError: true,
		},
		{
			name: "empty output format is valid",
			setup: func(c *Config) {
				c.Output.Format = ""
			},
			wantError: false,
		},
		{
			name: "invalid capture source",
			setup: func(c *Config) {
				c.Capture.Source = "camera"
			},
			wantError: true,
		},
		{
			name: "empty capture source is valid",
			setup: func(c *Config) {
				c.Capture.Source = ""
			},
			wantError: false,
		},
		{
			name: "dir capture source is valid",
			setup: func(c *Config) {
				c.Capture.Source = "dir"
			},
			wantError: false,
		},
		{
			name: "invalid engine kind",
			setup: func(c *Config) {
				c.Text.Engine.Kind = "easyocr"
			},
			wantError: true,
		},
		{
			name: "onnx engine kind is valid",
			setup: func(c *Config) {
				c.Text.Engine.Kind = "onnx"
			},
			wantError: false,
		},
		{
			name: "zero recognition interval",
			setup: func(c *Config) {
				c.Recognition.Interval = 0
			},
			wantError: true,
		},
		{
			name: "negative recognition interval",
			setup: func(c *Config) {
				c.Recognition.Interval = -time.Second
			},
			wantError: true,
		},
		{
			name: "negative card gate",
			setup: func(c *Config) {
				c.Cards.BoardGate.MinScore = -0.1
			},
			wantError: true,
		},
		{
			name: "card canonical size zero",
			setup: func(c *Config) {
				c.Cards.CanonicalSize = 0
			},
			wantError: true,
		},
		{
			name: "text confidence out of range",
			setup: func(c *Config) {
				c.Text.ValidConfidence = 2.0
			},
			wantError: true,
		},
		{
			name: "text ema alpha out of range",
			setup: func(c *Config) {
				c.Text.EMAAlpha = 1.5
			},
			wantError: true,
		},
		{
			name: "server port out of range",
			setup: func(c *Config) {
				c.Server.Port = 70000
			},
			wantError: true,
		},
		{
			name: "server push interval zero",
			setup: func(c *Config) {
				c.Server.PushInterval = 0
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

// TestResolveTemplatesDir tests template directory resolution.
func TestResolveTemplatesDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplatesDir = "/custom/templates"

	if got := cfg.ResolveTemplatesDir(); got != "/custom/templates" {
		t.Errorf("Expected configured directory, got %s", got)
	}

	cfg.TemplatesDir = ""
	if got := cfg.ResolveTemplatesDir(); got == "" {
		t.Error("Expected fallback directory, got empty string")
	}
}
