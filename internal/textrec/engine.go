// Package textrec reads the text zones of a poker table frame: monetary
// amounts and player names are cropped, preprocessed, run through an OCR
// engine, normalized by zone semantics and smoothed across cycles.
package textrec

import (
	"fmt"
	"image"
)

// Detection is a single OCR hit inside a preprocessed crop.
type Detection struct {
	Text       string
	Confidence float64 // in [0,1]
}

// Engine runs OCR over a preprocessed crop. The whitelist restricts the
// character set where the backend supports it; empty means unrestricted.
// Implementations own their runtime handle and serialize access
// internally.
type Engine interface {
	Recognize(img image.Image, whitelist string) ([]Detection, error)
	Close() error
}

// EngineKind selects the OCR backend.
type EngineKind string

const (
	EngineTesseract EngineKind = "tesseract"
	EngineONNX      EngineKind = "onnx"
)

// EngineConfig selects and configures the OCR backend.
type EngineConfig struct {
	Kind     EngineKind
	Language string // tesseract language code (default "eng")

	// ONNX backend settings.
	ModelPath   string // text-line recognition model
	DictPath    string // character dictionary, one token per line
	ImageHeight int    // model input height; 0 adopts the model's fixed height
	NumThreads  int    // intra-op CPU threads; 0 keeps the runtime default
	UseGPU      bool
}

// DefaultEngineConfig returns the Tesseract backend reading English.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Kind:     EngineTesseract,
		Language: "eng",
	}
}

// NewEngine constructs the configured OCR backend. Backend
// unavailability surfaces here, once, not per frame.
func NewEngine(config EngineConfig) (Engine, error) {
	switch config.Kind {
	case "", EngineTesseract:
		return NewTesseractEngine(config)
	case EngineONNX:
		return NewONNXEngine(config)
	default:
		return nil, fmt.Errorf("unknown OCR engine kind %q", config.Kind)
	}
}
