package textrec

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/utils"
)

// Config holds the text recognizer tuning parameters.
type Config struct {
	// MinDetectionConfidence is the permissive floor for keeping an
	// individual OCR detection.
	MinDetectionConfidence float64

	// ValidConfidence is the stricter floor a zone's mean confidence
	// must clear for the result to count as valid.
	ValidConfidence float64

	// UpscaleFloorPx is the minimum crop height fed to OCR.
	UpscaleFloorPx int

	// CLAHEClip and CLAHETiles parameterize contrast enhancement; the
	// tile count suits small zones.
	CLAHEClip  float64
	CLAHETiles int

	// ThresholdWindow and ThresholdBias parameterize adaptive
	// binarization; CloseKernel sizes the gap-filling close.
	ThresholdWindow int
	ThresholdBias   float64
	CloseKernel     int

	// EMAAlpha weights new readings in the per-zone moving average;
	// MaxRelativeJump is the relative-change ceiling above which a
	// reading is discarded as a glitch.
	EMAAlpha        float64
	MaxRelativeJump float64

	// SanityCeiling rejects numeric reads at or above it as corrupted.
	SanityCeiling float64

	Engine EngineConfig
}

// DefaultConfig returns the nominal tuning.
func DefaultConfig() Config {
	return Config{
		MinDetectionConfidence: 0.5,
		ValidConfidence:        0.6,
		UpscaleFloorPx:         50,
		CLAHEClip:              2.0,
		CLAHETiles:             4,
		ThresholdWindow:        15,
		ThresholdBias:          2,
		CloseKernel:            2,
		EMAAlpha:               0.15,
		MaxRelativeJump:        0.30,
		SanityCeiling:          1e6,
		Engine:                 DefaultEngineConfig(),
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("detection confidence floor must be in [0,1], got %g", c.MinDetectionConfidence)
	}
	if c.ValidConfidence < 0 || c.ValidConfidence > 1 {
		return fmt.Errorf("validity confidence floor must be in [0,1], got %g", c.ValidConfidence)
	}
	if c.UpscaleFloorPx <= 0 {
		return fmt.Errorf("upscale floor must be positive, got %d", c.UpscaleFloorPx)
	}
	if c.CLAHEClip <= 0 {
		return fmt.Errorf("CLAHE clip limit must be positive, got %g", c.CLAHEClip)
	}
	if c.CLAHETiles < 1 {
		return fmt.Errorf("CLAHE tile count must be at least 1, got %d", c.CLAHETiles)
	}
	if c.ThresholdWindow < 3 {
		return fmt.Errorf("threshold window must be at least 3, got %d", c.ThresholdWindow)
	}
	if c.CloseKernel < 1 {
		return fmt.Errorf("close kernel must be at least 1, got %d", c.CloseKernel)
	}
	if c.EMAAlpha <= 0 || c.EMAAlpha > 1 {
		return fmt.Errorf("EMA alpha must be in (0,1], got %g", c.EMAAlpha)
	}
	if c.MaxRelativeJump <= 0 {
		return fmt.Errorf("relative jump ceiling must be positive, got %g", c.MaxRelativeJump)
	}
	if c.SanityCeiling <= 0 {
		return fmt.Errorf("sanity ceiling must be positive, got %g", c.SanityCeiling)
	}
	return nil
}

// TextResult is the outcome of reading one text zone.
type TextResult struct {
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence"`
	Value      Value   `json:"normalized_value"`
	IsValid    bool    `json:"is_valid"`
	RawText    string  `json:"raw_ocr_text,omitempty"`
}

// Recognizer reads the text zones of a table frame: crop, preprocess,
// OCR, semantic normalization, temporal smoothing. The smoothing state
// belongs to the calling goroutine; the engine serializes internally.
type Recognizer struct {
	config     Config
	engine     Engine
	stabilizer *Stabilizer
}

// NewRecognizer builds a text recognizer around an OCR engine. A nil
// engine constructs the backend named by config.Engine, and backend
// unavailability is an error here, never per frame.
func NewRecognizer(config Config, engine Engine) (*Recognizer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid text recognizer config: %w", err)
	}
	if engine == nil {
		var err error
		engine, err = NewEngine(config.Engine)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OCR engine: %w", err)
		}
	}

	slog.Debug("Text recognizer initialized",
		"engine", config.Engine.Kind,
		"detection_floor", config.MinDetectionConfidence,
		"ema_alpha", config.EMAAlpha)
	return &Recognizer{
		config:     config,
		engine:     engine,
		stabilizer: NewStabilizer(config.EMAAlpha, config.MaxRelativeJump),
	}, nil
}

// Config returns a copy of the recognizer's configuration.
func (r *Recognizer) Config() Config {
	return r.config
}

// ResetState drops accumulated smoothing state, for room or layout
// changes where carried-over values would poison the new table.
func (r *Recognizer) ResetState() {
	r.stabilizer.Reset()
}

// Close releases the OCR engine.
func (r *Recognizer) Close() error {
	if r.engine != nil {
		return r.engine.Close()
	}
	return nil
}

// RecognizeZones reads every text region of the profile from a frame.
// Each configured zone yields exactly one entry; zones that fail to
// crop or read come back invalid while the others proceed.
func (r *Recognizer) RecognizeZones(frame image.Image, profile *layout.Profile) (map[string]TextResult, error) {
	if frame == nil {
		return nil, errors.New("input frame is nil")
	}
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	bounds := frame.Bounds()
	results := make(map[string]TextResult)
	for _, region := range profile.TextRegions() {
		results[region.Name] = r.recognizeZone(frame, bounds.Dx(), bounds.Dy(), profile, region)
	}
	return results, nil
}

func (r *Recognizer) recognizeZone(
	frame image.Image,
	frameW, frameH int,
	profile *layout.Profile,
	region layout.Region,
) TextResult {
	rect, err := region.Resolve(frameW, frameH, profile.Anchors)
	if err != nil {
		slog.Debug("Text zone did not resolve", "zone", region.Name, "error", err)
		return TextResult{}
	}
	crop, err := utils.CropImage(frame, rect)
	if err != nil {
		slog.Debug("Text zone crop failed", "zone", region.Name, "error", err)
		return TextResult{}
	}
	prepared, err := PreprocessZone(crop, r.config)
	if err != nil {
		slog.Debug("Text zone preprocessing failed", "zone", region.Name, "error", err)
		return TextResult{}
	}

	hint := region.Hint()
	detections, err := r.engine.Recognize(prepared, hint.Whitelist)
	if err != nil {
		slog.Debug("OCR failed for text zone", "zone", region.Name, "error", err)
		return TextResult{}
	}

	raw, confidence := joinDetections(detections, r.config.MinDetectionConfidence)
	value := Normalize(hint.Semantics, raw)

	// Smooth only sane numeric reads: a corrupted value must neither
	// seed nor drag the zone's moving average.
	if value.OK && value.IsNum && value.Num >= 0 && value.Num < r.config.SanityCeiling {
		value.Num = r.stabilizer.Apply(region.Name, value.Num)
	}

	valid := confidence >= r.config.ValidConfidence && value.OK
	if value.IsNum {
		valid = valid && value.Num >= 0 && value.Num < r.config.SanityCeiling
	}

	return TextResult{
		Text:       value.String(),
		Confidence: confidence,
		Value:      value,
		IsValid:    valid,
		RawText:    raw,
	}
}

// joinDetections concatenates detections above the confidence floor
// with single spaces and averages their confidences.
func joinDetections(detections []Detection, floor float64) (string, float64) {
	parts := make([]string, 0, len(detections))
	var sum float64
	for _, d := range detections {
		if d.Confidence < floor {
			continue
		}
		parts = append(parts, d.Text)
		sum += d.Confidence
	}
	if len(parts) == 0 {
		return "", 0
	}
	return strings.Join(parts, " "), sum / float64(len(parts))
}
