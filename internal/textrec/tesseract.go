package textrec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine reads text through a persistent Tesseract client. The
// client is stateful and not reentrant; a mutex serializes calls.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine starts a Tesseract client tuned for sparse in-game
// text. Configuration failures are fatal here so callers see engine
// unavailability once, at construction, not per frame.
func NewTesseractEngine(config EngineConfig) (*TesseractEngine, error) {
	client := gosseract.NewClient()

	lang := config.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	// Amounts and nicknames are not dictionary words; stop Tesseract
	// from "correcting" them into English.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	slog.Debug("Tesseract OCR engine initialized", "language", lang)
	return &TesseractEngine{client: client}, nil
}

// Recognize runs word-level OCR over the crop and returns one detection
// per word with its confidence normalized from Tesseract's percent
// scale.
func (e *TesseractEngine) Recognize(img image.Image, whitelist string) ([]Detection, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil, errors.New("tesseract client is closed")
	}

	if err := e.client.SetWhitelist(whitelist); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		detections = append(detections, Detection{
			Text:       word,
			Confidence: box.Confidence / 100,
		})
	}
	return detections, nil
}

// Close releases the Tesseract client. Safe to call more than once.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
