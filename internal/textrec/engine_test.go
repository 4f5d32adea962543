package textrec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultEngineConfig(t *testing.T) {
	config := DefaultEngineConfig()
	assert.Equal(t, EngineTesseract, config.Kind)
	assert.Equal(t, "eng", config.Language)
}

func TestNewEngineUnknownKind(t *testing.T) {
	_, err := NewEngine(EngineConfig{Kind: "paddle"})
	assert.ErrorContains(t, err, "unknown OCR engine kind")
}

func TestNewEngineONNXRequiresModel(t *testing.T) {
	_, err := NewEngine(EngineConfig{Kind: EngineONNX})
	assert.ErrorContains(t, err, "model path")
}
