package testutil

import (
	"image"
	"sync"

	"github.com/tablesight/tablesight/internal/textrec"
)

// ScriptedEngine is an OCR engine whose answers are scripted per
// whitelist. Zones that share a whitelist share a reading. Safe for
// concurrent use, so recognition loops can run against it while the
// test inspects call history.
type ScriptedEngine struct {
	mu        sync.Mutex
	responses map[string][]textrec.Detection
	err       error
	closeErr  error
	calls     []string
	closed    bool
}

// NewScriptedEngine returns an engine that answers every zone with
// nothing until readings are scripted.
func NewScriptedEngine() *ScriptedEngine {
	return &ScriptedEngine{responses: map[string][]textrec.Detection{}}
}

// Script sets the reading returned for zones using the given whitelist.
func (e *ScriptedEngine) Script(whitelist, text string, confidence float64) *ScriptedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses[whitelist] = []textrec.Detection{{Text: text, Confidence: confidence}}
	return e
}

// FailWith makes every subsequent Recognize call return err.
func (e *ScriptedEngine) FailWith(err error) *ScriptedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
	return e
}

// FailCloseWith makes Close return err.
func (e *ScriptedEngine) FailCloseWith(err error) *ScriptedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeErr = err
	return e
}

func (e *ScriptedEngine) Recognize(_ image.Image, whitelist string) ([]textrec.Detection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, whitelist)
	if e.err != nil {
		return nil, e.err
	}
	return e.responses[whitelist], nil
}

func (e *ScriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return e.closeErr
}

// Calls returns the whitelists seen so far, in call order.
func (e *ScriptedEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// Closed reports whether Close has been called.
func (e *ScriptedEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
