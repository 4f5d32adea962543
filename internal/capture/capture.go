// Package capture abstracts the frame supply for the recognition loop:
// a screen grabber in production, file and directory replays for
// development and tests.
package capture

import (
	"errors"
	"image"
)

// ErrNoFrame reports a transiently missing frame. Callers skip the
// cycle instead of treating it as a failure.
var ErrNoFrame = errors.New("no frame available")

// Source supplies frames to the recognition loop. Implementations are
// not safe for concurrent use; the loop owns its source.
type Source interface {
	// CaptureFrame returns the next frame. Frames may be shared and
	// must be treated as read-only.
	CaptureFrame() (*image.RGBA, error)

	// Bounds reports the frame dimensions the source produces.
	Bounds() image.Rectangle

	Close() error
}
