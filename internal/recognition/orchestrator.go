// Package recognition orchestrates the per-frame cycle: capture, card
// and text recognition, street tracking, frame assembly and publishing.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/tablesight/tablesight/internal/capture"
	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/layout"
	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/textrec"
)

// DefaultInterval is the recognition cadence when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Builder assembles an Orchestrator with fluent configuration.
type Builder struct {
	profile    *layout.Profile
	store      *templates.Store
	cardConfig cards.Config
	textConfig textrec.Config
	engine     textrec.Engine
	source     capture.Source
	interval   time.Duration
}

// NewBuilder starts a builder with default recognizer tuning and the
// default cadence.
func NewBuilder() *Builder {
	return &Builder{
		cardConfig: cards.DefaultConfig(),
		textConfig: textrec.DefaultConfig(),
		interval:   DefaultInterval,
	}
}

// WithProfile sets the room profile.
func (b *Builder) WithProfile(p *layout.Profile) *Builder {
	b.profile = p
	return b
}

// WithTemplates sets the card template store.
func (b *Builder) WithTemplates(s *templates.Store) *Builder {
	b.store = s
	return b
}

// WithCardConfig overrides the card recognizer tuning.
func (b *Builder) WithCardConfig(c cards.Config) *Builder {
	b.cardConfig = c
	return b
}

// WithTextConfig overrides the text recognizer tuning.
func (b *Builder) WithTextConfig(c textrec.Config) *Builder {
	b.textConfig = c
	return b
}

// WithEngine injects an OCR engine, overriding the backend the text
// config names. Tests and the demo server use this.
func (b *Builder) WithEngine(e textrec.Engine) *Builder {
	b.engine = e
	return b
}

// WithCapture sets the frame source. The orchestrator takes ownership
// and closes it.
func (b *Builder) WithCapture(src capture.Source) *Builder {
	b.source = src
	return b
}

// WithInterval sets the recognition cadence if positive.
func (b *Builder) WithInterval(d time.Duration) *Builder {
	if d > 0 {
		b.interval = d
	}
	return b
}

// Validate checks the builder holds everything Build needs.
func (b *Builder) Validate() error {
	if b.profile == nil {
		return errors.New("profile is required")
	}
	if b.store == nil {
		return errors.New("template store is required")
	}
	if b.source == nil {
		return errors.New("capture source is required")
	}
	if b.interval <= 0 {
		return errors.New("interval must be positive")
	}
	return nil
}

// Build initializes the recognizers and wires the orchestrator.
func (b *Builder) Build() (*Orchestrator, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	cardRec, err := cards.NewRecognizer(b.cardConfig, b.store)
	if err != nil {
		return nil, fmt.Errorf("init card recognizer: %w", err)
	}
	textRec, err := textrec.NewRecognizer(b.textConfig, b.engine)
	if err != nil {
		return nil, fmt.Errorf("init text recognizer: %w", err)
	}

	slog.Info("Recognition orchestrator ready",
		"profile", b.profile.Name,
		"rank_templates", len(b.store.Ranks()),
		"suit_templates", len(b.store.Suits()),
		"interval", b.interval)
	return &Orchestrator{
		profile:  b.profile,
		source:   b.source,
		cards:    cardRec,
		text:     textRec,
		tracker:  NewStreetTracker(),
		interval: b.interval,
	}, nil
}

// Orchestrator runs the per-frame recognition cycle and publishes
// frames to its mailbox. RunOnce and Run belong to one producer
// goroutine; Peek is safe from any.
type Orchestrator struct {
	profile  *layout.Profile
	source   capture.Source
	cards    *cards.Recognizer
	text     *textrec.Recognizer
	tracker  *StreetTracker
	mailbox  Mailbox
	interval time.Duration
}

// RunOnce recognizes a single frame and publishes it.
func (o *Orchestrator) RunOnce(img image.Image) (*Frame, error) {
	if img == nil {
		return nil, errors.New("input frame is nil")
	}
	start := time.Now()

	cardResult, err := o.cards.RecognizeAll(img, o.profile)
	if err != nil {
		return nil, fmt.Errorf("card recognition: %w", err)
	}
	ocrStart := time.Now()
	textResults, err := o.text.RecognizeZones(img, o.profile)
	if err != nil {
		return nil, fmt.Errorf("text recognition: %w", err)
	}
	ocrDuration.Observe(time.Since(ocrStart).Seconds())

	frame := &Frame{
		Timestamp:   time.Now().UTC(),
		Street:      o.tracker.Observe(cardResult.BoardCount()),
		HeroCards:   cardResult.Hero,
		BoardCards:  cardResult.Board,
		TextResults: textResults,
	}
	o.mailbox.Publish(frame)

	framesTotal.Inc()
	frameDuration.Observe(time.Since(start).Seconds())
	uncertainSlotsTotal.Add(float64(countUncertain(cardResult)))
	boardCardsVisible.Set(float64(cardResult.BoardCount()))
	validTextZones.Set(float64(countValid(textResults)))
	currentStreet.Set(streetIndex(frame.Street))
	return frame, nil
}

func countUncertain(r cards.Result) int {
	n := 0
	for _, c := range r.Hero {
		if c.IsUncertain {
			n++
		}
	}
	for _, c := range r.Board {
		if c.IsUncertain {
			n++
		}
	}
	return n
}

func countValid(results map[string]textrec.TextResult) int {
	n := 0
	for _, r := range results {
		if r.IsValid {
			n++
		}
	}
	return n
}

// Run captures and recognizes at the configured cadence until ctx is
// done. A failed capture skips the cycle; a failed recognition is
// logged and counted, never fatal.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	slog.Info("Recognition loop started", "interval", o.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Recognition loop stopped")
			return ctx.Err()
		case <-ticker.C:
			img, err := o.source.CaptureFrame()
			if err == nil && img == nil {
				err = capture.ErrNoFrame
			}
			if err != nil {
				captureFailuresTotal.Inc()
				slog.Debug("No frame this cycle", "error", err)
				continue
			}
			if _, err := o.RunOnce(img); err != nil {
				recognitionFailuresTotal.Inc()
				slog.Warn("Recognition cycle failed", "error", err)
			}
		}
	}
}

// Peek returns the latest published frame.
func (o *Orchestrator) Peek() (*Frame, bool) { return o.mailbox.Peek() }

// Profile returns the active room profile.
func (o *Orchestrator) Profile() *layout.Profile { return o.profile }

// Interval returns the recognition cadence.
func (o *Orchestrator) Interval() time.Duration { return o.interval }

// Close releases the text recognizer and the capture source. Call only
// after Run has returned.
func (o *Orchestrator) Close() error {
	var firstErr error
	if o.text != nil {
		if err := o.text.Close(); err != nil {
			firstErr = err
		}
		o.text = nil
	}
	if o.source != nil {
		if err := o.source.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		o.source = nil
	}
	return firstErr
}
