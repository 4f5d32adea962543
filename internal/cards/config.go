package cards

import (
	"fmt"

	"github.com/tablesight/tablesight/internal/templates"
)

// Gate is a validity threshold pair for accepting a family match.
type Gate struct {
	MinScore  float64
	MinMargin float64
}

// Accept reports whether a top-1 score and margin pass the gate.
func (g Gate) Accept(score, margin float64) bool {
	return score >= g.MinScore && margin >= g.MinMargin
}

// Config holds the card recognizer tuning parameters. The gate values are
// empirically tuned starting points, not law; recalibrate them against a
// labeled capture set when onboarding a new room skin.
type Config struct {
	// CanonicalSize is the square edge probes and templates are resized to.
	CanonicalSize int

	// BlankStd is the activity floor: when both sub-zones sit below it the
	// slot is treated as empty rather than matched.
	BlankStd float64

	// EdgeStd is the low-texture bound below which a sub-zone is replaced
	// with its Canny edge map before matching.
	EdgeStd float64

	// EdgeLow and EdgeHigh are the hysteresis thresholds for that edge map.
	EdgeLow  float32
	EdgeHigh float32

	// BoardGate and HeroGate are permissive per-slot floors. NominalGate is
	// the stricter pair enforced instead when Strict is set.
	BoardGate   Gate
	HeroGate    Gate
	NominalGate Gate
	Strict      bool

	// SigmoidAlpha and SigmoidBeta weight score and margin in the
	// confidence transform.
	SigmoidAlpha float64
	SigmoidBeta  float64

	// UncertainBelow marks results whose combined confidence falls under it.
	UncertainBelow float64
}

// DefaultConfig returns the nominal tuning.
func DefaultConfig() Config {
	return Config{
		CanonicalSize:  templates.DefaultCanonicalSize,
		BlankStd:       2.0,
		EdgeStd:        1.2,
		EdgeLow:        40,
		EdgeHigh:       100,
		BoardGate:      Gate{MinScore: 0.12, MinMargin: 0.01},
		HeroGate:       Gate{MinScore: 0.15, MinMargin: 0.02},
		NominalGate:    Gate{MinScore: 0.35, MinMargin: 0.07},
		SigmoidAlpha:   2.0,
		SigmoidBeta:    1.5,
		UncertainBelow: 0.3,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.CanonicalSize <= 0 {
		return fmt.Errorf("canonical size must be positive, got %d", c.CanonicalSize)
	}
	if c.BlankStd < 0 || c.EdgeStd < 0 {
		return fmt.Errorf("activity floors must be non-negative")
	}
	for _, g := range []Gate{c.BoardGate, c.HeroGate, c.NominalGate} {
		if g.MinScore < 0 || g.MinMargin < 0 {
			return fmt.Errorf("gate thresholds must be non-negative")
		}
	}
	if c.UncertainBelow < 0 || c.UncertainBelow > 1 {
		return fmt.Errorf("uncertainty threshold must be in [0,1], got %g", c.UncertainBelow)
	}
	return nil
}

// GateFor returns the gate enforced for a slot: the hero or board floor, or
// the nominal pair when strict mode is on.
func (c Config) GateFor(heroSlot bool) Gate {
	if c.Strict {
		return c.NominalGate
	}
	if heroSlot {
		return c.HeroGate
	}
	return c.BoardGate
}
