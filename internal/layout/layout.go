// Package layout defines the region model for a poker table: named
// normalized rectangles anchored to the client area or to a sub-anchor,
// plus per-card rank/suit zone definitions, loaded from calibrated room
// profiles and resolved against captured frame dimensions.
package layout

import (
	"fmt"
	"image"
	"math"
)

// Card slot names are fixed across all room profiles.
var (
	HeroSlots  = [2]string{"hero_card_1", "hero_card_2"}
	BoardSlots = [5]string{"board_card_1", "board_card_2", "board_card_3", "board_card_4", "board_card_5"}
)

// RectNorm is a rectangle in normalized [0,1] coordinates relative to a base.
type RectNorm struct {
	X float64 `mapstructure:"x" yaml:"x" json:"x"`
	Y float64 `mapstructure:"y" yaml:"y" json:"y"`
	W float64 `mapstructure:"w" yaml:"w" json:"w"`
	H float64 `mapstructure:"h" yaml:"h" json:"h"`
}

// Validate checks that the rectangle lies inside the unit square with a
// positive span.
func (r RectNorm) Validate() error {
	const eps = 1e-6
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("nonpositive span %gx%g", r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("negative origin (%g, %g)", r.X, r.Y)
	}
	if r.X+r.W > 1+eps || r.Y+r.H > 1+eps {
		return fmt.Errorf("extends outside unit square: (%g, %g)+(%g, %g)", r.X, r.Y, r.W, r.H)
	}
	return nil
}

// RegionKind tells the orchestrator which recognizer consumes a region.
type RegionKind string

const (
	KindCard RegionKind = "card"
	KindText RegionKind = "text"
)

// Semantics selects the normalization applied to a text zone's OCR output.
type Semantics string

const (
	SemanticsGeneric Semantics = "generic"
	SemanticsName    Semantics = "name"
	SemanticsPot     Semantics = "pot"
	SemanticsMoney   Semantics = "money"
)

// OCRHint carries per-zone OCR tuning from the calibration profile.
type OCRHint struct {
	Semantics Semantics `mapstructure:"semantics" yaml:"semantics" json:"semantics"`
	Whitelist string    `mapstructure:"whitelist" yaml:"whitelist,omitempty" json:"whitelist,omitempty"`
}

// Base identifies what a region's normalized coordinates are relative to:
// the full client area, or a named anchor.
type Base struct {
	Anchor string // empty means client area
}

// IsClient reports whether the base is the full client area.
func (b Base) IsClient() bool { return b.Anchor == "" }

// Region is a named rectangle of interest within a captured frame.
type Region struct {
	Name string
	Rect RectNorm
	Base Base
	Kind RegionKind
	OCR  *OCRHint
}

// Hint returns the region's OCR hint, substituting generic defaults.
func (r Region) Hint() OCRHint {
	if r.OCR == nil {
		return OCRHint{Semantics: SemanticsGeneric}
	}
	h := *r.OCR
	if h.Semantics == "" {
		h.Semantics = SemanticsGeneric
	}
	return h
}

// Resolve maps the region to pixel coordinates in a frameW x frameH frame.
// Anchored regions resolve within their anchor's pixel rectangle. The result
// is clamped to the frame and must remain non-degenerate.
func (r Region) Resolve(frameW, frameH int, anchors map[string]RectNorm) (image.Rectangle, error) {
	if frameW <= 0 || frameH <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: degenerate frame %dx%d", r.Name, frameW, frameH)
	}

	base := RectNorm{X: 0, Y: 0, W: 1, H: 1}
	if !r.Base.IsClient() {
		a, ok := anchors[r.Base.Anchor]
		if !ok {
			return image.Rectangle{}, fmt.Errorf("region %q: unknown anchor %q", r.Name, r.Base.Anchor)
		}
		base = a
	}

	bx := base.X * float64(frameW)
	by := base.Y * float64(frameH)
	bw := base.W * float64(frameW)
	bh := base.H * float64(frameH)

	x0 := int(math.Round(bx + r.Rect.X*bw))
	y0 := int(math.Round(by + r.Rect.Y*bh))
	x1 := int(math.Round(bx + (r.Rect.X+r.Rect.W)*bw))
	y1 := int(math.Round(by + (r.Rect.Y+r.Rect.H)*bh))

	rect := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, frameW, frameH))
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: resolves to empty rectangle", r.Name)
	}
	return rect, nil
}

// Size is a pixel dimension pair, used for the profile's reference client size.
type Size struct {
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// Profile is a validated room calibration: anchors, regions and card zones.
type Profile struct {
	Name       string
	ClientSize *Size
	Anchors    map[string]RectNorm
	Regions    map[string]Region
	CardZones  map[string]ZoneSet
}

// Region returns the named region.
func (p *Profile) Region(name string) (Region, bool) {
	r, ok := p.Regions[name]
	return r, ok
}

// CardRegions returns the card-kind regions among the fixed slot names, in
// hero-then-board order. Missing slots are simply absent.
func (p *Profile) CardRegions() []Region {
	out := make([]Region, 0, len(HeroSlots)+len(BoardSlots))
	for _, name := range HeroSlots {
		if r, ok := p.Regions[name]; ok && r.Kind == KindCard {
			out = append(out, r)
		}
	}
	for _, name := range BoardSlots {
		if r, ok := p.Regions[name]; ok && r.Kind == KindCard {
			out = append(out, r)
		}
	}
	return out
}

// TextRegions returns all text-kind regions.
func (p *Profile) TextRegions() []Region {
	out := make([]Region, 0, len(p.Regions))
	for _, r := range p.Regions {
		if r.Kind == KindText {
			out = append(out, r)
		}
	}
	return out
}

// ZonesFor returns the card zone set for a slot, falling back to the
// "default" entry. The second return reports whether any set was found.
func (p *Profile) ZonesFor(slot string) (ZoneSet, bool) {
	if zs, ok := p.CardZones[slot]; ok {
		return zs, true
	}
	zs, ok := p.CardZones["default"]
	return zs, ok
}

// IsHeroSlot reports whether the slot name is one of the hero card slots.
func IsHeroSlot(name string) bool {
	for _, s := range HeroSlots {
		if s == name {
			return true
		}
	}
	return false
}
