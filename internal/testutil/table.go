package testutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/layout"
)

// Whitelists used by the synthetic table profile. Tests scripting an OCR
// engine key their responses on these.
const (
	PotWhitelist   = "0123456789.,"
	MoneyWhitelist = "0123456789.,kKmM€"
	NameWhitelist  = ""
)

// TableProfile returns a calibration profile for a 400x300 synthetic table:
// two hero cards, five board cards, a pot readout and two seats with name
// and stack zones. Zones do not overlap, so cards and text can be painted
// independently.
func TableProfile() *layout.Profile {
	regions := map[string]layout.Region{
		"pot": {
			Name: "pot",
			Kind: layout.KindText,
			Rect: layout.RectNorm{X: 0.40, Y: 0.20, W: 0.20, H: 0.06},
			OCR:  &layout.OCRHint{Semantics: layout.SemanticsPot, Whitelist: PotWhitelist},
		},
		"name_1": {
			Name: "name_1",
			Kind: layout.KindText,
			Rect: layout.RectNorm{X: 0.05, Y: 0.62, W: 0.18, H: 0.05},
			OCR:  &layout.OCRHint{Semantics: layout.SemanticsName, Whitelist: NameWhitelist},
		},
		"stack_1": {
			Name: "stack_1",
			Kind: layout.KindText,
			Rect: layout.RectNorm{X: 0.05, Y: 0.69, W: 0.18, H: 0.05},
			OCR:  &layout.OCRHint{Semantics: layout.SemanticsMoney, Whitelist: MoneyWhitelist},
		},
		"stack_2": {
			Name: "stack_2",
			Kind: layout.KindText,
			Rect: layout.RectNorm{X: 0.77, Y: 0.69, W: 0.18, H: 0.05},
			OCR:  &layout.OCRHint{Semantics: layout.SemanticsMoney, Whitelist: MoneyWhitelist},
		},
	}
	for i, slot := range layout.HeroSlots {
		regions[slot] = layout.Region{
			Name: slot,
			Kind: layout.KindCard,
			Rect: layout.RectNorm{X: 0.36 + 0.12*float64(i), Y: 0.62, W: 0.10, H: 0.20},
		}
	}
	for i, slot := range layout.BoardSlots {
		regions[slot] = layout.Region{
			Name: slot,
			Kind: layout.KindCard,
			Rect: layout.RectNorm{X: 0.20 + 0.12*float64(i), Y: 0.30, W: 0.10, H: 0.20},
		}
	}
	return &layout.Profile{
		Name:       "synthetic-table",
		ClientSize: &layout.Size{Width: 400, Height: 300},
		Anchors:    map[string]layout.RectNorm{},
		Regions:    regions,
		CardZones: map[string]layout.ZoneSet{
			"default": {
				Rank: &layout.Zone{Type: layout.ZoneRank, Rect: layout.RectNorm{X: 0.05, Y: 0.05, W: 0.40, H: 0.45}, Units: layout.UnitsNormalized},
				Suit: &layout.Zone{Type: layout.ZoneSuit, Rect: layout.RectNorm{X: 0.05, Y: 0.50, W: 0.40, H: 0.45}, Units: layout.UnitsNormalized},
			},
		},
	}
}

// NewTableFrame returns a uniform felt-colored frame sized for TableProfile.
// Unpainted card zones stay flat and recognize as absent.
func NewTableFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	felt := color.RGBA{R: 30, G: 90, B: 45, A: 255}
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.SetRGBA(x, y, felt)
		}
	}
	return img
}

// PaintCard draws rank and suit template patterns into a card slot's
// resolved zones, so template matching finds them again.
func PaintCard(t *testing.T, img *image.RGBA, p *layout.Profile, slot, rankLabel, suitLabel string) {
	t.Helper()

	region, ok := p.Region(slot)
	require.True(t, ok, "unknown card slot %q", slot)
	b := img.Bounds()
	rect, err := region.Resolve(b.Dx(), b.Dy(), p.Anchors)
	require.NoError(t, err)
	zones, ok := p.ZonesFor(slot)
	require.True(t, ok, "no card zones for slot %q", slot)
	client := &layout.Size{Width: b.Dx(), Height: b.Dy()}

	rankRect, err := zones.Rank.ResolveIn(rect.Dx(), rect.Dy(), client, p.ClientSize)
	require.NoError(t, err)
	PaintPattern(img, rankRect.Add(rect.Min), rankLabel)

	suitRect, err := zones.Suit.ResolveIn(rect.Dx(), rect.Dy(), client, p.ClientSize)
	require.NoError(t, err)
	PaintPattern(img, suitRect.Add(rect.Min), suitLabel)
}
