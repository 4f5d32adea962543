package layout

import (
	"fmt"
	"image"
	"math"
)

// ZoneType distinguishes the two sub-zones inside a card crop.
type ZoneType string

const (
	ZoneRank ZoneType = "rank"
	ZoneSuit ZoneType = "suit"
)

// ZoneUnits tells how a zone rectangle is expressed: normalized to the card
// crop, or absolute pixels measured at the profile's reference client size.
type ZoneUnits string

const (
	UnitsNormalized ZoneUnits = "normalized"
	UnitsPixel      ZoneUnits = "pixel"
)

// Zone is a rank or suit sub-rectangle within a card crop.
type Zone struct {
	Type  ZoneType
	Rect  RectNorm
	Units ZoneUnits
}

// ZoneSet holds the at-most-one rank and suit zones for a card slot.
type ZoneSet struct {
	Rank *Zone
	Suit *Zone
}

// shrinkFraction is the inward shrink applied per edge before the 1px
// extension, guarding against calibration rectangles that clip glyph edges.
const shrinkFraction = 0.01

// ResolveIn maps a zone to pixel coordinates inside a card crop of the given
// size. Pixel-unit zones scale by the ratio of the actual client size to the
// profile's reference size. A 1% inward shrink then a 1px outward extension
// is applied, clamped to the crop.
func (z *Zone) ResolveIn(cropW, cropH int, clientSize, refSize *Size) (image.Rectangle, error) {
	if z == nil {
		return image.Rectangle{}, fmt.Errorf("nil zone")
	}
	if cropW <= 0 || cropH <= 0 {
		return image.Rectangle{}, fmt.Errorf("zone %s: degenerate crop %dx%d", z.Type, cropW, cropH)
	}

	var fx0, fy0, fx1, fy1 float64
	switch z.Units {
	case UnitsPixel:
		scaleX, scaleY := 1.0, 1.0
		if clientSize != nil && refSize != nil && refSize.Width > 0 && refSize.Height > 0 {
			scaleX = float64(clientSize.Width) / float64(refSize.Width)
			scaleY = float64(clientSize.Height) / float64(refSize.Height)
		}
		fx0 = z.Rect.X * scaleX
		fy0 = z.Rect.Y * scaleY
		fx1 = (z.Rect.X + z.Rect.W) * scaleX
		fy1 = (z.Rect.Y + z.Rect.H) * scaleY
	default: // normalized
		fx0 = z.Rect.X * float64(cropW)
		fy0 = z.Rect.Y * float64(cropH)
		fx1 = (z.Rect.X + z.Rect.W) * float64(cropW)
		fy1 = (z.Rect.Y + z.Rect.H) * float64(cropH)
	}

	// Inward shrink per edge, then 1px extension back out.
	dx := (fx1 - fx0) * shrinkFraction
	dy := (fy1 - fy0) * shrinkFraction
	x0 := int(math.Round(fx0+dx)) - 1
	y0 := int(math.Round(fy0+dy)) - 1
	x1 := int(math.Round(fx1-dx)) + 1
	y1 := int(math.Round(fy1-dy)) + 1

	rect := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, cropW, cropH))
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return image.Rectangle{}, fmt.Errorf("zone %s: resolves to empty rectangle in %dx%d crop", z.Type, cropW, cropH)
	}
	return rect, nil
}
