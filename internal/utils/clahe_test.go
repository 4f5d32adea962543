package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLAHEStretchesLowContrast(t *testing.T) {
	// Narrow band around mid-gray with a faint pattern.
	g := NewGray32(32, 32)
	for i := range g.Pix {
		g.Pix[i] = 120
		if i%3 == 0 {
			g.Pix[i] = 135
		}
	}

	out := CLAHE(g, DefaultCLAHEConfig())

	lo0, hi0 := g.MinMax()
	lo1, hi1 := out.MinMax()
	assert.Greater(t, hi1-lo1, hi0-lo0, "CLAHE should widen the dynamic range")
}

func TestCLAHEOutputStaysInRange(t *testing.T) {
	g := rampPlane(40, 30)
	out := CLAHE(g, DefaultCLAHEConfig())
	for i, v := range out.Pix {
		assert.GreaterOrEqual(t, v, float32(0), "pixel %d below 0", i)
		assert.LessOrEqual(t, v, float32(255.5), "pixel %d above 255", i)
	}
}

func TestCLAHEDeterministic(t *testing.T) {
	g := rampPlane(24, 24)
	cfg := DefaultCLAHEConfig()
	a := CLAHE(g, cfg)
	b := CLAHE(g, cfg)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestCLAHETinyPlane(t *testing.T) {
	// Planes smaller than the tile grid must not panic.
	g := NewGray32(2, 2)
	g.Pix = []float32{10, 20, 30, 40}
	out := CLAHE(g, CLAHEConfig{ClipLimit: 2.0, TilesX: 4, TilesY: 4})
	assert.Equal(t, 2, out.Width)
	assert.Equal(t, 2, out.Height)
}

func TestCLAHEClipLimitCapsAmplification(t *testing.T) {
	// A nearly flat tile: unclipped equalization would slam everything to
	// the extremes, clipping keeps the mapping closer to identity.
	g := NewGray32(16, 16)
	for i := range g.Pix {
		g.Pix[i] = 100
	}
	g.Pix[0] = 101

	strict := CLAHE(g, CLAHEConfig{ClipLimit: 1.0, TilesX: 1, TilesY: 1})
	loose := CLAHE(g, CLAHEConfig{ClipLimit: 40.0, TilesX: 1, TilesY: 1})

	spreadStrict := planeSpread(strict)
	spreadLoose := planeSpread(loose)
	assert.LessOrEqual(t, spreadStrict, spreadLoose,
		"lower clip limit should not amplify contrast more than a higher one")
}

func planeSpread(g *Gray32) float32 {
	lo, hi := g.MinMax()
	return hi - lo
}
