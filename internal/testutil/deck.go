package testutil

import (
	"hash/fnv"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/templates"
	"github.com/tablesight/tablesight/internal/utils"
)

// Synthetic deck: every template label maps to a deterministic 8x8 block
// pattern defined over normalized coordinates. A template bitmap and a
// differently sized painted card zone sample the same underlying function,
// so canonicalization brings them back into alignment.

func seedFor(label string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return h.Sum64()
}

func mixBits(seed, i uint64) uint64 {
	x := seed + i*0x9E3779B97F4A7C15
	x ^= x >> 33
	x *= 0xFF51AFD7ED558CCD
	x ^= x >> 33
	return x
}

func patternAt(seed uint64, u, v float64) uint8 {
	cx := int(u * 8)
	cy := int(v * 8)
	if cx > 7 {
		cx = 7
	}
	if cy > 7 {
		cy = 7
	}
	if mixBits(seed, uint64(cy*8+cx))&1 == 1 {
		return 220
	}
	return 35
}

// WriteTemplateImage writes the canonical-size pattern bitmap for label.
func WriteTemplateImage(t *testing.T, path, label string) {
	t.Helper()

	edge := templates.DefaultCanonicalSize
	seed := seedFor(label)
	img := image.NewGray(image.Rect(0, 0, edge, edge))
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			u := (float64(x) + 0.5) / float64(edge)
			v := (float64(y) + 0.5) / float64(edge)
			img.SetGray(x, y, color.Gray{Y: patternAt(seed, u, v)})
		}
	}
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, utils.SavePNG(path, img))
}

// PaintPattern draws label's pattern into rect, stretched to fill it.
func PaintPattern(img *image.RGBA, rect image.Rectangle, label string) {
	seed := seedFor(label)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			u := (float64(x-rect.Min.X) + 0.5) / w
			v := (float64(y-rect.Min.Y) + 0.5) / h
			g := patternAt(seed, u, v)
			img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
}

// BuildTemplateDir writes one template per rank and suit family into a
// temporary directory laid out the way LoadDir expects.
func BuildTemplateDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, f := range templates.RankFamilies {
		WriteTemplateImage(t, filepath.Join(dir, "ranks", f+"_1.png"), f+"_1")
	}
	for _, f := range templates.SuitFamilies {
		WriteTemplateImage(t, filepath.Join(dir, "suits", f+"_1.png"), f+"_1")
	}
	return dir
}

// DeckStore loads a full synthetic deck into a template store.
func DeckStore(t *testing.T) *templates.Store {
	t.Helper()

	store, err := templates.LoadDir(BuildTemplateDir(t), templates.DefaultCanonicalSize)
	require.NoError(t, err)
	return store
}
