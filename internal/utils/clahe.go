package utils

// CLAHEConfig holds parameters for contrast-limited adaptive histogram
// equalization.
type CLAHEConfig struct {
	ClipLimit float64 // histogram clip factor relative to the uniform bin height
	TilesX    int     // tile grid columns
	TilesY    int     // tile grid rows
}

// DefaultCLAHEConfig returns the parameters tuned for small text zones.
func DefaultCLAHEConfig() CLAHEConfig {
	return CLAHEConfig{
		ClipLimit: 2.0,
		TilesX:    4,
		TilesY:    4,
	}
}

// CLAHE applies contrast-limited adaptive histogram equalization.
// The plane is divided into a tile grid; each tile gets a clipped,
// equalized lookup table, and output pixels bilinearly interpolate between
// the four surrounding tile tables to avoid visible tile seams.
func CLAHE(g *Gray32, config CLAHEConfig) *Gray32 {
	const bins = 256
	tilesX, tilesY := config.TilesX, config.TilesY
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}
	if tilesX > g.Width {
		tilesX = g.Width
	}
	if tilesY > g.Height {
		tilesY = g.Height
	}

	tileW := (g.Width + tilesX - 1) / tilesX
	tileH := (g.Height + tilesY - 1) / tilesY

	// Per-tile equalization LUTs.
	luts := make([][]float32, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			x0 := tx * tileW
			y0 := ty * tileH
			x1 := min(x0+tileW, g.Width)
			y1 := min(y0+tileH, g.Height)
			luts[ty*tilesX+tx] = buildClippedLUT(g, x0, y0, x1, y1, config.ClipLimit, bins)
		}
	}

	out := NewGray32(g.Width, g.Height)
	for y := range g.Height {
		// Position in tile-center coordinates.
		fy := (float64(y)-float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := int(fy)
		if fy < 0 {
			ty0 = -1
		}
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		ty0 = clampInt(ty0, 0, tilesY-1)
		ty1 = clampInt(ty1, 0, tilesY-1)

		for x := range g.Width {
			fx := (float64(x)-float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := int(fx)
			if fx < 0 {
				tx0 = -1
			}
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			tx0 = clampInt(tx0, 0, tilesX-1)
			tx1 = clampInt(tx1, 0, tilesX-1)

			bin := int(clampFloat32(g.Pix[y*g.Width+x], 0, 255))
			v00 := float64(luts[ty0*tilesX+tx0][bin])
			v01 := float64(luts[ty0*tilesX+tx1][bin])
			v10 := float64(luts[ty1*tilesX+tx0][bin])
			v11 := float64(luts[ty1*tilesX+tx1][bin])

			top := v00*(1-wx) + v01*wx
			bottom := v10*(1-wx) + v11*wx
			out.Pix[y*g.Width+x] = float32(top*(1-wy) + bottom*wy)
		}
	}
	return out
}

// buildClippedLUT computes the clipped, equalized lookup table for one tile.
// Clipped excess is redistributed uniformly across all bins.
func buildClippedLUT(g *Gray32, x0, y0, x1, y1 int, clipLimit float64, bins int) []float32 {
	histogram := make([]int, bins)
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			bin := int(clampFloat32(g.Pix[y*g.Width+x], 0, 255))
			histogram[bin]++
			n++
		}
	}

	lut := make([]float32, bins)
	if n == 0 {
		for i := range lut {
			lut[i] = float32(i)
		}
		return lut
	}

	clip := int(clipLimit * float64(n) / float64(bins))
	if clip < 1 {
		clip = 1
	}
	excess := 0
	for i, c := range histogram {
		if c > clip {
			excess += c - clip
			histogram[i] = clip
		}
	}
	share := excess / bins
	remainder := excess % bins
	for i := range histogram {
		histogram[i] += share
		if i < remainder {
			histogram[i]++
		}
	}

	cum := 0
	scale := 255.0 / float64(n)
	for i, c := range histogram {
		cum += c
		lut[i] = float32(float64(cum) * scale)
	}
	return lut
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
