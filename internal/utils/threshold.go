package utils

// OtsuThreshold computes the global threshold that maximizes between-class
// variance over a 256-bin histogram of the plane.
func OtsuThreshold(g *Gray32) float32 {
	if len(g.Pix) == 0 {
		return 0
	}

	const bins = 256
	histogram := make([]int, bins)
	for _, v := range g.Pix {
		bin := int(clampFloat32(v, 0, 255))
		histogram[bin]++
	}

	totalPixels := len(g.Pix)
	var totalMean float64
	for i := range bins {
		totalMean += float64(i) * float64(histogram[i])
	}
	totalMean /= float64(totalPixels)

	var maxVariance float64
	bestThreshold := 0
	var sumB float64
	wB := 0

	for t := range bins {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF := totalPixels - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(histogram[t])
		meanB := sumB / float64(wB)
		meanF := (totalMean*float64(totalPixels) - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			bestThreshold = t
		}
	}
	return float32(bestThreshold)
}

// AdaptiveMeanThreshold binarizes the plane against the local window mean.
// A pixel becomes 255 when it exceeds the mean of its window minus bias,
// else 0. Window must be odd; even values are rounded up. Windows are
// clamped at the plane borders.
func AdaptiveMeanThreshold(g *Gray32, window int, bias float32) *Gray32 {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	ii := NewIntegralImage(g)
	out := NewGray32(g.Width, g.Height)
	for y := range g.Height {
		y0 := max(0, y-half)
		y1 := min(g.Height-1, y+half)
		for x := range g.Width {
			x0 := max(0, x-half)
			x1 := min(g.Width-1, x+half)
			n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
			mean := ii.WindowSum(x0, y0, x1, y1) / n
			if float64(g.Pix[y*g.Width+x]) > mean-float64(bias) {
				out.Pix[y*g.Width+x] = 255
			}
		}
	}
	return out
}

// BinarizeOtsu thresholds the plane at its Otsu level into a 0/255 plane.
func BinarizeOtsu(g *Gray32) *Gray32 {
	t := OtsuThreshold(g)
	out := NewGray32(g.Width, g.Height)
	for i, v := range g.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}
