package utils

// Dilate expands bright regions: each output pixel takes the maximum over
// its kernel window. Kernel sizes of 1 or less return a clone.
func Dilate(g *Gray32, kernelSize int) *Gray32 {
	if kernelSize <= 1 {
		return g.Clone()
	}
	result := NewGray32(g.Width, g.Height)
	half := kernelSize / 2

	for y := range g.Height {
		for x := range g.Width {
			var maxVal float32
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < g.Width && ny >= 0 && ny < g.Height {
						if v := g.Pix[ny*g.Width+nx]; v > maxVal {
							maxVal = v
						}
					}
				}
			}
			result.Pix[y*g.Width+x] = maxVal
		}
	}
	return result
}

// Erode shrinks bright regions: each output pixel takes the minimum over
// its kernel window. Kernel sizes of 1 or less return a clone.
func Erode(g *Gray32, kernelSize int) *Gray32 {
	if kernelSize <= 1 {
		return g.Clone()
	}
	result := NewGray32(g.Width, g.Height)
	half := kernelSize / 2

	for y := range g.Height {
		for x := range g.Width {
			minVal := float32(255.0)
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < g.Width && ny >= 0 && ny < g.Height {
						if v := g.Pix[ny*g.Width+nx]; v < minVal {
							minVal = v
						}
					}
				}
			}
			result.Pix[y*g.Width+x] = minVal
		}
	}
	return result
}

// Close fills gaps in bright regions: dilation followed by erosion.
// Used on thresholded text to reconnect broken glyph strokes.
func Close(g *Gray32, kernelSize int) *Gray32 {
	return Erode(Dilate(g, kernelSize), kernelSize)
}
