package utils

import (
	"math"

	"github.com/tablesight/tablesight/internal/mempool"
)

// GaussianBlur3x3 applies the fixed 1-2-1 binomial kernel, the light blur
// used to suppress high-frequency noise before template comparison.
// Borders are handled by edge replication.
func GaussianBlur3x3(g *Gray32) *Gray32 {
	return separableBlur(g, []float32{0.25, 0.5, 0.25})
}

// GaussianBlur applies a separable Gaussian with the given sigma.
// Sigma values at or below zero return an unmodified clone.
func GaussianBlur(g *Gray32, sigma float64) *Gray32 {
	if sigma <= 0 {
		return g.Clone()
	}
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, 2*radius+1)
	var sum float32
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * sigma * sigma)))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return separableBlur(g, kernel)
}

// separableBlur convolves rows then columns with a normalized 1-D kernel,
// replicating edge pixels outside the plane.
func separableBlur(g *Gray32, kernel []float32) *Gray32 {
	w, h := g.Width, g.Height
	radius := len(kernel) / 2

	tmp := mempool.GetFloat32(w * h)
	defer mempool.PutFloat32(tmp)

	for y := range h {
		for x := range w {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sx := x + k
				if sx < 0 {
					sx = 0
				} else if sx >= w {
					sx = w - 1
				}
				acc += g.Pix[y*w+sx] * kernel[k+radius]
			}
			tmp[y*w+x] = acc
		}
	}

	out := NewGray32(w, h)
	for y := range h {
		for x := range w {
			var acc float32
			for k := -radius; k <= radius; k++ {
				sy := y + k
				if sy < 0 {
					sy = 0
				} else if sy >= h {
					sy = h - 1
				}
				acc += tmp[sy*w+x] * kernel[k+radius]
			}
			out.Pix[y*w+x] = acc
		}
	}
	return out
}
