package utils

import (
	"math"

	"github.com/tablesight/tablesight/internal/mempool"
)

// SobelGradients computes horizontal and vertical Sobel derivatives.
// Border pixels are left at zero.
func SobelGradients(g *Gray32) (gx, gy *Gray32) {
	w, h := g.Width, g.Height
	gx = NewGray32(w, h)
	gy = NewGray32(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl := g.Pix[(y-1)*w+x-1]
			tc := g.Pix[(y-1)*w+x]
			tr := g.Pix[(y-1)*w+x+1]
			ml := g.Pix[y*w+x-1]
			mr := g.Pix[y*w+x+1]
			bl := g.Pix[(y+1)*w+x-1]
			bc := g.Pix[(y+1)*w+x]
			br := g.Pix[(y+1)*w+x+1]

			gx.Pix[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy.Pix[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}

// CannyEdges extracts a binary 0/255 edge map: Gaussian smoothing, Sobel
// gradients, non-maximum suppression along the quantized gradient
// direction, then double-threshold hysteresis. Weak edges survive only
// when connected to a strong edge.
func CannyEdges(g *Gray32, lowThreshold, highThreshold float32) *Gray32 {
	if lowThreshold > highThreshold {
		lowThreshold, highThreshold = highThreshold, lowThreshold
	}
	w, h := g.Width, g.Height

	smoothed := GaussianBlur3x3(g)
	gx, gy := SobelGradients(smoothed)

	magnitude := mempool.GetFloat32(w * h)
	defer mempool.PutFloat32(magnitude)
	for i := range magnitude {
		magnitude[i] = float32(math.Hypot(float64(gx.Pix[i]), float64(gy.Pix[i])))
	}

	// Non-maximum suppression into strong/weak classification.
	const (
		edgeNone   = 0
		edgeWeak   = 1
		edgeStrong = 2
	)
	class := mempool.GetFloat32(w * h)
	defer mempool.PutFloat32(class)
	for i := range class {
		class[i] = edgeNone
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := magnitude[i]
			if m < lowThreshold {
				continue
			}

			// Quantize gradient direction to one of four sectors.
			angle := math.Atan2(float64(gy.Pix[i]), float64(gx.Pix[i]))
			if angle < 0 {
				angle += math.Pi
			}
			var n1, n2 float32
			switch {
			case angle < math.Pi/8 || angle >= 7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case angle < 3*math.Pi/8:
				n1, n2 = magnitude[(y-1)*w+x+1], magnitude[(y+1)*w+x-1]
			case angle < 5*math.Pi/8:
				n1, n2 = magnitude[(y-1)*w+x], magnitude[(y+1)*w+x]
			default:
				n1, n2 = magnitude[(y-1)*w+x-1], magnitude[(y+1)*w+x+1]
			}
			if m < n1 || m < n2 {
				continue
			}

			if m >= highThreshold {
				class[i] = edgeStrong
			} else {
				class[i] = edgeWeak
			}
		}
	}

	// Hysteresis: flood from strong edges through weak neighbors.
	out := NewGray32(w, h)
	visited := mempool.GetBool(w * h)
	defer mempool.PutBool(visited)

	stack := make([]int, 0, 256)
	for i := range class {
		if class[i] != edgeStrong || visited[i] {
			continue
		}
		stack = append(stack[:0], i)
		visited[i] = true
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out.Pix[j] = 255

			jx, jy := j%w, j/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := jx+dx, jy+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					k := ny*w + nx
					if !visited[k] && class[k] != edgeNone {
						visited[k] = true
						stack = append(stack, k)
					}
				}
			}
		}
	}
	return out
}
