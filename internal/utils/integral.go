package utils

import "math"

// IntegralImage holds summed-area tables over a grayscale plane, giving
// O(1) mean and variance queries for any axis-aligned window.
type IntegralImage struct {
	Sum    []float64
	SumSq  []float64
	Width  int
	Height int
}

// NewIntegralImage builds the summed-area tables for g.
func NewIntegralImage(g *Gray32) *IntegralImage {
	w, h := g.Width, g.Height
	ii := &IntegralImage{
		Sum:    make([]float64, w*h),
		SumSq:  make([]float64, w*h),
		Width:  w,
		Height: h,
	}
	for y := range h {
		var rowSum, rowSumSq float64
		for x := range w {
			v := float64(g.Pix[y*w+x])
			rowSum += v
			rowSumSq += v * v
			off := y*w + x
			if y == 0 {
				ii.Sum[off] = rowSum
				ii.SumSq[off] = rowSumSq
			} else {
				ii.Sum[off] = ii.Sum[(y-1)*w+x] + rowSum
				ii.SumSq[off] = ii.SumSq[(y-1)*w+x] + rowSumSq
			}
		}
	}
	return ii
}

// tableSum evaluates a summed-area table over the inclusive rectangle
// [x0,x1]x[y0,y1].
func tableSum(table []float64, w, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return table[y*w+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}

// WindowSum returns the pixel sum over the inclusive window [x0,x1]x[y0,y1].
func (ii *IntegralImage) WindowSum(x0, y0, x1, y1 int) float64 {
	return tableSum(ii.Sum, ii.Width, x0, y0, x1, y1)
}

// WindowMeanStd returns the mean and population standard deviation over the
// inclusive window [x0,x1]x[y0,y1].
func (ii *IntegralImage) WindowMeanStd(x0, y0, x1, y1 int) (mean, std float64) {
	n := float64((x1 - x0 + 1) * (y1 - y0 + 1))
	if n <= 0 {
		return 0, 0
	}
	s := tableSum(ii.Sum, ii.Width, x0, y0, x1, y1)
	s2 := tableSum(ii.SumSq, ii.Width, x0, y0, x1, y1)
	mean = s / n
	variance := s2/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
