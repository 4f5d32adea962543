// Package utils provides the pixel-level primitives shared by the card and
// text recognizers: grayscale planes, resizing, blurring, thresholding,
// morphology, contrast enhancement and edge extraction.
package utils

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Gray32 is a planar grayscale image with float32 pixels in [0,255].
// Binary planes produced by thresholding use 0 and 255.
type Gray32 struct {
	Pix    []float32
	Width  int
	Height int
}

// NewGray32 allocates a zeroed plane of the given dimensions.
func NewGray32(width, height int) *Gray32 {
	return &Gray32{
		Pix:    make([]float32, width*height),
		Width:  width,
		Height: height,
	}
}

// GrayFromImage converts an image to a grayscale plane using Rec.709 luma
// weights.
func GrayFromImage(img image.Image) (*Gray32, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "grayscale", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, &ImageProcessingError{
			Operation: "grayscale",
			Err:       fmt.Errorf("degenerate image dimensions %dx%d", w, h),
		}
	}

	g := NewGray32(w, h)
	switch src := img.(type) {
	case *image.RGBA:
		for y := range h {
			row := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range w {
				o := row + x*4
				r := float32(src.Pix[o])
				gg := float32(src.Pix[o+1])
				bb := float32(src.Pix[o+2])
				g.Pix[y*w+x] = 0.2126*r + 0.7152*gg + 0.0722*bb
			}
		}
	case *image.Gray:
		for y := range h {
			row := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range w {
				g.Pix[y*w+x] = float32(src.Pix[row+x])
			}
		}
	default:
		for y := range h {
			for x := range w {
				r, gg, bb, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				g.Pix[y*w+x] = (0.2126*float32(r) + 0.7152*float32(gg) + 0.0722*float32(bb)) / 257.0
			}
		}
	}
	return g, nil
}

// At returns the pixel at (x, y) without bounds checking.
func (g *Gray32) At(x, y int) float32 {
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel at (x, y) without bounds checking.
func (g *Gray32) Set(x, y int, v float32) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns an independent, heap-allocated copy of the plane.
func (g *Gray32) Clone() *Gray32 {
	out := NewGray32(g.Width, g.Height)
	copy(out.Pix, g.Pix)
	return out
}

// Crop returns a new plane holding the pixels of r, clamped to the plane
// bounds. Returns an error if the clamped rectangle is degenerate.
func (g *Gray32) Crop(r image.Rectangle) (*Gray32, error) {
	bounds := image.Rect(0, 0, g.Width, g.Height)
	r = r.Intersect(bounds)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, &ImageProcessingError{
			Operation: "crop",
			Err:       fmt.Errorf("empty intersection with plane bounds %dx%d", g.Width, g.Height),
		}
	}
	out := NewGray32(r.Dx(), r.Dy())
	for y := range r.Dy() {
		srcOff := (r.Min.Y+y)*g.Width + r.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[srcOff:srcOff+r.Dx()])
	}
	return out, nil
}

// ToImage renders the plane as an 8-bit grayscale image, clamping to [0,255].
func (g *Gray32) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for i, v := range g.Pix {
		img.Pix[i] = uint8(clampFloat32(v, 0, 255))
	}
	return img
}

// Mean returns the arithmetic mean of all pixels.
func (g *Gray32) Mean() float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range g.Pix {
		sum += float64(v)
	}
	return sum / float64(len(g.Pix))
}

// StdDev returns the population standard deviation of all pixels.
func (g *Gray32) StdDev() float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	mean := g.Mean()
	var variance float64
	for _, v := range g.Pix {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(g.Pix))
	return math.Sqrt(variance)
}

// MinMax returns the minimum and maximum pixel values.
func (g *Gray32) MinMax() (minVal, maxVal float32) {
	if len(g.Pix) == 0 {
		return 0, 0
	}
	minVal, maxVal = g.Pix[0], g.Pix[0]
	for _, v := range g.Pix[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// Invert replaces every pixel v with 255-v in place.
func (g *Gray32) Invert() {
	for i, v := range g.Pix {
		g.Pix[i] = 255 - v
	}
}

// clampFloat32 clamps a float32 value between minVal and maxVal.
func clampFloat32(value, minVal, maxVal float32) float32 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
