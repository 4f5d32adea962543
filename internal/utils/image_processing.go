package utils

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// CropImage extracts the rectangle r from img, clamped to the image bounds.
// The clamped rectangle must stay non-degenerate.
func CropImage(img image.Image, r image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("input image is nil")}
	}
	r = r.Intersect(img.Bounds())
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, &ImageProcessingError{
			Operation: "crop",
			Err:       fmt.Errorf("rectangle %v outside image bounds %v", r, img.Bounds()),
		}
	}
	return imaging.Crop(img, r), nil
}

// ToRGBA converts any image to *image.RGBA, reusing the input when already
// in that format with a zero-origin bounds.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ResizePlane resamples a grayscale plane to the target dimensions using
// Lanczos, the filter used for template canonicalization.
func ResizePlane(g *Gray32, width, height int) (*Gray32, error) {
	if g == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input plane is nil")}
	}
	if width <= 0 || height <= 0 {
		return nil, &ImageProcessingError{
			Operation: "resize",
			Err:       fmt.Errorf("invalid target dimensions %dx%d", width, height),
		}
	}
	if g.Width == width && g.Height == height {
		return g.Clone(), nil
	}
	resized := imaging.Resize(g.ToImage(), width, height, imaging.Lanczos)
	return GrayFromImage(resized)
}

// UpscaleToHeight resamples a plane so its height reaches at least floorPx,
// preserving aspect ratio, using CatmullRom (cubic) interpolation. Planes
// already at or above the floor are returned as clones.
func UpscaleToHeight(g *Gray32, floorPx int) (*Gray32, error) {
	if g == nil {
		return nil, &ImageProcessingError{Operation: "upscale", Err: errors.New("input plane is nil")}
	}
	if floorPx <= 0 || g.Height >= floorPx {
		return g.Clone(), nil
	}
	scale := float64(floorPx) / float64(g.Height)
	newW := int(float64(g.Width)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}
	resized := imaging.Resize(g.ToImage(), newW, floorPx, imaging.CatmullRom)
	return GrayFromImage(resized)
}
