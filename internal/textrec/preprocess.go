package textrec

import (
	"errors"
	"fmt"
	"image"

	"github.com/tablesight/tablesight/internal/utils"
)

// PreprocessZone prepares a text crop for OCR: grayscale, cubic upscale
// to the height floor, CLAHE, light blur, adaptive threshold,
// morphological close. OCR accuracy collapses on glyphs only a few
// pixels tall, hence the upscale floor. The output is binary with dark
// glyphs on a light background.
func PreprocessZone(img image.Image, config Config) (*image.Gray, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	plane, err := utils.GrayFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}
	plane, err = utils.UpscaleToHeight(plane, config.UpscaleFloorPx)
	if err != nil {
		return nil, fmt.Errorf("upscale: %w", err)
	}

	plane = utils.CLAHE(plane, utils.CLAHEConfig{
		ClipLimit: config.CLAHEClip,
		TilesX:    config.CLAHETiles,
		TilesY:    config.CLAHETiles,
	})
	plane = utils.GaussianBlur3x3(plane)
	plane = utils.AdaptiveMeanThreshold(plane, config.ThresholdWindow, float32(config.ThresholdBias))
	plane = utils.Close(plane, config.CloseKernel)

	// Table text is light on dark felt; OCR engines expect the opposite.
	if plane.Mean() < 127.5 {
		plane.Invert()
	}
	return plane.ToImage(), nil
}
