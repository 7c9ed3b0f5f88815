package ocr

import (
	"image/color"

	"github.com/disintegration/imaging"

	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/util"
)

/*
Preprocess returns a black and white copy of f that Tesseract reads more
reliably than a raw camera frame.

The steps are:
  - Convert to grayscale.
  - Resize by cfg.ScaleFactor (keeping aspect ratio) for clearer small text.
  - Apply a mild sharpening.
  - Increase contrast.
  - Apply a hard threshold to produce a pure black/white image.

Zero values in cfg fall back to DefaultPreprocessConfig. A nil or empty
frame is returned unchanged.
*/
func Preprocess(f *frame.Frame, cfg PreprocessConfig) *frame.Frame {
	if f.Empty() {
		return f
	}
	defaults := DefaultPreprocessConfig()
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = defaults.ScaleFactor
	}
	if cfg.Sharpen <= 0 {
		cfg.Sharpen = defaults.Sharpen
	}
	if cfg.Contrast == 0 {
		cfg.Contrast = defaults.Contrast
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaults.Threshold
	}

	grayscaleImage := imaging.Grayscale(f.Image())

	processed := grayscaleImage
	if cfg.ScaleFactor > 1 {
		targetHeight := grayscaleImage.Bounds().Dy() * cfg.ScaleFactor
		processed = imaging.Resize(grayscaleImage, 0, targetHeight, imaging.Lanczos)
	}

	sharpenedImage := imaging.Sharpen(processed, cfg.Sharpen)
	highContrastImage := imaging.AdjustContrast(sharpenedImage, util.Clamp(cfg.Contrast, -100.0, 100.0))

	thresholdValue := uint8(util.Clamp(cfg.Threshold, 0, 255))
	binarizedImage := imaging.AdjustFunc(highContrastImage, func(c color.NRGBA) color.NRGBA {
		// Grayscale already, red is the brightness.
		if c.R > thresholdValue {
			return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	})

	return frame.FromImage(binarizedImage)
}
