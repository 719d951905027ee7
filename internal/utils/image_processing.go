// Package utils provides image loading, resizing, slicing and drawing
// helpers for the crop pipeline.
package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/tilecrop/internal/geometry"
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

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ResizeToCanvas scales img by min(canvasWidth/width, canvasHeight/height),
// preserving the aspect ratio, and places it at the top-left corner of a
// black canvas of exactly canvasWidth x canvasHeight. It returns the canvas
// and the scale factor, which must also be applied to any coordinates
// defined on img.
//
// A scale of one copies pixels unchanged. Downscaling averages the source
// area covered by each output pixel (box filter); upscaling interpolates
// linearly. Neither adds ringing around sharp edges.
func ResizeToCanvas(img image.Image, canvasWidth, canvasHeight int) (*image.NRGBA, float64, error) {
	if img == nil {
		return nil, 0, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return nil, 0, &ImageProcessingError{
			Operation: "resize",
			Err:       fmt.Errorf("invalid canvas dimensions: %dx%d", canvasWidth, canvasHeight),
		}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, 0, &ImageProcessingError{Operation: "resize", Err: errors.New("invalid image dimensions")}
	}

	scaleX := float64(canvasWidth) / float64(width)
	scaleY := float64(canvasHeight) / float64(height)
	scale := math.Min(scaleX, scaleY)

	newWidth := scaledSize(width, scale, canvasWidth)
	newHeight := scaledSize(height, scale, canvasHeight)

	var resized *image.NRGBA
	switch {
	case newWidth == width && newHeight == height:
		resized = imaging.Clone(img)
	case scale < 1:
		resized = imaging.Resize(img, newWidth, newHeight, imaging.Box)
	default:
		resized = imaging.Resize(img, newWidth, newHeight, imaging.Linear)
	}

	if newWidth == canvasWidth && newHeight == canvasHeight {
		return resized, scale, nil
	}
	background := imaging.New(canvasWidth, canvasHeight, color.Black)
	return imaging.Paste(background, resized, image.Pt(0, 0)), scale, nil
}

// scaledSize truncates size*scale like an integer cast, tolerating the
// rounding error of scale = limit/size, and keeps the result in [1, limit].
func scaledSize(size int, scale float64, limit int) int {
	n := int(float64(size)*scale + 1e-9)
	if n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ExtractPatch returns the pixels of canvas inside r without copying. The
// rectangle must lie within the canvas; the tiling plan guarantees this.
func ExtractPatch(canvas *image.NRGBA, r geometry.Rect) *image.NRGBA {
	return canvas.SubImage(r.ImageRect()).(*image.NRGBA)
}
