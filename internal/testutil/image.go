package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

// TextBox is a word placed at a fixed position of a generated image.
type TextBox struct {
	Text string
	X, Y int
}

// TestImageConfig holds configuration for generating test images.
type TestImageConfig struct {
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	Words      []TextBox
}

// DefaultTestImageConfig returns a white 640x480 page without text.
func DefaultTestImageConfig() TestImageConfig {
	return TestImageConfig{
		Size:       ImageSize{640, 480},
		Background: color.White,
		Foreground: color.Black,
	}
}

// GenerateTextImage creates a synthetic image with each word drawn with its
// baseline at (X, Y).
func GenerateTextImage(config TestImageConfig) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, config.Size.Width, config.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{config.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{config.Foreground},
		Face: basicfont.Face7x13,
	}
	for _, w := range config.Words {
		drawer.Dot = fixed.P(w.X, w.Y)
		drawer.DrawString(w.Text)
	}
	return img
}

// WordQuad returns the axis-aligned box around a word drawn by
// GenerateTextImage as x0,y0,x1,y0,x1,y1,x0,y1.
func WordQuad(w TextBox) [8]int {
	face := basicfont.Face7x13
	width := font.MeasureString(face, w.Text).Ceil()
	m := face.Metrics()
	x0, y0 := w.X, w.Y-m.Ascent.Ceil()
	x1, y1 := w.X+width, w.Y+m.Descent.Ceil()
	return [8]int{x0, y0, x1, y0, x1, y1, x0, y1}
}

// SaveImage saves an image to path, choosing the encoder from the extension.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)
	require.NoError(t, imaging.Save(img, path), "Failed to save image %s", path)
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	img, err := imaging.Open(path)
	require.NoError(t, err, "Failed to open image file %s", path)
	return img
}
