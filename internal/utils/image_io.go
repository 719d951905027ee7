package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedImageExtensions lists extensions that can be both decoded and
// re-encoded with the same format.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif"}

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 95

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
	Channels  int
}

// SourceImage is a decoded input image in NRGBA form plus its metadata.
type SourceImage struct {
	Image    *image.NRGBA
	Metadata ImageMetadata
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (*SourceImage, error) {
	if path == "" {
		return nil, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		return nil, &ImageProcessingError{Operation: "load", Err: err}
	}
	defer func() { _ = f.Close() }()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, &ImageProcessingError{Operation: "decode", Err: decErr}
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, &ImageProcessingError{Operation: "decode", Err: errors.New("image has no pixels")}
	}

	return &SourceImage{
		Image: imaging.Clone(img),
		Metadata: ImageMetadata{
			Path:      path,
			Format:    format,
			SizeBytes: fi.Size(),
			Width:     b.Dx(),
			Height:    b.Dy(),
			Channels:  channelCount(img),
		},
	}, nil
}

// channelCount reports 1 for grayscale, 4 for images that may carry
// transparency and 3 otherwise.
func channelCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// SaveImage encodes img to path using the format implied by the extension.
// The file is written to a temporary name in the same directory and renamed
// into place, so readers never observe a partial image.
func SaveImage(img image.Image, path string, jpegQuality int) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}

	return writeAtomic(path, func(f *os.File) error {
		return imaging.Encode(f, img, format, imaging.JPEGQuality(jpegQuality))
	})
}

// WriteFileAtomic writes data to path through a temporary file and rename.
func WriteFileAtomic(path string, data []byte) error {
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // G302: dataset outputs are shared files
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
