package crop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/tilecrop/internal/utils"
)

// Config holds the parameters of one crop run.
type Config struct {
	// DatasetPath is the directory holding img/ and, with ground truth, gt/.
	DatasetPath    string
	HasGroundTruth bool
	// ImageExt is the source image extension without the leading dot.
	// Patches are written with the same extension.
	ImageExt string

	PatchWidth   int
	PatchHeight  int
	OverlapRatio float64

	Visualize bool
	// OutputDir defaults to <DatasetPath>/patch, VisDir to <DatasetPath>/vis.
	OutputDir string
	VisDir    string

	JPEGQuality      int
	WriteEmptyLabels bool
	Overwrite        bool
}

// DefaultConfig returns the defaults used by the command line. Patch sizes
// have no default and must be set.
func DefaultConfig() Config {
	return Config{
		HasGroundTruth: true,
		ImageExt:       "jpg",
		OverlapRatio:   0.5,
		Visualize:      true,
		JPEGQuality:    utils.DefaultJPEGQuality,
	}
}

// Validate checks the configuration before any file is touched.
func (c Config) Validate() error {
	if c.DatasetPath == "" {
		return errors.New("dataset path is required")
	}
	if c.PatchWidth <= 0 || c.PatchHeight <= 0 {
		return fmt.Errorf("patch size must be positive, got %dx%d", c.PatchWidth, c.PatchHeight)
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return fmt.Errorf("overlap ratio must be in [0, 1), got %v", c.OverlapRatio)
	}
	if c.ImageExt == "" || strings.HasPrefix(c.ImageExt, ".") {
		return fmt.Errorf("image extension must be given without a dot, got %q", c.ImageExt)
	}
	if !utils.IsSupportedImage("x." + c.ImageExt) {
		return fmt.Errorf("unsupported image extension %q (supported: %s)",
			c.ImageExt, strings.Join(utils.SupportedImageExtensions, ", "))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	return nil
}
