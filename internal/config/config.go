package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/tilecrop/internal/crop"
)

// DefaultConfig returns a configuration with sensible defaults. Dataset path
// and patch size have no useful default and stay zero.
func DefaultConfig() Config {
	defaults := crop.DefaultConfig()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Dataset: DatasetConfig{
			HasGroundTruth: defaults.HasGroundTruth,
			ImageExt:       defaults.ImageExt,
		},
		Tiling: TilingConfig{
			OverlapRatio: defaults.OverlapRatio,
		},
		Output: OutputConfig{
			Visualize:   defaults.Visualize,
			JPEGQuality: defaults.JPEGQuality,
		},
	}
}

// Validate validates the settings that can be checked without a dataset.
// Required run parameters are checked by crop.Config.Validate once flags
// have been applied.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Tiling.PatchWidth < 0 || c.Tiling.PatchHeight < 0 {
		return fmt.Errorf("invalid patch size: %dx%d (must not be negative)", c.Tiling.PatchWidth, c.Tiling.PatchHeight)
	}
	if c.Tiling.OverlapRatio < 0 || c.Tiling.OverlapRatio >= 1 {
		return fmt.Errorf("invalid tiling.overlap_ratio: %v (must be in [0, 1))", c.Tiling.OverlapRatio)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("invalid output.jpeg_quality: %d (must be between 1 and 100)", c.Output.JPEGQuality)
	}
	if strings.HasPrefix(c.Dataset.ImageExt, ".") {
		return fmt.Errorf("invalid dataset.image_ext: %q (omit the leading dot)", c.Dataset.ImageExt)
	}
	return nil
}

// ToCropConfig converts the config to the crop engine configuration.
func (c *Config) ToCropConfig() crop.Config {
	return crop.Config{
		DatasetPath:      c.Dataset.Path,
		HasGroundTruth:   c.Dataset.HasGroundTruth,
		ImageExt:         c.Dataset.ImageExt,
		PatchWidth:       c.Tiling.PatchWidth,
		PatchHeight:      c.Tiling.PatchHeight,
		OverlapRatio:     c.Tiling.OverlapRatio,
		Visualize:        c.Output.Visualize,
		OutputDir:        c.Output.Dir,
		VisDir:           c.Output.VisDir,
		JPEGQuality:      c.Output.JPEGQuality,
		WriteEmptyLabels: c.Output.WriteEmptyLabels,
		Overwrite:        c.Output.Overwrite,
	}
}

// contains checks if a slice contains a specific string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
