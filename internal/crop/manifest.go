package crop

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/tilecrop/internal/utils"
	"gopkg.in/yaml.v3"
)

// ErrManifestMismatch is returned when the output directory holds patches
// produced with different parameters.
var ErrManifestMismatch = errors.New("output directory was produced with different parameters")

// Manifest records the parameters that determine patch contents.
type Manifest struct {
	PatchWidth     int     `yaml:"patch_width"`
	PatchHeight    int     `yaml:"patch_height"`
	OverlapRatio   float64 `yaml:"overlap_ratio"`
	ImageExt       string  `yaml:"image_ext"`
	HasGroundTruth bool    `yaml:"has_ground_truth"`
}

// ManifestFor returns the manifest describing a run with cfg.
func ManifestFor(cfg Config) Manifest {
	return Manifest{
		PatchWidth:     cfg.PatchWidth,
		PatchHeight:    cfg.PatchHeight,
		OverlapRatio:   cfg.OverlapRatio,
		ImageExt:       cfg.ImageExt,
		HasGroundTruth: cfg.HasGroundTruth,
	}
}

// ReadManifest loads a manifest. It returns (nil, nil) when none exists.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest lives in the configured output directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest stores m at path.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return utils.WriteFileAtomic(path, data)
}

// checkManifest compares the manifest at path with want. A differing
// manifest is an error unless overwrite is set.
func checkManifest(path string, want Manifest, overwrite bool) error {
	have, err := ReadManifest(path)
	if err != nil {
		if overwrite {
			return nil
		}
		return err
	}
	if have == nil || *have == want || overwrite {
		return nil
	}
	return fmt.Errorf("%w: %s has patch %dx%d overlap %v ext %q gt %t, requested patch %dx%d overlap %v ext %q gt %t",
		ErrManifestMismatch, path,
		have.PatchWidth, have.PatchHeight, have.OverlapRatio, have.ImageExt, have.HasGroundTruth,
		want.PatchWidth, want.PatchHeight, want.OverlapRatio, want.ImageExt, want.HasGroundTruth)
}
