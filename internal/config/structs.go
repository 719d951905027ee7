//nolint:lll
package config

// Config represents the complete configuration for tilecrop.
// It supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Input dataset
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset" json:"dataset"`

	// Patch grid
	Tiling TilingConfig `mapstructure:"tiling" yaml:"tiling" json:"tiling"`

	// Output locations and encoding
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Metrics export
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// DatasetConfig describes the input dataset.
type DatasetConfig struct {
	Path           string `mapstructure:"path" yaml:"path" json:"path"`
	HasGroundTruth bool   `mapstructure:"has_ground_truth" yaml:"has_ground_truth" json:"has_ground_truth"`
	ImageExt       string `mapstructure:"image_ext" yaml:"image_ext" json:"image_ext"`
}

// TilingConfig contains patch size and overlap.
type TilingConfig struct {
	PatchWidth   int     `mapstructure:"patch_width" yaml:"patch_width" json:"patch_width"`
	PatchHeight  int     `mapstructure:"patch_height" yaml:"patch_height" json:"patch_height"`
	OverlapRatio float64 `mapstructure:"overlap_ratio" yaml:"overlap_ratio" json:"overlap_ratio"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	Dir              string `mapstructure:"dir" yaml:"dir" json:"dir"`
	VisDir           string `mapstructure:"vis_dir" yaml:"vis_dir" json:"vis_dir"`
	Visualize        bool   `mapstructure:"visualize" yaml:"visualize" json:"visualize"`
	JPEGQuality      int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
	WriteEmptyLabels bool   `mapstructure:"write_empty_labels" yaml:"write_empty_labels" json:"write_empty_labels"`
	Overwrite        bool   `mapstructure:"overwrite" yaml:"overwrite" json:"overwrite"`
	Progress         bool   `mapstructure:"progress" yaml:"progress" json:"progress"`
}

// MetricsConfig contains metrics export settings.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after a run when set.
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}
