package crop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ErrMissingInputDir is returned when a required dataset directory is absent.
var ErrMissingInputDir = errors.New("missing input directory")

const (
	manifestName = "manifest.yaml"
	visExt       = ".jpg"
)

// Layout resolves every input and output path of a dataset.
type Layout struct {
	ImageDir      string
	LabelDir      string
	OutputDir     string
	PatchImageDir string
	PatchLabelDir string
	PatchVisDir   string
	VisDir        string
	ImageExt      string
}

// NewLayout derives the directory layout from cfg.
func NewLayout(cfg Config) Layout {
	out := cfg.OutputDir
	if out == "" {
		out = filepath.Join(cfg.DatasetPath, "patch")
	}
	vis := cfg.VisDir
	if vis == "" {
		vis = filepath.Join(cfg.DatasetPath, "vis")
	}
	return Layout{
		ImageDir:      filepath.Join(cfg.DatasetPath, "img"),
		LabelDir:      filepath.Join(cfg.DatasetPath, "gt"),
		OutputDir:     out,
		PatchImageDir: filepath.Join(out, "img"),
		PatchLabelDir: filepath.Join(out, "gt"),
		PatchVisDir:   filepath.Join(out, "vis"),
		VisDir:        vis,
		ImageExt:      "." + cfg.ImageExt,
	}
}

// CheckInputs verifies that the input directories exist.
func (l Layout) CheckInputs(hasGroundTruth bool) error {
	dirs := []string{l.ImageDir}
	if hasGroundTruth {
		dirs = append(dirs, l.LabelDir)
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrMissingInputDir, dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrMissingInputDir, dir)
		}
	}
	return nil
}

// EnsureOutputs creates the output directories.
func (l Layout) EnsureOutputs(hasGroundTruth, visualize bool) error {
	dirs := []string{l.PatchImageDir}
	if hasGroundTruth {
		dirs = append(dirs, l.PatchLabelDir)
	}
	if visualize {
		dirs = append(dirs, l.PatchVisDir, l.VisDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return nil
}

func cellSuffix(row, col int) string {
	return "_" + strconv.Itoa(row) + "_" + strconv.Itoa(col)
}

// LabelPath returns gt/gt_<name>.txt.
func (l Layout) LabelPath(name string) string {
	return filepath.Join(l.LabelDir, "gt_"+name+".txt")
}

// PatchImagePath returns patch/img/<name>_<row>_<col><ext>.
func (l Layout) PatchImagePath(name string, row, col int) string {
	return filepath.Join(l.PatchImageDir, name+cellSuffix(row, col)+l.ImageExt)
}

// PatchLabelPath returns patch/gt/gt_<name>_<row>_<col>.txt.
func (l Layout) PatchLabelPath(name string, row, col int) string {
	return filepath.Join(l.PatchLabelDir, "gt_"+name+cellSuffix(row, col)+".txt")
}

// PatchVisPath returns patch/vis/<name>_<row>_<col>_vis.jpg.
func (l Layout) PatchVisPath(name string, row, col int) string {
	return filepath.Join(l.PatchVisDir, name+cellSuffix(row, col)+"_vis"+visExt)
}

// VisPath returns vis/<name>_vis.jpg.
func (l Layout) VisPath(name string) string {
	return filepath.Join(l.VisDir, name+"_vis"+visExt)
}

// ManifestPath returns patch/manifest.yaml.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.OutputDir, manifestName)
}
