package crop

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/MeKo-Tech/tilecrop/internal/label"
	"github.com/MeKo-Tech/tilecrop/internal/tiling"
	"github.com/MeKo-Tech/tilecrop/internal/utils"
)

// Patch is one extracted grid cell and its patch-local annotations.
type Patch struct {
	Cell   tiling.Cell
	Image  *image.NRGBA
	Labels []label.Annotation
}

// PatchWriter persists patches under a Layout.
//
// The label file is written before the image and both go through a
// temporary file and rename, so an existing patch image always has its
// label file next to it. Exists is therefore a complete resume check.
type PatchWriter struct {
	layout           Layout
	jpegQuality      int
	withLabels       bool
	writeEmptyLabels bool
	overwrite        bool
}

// NewPatchWriter creates a writer for cfg.
func NewPatchWriter(layout Layout, cfg Config) *PatchWriter {
	return &PatchWriter{
		layout:           layout,
		jpegQuality:      cfg.JPEGQuality,
		withLabels:       cfg.HasGroundTruth,
		writeEmptyLabels: cfg.WriteEmptyLabels,
		overwrite:        cfg.Overwrite,
	}
}

// Exists reports whether the patch for cell is already on disk and will be
// skipped.
func (w *PatchWriter) Exists(name string, cell tiling.Cell) bool {
	if w.overwrite {
		return false
	}
	return utils.FileExists(w.layout.PatchImagePath(name, cell.Row, cell.Col))
}

// Write stores p. It returns false without touching the disk when the
// patch already exists.
func (w *PatchWriter) Write(name string, p Patch) (bool, error) {
	if w.Exists(name, p.Cell) {
		return false, nil
	}
	row, col := p.Cell.Row, p.Cell.Col

	if w.withLabels {
		labelPath := w.layout.PatchLabelPath(name, row, col)
		switch {
		case len(p.Labels) > 0 || w.writeEmptyLabels:
			var buf bytes.Buffer
			if err := label.Write(&buf, p.Labels); err != nil {
				return false, fmt.Errorf("render labels for %s: %w", labelPath, err)
			}
			if err := utils.WriteFileAtomic(labelPath, buf.Bytes()); err != nil {
				return false, err
			}
		default:
			// A label file left over from an earlier run would pair with the
			// new image.
			if err := os.Remove(labelPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return false, fmt.Errorf("remove stale label file: %w", err)
			}
		}
	}

	if err := utils.SaveImage(p.Image, w.layout.PatchImagePath(name, row, col), w.jpegQuality); err != nil {
		return false, err
	}
	return true, nil
}
