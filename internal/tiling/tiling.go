// Package tiling plans how a canvas is cut into fixed-size, overlapping
// patches.
//
// Patches advance by a fixed stride (patch size minus overlap). Instead of
// emitting a ragged last tile, the source image is resized onto a canvas
// whose size is exactly k*stride + patch for the smallest k that covers the
// image:
//
//	canvas = ceil((image - patch) / stride) * stride + patch
//
// The grid then has k+1 tiles along that axis and the last tile ends on the
// canvas edge.
package tiling

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/tilecrop/internal/geometry"
)

var (
	// ErrInvalidDimensions is returned for non-positive image or patch sizes.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrInvalidOverlap is returned when the overlap ratio is outside [0, 1).
	ErrInvalidOverlap = errors.New("overlap ratio must be in [0, 1)")
)

// Plan describes how one image is tiled.
type Plan struct {
	PatchWidth     int `json:"patch_width"`
	PatchHeight    int `json:"patch_height"`
	OverlapWidth   int `json:"overlap_width"`
	OverlapHeight  int `json:"overlap_height"`
	StrideWidth    int `json:"stride_width"`
	StrideHeight   int `json:"stride_height"`
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
	CanvasWidth    int `json:"canvas_width"`
	CanvasHeight   int `json:"canvas_height"`
	// RowCount and ColCount are the largest valid row and column indices;
	// the grid has RowCount+1 rows and ColCount+1 columns.
	RowCount int `json:"row_count"`
	ColCount int `json:"col_count"`
}

// Cell is one grid position and its pixel rectangle in canvas coordinates.
type Cell struct {
	Row  int
	Col  int
	Rect geometry.Rect
}

// NewPlan computes the tiling plan for an image of width x height.
func NewPlan(width, height, patchWidth, patchHeight int, overlapRatio float64) (Plan, error) {
	if width <= 0 || height <= 0 {
		return Plan{}, fmt.Errorf("%w: image %dx%d", ErrInvalidDimensions, width, height)
	}
	if patchWidth <= 0 || patchHeight <= 0 {
		return Plan{}, fmt.Errorf("%w: patch %dx%d", ErrInvalidDimensions, patchWidth, patchHeight)
	}
	if overlapRatio < 0 || overlapRatio >= 1 {
		return Plan{}, fmt.Errorf("%w: got %v", ErrInvalidOverlap, overlapRatio)
	}

	p := Plan{
		PatchWidth:     patchWidth,
		PatchHeight:    patchHeight,
		OverlapWidth:   int(overlapRatio * float64(patchWidth)),
		OverlapHeight:  int(overlapRatio * float64(patchHeight)),
		OriginalWidth:  width,
		OriginalHeight: height,
	}
	p.StrideWidth = patchWidth - p.OverlapWidth
	p.StrideHeight = patchHeight - p.OverlapHeight
	p.ColCount = steps(width, patchWidth, p.StrideWidth)
	p.RowCount = steps(height, patchHeight, p.StrideHeight)
	p.CanvasWidth = p.ColCount*p.StrideWidth + patchWidth
	p.CanvasHeight = p.RowCount*p.StrideHeight + patchHeight
	return p, nil
}

// steps returns ceil((size - patch) / stride), clamped at zero so images
// smaller than a patch still get one full patch.
func steps(size, patch, stride int) int {
	if size <= patch {
		return 0
	}
	return (size - patch + stride - 1) / stride
}

// Rows returns the number of grid rows.
func (p Plan) Rows() int { return p.RowCount + 1 }

// Cols returns the number of grid columns.
func (p Plan) Cols() int { return p.ColCount + 1 }

// NumCells returns the number of patches in the grid.
func (p Plan) NumCells() int { return p.Rows() * p.Cols() }

// Cell returns the grid cell at (row, col). Both indices are inclusive up to
// RowCount and ColCount.
func (p Plan) Cell(row, col int) Cell {
	x0 := col * p.StrideWidth
	y0 := row * p.StrideHeight
	return Cell{
		Row:  row,
		Col:  col,
		Rect: geometry.Rect{X0: x0, Y0: y0, X1: x0 + p.PatchWidth, Y1: y0 + p.PatchHeight},
	}
}

// Cells returns every cell in row-major order.
func (p Plan) Cells() []Cell {
	cells := make([]Cell, 0, p.NumCells())
	for i := 0; i <= p.RowCount; i++ {
		for j := 0; j <= p.ColCount; j++ {
			cells = append(cells, p.Cell(i, j))
		}
	}
	return cells
}

// String returns a one-line human readable summary.
func (p Plan) String() string {
	return fmt.Sprintf("%dx%d -> canvas %dx%d, patch %dx%d, stride %dx%d, grid %dx%d (%d patches)",
		p.OriginalWidth, p.OriginalHeight, p.CanvasWidth, p.CanvasHeight,
		p.PatchWidth, p.PatchHeight, p.StrideWidth, p.StrideHeight,
		p.Rows(), p.Cols(), p.NumCells())
}
