package tiling

import (
	"testing"

	"github.com/MeKo-Tech/tilecrop/internal/geometry"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan_ExactGrid(t *testing.T) {
	p, err := NewPlan(1000, 1000, 400, 400, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 200, p.OverlapWidth)
	assert.Equal(t, 200, p.StrideWidth)
	assert.Equal(t, 1000, p.CanvasWidth)
	assert.Equal(t, 1000, p.CanvasHeight)
	assert.Equal(t, 3, p.ColCount)
	assert.Equal(t, 3, p.RowCount)
	assert.Equal(t, 16, p.NumCells())

	cells := p.Cells()
	require.Len(t, cells, 16)
	starts := map[int]bool{}
	for _, c := range cells {
		starts[c.Rect.X0] = true
		assert.Equal(t, 400, c.Rect.Width())
		assert.Equal(t, 400, c.Rect.Height())
	}
	assert.Equal(t, map[int]bool{0: true, 200: true, 400: true, 600: true}, starts)
	assert.Equal(t, geometry.Rect{X0: 600, Y0: 600, X1: 1000, Y1: 1000}, cells[15].Rect)
}

func TestNewPlan(t *testing.T) {
	tests := []struct {
		name               string
		w, h, pw, ph       int
		ratio              float64
		canvasW, canvasH   int
		rowCount, colCount int
		strideW, strideH   int
	}{
		{"rounds canvas up", 1050, 700, 400, 400, 0.25, 1300, 700, 1, 3, 300, 300},
		{"no overlap", 1024, 512, 256, 256, 0, 1024, 512, 1, 3, 256, 256},
		{"image smaller than patch", 100, 50, 640, 640, 0.5, 640, 640, 0, 0, 320, 320},
		{"image equal to patch", 640, 640, 640, 640, 0.5, 640, 640, 0, 0, 320, 320},
		{"rectangular patches", 1000, 1000, 500, 250, 0.2, 1300, 1050, 4, 2, 400, 200},
		{"overlap floors", 100, 100, 30, 30, 0.35, 110, 110, 4, 4, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.w, tt.h, tt.pw, tt.ph, tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.canvasW, p.CanvasWidth, "canvas width")
			assert.Equal(t, tt.canvasH, p.CanvasHeight, "canvas height")
			assert.Equal(t, tt.rowCount, p.RowCount, "row count")
			assert.Equal(t, tt.colCount, p.ColCount, "col count")
			assert.Equal(t, tt.strideW, p.StrideWidth, "stride width")
			assert.Equal(t, tt.strideH, p.StrideHeight, "stride height")
		})
	}
}

func TestNewPlan_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		w, h, pw, ph int
		ratio        float64
		want         error
	}{
		{"zero width", 0, 10, 4, 4, 0.5, ErrInvalidDimensions},
		{"negative patch", 10, 10, -4, 4, 0.5, ErrInvalidDimensions},
		{"overlap one", 10, 10, 4, 4, 1, ErrInvalidOverlap},
		{"negative overlap", 10, 10, 4, 4, -0.1, ErrInvalidOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.w, tt.h, tt.pw, tt.ph, tt.ratio)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPlanString(t *testing.T) {
	p, err := NewPlan(1000, 1000, 400, 400, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "1000x1000 -> canvas 1000x1000, patch 400x400, stride 200x200, grid 4x4 (16 patches)", p.String())
}

// axisCovered checks that [0, canvas) is covered by tiles starting every
// stride, that the last tile ends on the canvas edge and that neighbouring
// tiles share exactly overlap pixels.
func axisCovered(count, stride, patch, overlap, canvas int) bool {
	covered := 0
	for k := 0; k <= count; k++ {
		x0 := k * stride
		if x0 > covered {
			return false
		}
		if k > 0 && (k-1)*stride+patch-x0 != overlap {
			return false
		}
		covered = x0 + patch
	}
	return covered == canvas
}

// TestPlan_CoverageProperty verifies gap-free coverage of the canvas.
func TestPlan_CoverageProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cells tile the canvas exactly", prop.ForAll(
		func(w, h, pw, ph int, ratio float64) bool {
			p, err := NewPlan(w, h, pw, ph, ratio)
			if err != nil {
				return false
			}
			if p.CanvasWidth < w || p.CanvasHeight < h {
				return false
			}
			if !axisCovered(p.ColCount, p.StrideWidth, pw, p.OverlapWidth, p.CanvasWidth) {
				return false
			}
			if !axisCovered(p.RowCount, p.StrideHeight, ph, p.OverlapHeight, p.CanvasHeight) {
				return false
			}
			last := p.Cell(p.RowCount, p.ColCount).Rect
			return last.X1 == p.CanvasWidth && last.Y1 == p.CanvasHeight
		},
		gen.IntRange(1, 5000),
		gen.IntRange(1, 5000),
		gen.IntRange(1, 1024),
		gen.IntRange(1, 1024),
		gen.Float64Range(0, 0.95),
	))

	properties.Property("canvas is the smallest tiling size", prop.ForAll(
		func(w, pw int, ratio float64) bool {
			p, err := NewPlan(w, w, pw, pw, ratio)
			if err != nil {
				return false
			}
			if p.ColCount == 0 {
				return p.CanvasWidth == pw
			}
			return p.CanvasWidth-p.StrideWidth < w
		},
		gen.IntRange(1, 5000),
		gen.IntRange(1, 1024),
		gen.Float64Range(0, 0.95),
	))

	properties.TestingRun(t)
}
