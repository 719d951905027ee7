package crop

import (
	"image"

	"github.com/MeKo-Tech/tilecrop/internal/label"
	"github.com/MeKo-Tech/tilecrop/internal/utils"
	"github.com/disintegration/imaging"
)

const (
	polygonThickness = 2
	// textBaselineOffset places captions just above the first vertex.
	textBaselineOffset = 3
)

// renderOverlay copies img to an origin-based canvas and draws every
// annotation polygon on it. Ignore regions are drawn in a separate color;
// withText adds the annotation text.
func renderOverlay(img image.Image, anns []label.Annotation, withText bool) *image.NRGBA {
	dst := imaging.Clone(img)
	for _, a := range anns {
		col := utils.LabelColor
		if a.Ignore {
			col = utils.IgnoreColor
		}
		utils.DrawPolygon(dst, a.Polygon.Points(), col, polygonThickness)
		if withText {
			p := a.Polygon[0]
			utils.DrawText(dst, a.Text, int(p.X), int(p.Y)-textBaselineOffset, utils.TextColor)
		}
	}
	return dst
}

func (p *Processor) saveImageVis(name string, canvas image.Image, anns []label.Annotation) error {
	return utils.SaveImage(renderOverlay(canvas, anns, false), p.layout.VisPath(name), p.cfg.JPEGQuality)
}

func (p *Processor) savePatchVis(name string, patch Patch) error {
	path := p.layout.PatchVisPath(name, patch.Cell.Row, patch.Cell.Col)
	return utils.SaveImage(renderOverlay(patch.Image, patch.Labels, true), path, p.cfg.JPEGQuality)
}
