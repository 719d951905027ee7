package crop

import (
	"github.com/MeKo-Tech/tilecrop/internal/geometry"
	"github.com/MeKo-Tech/tilecrop/internal/label"
)

// clipAnnotations re-projects anns into the patch r. It returns a freshly
// allocated slice in source order together with the number of annotations
// that overlapped r but did not clip to a quadrilateral. Ignore tags are
// preserved.
func clipAnnotations(anns []label.Annotation, r geometry.Rect) ([]label.Annotation, int) {
	var kept []label.Annotation
	dropped := 0
	for _, a := range anns {
		q, ok := geometry.ClipQuad(a.Polygon, r)
		if ok {
			kept = append(kept, label.Annotation{Polygon: q, Text: a.Text, Ignore: a.Ignore})
			continue
		}
		if geometry.Overlaps(a.Polygon[:], r) {
			dropped++
		}
	}
	return kept, dropped
}
