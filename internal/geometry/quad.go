package geometry

// Quad is a quadrilateral in canonical order: top-left, top-right,
// bottom-right, bottom-left.
type Quad [4]Point

// Points returns the vertices as a slice.
func (q Quad) Points() []Point { return q[:] }

// Area returns the signed shoelace area of the quad.
func (q Quad) Area() float64 { return SignedArea(q[:]) }

// Scale returns a copy of q with every vertex multiplied by s.
func (q Quad) Scale(s float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(s)
	}
	return out
}

// Offset returns a copy of q translated by dx, dy.
func (q Quad) Offset(dx, dy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Offset(dx, dy)
	}
	return out
}

// OrderClockwise relabels four points as (top-left, top-right, bottom-right,
// bottom-left). Top-left has the smallest x+y and bottom-right the largest;
// top-right has the smallest y-x and bottom-left the largest. Ties go to the
// earliest point in input order, so the result does not depend on input
// order unless two points share a sum or a difference.
func OrderClockwise(pts [4]Point) Quad {
	minSum, maxSum, minDiff, maxDiff := 0, 0, 0, 0
	for i := 1; i < len(pts); i++ {
		s := pts[i].X + pts[i].Y
		d := pts[i].Y - pts[i].X
		if s < pts[minSum].X+pts[minSum].Y {
			minSum = i
		}
		if s > pts[maxSum].X+pts[maxSum].Y {
			maxSum = i
		}
		if d < pts[minDiff].Y-pts[minDiff].X {
			minDiff = i
		}
		if d > pts[maxDiff].Y-pts[maxDiff].X {
			maxDiff = i
		}
	}
	return Quad{pts[minSum], pts[minDiff], pts[maxSum], pts[maxDiff]}
}
