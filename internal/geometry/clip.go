package geometry

import "math"

const (
	// pointEpsilon is the distance under which two vertices are the same.
	pointEpsilon = 1e-9
	// areaEpsilon is the cross-product magnitude under which three vertices
	// are treated as collinear, and the minimum area of an accepted quad.
	areaEpsilon = 1e-6
)

// ClipToRect intersects a simple polygon with an axis-aligned rectangle using
// Sutherland-Hodgman clipping against the rectangle's four half-planes. The
// result is an open ring (no repeated closing point); it is empty when the
// polygon and the rectangle do not overlap. Because the clip region is
// convex, a convex input yields a single convex ring.
func ClipToRect(poly []Point, r Rect) []Point {
	x0, y0, x1, y1 := float64(r.X0), float64(r.Y0), float64(r.X1), float64(r.Y1)

	out := append([]Point(nil), poly...)
	out = clipHalfPlane(out, func(p Point) bool { return p.X >= x0 }, verticalCut(x0))
	out = clipHalfPlane(out, func(p Point) bool { return p.X <= x1 }, verticalCut(x1))
	out = clipHalfPlane(out, func(p Point) bool { return p.Y >= y0 }, horizontalCut(y0))
	out = clipHalfPlane(out, func(p Point) bool { return p.Y <= y1 }, horizontalCut(y1))
	return out
}

func clipHalfPlane(in []Point, inside func(Point) bool, cut func(a, b Point) Point) []Point {
	if len(in) == 0 {
		return nil
	}
	out := make([]Point, 0, len(in)+2)
	prev := in[len(in)-1]
	prevIn := inside(prev)
	for _, cur := range in {
		curIn := inside(cur)
		switch {
		case curIn && !prevIn:
			out = append(out, cut(prev, cur), cur)
		case curIn:
			out = append(out, cur)
		case prevIn:
			out = append(out, cut(prev, cur))
		}
		prev, prevIn = cur, curIn
	}
	return out
}

func verticalCut(x float64) func(a, b Point) Point {
	return func(a, b Point) Point {
		t := (x - a.X) / (b.X - a.X)
		return Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
	}
}

func horizontalCut(y float64) func(a, b Point) Point {
	return func(a, b Point) Point {
		t := (y - a.Y) / (b.Y - a.Y)
		return Point{X: a.X + t*(b.X-a.X), Y: y}
	}
}

// SimplifyRing removes repeated vertices (including a closing vertex equal
// to the first one) and vertices lying on the line through their
// neighbours. Clipping emits both kinds whenever a polygon vertex or edge
// lies on the rectangle boundary.
func SimplifyRing(ring []Point) []Point {
	out := removeRepeated(ring)
	for changed := true; changed && len(out) >= 3; {
		changed = false
		for i := range out {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			if math.Abs(cross(prev, out[i], next)) <= areaEpsilon {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

func removeRepeated(ring []Point) []Point {
	out := make([]Point, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func samePoint(a, b Point) bool {
	return math.Abs(a.X-b.X) <= pointEpsilon && math.Abs(a.Y-b.Y) <= pointEpsilon
}

// ClipQuad intersects q with r and returns the intersection in r-local
// coordinates. The result is accepted only when it is itself a
// quadrilateral: exactly four distinct, non-collinear vertices enclosing a
// positive area. Triangles, pentagons and empty or sliver intersections are
// rejected rather than approximated.
func ClipQuad(q Quad, r Rect) (Quad, bool) {
	ring := SimplifyRing(ClipToRect(q[:], r))
	if len(ring) != 4 {
		return Quad{}, false
	}
	area := SignedArea(ring)
	if math.Abs(area) <= areaEpsilon {
		return Quad{}, false
	}
	if area < 0 {
		ring[1], ring[3] = ring[3], ring[1]
	}

	// Start at the top-left vertex and keep the clockwise traversal.
	start := 0
	for i := 1; i < len(ring); i++ {
		if ring[i].X+ring[i].Y < ring[start].X+ring[start].Y {
			start = i
		}
	}
	var out Quad
	dx, dy := -float64(r.X0), -float64(r.Y0)
	for i := range out {
		out[i] = ring[(start+i)%len(ring)].Offset(dx, dy)
	}
	return out, true
}

// Overlaps reports whether poly and r share a region of positive area.
func Overlaps(poly []Point, r Rect) bool {
	ring := SimplifyRing(ClipToRect(poly, r))
	return len(ring) >= 3 && math.Abs(SignedArea(ring)) > areaEpsilon
}
