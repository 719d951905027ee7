// Package geometry holds the planar primitives used when re-projecting
// quadrilateral annotations into patch-local coordinates.
package geometry

import "image"

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// Scale returns p with both coordinates multiplied by s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Offset returns p translated by dx, dy.
func (p Point) Offset(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Rect is a half-open, axis-aligned pixel rectangle [X0, X1) x [Y0, Y1).
type Rect struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// Width returns the rectangle width.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns the rectangle height.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// ImageRect converts to the standard library rectangle.
func (r Rect) ImageRect() image.Rectangle { return image.Rect(r.X0, r.Y0, r.X1, r.Y1) }

// SignedArea returns the shoelace area of a ring. With image coordinates
// (y down) a visually clockwise ring has positive area.
func SignedArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
