package geometry

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genPoint generates a random point inside [lo, hi) on both axes.
func genPoint(lo, hi float64) gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(lo, hi),
		gen.Float64Range(lo, hi),
	).Map(func(vals []interface{}) Point {
		return Point{X: vals[0].(float64), Y: vals[1].(float64)}
	})
}

// genFourPoints generates four random points.
func genFourPoints(lo, hi float64) gopter.Gen {
	return gen.SliceOfN(4, genPoint(lo, hi)).Map(func(pts []Point) [4]Point {
		return [4]Point{pts[0], pts[1], pts[2], pts[3]}
	})
}

func hasTies(pts [4]Point) bool {
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if pts[i].X+pts[i].Y == pts[j].X+pts[j].Y || pts[i].Y-pts[i].X == pts[j].Y-pts[j].X {
				return true
			}
		}
	}
	return false
}

// TestOrderClockwise_PermutationInvariant verifies all 24 orderings agree.
func TestOrderClockwise_PermutationInvariant(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ordering ignores input order", prop.ForAll(
		func(pts [4]Point) bool {
			if hasTies(pts) {
				return true
			}
			want := OrderClockwise(pts)
			for _, p := range permutations(pts) {
				if OrderClockwise(p) != want {
					return false
				}
			}
			return true
		},
		genFourPoints(-500, 500),
	))

	properties.TestingRun(t)
}

// TestClipQuad_ContainedRoundTrip verifies a quad inside the rectangle comes
// back unchanged apart from the translation.
func TestClipQuad_ContainedRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)
	r := Rect{X0: 200, Y0: 100, X1: 600, Y1: 500}

	properties.Property("contained quad clips to itself", prop.ForAll(
		func(pts [4]Point) bool {
			q := OrderClockwise(pts)
			if len(SimplifyRing(q[:])) != 4 || q.Area() <= 1 {
				return true
			}
			got, ok := ClipQuad(q, r)
			if !ok {
				return false
			}
			want := q.Offset(-200, -100)
			for i := range want {
				if math.Abs(want[i].X-got[i].X) > 1e-9 || math.Abs(want[i].Y-got[i].Y) > 1e-9 {
					return false
				}
			}
			return math.Abs(got.Area()-q.Area()) < 1e-6
		},
		genInside(r),
	))

	properties.Property("disjoint quad is dropped", prop.ForAll(
		func(pts [4]Point) bool {
			q := OrderClockwise(pts)
			_, ok := ClipQuad(q, r)
			return !ok
		},
		genFourPoints(700, 900),
	))

	properties.TestingRun(t)
}

func genInside(r Rect) gopter.Gen {
	return gen.SliceOfN(4, gopter.CombineGens(
		gen.Float64Range(float64(r.X0)+1, float64(r.X1)-1),
		gen.Float64Range(float64(r.Y0)+1, float64(r.Y1)-1),
	).Map(func(vals []interface{}) Point {
		return Point{X: vals[0].(float64), Y: vals[1].(float64)}
	})).Map(func(pts []Point) [4]Point {
		return [4]Point{pts[0], pts[1], pts[2], pts[3]}
	})
}
