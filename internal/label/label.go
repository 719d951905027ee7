// Package label reads and writes quadrilateral annotation files: one record
// per line, eight comma-separated coordinates followed by free text.
package label

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/tilecrop/internal/geometry"
)

// IgnoreTexts lists the text values that mark a region as "don't care".
var IgnoreTexts = []string{"*", "###"}

const (
	coordFields = 8
	bom         = "\ufeff"
)

// Annotation is one labelled region.
type Annotation struct {
	Polygon geometry.Quad
	Text    string
	Ignore  bool
}

// Scale returns a copy of the annotation with its polygon scaled by s.
func (a Annotation) Scale(s float64) Annotation {
	a.Polygon = a.Polygon.Scale(s)
	return a
}

// Scale applies s to every annotation and returns a new slice.
func Scale(anns []Annotation, s float64) []Annotation {
	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = a.Scale(s)
	}
	return out
}

// IsIgnoreText reports whether text is one of the ignore sentinels.
func IsIgnoreText(text string) bool {
	for _, s := range IgnoreTexts {
		if text == s {
			return true
		}
	}
	return false
}

var (
	// ErrTooFewFields is returned for lines without eight coordinates and a text field.
	ErrTooFewFields = errors.New("expected 8 coordinates followed by text")
	// ErrDegeneratePolygon is returned when the ordered polygon encloses no area.
	ErrDegeneratePolygon = errors.New("polygon has non-positive area")
	// ErrLineTooLong is returned for lines above the per-line size limit.
	ErrLineTooLong = errors.New("line exceeds size limit")
)

// ParseError describes a rejected label line.
type ParseError struct {
	Source string
	Line   int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("label line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses "x1,y1,x2,y2,x3,y3,x4,y4,text". Everything after the
// eighth comma is the text, so commas inside the text are preserved. The
// polygon is put into clockwise order and must enclose a positive area.
func ParseLine(line string) (Annotation, error) {
	line = strings.TrimSpace(strings.TrimPrefix(line, bom))
	fields := strings.SplitN(line, ",", coordFields+1)
	if len(fields) < coordFields+1 {
		return Annotation{}, ErrTooFewFields
	}

	var vals [coordFields]float64
	for i := range coordFields {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Annotation{}, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Annotation{}, fmt.Errorf("coordinate %d: not finite", i+1)
		}
		vals[i] = v
	}

	var pts [4]geometry.Point
	for i := range pts {
		pts[i] = geometry.Point{X: vals[2*i], Y: vals[2*i+1]}
	}
	quad := geometry.OrderClockwise(pts)
	if quad.Area() <= 0 {
		return Annotation{}, ErrDegeneratePolygon
	}

	text := fields[coordFields]
	return Annotation{Polygon: quad, Text: text, Ignore: IsIgnoreText(text)}, nil
}

// FormatLine renders an annotation in the input format with coordinates
// truncated toward zero.
func FormatLine(a Annotation) string {
	var sb strings.Builder
	for _, p := range a.Polygon {
		sb.WriteString(strconv.Itoa(int(p.X)))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(int(p.Y)))
		sb.WriteByte(',')
	}
	sb.WriteString(a.Text)
	return sb.String()
}
