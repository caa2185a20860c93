// =============================================================================
// Geometry to STEP Converter - Geometry Model
// =============================================================================
//
// This package holds the in-memory representation of the geometry that is
// exported: points, line segments, and a named set of both.
//
// LIFECYCLE:
//   A Set is built once by a loader (append-only), consumed once by the
//   STEP encoder, then discarded. Nothing mutates a Set after loading;
//   coordinate transformations build a new Set instead.
//
// =============================================================================

package geometry

import (
	"fmt"
	"math"
)

// DefaultName is the name given to a Set when the source does not name it.
const DefaultName = "B1"

// =============================================================================
// POINT
// =============================================================================

// Point is a 3D coordinate. It has no identity beyond its coordinates.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Sub returns the displacement p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale multiplies every coordinate by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f, Z: p.Z * f}
}

// Norm returns the Euclidean length of p treated as a vector. It is zero
// only when every component is zero; tiny components do not underflow.
func (p Point) Norm() float64 {
	return math.Hypot(math.Hypot(p.X, p.Y), p.Z)
}

// IsFinite reports whether all three coordinates are finite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

// String formats p as "(x, y, z)".
func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// =============================================================================
// SEGMENT
// =============================================================================

// Segment is an ordered pair of points.
type Segment struct {
	Start Point
	End   Point
}

// Length returns the Euclidean distance between Start and End. It is zero
// only when Start equals End.
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Norm()
}

func (s Segment) String() string {
	return s.Start.String() + " -> " + s.End.String()
}

// IsDegenerate reports whether the segment has zero length.
func (s Segment) IsDegenerate() bool {
	return s.Length() == 0
}

// Length returns the Euclidean length of s.
func Length(s Segment) float64 {
	return s.Length()
}

// =============================================================================
// SET
// =============================================================================

// Set is a named, insertion-ordered collection of points and segments.
type Set struct {
	// Name identifies the set in logs and summaries.
	// Default: "B1"
	Name string

	// Points in load order.
	Points []Point

	// Segments in load order.
	Segments []Segment
}

// NewSet returns an empty Set. An empty name falls back to DefaultName.
func NewSet(name string) *Set {
	if name == "" {
		name = DefaultName
	}
	return &Set{Name: name}
}

// AddPoint appends p. Coordinates are not validated.
func (s *Set) AddPoint(p Point) {
	s.Points = append(s.Points, p)
}

// AddSegment appends seg. Coordinates are not validated.
func (s *Set) AddSegment(seg Segment) {
	s.Segments = append(s.Segments, seg)
}

// BoundingBox returns the component-wise minimum and maximum over the
// set's points. Segment endpoints do not contribute.
//
// An empty point list yields (origin, origin). This is a defined fallback,
// not an error.
func (s *Set) BoundingBox() (Point, Point) {
	if len(s.Points) == 0 {
		return Point{}, Point{}
	}

	lo, hi := s.Points[0], s.Points[0]
	for _, p := range s.Points[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		lo.Z = math.Min(lo.Z, p.Z)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		hi.Z = math.Max(hi.Z, p.Z)
	}

	return lo, hi
}

// TotalLength returns the summed length of all segments.
func (s *Set) TotalLength() float64 {
	var total float64
	for _, seg := range s.Segments {
		total += seg.Length()
	}
	return total
}

// AverageLength returns the mean segment length, or 0 without segments.
func (s *Set) AverageLength() float64 {
	if len(s.Segments) == 0 {
		return 0
	}
	return s.TotalLength() / float64(len(s.Segments))
}

// Stats summarizes a Set for reporting.
type Stats struct {
	Name          string
	Points        int
	Segments      int
	Min           Point
	Max           Point
	TotalLength   float64
	AverageLength float64
}

// Stats computes the summary figures printed after a conversion.
func (s *Set) Stats() Stats {
	lo, hi := s.BoundingBox()
	return Stats{
		Name:          s.Name,
		Points:        len(s.Points),
		Segments:      len(s.Segments),
		Min:           lo,
		Max:           hi,
		TotalLength:   s.TotalLength(),
		AverageLength: s.AverageLength(),
	}
}
