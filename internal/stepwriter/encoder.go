// =============================================================================
// Geometry to STEP Converter - STEP Encoder
// =============================================================================
//
// This module translates a geometry.Set into an ordered list of entity
// records and serializes them as an ISO-10303-21 document.
//
// ENCODING ORDER (identifiers depend on it):
//   1. Reset the identifier counter to 1 and clear the record list
//   2. One CARTESIAN_POINT per point, in load order
//   3. Per segment, in load order:
//      a. CARTESIAN_POINT for the start (no deduplication)
//      b. If the length is > 0: DIRECTION (unit), VECTOR, LINE
//      c. Zero-length segments stop after the start point
//   4. Placeholder surface when there are >= 3 segments:
//      start and end CARTESIAN_POINT of the first (up to) 4 segments,
//      a +Z DIRECTION and one PLANE on the first of those points
//   5. Placeholder solid, only if a surface was produced:
//      8 bounding box corner points and one BLOCK on the first corner
//
// The surface and solid are approximations, not surface fitting or B-rep
// construction.
//
// CONCURRENCY:
//   The counter and record list belong to the Encoder instance. Use one
//   Encoder per goroutine.
//
// =============================================================================

package stepwriter

import (
	"log/slog"
	"time"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
	"github.com/ginjaninja78/geometry-to-step/internal/logging"
)

// =============================================================================
// PLACEHOLDER PARAMETERS
// =============================================================================

const (
	// surfaceMinSegments is the segment count that triggers the plane.
	surfaceMinSegments = 3

	// surfaceMaxSegments is how many leading segments feed the plane.
	surfaceMaxSegments = 4
)

// =============================================================================
// ENCODER STRUCTURE
// =============================================================================

// Encoder builds STEP entity records from a geometry set.
type Encoder struct {
	// header is written at the top of every generated document.
	header Header

	// now supplies the FILE_NAME timestamp.
	now func() time.Time

	logger *slog.Logger

	// nextID is the identifier handed to the next record.
	nextID int

	// records accumulates the current pass. Reset by Encode.
	records []Record
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithHeader replaces the default document header fields.
// Empty fields keep their defaults.
func WithHeader(h Header) Option {
	return func(e *Encoder) {
		e.header = h.withDefaults()
	}
}

// WithClock sets the time source for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Encoder) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Encoder with default header fields and the wall clock.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		header: DefaultHeader(),
		now:    time.Now,
		logger: logging.Discard(),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode runs steps 1 to 5 of the encoding order and returns the records
// of this pass. Any state from a previous pass is discarded first.
func (e *Encoder) Encode(set *geometry.Set) []Record {
	// STEP 1: reset.
	e.nextID = 1
	e.records = make([]Record, 0, len(set.Points)+4*len(set.Segments)+20)

	// STEP 2: points.
	for _, p := range set.Points {
		e.cartesianPoint(p)
	}

	// STEP 3: segments.
	lines := 0
	for _, seg := range set.Segments {
		if e.segment(seg) {
			lines++
		}
	}

	// STEP 4 and 5: placeholder surface and solid.
	surfaces := e.surfacesFromSegments(set)
	solid := e.solidFromSurfaces(surfaces, set)

	e.logger.Debug("encoded geometry set",
		"set", set.Name,
		"points", len(set.Points),
		"segments", len(set.Segments),
		"lines", lines,
		"surfaces", len(surfaces),
		"solid", solid != 0,
		"records", len(e.records),
	)

	return e.records
}

// segment emits the records for one segment and reports whether a LINE
// was produced.
func (e *Encoder) segment(seg geometry.Segment) bool {
	startID := e.cartesianPoint(seg.Start)

	d := seg.End.Sub(seg.Start)
	magnitude := seg.Length()
	if !(magnitude > 0) {
		// Degenerate: start point only.
		return false
	}

	unit := geometry.Point{X: d.X / magnitude, Y: d.Y / magnitude, Z: d.Z / magnitude}
	dirID := e.direction(unit)
	vecID := e.vector(dirID, magnitude)
	e.line(startID, vecID)
	return true
}

// surfacesFromSegments emits the placeholder plane. At most one plane is
// produced regardless of the segment count.
func (e *Encoder) surfacesFromSegments(set *geometry.Set) []int {
	if len(set.Segments) < surfaceMinSegments {
		return nil
	}

	segments := set.Segments
	if len(segments) > surfaceMaxSegments {
		segments = segments[:surfaceMaxSegments]
	}

	pointIDs := make([]int, 0, 2*len(segments))
	for _, seg := range segments {
		pointIDs = append(pointIDs, e.cartesianPoint(seg.Start))
		pointIDs = append(pointIDs, e.cartesianPoint(seg.End))
	}

	normalID := e.direction(geometry.Point{X: 0, Y: 0, Z: 1})
	planeID := e.add(TypePlane, "'',"+formatRef(pointIDs[0])+","+formatRef(normalID))

	return []int{planeID}
}

// solidFromSurfaces emits the bounding box BLOCK. It returns the BLOCK id,
// or 0 when no surface exists.
func (e *Encoder) solidFromSurfaces(surfaceIDs []int, set *geometry.Set) int {
	if len(surfaceIDs) == 0 {
		return 0
	}

	lo, hi := set.BoundingBox()

	// Bottom face counter-clockwise from the min corner, then the top face.
	corners := [8]geometry.Point{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}

	var cornerIDs [8]int
	for i, c := range corners {
		cornerIDs[i] = e.cartesianPoint(c)
	}

	return e.add(TypeBlock, "'',"+formatRef(cornerIDs[0])+","+
		formatReal(hi.X-lo.X)+","+formatReal(hi.Y-lo.Y)+","+formatReal(hi.Z-lo.Z))
}

// =============================================================================
// RECORD CONSTRUCTORS
// =============================================================================

func (e *Encoder) add(entityType, attributes string) int {
	id := e.nextID
	e.nextID++
	e.records = append(e.records, Record{ID: id, Type: entityType, Attributes: attributes})
	return id
}

func (e *Encoder) cartesianPoint(p geometry.Point) int {
	return e.add(TypeCartesianPoint, "'',"+formatTriple(p.X, p.Y, p.Z))
}

func (e *Encoder) direction(d geometry.Point) int {
	return e.add(TypeDirection, "'',"+formatTriple(d.X, d.Y, d.Z))
}

func (e *Encoder) vector(directionID int, magnitude float64) int {
	return e.add(TypeVector, "'',"+formatRef(directionID)+","+formatReal(magnitude))
}

func (e *Encoder) line(pointID, vectorID int) int {
	return e.add(TypeLine, "'',"+formatRef(pointID)+","+formatRef(vectorID))
}

// =============================================================================
// INSPECTION
// =============================================================================

// Records returns a copy of the records from the last pass.
func (e *Encoder) Records() []Record {
	out := make([]Record, len(e.records))
	copy(out, e.records)
	return out
}

// Stats counts the records of the last pass by entity type.
type Stats struct {
	Records         int
	CartesianPoints int
	Directions      int
	Vectors         int
	Lines           int
	Planes          int
	Blocks          int
}

// Stats returns per-type counts for the last pass.
func (e *Encoder) Stats() Stats {
	return CountRecords(e.records)
}

// CountRecords tallies records by entity type.
func CountRecords(records []Record) Stats {
	s := Stats{Records: len(records)}
	for _, r := range records {
		switch r.Type {
		case TypeCartesianPoint:
			s.CartesianPoints++
		case TypeDirection:
			s.Directions++
		case TypeVector:
			s.Vectors++
		case TypeLine:
			s.Lines++
		case TypePlane:
			s.Planes++
		case TypeBlock:
			s.Blocks++
		}
	}
	return s
}
