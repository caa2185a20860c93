// =============================================================================
// Geometry to STEP Converter - Entity Records
// =============================================================================
//
// An entity record is one line of the DATA section:
//
//   #<id> = <TYPE>(<attributes>);
//
// Identifiers are assigned by the Encoder starting at 1 with no gaps. A
// record only ever references records with a smaller identifier.
//
// =============================================================================

package stepwriter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// ENTITY TYPES
// =============================================================================

// Entity type tags emitted by the encoder.
//
// BLOCK is a CSG primitive used here as a placeholder solid for the
// bounding box. It is emitted as-is.
const (
	TypeCartesianPoint = "CARTESIAN_POINT"
	TypeDirection      = "DIRECTION"
	TypeVector         = "VECTOR"
	TypeLine           = "LINE"
	TypePlane          = "PLANE"
	TypeBlock          = "BLOCK"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is a single (identifier, type, attribute text) entity.
type Record struct {
	// ID is the entity instance number, written as #ID.
	ID int

	// Type is the entity type tag, e.g. CARTESIAN_POINT.
	Type string

	// Attributes is the raw text between the parentheses.
	Attributes string
}

// String renders the record as a DATA section line (without newline).
func (r Record) String() string {
	return fmt.Sprintf("#%d = %s(%s);", r.ID, r.Type, r.Attributes)
}

var referencePattern = regexp.MustCompile(`#(\d+)`)

// References returns the identifiers this record refers to, in order.
func (r Record) References() []int {
	matches := referencePattern.FindAllStringSubmatch(r.Attributes, -1)
	refs := make([]int, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		refs = append(refs, id)
	}
	return refs
}

// =============================================================================
// ATTRIBUTE FORMATTING
// =============================================================================

// formatReal writes v as a STEP REAL literal. A REAL always carries a
// decimal point, including before the exponent ("1.E+21").
//
// Non-finite values are passed through unchanged; the encoder does not
// validate coordinates.
func formatReal(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == 0 {
		// Normalizes -0.
		return "0.0"
	}

	abs := math.Abs(v)
	if abs >= 1e-4 && abs < 1e15 {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, 64)
	if i := strings.IndexByte(s, 'E'); i >= 0 && !strings.Contains(s[:i], ".") {
		s = s[:i] + "." + s[i:]
	}
	return s
}

// formatTriple writes "(a,b,c)" with REAL literals.
func formatTriple(a, b, c float64) string {
	return "(" + formatReal(a) + "," + formatReal(b) + "," + formatReal(c) + ")"
}

// formatString writes a quoted STEP string. Apostrophes are doubled.
func formatString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// formatRef writes an entity reference.
func formatRef(id int) string {
	return "#" + strconv.Itoa(id)
}
