// =============================================================================
// Geometry to STEP Converter - Validation Engine
// =============================================================================
//
// This module checks a loaded geometry set before it is encoded. It never
// changes the set; the encoder accepts anything, and these findings only
// tell the operator what the output will look like.
//
// RULES:
//   - non_finite      (error)   : a coordinate is NaN or infinite
//   - zero_length     (warning) : a segment has identical endpoints; the
//                                 encoder emits its start point only
//   - no_surface      (info)    : fewer than 3 segments; no plane and no
//                                 block will be generated
//   - empty_set       (info)    : no points and no segments
//
// ERROR HANDLING:
//   Findings are collected, not returned one by one. The converter decides
//   whether errors abort the conversion (strict_validation).
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// =============================================================================
// SEVERITIES AND RULES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule names.
const (
	RuleNonFinite  = "non_finite"
	RuleZeroLength = "zero_length"
	RuleNoSurface  = "no_surface"
	RuleEmptySet   = "empty_set"
)

// surfaceMinSegments mirrors the encoder's placeholder plane threshold.
const surfaceMinSegments = 3

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// Error is a single validation finding.
type Error struct {
	// Severity is "error", "warning" or "info".
	Severity string

	// Rule is the rule that produced the finding.
	Rule string

	// Field locates the record, e.g. "points[3]" or "lines[0].end".
	// Empty for set-level findings.
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Rule, e.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", strings.ToUpper(e.Severity), e.Rule, e.Field, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the findings for one set.
type Result struct {
	// Findings in discovery order: points, then segments, then set level.
	Findings []*Error

	ErrorCount   int
	WarningCount int
	InfoCount    int
}

// IsValid is true when there are no error-level findings.
func (r *Result) IsValid() bool {
	return r.ErrorCount == 0
}

// Errors returns only the error-level findings.
func (r *Result) Errors() []*Error {
	var out []*Error
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

func (r *Result) add(e *Error) {
	r.Findings = append(r.Findings, e)
	switch e.Severity {
	case SeverityError:
		r.ErrorCount++
	case SeverityWarning:
		r.WarningCount++
	default:
		r.InfoCount++
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate runs every rule against set.
func Validate(set *geometry.Set) *Result {
	result := &Result{}

	for i, p := range set.Points {
		validatePoint(result, fmt.Sprintf("points[%d]", i), p)
	}

	for i, s := range set.Segments {
		validatePoint(result, fmt.Sprintf("lines[%d].start", i), s.Start)
		validatePoint(result, fmt.Sprintf("lines[%d].end", i), s.End)

		if s.IsDegenerate() {
			result.add(&Error{
				Severity: SeverityWarning,
				Rule:     RuleZeroLength,
				Field:    fmt.Sprintf("lines[%d]", i),
				Message:  "segment has zero length; no direction, vector or line is generated",
			})
		}
	}

	if len(set.Points) == 0 && len(set.Segments) == 0 {
		result.add(&Error{
			Severity: SeverityInfo,
			Rule:     RuleEmptySet,
			Message:  "geometry set is empty; the document will have no data records",
		})
	}

	if len(set.Segments) < surfaceMinSegments {
		result.add(&Error{
			Severity: SeverityInfo,
			Rule:     RuleNoSurface,
			Message: fmt.Sprintf("%d segment(s), at least %d are needed for the placeholder plane and block",
				len(set.Segments), surfaceMinSegments),
		})
	}

	return result
}

// validatePoint reports non-finite coordinates.
func validatePoint(result *Result, field string, p geometry.Point) {
	if p.IsFinite() {
		return
	}
	result.add(&Error{
		Severity: SeverityError,
		Rule:     RuleNonFinite,
		Field:    field,
		Message:  fmt.Sprintf("coordinate is not finite (%v, %v, %v)", p.X, p.Y, p.Z),
	})
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors renders findings one per line for console output.
func FormatErrors(findings []*Error) string {
	if len(findings) == 0 {
		return "No validation findings."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation findings (%d):\n", len(findings))
	for i, f := range findings {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, f.Error())
	}
	return b.String()
}
