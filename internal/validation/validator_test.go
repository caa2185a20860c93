package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

func TestValidateEmptySet(t *testing.T) {
	result := Validate(geometry.NewSet(""))

	require.True(t, result.IsValid())
	require.Equal(t, 2, result.InfoCount)
	require.Equal(t, RuleEmptySet, result.Findings[0].Rule)
	require.Equal(t, RuleNoSurface, result.Findings[1].Rule)
}

func TestValidateCleanSet(t *testing.T) {
	set := geometry.NewSet("")
	set.AddPoint(geometry.Point{X: 1})
	for i := 0; i < 3; i++ {
		set.AddSegment(geometry.Segment{End: geometry.Point{X: float64(i + 1)}})
	}

	result := Validate(set)
	require.Empty(t, result.Findings)
	require.True(t, result.IsValid())
}

func TestValidateFindings(t *testing.T) {
	set := geometry.NewSet("")
	set.AddPoint(geometry.Point{X: math.NaN()})
	set.AddSegment(geometry.Segment{Start: geometry.Point{X: 1}, End: geometry.Point{X: 1}})
	set.AddSegment(geometry.Segment{End: geometry.Point{Z: math.Inf(1)}})

	result := Validate(set)

	require.False(t, result.IsValid())
	require.Equal(t, 2, result.ErrorCount)
	require.Equal(t, 1, result.WarningCount)
	require.Equal(t, 1, result.InfoCount)

	errs := result.Errors()
	require.Len(t, errs, 2)
	require.Equal(t, "points[0]", errs[0].Field)
	require.Equal(t, "lines[1].end", errs[1].Field)

	require.Equal(t, RuleZeroLength, result.Findings[1].Rule)
	require.Equal(t, "lines[0]", result.Findings[1].Field)
}

func TestErrorString(t *testing.T) {
	e := &Error{Severity: SeverityWarning, Rule: RuleZeroLength, Field: "lines[2]", Message: "zero"}
	require.Equal(t, "[WARNING] zero_length lines[2]: zero", e.Error())

	e = &Error{Severity: SeverityInfo, Rule: RuleEmptySet, Message: "empty"}
	require.Equal(t, "[INFO] empty_set: empty", e.Error())
}

func TestFormatErrors(t *testing.T) {
	require.Equal(t, "No validation findings.", FormatErrors(nil))

	out := FormatErrors(Validate(geometry.NewSet("")).Findings)
	require.Contains(t, out, "Validation findings (2):")
	require.Contains(t, out, "1. [INFO] empty_set")
}

func TestValidateTinySegmentIsNotZeroLength(t *testing.T) {
	set := geometry.NewSet("")
	set.AddSegment(geometry.Segment{End: geometry.Point{X: 1e-200}})

	result := Validate(set)
	for _, f := range result.Findings {
		require.NotEqual(t, RuleZeroLength, f.Rule)
	}
	require.Zero(t, result.WarningCount)
}
