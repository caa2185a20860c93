// =============================================================================
// Geometry to STEP Converter - Transformation Engine
// =============================================================================
//
// This module applies coordinate transformations to a loaded geometry set
// before it is validated and encoded.
//
// TRANSFORMATION TYPES:
//   - scale     : multiply every coordinate by a factor (unit conversion,
//                 e.g. 25.4 for inches to millimetres)
//   - translate : add an [dx, dy, dz] offset to every coordinate
//   - round     : round every coordinate to a number of decimal places
//
// Actions are applied in configuration order, to points and to both ends
// of every segment. The input set is never modified.
//
// CUSTOMIZATION:
//   - Add new transformation types by adding a case to pointFunc and to
//     the supported list in the config package
//
// =============================================================================

package converter

import (
	"fmt"
	"math"

	"github.com/ginjaninja78/geometry-to-step/internal/config"
	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies a fixed list of coordinate actions.
type Transformer struct {
	actions []config.TransformationAction
}

// NewTransformer creates a new Transformer with the given actions.
func NewTransformer(actions []config.TransformationAction) *Transformer {
	return &Transformer{
		actions: actions,
	}
}

// Empty reports whether the transformer has nothing to do.
func (t *Transformer) Empty() bool {
	return len(t.actions) == 0
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform returns a new set with every action applied.
//
// PARAMETERS:
//   - set: The loaded geometry set. It is not modified.
//
// RETURNS:
//   - The transformed copy, carrying the same name.
//   - An error if an action is unknown or malformed.
func (t *Transformer) Transform(set *geometry.Set) (*geometry.Set, error) {
	fns := make([]func(geometry.Point) geometry.Point, 0, len(t.actions))
	for i, action := range t.actions {
		fn, err := pointFunc(action)
		if err != nil {
			return nil, fmt.Errorf("transformation %d (%s): %w", i+1, action.Type, err)
		}
		fns = append(fns, fn)
	}

	apply := func(p geometry.Point) geometry.Point {
		for _, fn := range fns {
			p = fn(p)
		}
		return p
	}

	out := &geometry.Set{
		Name:     set.Name,
		Points:   make([]geometry.Point, 0, len(set.Points)),
		Segments: make([]geometry.Segment, 0, len(set.Segments)),
	}
	for _, p := range set.Points {
		out.AddPoint(apply(p))
	}
	for _, s := range set.Segments {
		out.AddSegment(geometry.Segment{Start: apply(s.Start), End: apply(s.End)})
	}

	return out, nil
}

// pointFunc builds the per-point function for a single action.
//
// SUPPORTED TRANSFORMATIONS:
//   - scale:     multiply every coordinate by Factor
//   - translate: add Offset (three values)
//   - round:     round to Precision decimal places
func pointFunc(action config.TransformationAction) (func(geometry.Point) geometry.Point, error) {
	switch action.Type {

	case "scale":
		// EXAMPLE:
		//   Input: (1, 2, 3)
		//   Action: scale with factor 25.4
		//   Output: (25.4, 50.8, 76.2)
		if action.Factor == 0 {
			return nil, fmt.Errorf("factor must be non-zero")
		}
		f := action.Factor
		return func(p geometry.Point) geometry.Point {
			return p.Scale(f)
		}, nil

	case "translate":
		// EXAMPLE:
		//   Input: (1, 2, 3)
		//   Action: translate with offset [10, 0, -3]
		//   Output: (11, 2, 0)
		if len(action.Offset) != 3 {
			return nil, fmt.Errorf("offset must have 3 elements, got %d", len(action.Offset))
		}
		d := geometry.Point{X: action.Offset[0], Y: action.Offset[1], Z: action.Offset[2]}
		return func(p geometry.Point) geometry.Point {
			return geometry.Point{X: p.X + d.X, Y: p.Y + d.Y, Z: p.Z + d.Z}
		}, nil

	case "round":
		// EXAMPLE:
		//   Input: (1.23456, 2, 3)
		//   Action: round with precision 2
		//   Output: (1.23, 2, 3)
		if action.Precision < 0 {
			return nil, fmt.Errorf("precision must be non-negative")
		}
		scale := math.Pow(10, float64(action.Precision))
		return func(p geometry.Point) geometry.Point {
			return geometry.Point{
				X: roundTo(p.X, scale),
				Y: roundTo(p.Y, scale),
				Z: roundTo(p.Z, scale),
			}
		}, nil

	default:
		return nil, fmt.Errorf("unknown transformation type")
	}
}

// roundTo rounds v half away from zero at 1/scale. Non-finite values pass
// through.
func roundTo(v, scale float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*scale) / scale
}
