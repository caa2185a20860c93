package converter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/geometry-to-step/internal/config"
	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

func TestTransformChain(t *testing.T) {
	set := geometry.NewSet("part")
	set.AddPoint(geometry.Point{X: 1, Y: 2, Z: 3})
	set.AddSegment(geometry.Segment{End: geometry.Point{X: 1}})

	tr := NewTransformer([]config.TransformationAction{
		{Type: "scale", Factor: 2},
		{Type: "translate", Offset: []float64{10, 0, -6}},
	})

	out, err := tr.Transform(set)
	require.NoError(t, err)
	require.Equal(t, "part", out.Name)
	require.Equal(t, []geometry.Point{{X: 12, Y: 4, Z: 0}}, out.Points)
	require.Equal(t, []geometry.Segment{{
		Start: geometry.Point{X: 10, Z: -6},
		End:   geometry.Point{X: 12, Z: -6},
	}}, out.Segments)

	// Input is untouched.
	require.Equal(t, geometry.Point{X: 1, Y: 2, Z: 3}, set.Points[0])
}

func TestTransformRound(t *testing.T) {
	set := geometry.NewSet("")
	set.AddPoint(geometry.Point{X: 1.23456, Y: -2.5, Z: 0.125})

	out, err := NewTransformer([]config.TransformationAction{{Type: "round", Precision: 2}}).Transform(set)
	require.NoError(t, err)
	require.Equal(t, geometry.Point{X: 1.23, Y: -2.5, Z: 0.13}, out.Points[0])

	out, err = NewTransformer([]config.TransformationAction{{Type: "round"}}).Transform(set)
	require.NoError(t, err)
	require.Equal(t, geometry.Point{X: 1, Y: -3, Z: 0}, out.Points[0])
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		name   string
		action config.TransformationAction
		msg    string
	}{
		{"unknown", config.TransformationAction{Type: "shear"}, "unknown transformation type"},
		{"zero factor", config.TransformationAction{Type: "scale"}, "factor must be non-zero"},
		{"short offset", config.TransformationAction{Type: "translate", Offset: []float64{1}}, "3 elements"},
		{"negative precision", config.TransformationAction{Type: "round", Precision: -1}, "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransformer([]config.TransformationAction{tt.action}).Transform(geometry.NewSet(""))
			require.ErrorContains(t, err, "transformation 1")
			require.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestTransformerEmpty(t *testing.T) {
	require.True(t, NewTransformer(nil).Empty())
	require.False(t, NewTransformer([]config.TransformationAction{{Type: "round"}}).Empty())
}
