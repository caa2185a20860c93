package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// =============================================================================
// DOCUMENT RECORDS
// =============================================================================
// JSON and YAML share one document shape. Coordinates are pointers so that
// a missing field is an error instead of a silent zero.

type coordRecord struct {
	X *float64 `json:"x" yaml:"x"`
	Y *float64 `json:"y" yaml:"y"`
	Z *float64 `json:"z" yaml:"z"`
}

type lineRecord struct {
	Start *coordRecord `json:"start" yaml:"start"`
	End   *coordRecord `json:"end" yaml:"end"`
}

type document struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	Points []coordRecord `json:"points" yaml:"points"`
	Lines  []lineRecord  `json:"lines" yaml:"lines"`
}

func (c *coordRecord) point(field string) (geometry.Point, error) {
	if c == nil {
		return geometry.Point{}, fmt.Errorf("%s: missing", field)
	}
	switch {
	case c.X == nil:
		return geometry.Point{}, fmt.Errorf("%s: missing field x", field)
	case c.Y == nil:
		return geometry.Point{}, fmt.Errorf("%s: missing field y", field)
	case c.Z == nil:
		return geometry.Point{}, fmt.Errorf("%s: missing field z", field)
	}
	return geometry.Point{X: *c.X, Y: *c.Y, Z: *c.Z}, nil
}

// toSet converts a decoded document into a geometry set.
func (d *document) toSet() (*geometry.Set, error) {
	set := geometry.NewSet(d.Name)

	for i := range d.Points {
		p, err := d.Points[i].point(fmt.Sprintf("points[%d]", i))
		if err != nil {
			return nil, err
		}
		set.AddPoint(p)
	}

	for i, l := range d.Lines {
		start, err := l.Start.point(fmt.Sprintf("lines[%d].start", i))
		if err != nil {
			return nil, err
		}
		end, err := l.End.point(fmt.Sprintf("lines[%d].end", i))
		if err != nil {
			return nil, err
		}
		set.AddSegment(geometry.Segment{Start: start, End: end})
	}

	return set, nil
}

// fromSet builds a document for writing sample files.
func fromSet(set *geometry.Set) document {
	coord := func(p geometry.Point) coordRecord {
		x, y, z := p.X, p.Y, p.Z
		return coordRecord{X: &x, Y: &y, Z: &z}
	}

	doc := document{Name: set.Name}
	for _, p := range set.Points {
		doc.Points = append(doc.Points, coord(p))
	}
	for _, s := range set.Segments {
		start, end := coord(s.Start), coord(s.End)
		doc.Lines = append(doc.Lines, lineRecord{Start: &start, End: &end})
	}
	return doc
}

// =============================================================================
// JSON AND YAML LOADERS
// =============================================================================

// LoadJSON reads a geometry set from a JSON document.
func LoadJSON(path string) (*geometry.Set, error) {
	return loadDocument(path, FormatJSON, json.Unmarshal)
}

// LoadYAML reads a geometry set from a YAML document.
func LoadYAML(path string) (*geometry.Set, error) {
	return loadDocument(path, FormatYAML, yaml.Unmarshal)
}

func loadDocument(path, format string, unmarshal func([]byte, any) error) (*geometry.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: err}
	}

	var doc document
	if err := unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: fmt.Errorf("failed to parse document: %w", err)}
	}

	set, err := doc.toSet()
	if err != nil {
		return nil, &LoadError{Path: path, Format: format, Err: err}
	}

	return set, nil
}
