// =============================================================================
// Geometry to STEP Converter - Sample Files
// =============================================================================
//
// Sample inputs describe a 10 x 10 x 10 cube: 8 corner points and its 12
// edges. They are written in every supported format so a new user can run
// a conversion without preparing data.
//
// =============================================================================

package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// SampleName is the set name used by the sample files.
const SampleName = "B1_Sample"

// Sample file names written by WriteSamples.
const (
	SampleJSONFile = "b1_sample.json"
	SampleCSVFile  = "b1_sample.csv"
	SampleXLSXFile = "b1_sample.xlsx"
	SampleYAMLFile = "b1_sample.yaml"
)

// sampleCSV is the sectioned CSV sample, comments included.
const sampleCSV = `# B1 Entity Coordinate File
# Lines starting with # are comments
POINTS
# x,y,z coordinates
0,0,0
10,0,0
10,10,0
0,10,0
0,0,10
10,0,10
10,10,10
0,10,10
LINES
# x1,y1,z1,x2,y2,z2 (start and end coordinates)
0,0,0,10,0,0
10,0,0,10,10,0
10,10,0,0,10,0
0,10,0,0,0,0
0,0,0,0,0,10
10,0,0,10,0,10
10,10,0,10,10,10
0,10,0,0,10,10
0,0,10,10,0,10
10,0,10,10,10,10
10,10,10,0,10,10
0,10,10,0,0,10
`

// SampleSet returns the cube sample in memory.
func SampleSet() *geometry.Set {
	set := geometry.NewSet(SampleName)

	corners := []geometry.Point{
		{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0},
		{X: 0, Y: 0, Z: 10}, {X: 10, Y: 0, Z: 10}, {X: 10, Y: 10, Z: 10}, {X: 0, Y: 10, Z: 10},
	}
	for _, c := range corners {
		set.AddPoint(c)
	}

	// Bottom ring, verticals, top ring.
	edges := [][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
	}
	for _, e := range edges {
		set.AddSegment(geometry.Segment{Start: corners[e[0]], End: corners[e[1]]})
	}

	return set
}

// WriteSamples writes the sample in every format into dir and returns the
// paths in the order JSON, CSV, XLSX, YAML.
func WriteSamples(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sample directory: %w", err)
	}

	writers := []struct {
		name  string
		write func(string) error
	}{
		{SampleJSONFile, WriteSampleJSON},
		{SampleCSVFile, WriteSampleCSV},
		{SampleXLSXFile, WriteSampleXLSX},
		{SampleYAMLFile, WriteSampleYAML},
	}

	paths := make([]string, 0, len(writers))
	for _, w := range writers {
		path := filepath.Join(dir, w.name)
		if err := w.write(path); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", w.name, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteSampleJSON writes the sample as indented JSON.
func WriteSampleJSON(path string) error {
	data, err := json.MarshalIndent(fromSet(SampleSet()), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteSampleYAML writes the sample as YAML.
func WriteSampleYAML(path string) error {
	data, err := yaml.Marshal(fromSet(SampleSet()))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteSampleCSV writes the sectioned CSV sample.
func WriteSampleCSV(path string) error {
	return os.WriteFile(path, []byte(sampleCSV), 0o644)
}

// WriteSampleXLSX writes the sample as a workbook with Points and Lines
// sheets.
func WriteSampleXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	set := SampleSet()

	if _, err := f.NewSheet(PointsSheet); err != nil {
		return err
	}
	if err := setRow(f, PointsSheet, 1, "x", "y", "z"); err != nil {
		return err
	}
	for i, p := range set.Points {
		if err := setRow(f, PointsSheet, i+2, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(LinesSheet); err != nil {
		return err
	}
	if err := setRow(f, LinesSheet, 1, "x1", "y1", "z1", "x2", "y2", "z2"); err != nil {
		return err
	}
	for i, s := range set.Segments {
		if err := setRow(f, LinesSheet, i+2,
			s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z); err != nil {
			return err
		}
	}

	// Drop the default sheet created by NewFile.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// setRow writes values starting at column A of the given 1-based row.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
