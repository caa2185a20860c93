// =============================================================================
// Geometry to STEP Converter - CSV Loader
// =============================================================================
//
// The CSV format is sectioned. A line holding only POINTS or LINES
// (case-insensitive) switches the section; rows before the first marker
// are ignored.
//
//   # B1 Entity Coordinate File
//   POINTS
//   0,0,0
//   10,0,0
//   LINES
//   0,0,0,10,0,0
//
// ROW RULES:
//   - Lines starting with '#' and blank lines are skipped
//   - POINTS rows need at least 3 fields, LINES rows at least 6;
//     shorter rows are skipped
//   - A field that is not a number fails the whole load
//
// =============================================================================

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

type csvSection int

const (
	sectionNone csvSection = iota
	sectionPoints
	sectionLines
)

// LoadCSV reads a geometry set from a sectioned CSV file.
func LoadCSV(path string) (*geometry.Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: FormatCSV, Err: err}
	}
	defer file.Close()

	set, err := ParseCSV(file)
	if err != nil {
		return nil, &LoadError{Path: path, Format: FormatCSV, Err: err}
	}
	return set, nil
}

// ParseCSV reads the sectioned CSV format from r.
func ParseCSV(r io.Reader) (*geometry.Set, error) {
	reader := csv.NewReader(r)
	configureReader(reader)

	set := geometry.NewSet("")
	section := sectionNone

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if isRowEmpty(row) {
			continue
		}

		line, _ := reader.FieldPos(0)

		if len(row) == 1 {
			switch strings.ToUpper(strings.TrimSpace(row[0])) {
			case "POINTS":
				section = sectionPoints
				continue
			case "LINES":
				section = sectionLines
				continue
			}
		}

		switch section {
		case sectionPoints:
			if len(row) < 3 {
				continue
			}
			values, err := parseFloats(row[:3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			set.AddPoint(geometry.Point{X: values[0], Y: values[1], Z: values[2]})

		case sectionLines:
			if len(row) < 6 {
				continue
			}
			values, err := parseFloats(row[:6])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			set.AddSegment(geometry.Segment{
				Start: geometry.Point{X: values[0], Y: values[1], Z: values[2]},
				End:   geometry.Point{X: values[3], Y: values[4], Z: values[5]},
			})
		}
	}

	return set, nil
}

// configureReader sets up the CSV reader for the coordinate format.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Comment lines.
	reader.Comment = '#'

	// Section markers have one field, data rows three or six.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// parseFloats converts every field to a float64.
func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: invalid number %q", i+1, field)
		}
		values[i] = v
	}
	return values, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
