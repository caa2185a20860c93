// =============================================================================
// Geometry to STEP Converter - XLSX Loader
// =============================================================================
//
// Workbooks carry one sheet per record kind. Sheet names are matched
// case-insensitively and the first row of each sheet is a header.
//
//   Points sheet:  | x | y | z |
//   Lines sheet:   | x1 | y1 | z1 | x2 | y2 | z2 |
//
// A missing sheet contributes nothing, but a workbook with neither sheet
// is rejected.
//
// =============================================================================

package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// Sheet names used by the XLSX loader and the sample writer.
const (
	PointsSheet = "Points"
	LinesSheet  = "Lines"
)

// xlsxDataStartRow is the first data row (0-based); row 0 is the header.
const xlsxDataStartRow = 1

// LoadXLSX reads a geometry set from an XLSX workbook.
func LoadXLSX(path string) (*geometry.Set, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Format: FormatXLSX, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}
	defer f.Close()

	set, err := parseWorkbook(f)
	if err != nil {
		return nil, &LoadError{Path: path, Format: FormatXLSX, Err: err}
	}
	return set, nil
}

// parseWorkbook reads the Points and Lines sheets of an open workbook.
func parseWorkbook(f *excelize.File) (*geometry.Set, error) {
	pointsSheet := findSheet(f, PointsSheet)
	linesSheet := findSheet(f, LinesSheet)
	if pointsSheet == "" && linesSheet == "" {
		return nil, fmt.Errorf("workbook has no %q or %q sheet", PointsSheet, LinesSheet)
	}

	set := geometry.NewSet("")

	if pointsSheet != "" {
		err := eachSheetRow(f, pointsSheet, 3, func(v []float64) {
			set.AddPoint(geometry.Point{X: v[0], Y: v[1], Z: v[2]})
		})
		if err != nil {
			return nil, err
		}
	}

	if linesSheet != "" {
		err := eachSheetRow(f, linesSheet, 6, func(v []float64) {
			set.AddSegment(geometry.Segment{
				Start: geometry.Point{X: v[0], Y: v[1], Z: v[2]},
				End:   geometry.Point{X: v[3], Y: v[4], Z: v[5]},
			})
		})
		if err != nil {
			return nil, err
		}
	}

	return set, nil
}

// findSheet returns the actual name of the sheet matching name, or "".
func findSheet(f *excelize.File, name string) string {
	for _, sheet := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(sheet), name) {
			return sheet
		}
	}
	return ""
}

// eachSheetRow parses the first width cells of every data row as numbers.
// Empty rows and rows with fewer than width cells are skipped.
func eachSheetRow(f *excelize.File, sheet string, width int, fn func([]float64)) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	for i := xlsxDataStartRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		if len(row) < width {
			continue
		}

		values, err := parseFloats(row[:width])
		if err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+1, err)
		}
		fn(values)
	}

	return nil
}
