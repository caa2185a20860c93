// =============================================================================
// Geometry to STEP Converter - Geometry Loaders
// =============================================================================
//
// This package reads geometry sets from external files. Every loader maps
// its source format onto fixed-shape records (a point is three named
// floats, a line is two points) before anything reaches the encoder.
//
// SUPPORTED FORMATS:
//   .json        - {"name": ..., "points": [...], "lines": [...]}
//   .yaml, .yml  - same shape as JSON
//   .csv         - POINTS / LINES sections, '#' comments
//   .xlsx        - "Points" and "Lines" sheets with a header row
//
// ERROR HANDLING:
//   Any failure (missing file, malformed structure, missing field, bad
//   number) is returned as a *LoadError. A caller must not generate output
//   from a failed load.
//
// =============================================================================

package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format names used in LoadError and log output.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Extensions lists the file extensions Load accepts.
var Extensions = []string{".json", ".yaml", ".yml", ".csv", ".xlsx"}

// FormatFor returns the format for a file name based on its extension,
// or "" if it is not supported.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return ""
	}
}

// =============================================================================
// LOAD ERROR
// =============================================================================

// LoadError reports that a geometry file could not be loaded.
type LoadError struct {
	// Path is the input file.
	Path string

	// Format is the detected input format, if any.
	Format string

	Err error
}

func (e *LoadError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("failed to load geometry from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to load %s geometry from %s: %v", e.Format, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DISPATCH
// =============================================================================

// Load reads a geometry set from path, choosing the loader by extension.
func Load(path string) (*geometry.Set, error) {
	switch FormatFor(path) {
	case FormatJSON:
		return LoadJSON(path)
	case FormatYAML:
		return LoadYAML(path)
	case FormatCSV:
		return LoadCSV(path)
	case FormatXLSX:
		return LoadXLSX(path)
	default:
		return nil, &LoadError{
			Path: path,
			Err: fmt.Errorf("unsupported file format %q (supported: %s)",
				filepath.Ext(path), strings.Join(Extensions, ", ")),
		}
	}
}
