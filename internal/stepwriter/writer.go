// =============================================================================
// Geometry to STEP Converter - STEP Document Writer
// =============================================================================
//
// This module serializes the encoded records as an ISO-10303-21 document.
//
// DOCUMENT STRUCTURE:
//
//   ISO-10303-21;
//   HEADER;
//   FILE_DESCRIPTION(('<description>'),'2;1');
//   FILE_NAME('<name>','<timestamp>',('<author>'),('<organization>'),'','','');
//   FILE_SCHEMA(('<schema>'));
//   ENDSEC;
//
//   DATA;
//   #1 = CARTESIAN_POINT('',(0.0,0.0,0.0));
//   ...
//   ENDSEC;
//   END-ISO-10303-21;
//
// =============================================================================

package stepwriter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
)

// =============================================================================
// HEADER
// =============================================================================

// TimestampLayout is the FILE_NAME time stamp format.
const TimestampLayout = "2006-01-02T15:04:05"

// Header holds the fields of the HEADER section.
type Header struct {
	// Description goes into FILE_DESCRIPTION.
	// Default: "Generated STEP file for B1 entity"
	Description string

	// Author is the first FILE_NAME list (the generator name).
	// Default: "STEP Generator"
	Author string

	// Organization is the second FILE_NAME list (the originator).
	// Default: "Go stepgen"
	Organization string

	// Schema goes into FILE_SCHEMA.
	// Default: "AUTOMOTIVE_DESIGN"
	Schema string
}

// DefaultHeader returns the header used when none is configured.
func DefaultHeader() Header {
	return Header{
		Description:  "Generated STEP file for B1 entity",
		Author:       "STEP Generator",
		Organization: "Go stepgen",
		Schema:       "AUTOMOTIVE_DESIGN",
	}
}

func (h Header) withDefaults() Header {
	d := DefaultHeader()
	if h.Description == "" {
		h.Description = d.Description
	}
	if h.Author == "" {
		h.Author = d.Author
	}
	if h.Organization == "" {
		h.Organization = d.Organization
	}
	if h.Schema == "" {
		h.Schema = d.Schema
	}
	return h
}

// =============================================================================
// WRITE ERROR
// =============================================================================

// WriteError reports that the output sink could not be opened or written.
// Generation is aborted; a partially written file is not removed.
type WriteError struct {
	// Path is the output file name, or the sink name for streams.
	Path string

	// Op is the failed operation: "open", "write" or "close".
	Op string

	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s STEP output %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// =============================================================================
// GENERATION
// =============================================================================

// Generate encodes set and writes the complete document to w. name is
// written into FILE_NAME and used in errors.
func (e *Encoder) Generate(set *geometry.Set, w io.Writer, name string) error {
	records := e.Encode(set)

	bw := bufio.NewWriter(w)
	if err := e.writeDocument(bw, records, name); err != nil {
		return &WriteError{Path: name, Op: "write", Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &WriteError{Path: name, Op: "write", Err: err}
	}

	e.logger.Info("generated STEP document",
		"file", name,
		"set", set.Name,
		"records", len(records),
	)

	return nil
}

// GenerateFile creates (or truncates) path and writes the document to it.
func (e *Encoder) GenerateFile(set *geometry.Set, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Op: "open", Err: err}
	}

	if err := e.Generate(set, f, filepath.Base(path)); err != nil {
		f.Close()
		var we *WriteError
		if errors.As(err, &we) {
			we.Path = path
		}
		return err
	}

	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Op: "close", Err: err}
	}

	return nil
}

// writeDocument writes header, data section and trailer.
func (e *Encoder) writeDocument(w *bufio.Writer, records []Record, name string) error {
	h := e.header
	timestamp := e.now().Format(TimestampLayout)

	lines := []string{
		"ISO-10303-21;",
		"HEADER;",
		"FILE_DESCRIPTION((" + formatString(h.Description) + "),'2;1');",
		"FILE_NAME(" + formatString(name) + "," + formatString(timestamp) + ",(" +
			formatString(h.Author) + "),(" + formatString(h.Organization) + "),'','','');",
		"FILE_SCHEMA((" + formatString(h.Schema) + "));",
		"ENDSEC;",
		"",
		"DATA;",
	}
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	for _, r := range records {
		if _, err := w.WriteString(r.String() + "\n"); err != nil {
			return err
		}
	}

	if _, err := w.WriteString("ENDSEC;\nEND-ISO-10303-21;\n"); err != nil {
		return err
	}

	return nil
}
