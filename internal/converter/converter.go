// =============================================================================
// Geometry to STEP Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for a single input file, from loading geometry to writing the
// STEP document.
//
// CONVERSION PIPELINE:
//   1. Load the geometry set (JSON, YAML, CSV or XLSX)
//   2. Apply the configured coordinate transformations
//   3. Validate the transformed set
//   4. Encode and write the STEP document, hashing it as it is written
//   5. Archive the processed files (optional)
//
// CONCURRENCY:
//   A Converter owns its Encoder and is used for one Run. The process
//   command runs one Converter per file concurrently.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ginjaninja78/geometry-to-step/internal/config"
	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
	"github.com/ginjaninja78/geometry-to-step/internal/loader"
	"github.com/ginjaninja78/geometry-to-step/internal/logging"
	"github.com/ginjaninja78/geometry-to-step/internal/stepwriter"
	"github.com/ginjaninja78/geometry-to-step/internal/validation"
	"github.com/ginjaninja78/geometry-to-step/pkg/utils"
)

// Error types reported in Result.ErrorType and the error log.
const (
	ErrorTypeLoad       = "load"
	ErrorTypeTransform  = "transform"
	ErrorTypeValidation = "validation"
	ErrorTypeWrite      = "write"
)

// ErrValidationFailed is returned when strict validation rejects a set.
var ErrValidationFailed = errors.New("validation failed")

// ErrOutputCollision is reported when two inputs resolve to the same output
// file in one batch.
var ErrOutputCollision = errors.New("output path collision")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated STEP file.
	// This is empty if processing failed.
	OutputFile string

	// ArchivePath is where the output was archived, if archival ran.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// ErrorType classifies Error: "load", "transform", "validation" or "write".
	ErrorType string

	// Findings are the validation findings for the transformed set.
	Findings []*validation.Error

	// Set is the transformed geometry that was encoded. Nil if loading
	// or transforming failed.
	Set *geometry.Set

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Geometry summarizes the transformed set.
	Geometry geometry.Stats

	// Records counts the generated entity records by type.
	Records stepwriter.Stats

	// ValidationErrors is the number of error-level findings.
	ValidationErrors int

	// ValidationWarnings is the number of warning-level findings.
	ValidationWarnings int

	// Checksum is the xxhash64 of the written document, as 16 hex digits.
	Checksum string

	// Bytes is the size of the written document.
	Bytes int64

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single geometry file to STEP.
type Converter struct {
	// inputPath is the path to the input geometry file.
	inputPath string

	// outputPath overrides the name derived from output_name_format. Once
	// resolved, the generated name is cached here.
	outputPath string

	// loaded caches the set read from inputPath.
	loaded *geometry.Set

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// files handles output naming and archival.
	files *utils.FileManager

	// encoder is owned by this converter.
	encoder *stepwriter.Encoder

	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithOutputPath writes to path instead of a name generated in OutputDir.
func WithOutputPath(path string) Option {
	return func(c *Converter) {
		c.outputPath = path
	}
}

// WithClock fixes the HEADER timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.encoder = c.newEncoder(stepwriter.WithClock(now))
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input geometry file.
//   - mainConfig: The main application configuration. Nil means defaults.
//   - logger: The logger; nil discards.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath string, mainConfig *config.MainConfig, logger *slog.Logger, opts ...Option) *Converter {
	if mainConfig == nil {
		mainConfig = config.Default()
	}

	files := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	files.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	files.CompressArchives = mainConfig.CompressArchives
	files.UseTimestampSubdirs = mainConfig.ArchiveDateSubdirs

	c := &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		files:      files,
		logger:     logging.OrDiscard(logger).With("input", inputPath),
	}
	c.encoder = c.newEncoder()

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newEncoder builds an encoder with the configured header.
func (c *Converter) newEncoder(extra ...stepwriter.Option) *stepwriter.Encoder {
	h := c.mainConfig.Header
	opts := []stepwriter.Option{
		stepwriter.WithHeader(stepwriter.Header{
			Description:  h.Description,
			Author:       h.Author,
			Organization: h.Organization,
			Schema:       h.Schema,
		}),
		stepwriter.WithLogger(c.logger),
	}
	return stepwriter.New(append(opts, extra...)...)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing. Result.Error
//     wraps a *loader.LoadError or *stepwriter.WriteError where applicable.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	result = Result{
		FilePath: c.inputPath,
	}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	c.logger.Info("processing file")

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	set, err := c.load()
	if err != nil {
		return c.fail(&result, ErrorTypeLoad, err)
	}

	c.logger.Debug("loaded geometry", "set", set.Name, "points", len(set.Points), "segments", len(set.Segments))

	// =========================================================================
	// STEP 2: TRANSFORM
	// =========================================================================

	transformer := NewTransformer(c.mainConfig.Transformations)
	if !transformer.Empty() {
		set, err = transformer.Transform(set)
		if err != nil {
			return c.fail(&result, ErrorTypeTransform, fmt.Errorf("failed to apply transformations: %w", err))
		}
		c.logger.Debug("applied transformations", "count", len(c.mainConfig.Transformations))
	}

	result.Set = set
	result.Stats.Geometry = set.Stats()

	// =========================================================================
	// STEP 3: VALIDATE
	// =========================================================================

	vr := validation.Validate(set)
	result.Findings = vr.Findings
	result.Stats.ValidationErrors = vr.ErrorCount
	result.Stats.ValidationWarnings = vr.WarningCount

	for _, f := range vr.Findings {
		switch f.Severity {
		case validation.SeverityError:
			c.logger.Warn("validation error", "rule", f.Rule, "field", f.Field, "message", f.Message)
		case validation.SeverityWarning:
			c.logger.Warn("validation warning", "rule", f.Rule, "field", f.Field, "message", f.Message)
		default:
			c.logger.Debug("validation note", "rule", f.Rule, "message", f.Message)
		}
	}

	if !vr.IsValid() && c.mainConfig.StrictValidation {
		return c.fail(&result, ErrorTypeValidation,
			fmt.Errorf("%w with %d error(s)", ErrValidationFailed, vr.ErrorCount))
	}

	// =========================================================================
	// STEP 4: ENCODE AND WRITE
	// =========================================================================

	outputPath, err := c.OutputPath()
	if err != nil {
		return c.fail(&result, ErrorTypeLoad, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return c.fail(&result, ErrorTypeWrite, &stepwriter.WriteError{Path: outputPath, Op: "open", Err: err})
	}

	checksum, size, err := c.writeOutput(set, outputPath)
	if err != nil {
		return c.fail(&result, ErrorTypeWrite, err)
	}

	result.OutputFile = outputPath
	result.Stats.Records = c.encoder.Stats()
	result.Stats.Checksum = checksum
	result.Stats.Bytes = size

	c.logger.Info("wrote output",
		"output", outputPath,
		"records", result.Stats.Records.Records,
		"checksum", checksum,
	)

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================
	// Archival failures are logged; the conversion itself succeeded.

	if c.mainConfig.ArchiveOnSuccess {
		archivePath, err := c.archiveFiles(outputPath)
		if err != nil {
			c.logger.Warn("failed to archive files", "error", err)
		}
		result.ArchivePath = archivePath
	}

	result.Success = true
	return result
}

// fail records err on result and returns it.
func (c *Converter) fail(result *Result, errorType string, err error) Result {
	result.Error = err
	result.ErrorType = errorType
	c.logger.Error("conversion failed", "type", errorType, "error", err)
	return *result
}

// =============================================================================
// HELPER METHODS
// =============================================================================

// OutputPath returns the explicit output path or a name generated from
// output_name_format inside OutputDir. The generated name is resolved once,
// so the path seen before Run is the one Run writes.
//
// RETURNS:
//   - The output path.
//   - A *loader.LoadError when the format needs {set} and the input
//     cannot be loaded.
func (c *Converter) OutputPath() (string, error) {
	if c.outputPath != "" {
		return c.outputPath, nil
	}

	format := c.mainConfig.OutputNameFormat
	params := map[string]string{
		"name": utils.FileBaseName(c.inputPath),
		"ext":  strings.ToLower(strings.TrimPrefix(filepath.Ext(c.inputPath), ".")),
	}
	if strings.Contains(format, "{set}") {
		set, err := c.load()
		if err != nil {
			return "", err
		}
		params["set"] = set.Name
	}

	c.outputPath = filepath.Join(c.mainConfig.OutputDir, utils.GenerateOutputFileName(format, params))
	return c.outputPath, nil
}

// load reads the input once. Transformations copy the set, so the cached
// value stays as loaded.
func (c *Converter) load() (*geometry.Set, error) {
	if c.loaded == nil {
		set, err := loader.Load(c.inputPath)
		if err != nil {
			return nil, err
		}
		c.loaded = set
	}
	return c.loaded, nil
}

// writeOutput generates the document into path while hashing it.
//
// RETURNS:
//   - The xxhash64 checksum as 16 hex digits.
//   - The number of bytes written.
//   - A *stepwriter.WriteError on failure.
func (c *Converter) writeOutput(set *geometry.Set, path string) (string, int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", 0, &stepwriter.WriteError{Path: path, Op: "open", Err: err}
	}

	digest := xxhash.New()
	counter := &countingWriter{}
	w := io.MultiWriter(f, digest, counter)

	if err := c.encoder.Generate(set, w, filepath.Base(path)); err != nil {
		f.Close()
		var we *stepwriter.WriteError
		if errors.As(err, &we) {
			we.Path = path
		}
		return "", 0, err
	}

	if err := f.Close(); err != nil {
		return "", 0, &stepwriter.WriteError{Path: path, Op: "close", Err: err}
	}

	return FormatChecksum(digest.Sum64()), counter.n, nil
}

// archiveFiles moves the input and copies the output to the archives.
func (c *Converter) archiveFiles(outputPath string) (string, error) {
	archivePath, err := c.files.ArchiveOutputFile(outputPath)
	if err != nil {
		return "", err
	}

	if _, err := c.files.ArchiveInputFile(c.inputPath); err != nil {
		return archivePath, err
	}

	return archivePath, nil
}

// FormatChecksum renders an xxhash64 sum as 16 lowercase hex digits.
func FormatChecksum(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

// Checksum returns the xxhash64 checksum of a file, formatted like
// ProcessingStats.Checksum.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", err
	}
	return FormatChecksum(digest.Sum64()), nil
}

// countingWriter counts bytes passing through it.
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
