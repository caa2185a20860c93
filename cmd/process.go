// =============================================================================
// Geometry to STEP Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every geometry
// file in the input directory to STEP.
//
// COMMAND USAGE:
//   stepgen process [flags]
//
// FLAGS:
//   --dry-run : Load and validate every file without writing output
//   --file    : Process only this file instead of scanning input_dir
//
// PROCESSING PIPELINE:
//   1. Ensure the configured directories exist
//   2. Discover geometry files in the input directory
//   3. Resolve every output path and reject files that collide
//   4. Convert up to max_concurrency files at once, one Converter each
//   5. Write the processing summary and, on failures, the error log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/geometry-to-step/internal/converter"
	"github.com/ginjaninja78/geometry-to-step/internal/loader"
	"github.com/ginjaninja78/geometry-to-step/internal/validation"
	"github.com/ginjaninja78/geometry-to-step/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun loads and validates without writing output files.
var dryRun bool

// filePath is a single file to process instead of scanning input_dir.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every geometry file in the input directory",
	Long: `The process command scans the input directory for geometry files
(.json, .yaml, .yml, .csv, .xlsx) and converts each one to a STEP file.

Files are processed concurrently, up to max_concurrency at once. Each file is
processed independently; with continue_on_error disabled the first failure
stops files that have not started yet.

On successful processing:
  - The generated STEP file is placed in the output directory
  - With archive_on_success, the input is moved to the input archive and
    the output copied (optionally zstd-compressed) to the output archive
  - A summary report is written to the output directory

On error:
  - An error log is created in the output directory
  - The input file remains in the input directory`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Load and validate files without writing output",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess discovers input files and converts them concurrently.
func runProcess(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()
	cfg := mainConfig

	fmt.Fprintln(out, "=== Geometry to STEP Converter ===")

	// =========================================================================
	// STEP 1: DIRECTORIES AND DISCOVERY
	// =========================================================================

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		discovered, err := files.DiscoverInputFiles("")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputFiles = discovered
	}

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No geometry files found in %s.\n", cfg.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	if dryRun {
		return runDryRun(out, inputFiles)
	}

	// =========================================================================
	// STEP 2: RESOLVE OUTPUT PATHS
	// =========================================================================
	// Two inputs writing one output would overwrite each other, so the
	// later file in discovery order fails before anything runs.

	results := make([]converter.Result, len(inputFiles))
	convs, resolveErr := resolveConverters(inputFiles, results)

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// Each goroutine writes only its own slot in results.

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for i, conv := range convs {
		if conv == nil {
			continue
		}
		file := inputFiles[i]

		g.Go(func() error {
			if resolveErr != nil {
				results[i] = converter.Result{FilePath: file, Error: fmt.Errorf("skipped: %w", resolveErr), ErrorType: "skipped"}
				return nil
			}
			if err := gctx.Err(); err != nil {
				results[i] = converter.Result{FilePath: file, Error: fmt.Errorf("skipped: %w", err), ErrorType: "skipped"}
				return nil
			}

			results[i] = conv.Run()
			if results[i].Error != nil && !cfg.ContinuesOnError() {
				return fmt.Errorf("%s: %w", filepath.Base(file), results[i].Error)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	if resolveErr != nil {
		waitErr = resolveErr
	}

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND WRITE REPORTS
	// =========================================================================

	summary := collectSummary(out, results)
	summary.StartTime = startTime
	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		logger.Warn("failed to write summary", "error", err)
	} else {
		logger.Debug("wrote summary", "path", path)
	}

	if entries := errorLogEntries(results); len(entries) > 0 {
		path, err := utils.WriteErrorLog(entries, cfg.OutputDir)
		if err != nil {
			logger.Warn("failed to write error log", "error", err)
		} else {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
		}
	}

	return waitErr
}

// runDryRun loads and validates every file without writing anything.
func runDryRun(out io.Writer, inputFiles []string) error {
	fmt.Fprintln(out, "Dry run: no files will be written.")

	failed := 0
	for _, file := range inputFiles {
		set, err := loader.Load(file)
		if err != nil {
			failed++
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(file), err)
			continue
		}

		vr := validation.Validate(set)
		fmt.Fprintf(out, "  ✓ %s: %d point(s), %d line(s), %d error(s), %d warning(s)\n",
			filepath.Base(file), len(set.Points), len(set.Segments), vr.ErrorCount, vr.WarningCount)
	}

	if failed > 0 && !mainConfig.ContinuesOnError() {
		return fmt.Errorf("%d file(s) failed to load", failed)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveConverters builds one Converter per input and resolves its output
// path. Inputs that fail to resolve, or whose path an earlier input already
// claimed, get a failed result and a nil Converter.
//
// RETURNS:
//   - The converters, indexed like inputFiles.
//   - The first failure when continue_on_error is disabled, nil otherwise.
func resolveConverters(inputFiles []string, results []converter.Result) ([]*converter.Converter, error) {
	convs := make([]*converter.Converter, len(inputFiles))
	claimed := make(map[string]string, len(inputFiles))
	var firstErr error

	for i, file := range inputFiles {
		conv := converter.New(file, mainConfig, logger)

		output, err := conv.OutputPath()
		if err == nil {
			key := filepath.Clean(output)
			if owner, ok := claimed[key]; ok {
				err = fmt.Errorf("%w: %s is also written by %s", converter.ErrOutputCollision, output, filepath.Base(owner))
			} else {
				claimed[key] = file
				convs[i] = conv
				continue
			}
			results[i] = converter.Result{FilePath: file, Error: err, ErrorType: converter.ErrorTypeWrite}
		} else {
			results[i] = converter.Result{FilePath: file, Error: err, ErrorType: converter.ErrorTypeLoad}
		}

		logger.Error("cannot convert file", "input", file, "error", err)
		if firstErr == nil && !mainConfig.ContinuesOnError() {
			firstErr = fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
	}

	return convs, firstErr
}

// collectSummary prints one line per file and tallies the run.
func collectSummary(out io.Writer, results []converter.Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{TotalFiles: len(results)}

	for _, result := range results {
		summary.ValidationErrors += result.Stats.ValidationErrors

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    result.ErrorType,
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalPoints += result.Stats.Geometry.Points
		summary.TotalSegments += result.Stats.Geometry.Segments
		summary.TotalRecords += result.Stats.Records.Records
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			ArchivePath: result.ArchivePath,
			Points:      result.Stats.Geometry.Points,
			Segments:    result.Stats.Geometry.Segments,
			Records:     result.Stats.Records.Records,
			Checksum:    result.Stats.Checksum,
			ProcessTime: result.Stats.ProcessingTime,
		})
		fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(result.FilePath), result.OutputFile)
	}

	return summary
}

// errorLogEntries lists failed files and error-level validation findings.
func errorLogEntries(results []converter.Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	now := time.Now()

	for _, result := range results {
		name := filepath.Base(result.FilePath)

		for _, f := range result.Findings {
			if f.Severity != validation.SeverityError {
				continue
			}
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    converter.ErrorTypeValidation,
				ErrorMessage: f.Message,
				Field:        f.Field,
			})
		}

		if result.Error != nil && result.ErrorType != converter.ErrorTypeValidation {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     name,
				ErrorType:    result.ErrorType,
				ErrorMessage: result.Error.Error(),
			})
		}
	}

	return entries
}
