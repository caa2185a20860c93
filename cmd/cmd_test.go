package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/geometry-to-step/internal/converter"
	"github.com/ginjaninja78/geometry-to-step/internal/loader"
)

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute call.
	cfgFile, verbose = "config.yaml", false
	outputFile, dryRun, filePath, sampleDir = "", false, "", "."

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a config.yaml rooted at dir.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "input_dir: " + filepath.Join(dir, "input") + "\n" +
		"output_dir: " + filepath.Join(dir, "output") + "\n" +
		"input_archive_dir: " + filepath.Join(dir, "input_archive") + "\n" +
		"output_archive_dir: " + filepath.Join(dir, "output_archive") + "\n" +
		extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSampleCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")

	out, err := execute(t, "sample", "--config", cfg, "--dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Created 4 sample file(s)")
	require.FileExists(t, filepath.Join(dir, loader.SampleXLSXFile))
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := filepath.Join(dir, loader.SampleCSVFile)
	require.NoError(t, loader.WriteSampleCSV(input))
	output := filepath.Join(dir, "cube.step")

	out, err := execute(t, "generate", input, "-o", output, "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "Points: 8")
	require.Contains(t, out, "Lines:  12")
	require.Contains(t, out, "X: 0 to 10")
	require.Contains(t, out, "Records:   75")
	require.Contains(t, out, "Total line length:   120.00")
	require.FileExists(t, output)

	// generate never archives its input.
	require.FileExists(t, input)

	// The listing is only printed with --verbose.
	require.NotContains(t, out, "Points in B1_Sample:")
}

func TestGenerateCommandVerbose(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")
	input := filepath.Join(dir, loader.SampleJSONFile)
	require.NoError(t, loader.WriteSampleJSON(input))

	out, err := execute(t, "generate", input, "-o", filepath.Join(dir, "cube.step"), "--config", cfg, "-v")
	require.NoError(t, err)
	require.Contains(t, out, "Points in B1_Sample:\n  1: (0, 0, 0)\n  2: (10, 0, 0)\n")
	require.Contains(t, out, "  8: (0, 10, 10)\n")
	require.Contains(t, out, "Lines in B1_Sample:\n  1: (0, 0, 0) -> (10, 0, 0) (length: 10.00)\n")
	require.Contains(t, out, "  12: (0, 10, 10) -> (0, 0, 10) (length: 10.00)\n")
}

func TestGenerateCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")

	_, err := execute(t, "generate", filepath.Join(dir, "missing.json"), "--config", cfg)

	var le *loader.LoadError
	require.ErrorAs(t, err, &le)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := execute(t, "version", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "failed to load main config")
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "archive_on_success: true\ncompress_archives: true\n")

	_, err := loader.WriteSamples(filepath.Join(dir, "input"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "bad.csv"), []byte("POINTS\n1,x,2\n"), 0o644))

	out, err := execute(t, "process", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "Found 5 file(s) to process")
	require.Contains(t, out, "Successful:      4")
	require.Contains(t, out, "Errors:          1")

	// The default name keeps the samples, which share a base name, apart.
	steps, err := filepath.Glob(filepath.Join(dir, "output", "b1_sample_*.step"))
	require.NoError(t, err)
	require.Len(t, steps, 4)
	for _, ext := range []string{"json", "csv", "xlsx", "yaml"} {
		require.FileExists(t, filepath.Join(dir, "output", "b1_sample_"+ext+".step"))
	}

	archives, err := filepath.Glob(filepath.Join(dir, "output_archive", "*.step.zst"))
	require.NoError(t, err)
	require.Len(t, archives, 4)

	// Failed inputs stay put.
	require.FileExists(t, filepath.Join(dir, "input", "bad.csv"))
	require.NoFileExists(t, filepath.Join(dir, "input", loader.SampleJSONFile))

	logs, err := filepath.Glob(filepath.Join(dir, "output", "error_log_*.txt"))
	require.NoError(t, err)
	require.Len(t, logs, 1)

	summaries, err := filepath.Glob(filepath.Join(dir, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestProcessCommandStopsOnError(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "continue_on_error: false\nmax_concurrency: 1\n")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "input"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "bad.csv"), []byte("POINTS\n1,x,2\n"), 0o644))

	_, err := execute(t, "process", "--config", cfg)
	require.ErrorContains(t, err, "bad.csv")
}

func TestProcessCommandOutputCollision(t *testing.T) {
	for _, format := range []string{"{name}.step", "{set}"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			cfg := writeConfig(t, dir, fmt.Sprintf("output_name_format: %q\narchive_on_success: true\n", format))

			_, err := loader.WriteSamples(filepath.Join(dir, "input"))
			require.NoError(t, err)

			out, err := execute(t, "process", "--config", cfg)
			require.NoError(t, err)
			require.Contains(t, out, "Successful:      1")
			require.Contains(t, out, "Errors:          3")
			require.Contains(t, out, converter.ErrOutputCollision.Error())

			steps, err := filepath.Glob(filepath.Join(dir, "output", "*.step"))
			require.NoError(t, err)
			require.Len(t, steps, 1)

			// Only the file that claimed the name is consumed.
			require.NoFileExists(t, filepath.Join(dir, "input", loader.SampleCSVFile))
			require.FileExists(t, filepath.Join(dir, "input", loader.SampleJSONFile))
		})
	}
}

func TestProcessCommandOutputCollisionStops(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "output_name_format: \"{name}.step\"\ncontinue_on_error: false\n")

	_, err := loader.WriteSamples(filepath.Join(dir, "input"))
	require.NoError(t, err)

	_, err = execute(t, "process", "--config", cfg)
	require.ErrorIs(t, err, converter.ErrOutputCollision)

	// Nothing runs once a collision is found.
	steps, err := filepath.Glob(filepath.Join(dir, "output", "*.step"))
	require.NoError(t, err)
	require.Empty(t, steps)
}

func TestProcessCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, "")

	input := filepath.Join(dir, "part.json")
	require.NoError(t, loader.WriteSampleJSON(input))

	out, err := execute(t, "process", "--config", cfg, "--dry-run", "--file", input)
	require.NoError(t, err)
	require.Contains(t, out, "Dry run")
	require.Contains(t, out, "part.json: 8 point(s), 12 line(s), 0 error(s), 0 warning(s)")
	require.NoDirExists(t, filepath.Join(dir, "output"))
}

func TestVersionCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "version", "--config", writeConfig(t, dir, ""))
	require.NoError(t, err)
	require.Contains(t, out, "Version:    "+Version)
}
