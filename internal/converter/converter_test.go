package converter

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/geometry-to-step/internal/config"
	"github.com/ginjaninja78/geometry-to-step/internal/geometry"
	"github.com/ginjaninja78/geometry-to-step/internal/loader"
	"github.com/ginjaninja78/geometry-to-step/internal/stepwriter"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// testConfig returns a default config rooted in a temp dir, with the
// sample JSON written to its input directory.
func testConfig(t *testing.T) (*config.MainConfig, string) {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")

	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	input := filepath.Join(cfg.InputDir, loader.SampleJSONFile)
	require.NoError(t, loader.WriteSampleJSON(input))

	return cfg, input
}

func TestRunSample(t *testing.T) {
	cfg, input := testConfig(t)

	result := New(input, cfg, nil, WithClock(fixedClock)).Run()
	require.NoError(t, result.Error)
	require.True(t, result.Success)
	require.Equal(t, filepath.Join(cfg.OutputDir, "b1_sample_json.step"), result.OutputFile)

	stats := result.Stats
	require.Equal(t, loader.SampleName, stats.Geometry.Name)
	require.Equal(t, 8, stats.Geometry.Points)
	require.Equal(t, 12, stats.Geometry.Segments)
	require.Equal(t, geometry.Point{X: 10, Y: 10, Z: 10}, stats.Geometry.Max)
	require.InDelta(t, 120, stats.Geometry.TotalLength, 1e-9)
	require.InDelta(t, 10, stats.Geometry.AverageLength, 1e-9)

	require.Equal(t, stepwriter.Stats{
		Records:         75,
		CartesianPoints: 36,
		Directions:      13,
		Vectors:         12,
		Lines:           12,
		Planes:          1,
		Blocks:          1,
	}, stats.Records)

	info, err := os.Stat(result.OutputFile)
	require.NoError(t, err)
	require.Equal(t, info.Size(), stats.Bytes)

	sum, err := Checksum(result.OutputFile)
	require.NoError(t, err)
	require.Equal(t, sum, stats.Checksum)
	require.Len(t, stats.Checksum, 16)

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "ISO-10303-21;\n"))
	require.Contains(t, string(data), "FILE_NAME('b1_sample_json.step','2024-03-09T14:05:06'")
	require.True(t, strings.HasSuffix(string(data), "ENDSEC;\nEND-ISO-10303-21;\n"))

	// Archival is off by default.
	require.FileExists(t, input)
	require.Empty(t, result.ArchivePath)
}

func TestRunDeterministicChecksum(t *testing.T) {
	cfg, input := testConfig(t)
	out := filepath.Join(t.TempDir(), "a.step")

	first := New(input, cfg, nil, WithClock(fixedClock), WithOutputPath(out)).Run()
	second := New(input, cfg, nil, WithClock(fixedClock), WithOutputPath(out)).Run()

	require.True(t, first.Success)
	require.True(t, second.Success)
	require.Equal(t, out, first.OutputFile)
	require.Equal(t, first.Stats.Checksum, second.Stats.Checksum)
}

func TestRunHeaderFromConfig(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.Header.Author = "Jane's Tools"
	cfg.Header.Schema = "CONFIG_CONTROL_DESIGN"

	result := New(input, cfg, nil).Run()
	require.True(t, result.Success)

	data, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "('Jane''s Tools')")
	require.Contains(t, string(data), "FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));")
}

func TestRunLoadError(t *testing.T) {
	cfg, _ := testConfig(t)

	result := New(filepath.Join(cfg.InputDir, "missing.json"), cfg, nil).Run()
	require.False(t, result.Success)
	require.Equal(t, ErrorTypeLoad, result.ErrorType)

	var le *loader.LoadError
	require.ErrorAs(t, result.Error, &le)
	require.Empty(t, result.OutputFile)
}

func TestRunTransformError(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.Transformations = []config.TransformationAction{{Type: "shear"}}

	result := New(input, cfg, nil).Run()
	require.False(t, result.Success)
	require.Equal(t, ErrorTypeTransform, result.ErrorType)
	require.ErrorContains(t, result.Error, "unknown transformation type")
}

func TestRunTransformed(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.Transformations = []config.TransformationAction{
		{Type: "scale", Factor: 0.5},
		{Type: "translate", Offset: []float64{1, 1, 1}},
	}

	result := New(input, cfg, nil).Run()
	require.True(t, result.Success)
	require.Equal(t, geometry.Point{X: 1, Y: 1, Z: 1}, result.Stats.Geometry.Min)
	require.Equal(t, geometry.Point{X: 6, Y: 6, Z: 6}, result.Stats.Geometry.Max)
}

func TestRunValidation(t *testing.T) {
	// Scaling 10 by 1e308 overflows to +Inf.
	overflow := []config.TransformationAction{{Type: "scale", Factor: 1e308}}

	t.Run("lenient", func(t *testing.T) {
		cfg, input := testConfig(t)
		cfg.Transformations = overflow

		result := New(input, cfg, nil).Run()
		require.True(t, result.Success)
		require.Positive(t, result.Stats.ValidationErrors)
		require.NotEmpty(t, result.Findings)
	})

	t.Run("strict", func(t *testing.T) {
		cfg, input := testConfig(t)
		cfg.Transformations = overflow
		cfg.StrictValidation = true

		result := New(input, cfg, nil).Run()
		require.False(t, result.Success)
		require.Equal(t, ErrorTypeValidation, result.ErrorType)
		require.ErrorIs(t, result.Error, ErrValidationFailed)
		require.NoFileExists(t, filepath.Join(cfg.OutputDir, "b1_sample_json.step"))
	})
}

func TestRunWriteError(t *testing.T) {
	cfg, input := testConfig(t)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	result := New(input, cfg, nil, WithOutputPath(filepath.Join(blocker, "out.step"))).Run()
	require.False(t, result.Success)
	require.Equal(t, ErrorTypeWrite, result.ErrorType)

	var we *stepwriter.WriteError
	require.ErrorAs(t, result.Error, &we)
	require.Equal(t, "open", we.Op)
}

func TestRunArchivesCompressed(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.ArchiveOnSuccess = true
	cfg.CompressArchives = true

	result := New(input, cfg, nil).Run()
	require.True(t, result.Success)
	require.Equal(t, filepath.Join(cfg.OutputArchiveDir, "b1_sample_json.step.zst"), result.ArchivePath)

	require.NoFileExists(t, input)
	require.FileExists(t, filepath.Join(cfg.InputArchiveDir, loader.SampleJSONFile))

	f, err := os.Open(result.ArchivePath)
	require.NoError(t, err)
	defer f.Close()
	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	archived, err := io.ReadAll(dec)
	require.NoError(t, err)
	written, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	require.Equal(t, written, archived)
}

func TestRunArchiveDateSubdirs(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.ArchiveOnSuccess = true
	cfg.ArchiveDateSubdirs = true

	result := New(input, cfg, nil).Run()
	require.True(t, result.Success)

	rel, err := filepath.Rel(cfg.OutputArchiveDir, result.ArchivePath)
	require.NoError(t, err)
	require.Regexp(t, `^\d{4}/\d{2}/\d{2}/b1_sample_json\.step$`, filepath.ToSlash(rel))

	archived, err := filepath.Glob(filepath.Join(cfg.InputArchiveDir, "*", "*", "*", loader.SampleJSONFile))
	require.NoError(t, err)
	require.Len(t, archived, 1)
}

func TestOutputPath(t *testing.T) {
	cfg, _ := testConfig(t)
	paths, err := loader.WriteSamples(cfg.InputDir)
	require.NoError(t, err)

	// The samples share a base name; the default format still separates them.
	seen := make(map[string]bool)
	for _, input := range paths {
		out, err := New(input, cfg, nil).OutputPath()
		require.NoError(t, err)
		require.Equal(t, cfg.OutputDir, filepath.Dir(out))
		seen[out] = true
	}
	require.Len(t, seen, len(paths))
	require.True(t, seen[filepath.Join(cfg.OutputDir, "b1_sample_xlsx.step")])

	t.Run("set name", func(t *testing.T) {
		cfg.OutputNameFormat = "{set}-{ext}"
		out, err := New(paths[1], cfg, nil).OutputPath()
		require.NoError(t, err)
		require.Equal(t, filepath.Join(cfg.OutputDir, "B1_Sample-csv.step"), out)
	})

	t.Run("set name load error", func(t *testing.T) {
		cfg.OutputNameFormat = "{set}"
		_, err := New(filepath.Join(cfg.InputDir, "missing.csv"), cfg, nil).OutputPath()

		var le *loader.LoadError
		require.ErrorAs(t, err, &le)
	})

	t.Run("resolved once", func(t *testing.T) {
		cfg.OutputNameFormat = "{name}-{uuid}"
		c := New(paths[0], cfg, nil)
		first, err := c.OutputPath()
		require.NoError(t, err)

		result := c.Run()
		require.True(t, result.Success)
		require.Equal(t, first, result.OutputFile)
	})
}

func TestRunKeepsEncodedSet(t *testing.T) {
	cfg, input := testConfig(t)
	cfg.Transformations = []config.TransformationAction{{Type: "translate", Offset: []float64{0, 0, 5}}}

	result := New(input, cfg, nil).Run()
	require.True(t, result.Success)
	require.NotNil(t, result.Set)
	require.Len(t, result.Set.Points, 8)
	require.Equal(t, geometry.Point{Z: 5}, result.Set.Points[0])

	failed := New(filepath.Join(cfg.InputDir, "missing.json"), cfg, nil).Run()
	require.Nil(t, failed.Set)
}

func TestFormatChecksum(t *testing.T) {
	require.Equal(t, "00000000000000ab", FormatChecksum(0xab))
	require.Equal(t, "ffffffffffffffff", FormatChecksum(^uint64(0)))
}
