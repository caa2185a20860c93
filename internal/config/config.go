// =============================================================================
// Geometry to STEP Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration (config.yaml).
//
// CONFIGURATION SECTIONS:
//   1. Directories: where input geometry is found and output is written
//   2. Logging: level and handler format
//   3. Output: file naming, archival and compression
//   4. Header: the STEP HEADER section fields
//   5. Transformations: coordinate transformations applied after loading
//
// A missing config.yaml is not an error for single-file generation; the
// CLI falls back to Default().
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command for geometry files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated STEP files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated STEP file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the slog handler.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//
	//   {name}      - Input file name without extension
	//   {ext}       - Input file extension without the dot, lower case
	//   {set}       - Geometry set name
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//
	// Inputs that differ only by extension need {ext} or {uuid} to get
	// distinct outputs; process rejects files whose outputs collide.
	// Default: "{name}_{ext}.step"
	OutputNameFormat string `yaml:"output_name_format"`

	// ArchiveOnSuccess moves inputs and copies outputs to the archive
	// directories after a successful conversion.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// CompressArchives stores archived STEP files zstd-compressed (.zst).
	// Default: false
	CompressArchives bool `yaml:"compress_archives"`

	// ArchiveDateSubdirs files archives under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveDateSubdirs bool `yaml:"archive_date_subdirs"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted at once by
	// the process command. Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the process command going after a failed file.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// StrictValidation fails a conversion when validation reports errors
	// (for example non-finite coordinates). Otherwise they are only logged.
	// Default: false
	StrictValidation bool `yaml:"strict_validation"`

	// =========================================================================
	// STEP OUTPUT SETTINGS
	// =========================================================================

	// Header holds the STEP HEADER section fields.
	Header HeaderConfig `yaml:"header"`

	// Transformations are applied, in order, to every loaded geometry set.
	Transformations []TransformationAction `yaml:"transformations"`
}

// =============================================================================
// HEADER CONFIGURATION
// =============================================================================

// HeaderConfig mirrors the STEP HEADER fields. Empty values use the
// writer's defaults.
type HeaderConfig struct {
	// Description goes into FILE_DESCRIPTION.
	Description string `yaml:"description"`

	// Author is the generator name in FILE_NAME.
	Author string `yaml:"author"`

	// Organization is the originator in FILE_NAME.
	Organization string `yaml:"organization"`

	// Schema goes into FILE_SCHEMA.
	// Default: "AUTOMOTIVE_DESIGN"
	Schema string `yaml:"schema"`
}

// =============================================================================
// TRANSFORMATION ACTION STRUCTURE
// =============================================================================

// TransformationAction defines a single coordinate transformation.
type TransformationAction struct {
	// Type is the transformation to apply.
	// Supported types:
	//   - "scale"     : Multiply coordinates by Factor (unit conversion)
	//   - "translate" : Add Offset to every coordinate
	//   - "round"     : Round coordinates to Precision decimal places
	Type string `yaml:"type"`

	// Factor is used by "scale".
	Factor float64 `yaml:"factor,omitempty"`

	// Offset is used by "translate" as [dx, dy, dz].
	Offset []float64 `yaml:"offset,omitempty"`

	// Precision is used by "round".
	Precision int `yaml:"precision,omitempty"`
}

// supportedTransformations lists the valid TransformationAction types.
var supportedTransformations = map[string]bool{
	"scale":     true,
	"translate": true,
	"round":     true,
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses YAML configuration bytes.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads configPath when it exists. A missing file yields
// Default() unless required is set.
func LoadOrDefault(configPath string, required bool) (*MainConfig, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) && !required {
		return Default(), nil
	}
	return LoadMainConfig(configPath)
}

// ContinuesOnError reports the effective continue_on_error setting.
func (c *MainConfig) ContinuesOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}_{ext}.step"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Header.Schema == "" {
		config.Header.Schema = "AUTOMOTIVE_DESIGN"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", config.LogFormat)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	for i, action := range config.Transformations {
		if err := validateTransformation(action); err != nil {
			return fmt.Errorf("transformation %d: %w", i+1, err)
		}
	}

	return nil
}

// validateTransformation checks the parameters of a single action.
func validateTransformation(action TransformationAction) error {
	if !supportedTransformations[action.Type] {
		return fmt.Errorf("unknown transformation type %q", action.Type)
	}

	switch action.Type {
	case "scale":
		if action.Factor == 0 {
			return fmt.Errorf("scale requires a non-zero factor")
		}
	case "translate":
		if len(action.Offset) != 3 {
			return fmt.Errorf("translate requires a 3 element offset, got %d", len(action.Offset))
		}
	case "round":
		if action.Precision < 0 {
			return fmt.Errorf("round requires a non-negative precision")
		}
	}

	return nil
}
