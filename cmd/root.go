// =============================================================================
// Geometry to STEP Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (stepgen)
//   ├── generateCmd (stepgen generate)
//   ├── processCmd  (stepgen process)
//   ├── sampleCmd   (stepgen sample)
//   └── versionCmd  (stepgen version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/geometry-to-step/internal/config"
	"github.com/ginjaninja78/geometry-to-step/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set by loadConfig before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stepgen",
	Short: "Geometry to STEP Converter - Encode points and line segments as ISO 10303-21",

	Long: `stepgen converts simple 3D geometry (points and straight line segments)
into STEP exchange files (ISO 10303-21) that CAD tools can import.

Key Features:
  - JSON, YAML, CSV and XLSX geometry inputs
  - Configurable coordinate transformations (scale, translate, round)
  - Validation with detailed reporting
  - Concurrent batch processing with archival

Example Usage:
  stepgen generate part.json -o part.step   # Convert a single file
  stepgen generate                          # Write samples and convert the JSON one
  stepgen process                           # Convert everything in the input directory
  stepgen sample --dir ./input              # Write the sample files`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging and detailed listings",
	)
}

// loadConfig reads the main configuration and builds the logger. A missing
// config.yaml falls back to defaults unless --config was given explicitly.
func loadConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	mainConfig = cfg
	logger = logging.New(level, cfg.LogFormat, cmd.ErrOrStderr())
	logger.Debug("configuration loaded", "config", cfgFile, "output_dir", cfg.OutputDir)

	return nil
}
