// =============================================================================
// Geometry to STEP Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the stepgen CLI application. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   stepgen generate [input]  - Convert one geometry file to a STEP file
//   stepgen process           - Convert every geometry file in the input directory
//   stepgen sample            - Write the sample geometry files
//   stepgen version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Geometry model, loaders, STEP encoder, pipeline
//   - pkg/           : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/geometry-to-step/cmd"
)

// main calls the Execute function from the cmd package, which initializes
// and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
