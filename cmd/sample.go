// =============================================================================
// Geometry to STEP Converter - Sample Command
// =============================================================================
//
// COMMAND USAGE:
//   stepgen sample [--dir <directory>]
//
// Writes the cube sample (8 points, 12 edges) as JSON, CSV, XLSX and YAML.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/geometry-to-step/internal/loader"
)

// sampleDir is the directory the sample files are written to.
var sampleDir string

// sampleCmd represents the 'sample' command.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write sample geometry files",
	Long: `Write the sample geometry (a 10 x 10 x 10 cube with 8 corner points and
12 edges) in every supported input format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := loader.WriteSamples(sampleDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created %d sample file(s):\n", len(paths))
		for _, p := range paths {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVar(&sampleDir, "dir", ".", "Directory to write the sample files to")
}
