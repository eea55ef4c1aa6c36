package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dispatch-sim/dispatch-sim/sim/scenario"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert external scenario formats to YAML",
	Long:  "Convert external scenario formats to the YAML scenario layout. Output is written to stdout for piping.",
}

// --- dispatch-sim convert legacy ---

var (
	legacyInputPath string
	legacySeed      int64
)

var convertLegacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Convert a legacy plain-text scenario to YAML",
	Run: func(cmd *cobra.Command, args []string) {
		if err := convertLegacy(legacyInputPath, legacySeed, os.Stdout); err != nil {
			logrus.Fatalf("Legacy conversion failed: %v", err)
		}
	},
}

// convertLegacy reads a legacy scenario, stamps it with seed and writes
// it to w as YAML.
func convertLegacy(path string, seed int64, w io.Writer) error {
	s, err := scenario.LoadLegacy(path)
	if err != nil {
		return err
	}
	s.Seed = seed
	return s.Encode(w)
}

func init() {
	convertLegacyCmd.Flags().StringVar(&legacyInputPath, "input", "", "Path to legacy scenario file")
	convertLegacyCmd.Flags().Int64Var(&legacySeed, "seed", 42, "Seed written into the YAML scenario")
	_ = convertLegacyCmd.MarkFlagRequired("input")

	convertCmd.AddCommand(convertLegacyCmd)

	rootCmd.AddCommand(convertCmd)
}
