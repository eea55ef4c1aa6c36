package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	validateScenarioPath string
	validateLegacyPath   string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario without running it",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateScenario(validateScenarioPath, validateLegacyPath, os.Stdout); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
	},
}

// validateScenario loads a scenario, checks it including graph
// connectivity, and prints a one-line summary to w.
func validateScenario(yamlPath, legacy string, w io.Writer) error {
	s, err := loadScenario(yamlPath, legacy)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(w, "ok: %d sites, %d roads, %d trial(s) of %v at dt=%v\n",
		len(s.Sites), len(s.Roads), s.RunNumber, s.RunTime, s.DT)
	return nil
}

func init() {
	validateCmd.Flags().StringVar(&validateScenarioPath, "scenario", "", "Path to YAML scenario")
	validateCmd.Flags().StringVar(&validateLegacyPath, "legacy", "", "Path to legacy plain-text scenario")

	rootCmd.AddCommand(validateCmd)
}
