package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dispatch-sim/dispatch-sim/sim/store"
)

var (
	showResultsDB string
	showRunID     uint
)

// resultsCmd reads back a run persisted by `run --results-db`
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Print a saved run's rankings and best base per trial",
	Run: func(cmd *cobra.Command, args []string) {
		if showResultsDB == "" || showRunID == 0 {
			logrus.Fatalf("--results-db and --run are required")
		}
		if err := showResults(cmd.Context(), showResultsDB, showRunID, os.Stdout); err != nil {
			logrus.Fatalf("Reading results failed: %v", err)
		}
	},
}

// showResults prints every stored ranking of a run, then its rank-1 bases.
func showResults(ctx context.Context, dsn string, runID uint, w io.Writer) error {
	db, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.Run(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "run %d: scenario %q, seed %d, %d trial(s), saved %s\n",
		run.ID, run.Scenario, run.Seed, run.Trials, run.CreatedAt.Format("2006-01-02 15:04:05"))
	trial := -1
	for _, r := range run.Results {
		if r.Trial != trial {
			trial = r.Trial
			fmt.Fprintf(w, "=== Trial %d ===\n", trial)
		}
		avg := "n/a"
		if r.AverageTime != nil {
			avg = fmt.Sprintf("%.4f", *r.AverageTime)
		}
		fmt.Fprintf(w, "%d %d %.4f %d %s\n", r.Rank, r.Site, r.TotalTime, r.Processed, avg)
	}

	best, err := db.BestBases(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "=== Best base per trial ===\n")
	for _, b := range best {
		fmt.Fprintf(w, "trial %d: site %d (avg %.4f)\n", b.Trial, b.Site, b.AverageTime)
	}
	return nil
}

func init() {
	resultsCmd.Flags().StringVar(&showResultsDB, "results-db", "", "SQLite path or postgres:// DSN")
	resultsCmd.Flags().UintVar(&showRunID, "run", 0, "Run ID printed by `run --results-db`")

	rootCmd.AddCommand(resultsCmd)
}
