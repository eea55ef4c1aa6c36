package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/dispatch-sim/dispatch-sim/sim"
	"github.com/dispatch-sim/dispatch-sim/sim/render"
	"github.com/dispatch-sim/dispatch-sim/sim/scenario"
	"github.com/dispatch-sim/dispatch-sim/sim/store"
	"github.com/dispatch-sim/dispatch-sim/sim/trace"
)

var (
	// Scenario input
	scenarioPath string // YAML scenario file
	legacyPath   string // legacy plain-text scenario file

	// Overrides for scenario fields (applied only when set on the command line)
	seed    int64   // Master seed
	runs    int     // Number of trials
	runTime float64 // Horizon of each trial
	dt      float64 // Tick size

	// Execution and outputs
	workers    int    // Trials run concurrently
	traceLevel string // Dispatch trace level
	dotPath    string // Graphviz output for the first trial
	resultsDB  string // SQLite path or postgres:// DSN
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dispatch-sim",
	Short: "Monte-Carlo simulator for emergency unit base placement",
}

// runOptions are the non-scenario settings of one run.
type runOptions struct {
	Workers    int
	TraceLevel trace.TraceLevel
	DotPath    string
	ResultsDB  string
}

// runCmd executes the simulation using a scenario file plus CLI overrides
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the base placement simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, decisions)", traceLevel)
		}

		s, err := loadScenario(scenarioPath, legacyPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyOverrides(cmd, s)

		startTime := time.Now()
		opts := runOptions{
			Workers:    workers,
			TraceLevel: trace.TraceLevel(traceLevel),
			DotPath:    dotPath,
			ResultsDB:  resultsDB,
		}
		if err := runExperiment(cmd.Context(), s, opts, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// loadScenario reads exactly one of a YAML or a legacy scenario file.
func loadScenario(yamlPath, legacy string) (*scenario.Scenario, error) {
	switch {
	case yamlPath != "" && legacy != "":
		return nil, fmt.Errorf("--scenario and --legacy are mutually exclusive")
	case yamlPath != "":
		return scenario.LoadScenario(yamlPath)
	case legacy != "":
		return scenario.LoadLegacy(legacy)
	default:
		return nil, fmt.Errorf("no scenario provided: use --scenario or --legacy")
	}
}

// applyOverrides copies explicitly set flags over the scenario's values.
func applyOverrides(cmd *cobra.Command, s *scenario.Scenario) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		logrus.Infof("--seed %d overrides scenario seed %d", seed, s.Seed)
		s.Seed = seed
	}
	if flags.Changed("runs") {
		s.RunNumber = runs
	}
	if flags.Changed("run-time") {
		s.RunTime = runTime
	}
	if flags.Changed("dt") {
		s.DT = dt
	}
}

// runExperiment validates s, runs every trial and writes the reports to w.
// The DOT file and results database are written only when requested.
func runExperiment(ctx context.Context, s *scenario.Scenario, opts runOptions, w io.Writer) error {
	cfg := s.ToConfig()
	cfg.Workers = opts.Workers
	cfg.TraceLevel = opts.TraceLevel

	driver, err := sim.NewDriver(cfg)
	if err != nil {
		return err
	}
	reports, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	for _, rep := range reports {
		sim.PrintTrial(w, rep)
		if rep.Trace != nil {
			printTraceSummary(w, trace.Summarize(rep.Trace))
		}
	}
	if len(reports) > 1 {
		sim.PrintAggregate(w, sim.Aggregate(reports, driver.Sites()), len(reports))
	}

	if opts.DotPath != "" {
		doc, err := render.DOT(s, sim.Summaries(reports[0], driver.Sites()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.DotPath, doc, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", opts.DotPath, err)
		}
		logrus.Infof("Graph written to %s", opts.DotPath)
	}

	if opts.ResultsDB != "" {
		db, err := store.Open(opts.ResultsDB)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.SaveRun(ctx, s.Name, s.Seed, reports)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "results saved as run %d\n", id)
	}
	return nil
}

func printTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintf(w, "--- trace: %d legs, %d completions ---\n", ts.TotalDispatches, ts.TotalCompletions)
	for _, b := range ts.Bases {
		fmt.Fprintf(w, "base %d: dispatch=%d chain=%d return=%d completions=%d mean_dist=%.2f max_dist=%.2f max_hops=%d\n",
			b.Base, b.Legs[trace.LegDispatch], b.Legs[trace.LegChain], b.Legs[trace.LegReturn],
			b.Completions, b.MeanDistance, b.MaxDistance, b.MaxHops)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to YAML scenario")
	runCmd.Flags().StringVar(&legacyPath, "legacy", "", "Path to legacy plain-text scenario")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed (overrides scenario seed when set)")
	runCmd.Flags().IntVar(&runs, "runs", 1, "Number of trials (overrides run_number when set)")
	runCmd.Flags().Float64Var(&runTime, "run-time", 0, "Horizon of each trial (overrides run_time when set)")
	runCmd.Flags().Float64Var(&dt, "dt", 1, "Tick size (overrides dt when set)")

	runCmd.Flags().IntVar(&workers, "workers", 1, "Number of trials run concurrently")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Dispatch trace level (none, decisions)")
	runCmd.Flags().StringVar(&dotPath, "dot", "", "Write a Graphviz DOT file for the first trial")
	runCmd.Flags().StringVar(&resultsDB, "results-db", "", "Persist rankings to a SQLite path or postgres:// DSN")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
