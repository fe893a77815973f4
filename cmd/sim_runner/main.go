package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stocksim/stocksim/experiment"
	"github.com/stocksim/stocksim/simulator"
)

var (
	logLevel string

	// run flags
	configFile    string
	horizonDays   float64
	seed          int64
	outputFile    string
	withSnapshots bool

	// batch flags
	experimentFile string
	csvFile        string
)

var rootCmd = &cobra.Command{
	Use:   "sim_runner",
	Short: "Discrete-event simulator for continuous-review inventory policies",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single replication",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		config := simulator.DefaultConfig()
		if configFile != "" {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
			if err := json.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("parsing config JSON: %w", err)
			}
		}
		if seed != 0 {
			config.RandomSeed = seed
		}

		sim, err := simulator.NewSimulator(config)
		if err != nil {
			return err
		}

		logrus.Infof("starting replication: horizon=%.1f days, seed=%d", horizonDays, config.RandomSeed)
		if err := sim.AdvanceUntil(horizonDays); err != nil {
			return fmt.Errorf("replication aborted: %w", err)
		}

		results := map[string]interface{}{
			"config":          config,
			"virtualTime":     sim.VirtualTime(),
			"days":            len(sim.Snapshots()),
			"costs":           sim.Costs(),
			"ordersFulfilled": len(sim.Fulfilled()),
			"onHand":          sim.OnHand(),
		}
		if frac := sim.FractionBacklogged(); !math.IsNaN(frac) {
			results["fractionBacklogged"] = frac
		}
		if withSnapshots {
			results["snapshots"] = sim.Snapshots()
		}
		return writeJSON(results)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch of independent replications from a YAML experiment spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		if experimentFile == "" {
			return fmt.Errorf("--experiment is required")
		}
		cfg, err := experiment.LoadConfig(experimentFile)
		if err != nil {
			return err
		}

		logrus.Infof("starting batch: %d replications, horizon=%.1f days", cfg.Replications, cfg.HorizonDays)
		summary, err := experiment.Run(cfg)
		if err != nil {
			return err
		}
		logrus.Infof("batch complete: %d ok, %d failed, mean total cost %.2f (stddev %.2f)",
			summary.Completed, summary.Failed, summary.MeanTotalCost, summary.StdDevTotalCost)

		if csvFile != "" {
			f, err := os.Create(csvFile)
			if err != nil {
				return fmt.Errorf("creating CSV file: %w", err)
			}
			defer f.Close()
			if err := experiment.WriteCSV(f, summary.Results); err != nil {
				return fmt.Errorf("writing CSV: %w", err)
			}
			logrus.Infof("per-replication results written to %s", csvFile)
		}
		return writeJSON(summary)
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func writeJSON(v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		logrus.Infof("results written to %s", outputFile)
		return nil
	}
	fmt.Println(string(output))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&configFile, "config", "", "Path to JSON simulation config (default: built-in policy)")
	runCmd.Flags().Float64Var(&horizonDays, "horizon", 365, "Simulation horizon in virtual days")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed override (0 = keep config seed)")
	runCmd.Flags().StringVar(&outputFile, "output", "", "Path to output JSON file (prints to stdout if not specified)")
	runCmd.Flags().BoolVar(&withSnapshots, "snapshots", false, "Include the per-day log rows in the output")

	batchCmd.Flags().StringVar(&experimentFile, "experiment", "", "Path to YAML experiment spec")
	batchCmd.Flags().StringVar(&csvFile, "csv", "", "Path to per-replication CSV output (optional)")
	batchCmd.Flags().StringVar(&outputFile, "output", "", "Path to summary JSON file (prints to stdout if not specified)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
