package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lapwatch/lapwatch/pkg/bench"
	"github.com/lapwatch/lapwatch/pkg/logging"
	"github.com/lapwatch/lapwatch/pkg/stopwatch"
)

var (
	benchFile     string
	benchLogLevel string
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run command benchmarks from a scenario file",
	Long:  `Run the scenarios defined in a YAML file, timing every iteration as a lap, and print a summary report per scenario.`,
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchFile, "file", "scenarios.yaml", "scenario file to run")
	benchCmd.Flags().StringVar(&benchLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func runBench(cmd *cobra.Command, args []string) error {
	scenarios, err := bench.LoadScenarios(benchFile)
	if err != nil {
		return err
	}

	log := logging.NewLogger(logging.ParseLevel(benchLogLevel), false)
	runner := bench.NewRunner(stopwatch.NewRegistry(), log)

	reports := make([]*bench.Report, 0, len(scenarios))
	for _, sc := range scenarios {
		report, err := runner.Run(context.Background(), sc)
		if err != nil {
			return fmt.Errorf("benchmark failed: %w", err)
		}
		reports = append(reports, report)
	}

	if IsJSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(reports)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Scenario", "Iterations", "Min", "Mean", "Max", "Stddev", "Total")
	for _, report := range reports {
		table.Append(
			report.Scenario,
			fmt.Sprintf("%d", len(report.Iterations)),
			report.Stats.Min.String(),
			report.Stats.Mean.String(),
			report.Stats.Max.String(),
			report.Stats.Stddev.String(),
			report.Stats.Total.String(),
		)
	}
	table.Render()

	if len(reports) > 0 {
		sys := reports[0].System
		fmt.Printf("\nHost: %s, %s, %d threads", sys.Hostname, sys.CPUModel, sys.CPUThreads)
		if sys.Load1 > 0 {
			fmt.Printf(", load %.2f", sys.Load1)
		}
		fmt.Println()
	}
	return nil
}
