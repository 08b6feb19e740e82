package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rplan/retirement-planner/internal/calculation"
	"github.com/rplan/retirement-planner/internal/config"
	"github.com/rplan/retirement-planner/internal/domain"
	"github.com/rplan/retirement-planner/internal/output"
)

var (
	scenarioFile string
	taxTableFile string
	numPaths     int
	seed         int64
	workers      int
	formatName   string
	outputFile   string
	debug        bool
	capsFlag     string
)

func main() {
	root := &cobra.Command{
		Use:   "rplan",
		Short: "Retirement plan Monte Carlo simulator",
		Long: `rplan projects a household's retirement finances year by year and runs
Monte Carlo simulations over market returns to estimate the probability
the plan succeeds.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&scenarioFile, "scenario", "s", "", "scenario YAML file")
	root.PersistentFlags().StringVar(&taxTableFile, "tax-table", "", "tax table YAML file (built-in 2025 tables when omitted)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable per-path debug logging")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo simulation for a scenario",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&numPaths, "paths", calculation.DefaultNumPaths, "number of simulated paths")
	simulateCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	simulateCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	simulateCmd.Flags().StringVarP(&formatName, "format", "f", "console", "output format: console, csv, ledger-csv, json")
	simulateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (file formats default to a timestamped report when omitted)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare Roth conversion caps for a scenario",
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&numPaths, "paths", calculation.DefaultNumPaths, "number of simulated paths per cap")
	sweepCmd.Flags().Int64Var(&seed, "seed", 0, "random seed shared by all caps (0 picks one from the clock)")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	sweepCmd.Flags().StringVar(&capsFlag, "caps", "", "comma-separated conversion caps (default $0-$150k in $25k steps)")
	sweepCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write CSV results to a file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario file without simulating",
		RunE:  runValidate,
	}

	exampleCmd := &cobra.Command{
		Use:   "example",
		Short: "Write a ready-to-edit example scenario",
		RunE:  runExample,
	}
	exampleCmd.Flags().StringVarP(&outputFile, "output", "o", "example_scenario.yaml", "destination file")

	root.AddCommand(simulateCmd, sweepCmd, validateCmd, exampleCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadInputs() (*domain.ScenarioInput, *domain.TaxTable, error) {
	if scenarioFile == "" {
		return nil, nil, fmt.Errorf("a scenario file is required (-s)")
	}
	scenario, err := config.NewInputParser().LoadScenario(scenarioFile)
	if err != nil {
		return nil, nil, err
	}

	table := config.DefaultTaxTable()
	if taxTableFile != "" {
		table, err = config.LoadTaxTable(taxTableFile)
		if err != nil {
			return nil, nil, err
		}
	}
	return scenario, table, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	scenario, table, err := loadInputs()
	if err != nil {
		return err
	}

	engine := calculation.NewMonteCarloEngine(table)
	engine.SetLogger(calculation.ConsoleLogger{Debug: debug})

	summary, err := engine.Run(cmd.Context(), scenario, calculation.MonteCarloConfig{
		NumPaths: numPaths,
		Seed:     seed,
		Workers:  workers,
	})
	if err != nil {
		return err
	}

	formatter := output.GetFormatterByName(formatName)
	if formatter == nil {
		return fmt.Errorf("unknown format %q (available: %s)",
			formatName, strings.Join(output.AvailableFormatterNames(), ", "))
	}

	// File formats without an explicit -o land in a timestamped report
	// file; console output goes to stdout.
	canonical := output.NormalizeFormatName(formatName)
	if outputFile == "" && canonical != "console" {
		name, err := output.WriteFormatted(formatter, summary, formatExt(canonical))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
		return nil
	}

	data, err := formatter.Format(summary)
	if err != nil {
		return err
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// formatExt picks the report file extension for a canonical format name.
func formatExt(name string) string {
	switch name {
	case "json":
		return "json"
	case "csv", "ledger-csv":
		return "csv"
	default:
		return "txt"
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	scenario, table, err := loadInputs()
	if err != nil {
		return err
	}

	var caps []decimal.Decimal
	if capsFlag != "" {
		for _, part := range strings.Split(capsFlag, ",") {
			c, err := decimal.NewFromString(strings.TrimSpace(part))
			if err != nil {
				return fmt.Errorf("invalid cap %q: %w", part, err)
			}
			caps = append(caps, c)
		}
	}

	explorer := calculation.NewRothConversionExplorer(table)
	explorer.SetLogger(calculation.ConsoleLogger{Debug: debug})

	results, err := explorer.Sweep(cmd.Context(), scenario, caps, calculation.MonteCarloConfig{
		NumPaths: numPaths,
		Seed:     seed,
		Workers:  workers,
	})
	if err != nil {
		return err
	}

	if outputFile != "" {
		data, err := output.FormatSweepCSV(results)
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(output.FormatSweepConsole(results))
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	if scenarioFile == "" {
		return fmt.Errorf("a scenario file is required (-s)")
	}
	if _, err := config.NewInputParser().LoadScenario(scenarioFile); err != nil {
		return err
	}
	if taxTableFile != "" {
		if _, err := config.LoadTaxTable(taxTableFile); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "scenario is valid")
	return nil
}

func runExample(cmd *cobra.Command, args []string) error {
	parser := config.NewInputParser()
	if err := parser.SaveScenario(outputFile, parser.ExampleScenario()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outputFile)
	return nil
}
