package output

import (
	"bytes"
	"fmt"

	"github.com/rplan/retirement-planner/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(summary *domain.SimulationSummary) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Scenario: %s\n", summary.ScenarioID)
	fmt.Fprintf(&buf, "Paths: %d (seed %d)\n", summary.NumPaths, summary.Seed)
	fmt.Fprintf(&buf, "Success Probability: %s\n", FormatPercentage(summary.SuccessProbability))
	fmt.Fprintf(&buf, "Median Terminal Net Worth: %s\n", FormatCurrency(summary.MedianTerminalNetWorth))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Lifetime Tax: mean=%s median=%s p10=%s p90=%s\n",
		FormatCurrency(summary.LifetimeTax.Mean),
		FormatCurrency(summary.LifetimeTax.Median),
		FormatCurrency(summary.LifetimeTax.P10),
		FormatCurrency(summary.LifetimeTax.P90),
	)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "Net Worth Bands (p10 / p50 / p90)")
	// Every 5th year keeps the console table readable; the CSV formatters
	// carry the full horizon.
	for t := range summary.Years {
		if t%5 != 0 && t != len(summary.Years)-1 {
			continue
		}
		fmt.Fprintf(&buf, "  %d (age %d): %s / %s / %s\n",
			summary.Years[t], summary.Ages[t],
			FormatCurrency(summary.NetWorth.P10[t]),
			FormatCurrency(summary.NetWorth.P50[t]),
			FormatCurrency(summary.NetWorth.P90[t]),
		)
	}
	return buf.Bytes(), nil
}
