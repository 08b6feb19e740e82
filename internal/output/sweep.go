package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/rplan/retirement-planner/internal/calculation"
)

// FormatSweepConsole renders conversion sweep results as an aligned table.
func FormatSweepConsole(results []calculation.SweepResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "ROTH CONVERSION SWEEP")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "%-14s %-10s %-16s %-18s\n", "AnnualCap", "Success", "MedianTax", "MedianTerminalNW")
	for _, r := range results {
		fmt.Fprintf(&buf, "%-14s %-10s %-16s %-18s\n",
			FormatCurrency(r.Cap),
			FormatPercentage(r.SuccessProbability),
			FormatCurrency(r.LifetimeTax.Median),
			FormatCurrency(r.MedianTerminalNetWorth),
		)
	}
	if best, ok := calculation.Best(results); ok {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Recommended cap: %s (success %s, median lifetime tax %s)\n",
			FormatCurrency(best.Cap),
			FormatPercentage(best.SuccessProbability),
			FormatCurrency(best.LifetimeTax.Median),
		)
	}
	return buf.Bytes()
}

// FormatSweepCSV renders sweep results as CSV, one row per cap.
func FormatSweepCSV(results []calculation.SweepResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"AnnualCap", "SuccessProbability", "MeanLifetimeTax", "MedianLifetimeTax", "MedianTerminalNetWorth"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results {
		row := []string{
			r.Cap.StringFixed(2),
			r.SuccessProbability.StringFixed(4),
			r.LifetimeTax.Mean.StringFixed(2),
			r.LifetimeTax.Median.StringFixed(2),
			r.MedianTerminalNetWorth.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
