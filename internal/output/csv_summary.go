package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rplan/retirement-planner/internal/domain"
)

// CSVSummarizer implements the per-year percentile band CSV (one row per year).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(summary *domain.SimulationSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Age", "NetWorthP10", "NetWorthP50", "NetWorthP90", "IncomeP10", "IncomeP50", "IncomeP90"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for t := range summary.Years {
		row := []string{
			strconv.Itoa(summary.Years[t]),
			strconv.Itoa(summary.Ages[t]),
			summary.NetWorth.P10[t].StringFixed(2),
			summary.NetWorth.P50[t].StringFixed(2),
			summary.NetWorth.P90[t].StringFixed(2),
			summary.Income.P10[t].StringFixed(2),
			summary.Income.P50[t].StringFixed(2),
			summary.Income.P90[t].StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
