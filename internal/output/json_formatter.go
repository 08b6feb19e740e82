package output

import (
	"encoding/json"

	"github.com/rplan/retirement-planner/internal/domain"
)

// JSONFormatter emits the full summary as indented JSON, median ledger
// included, for downstream tooling.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(summary *domain.SimulationSummary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}
