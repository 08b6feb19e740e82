package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rplan/retirement-planner/internal/domain"
)

// LoadTaxTable reads a tax table from a YAML file and validates it.
func LoadTaxTable(filename string) (*domain.TaxTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax table %s: %w", filename, err)
	}

	var table domain.TaxTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse tax table YAML: %w", err)
	}

	if err := ValidateTaxTable(&table); err != nil {
		return nil, err
	}
	return &table, nil
}

// SaveTaxTable writes a tax table as YAML.
func SaveTaxTable(filename string, table *domain.TaxTable) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal tax table: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tax table %s: %w", filename, err)
	}
	return nil
}

// ValidateTaxTable checks every bracket list in the table: bounds must start
// at zero and strictly increase, rates must be non-negative.
func ValidateTaxTable(table *domain.TaxTable) error {
	if len(table.Federal) == 0 {
		return &domain.DataError{Source: "tax table", Reason: "no federal schedules"}
	}
	for year, statuses := range table.Federal {
		for status, sched := range statuses {
			src := fmt.Sprintf("federal %d %s ordinary", year, status)
			if err := validateBrackets(src, sched.Ordinary, true); err != nil {
				return err
			}
			if len(sched.CapitalGains) > 0 {
				src = fmt.Sprintf("federal %d %s capital gains", year, status)
				if err := validateBrackets(src, sched.CapitalGains, true); err != nil {
					return err
				}
			}
			if sched.StandardDeduction.IsNegative() {
				return &domain.DataError{Source: src, Reason: "negative standard deduction"}
			}
		}
	}
	for state, st := range table.State {
		if st.FlatRate.IsNegative() {
			return &domain.DataError{Source: "state " + state, Reason: "negative flat rate"}
		}
		if st.StandardDeduction.IsNegative() {
			return &domain.DataError{Source: "state " + state, Reason: "negative standard deduction"}
		}
		if len(st.Brackets) > 0 {
			if err := validateBrackets("state "+state, st.Brackets, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBrackets(source string, brackets []domain.Bracket, requireZeroStart bool) error {
	if len(brackets) == 0 {
		return &domain.DataError{Source: source, Reason: "empty bracket list"}
	}
	if requireZeroStart && !brackets[0].Lower.IsZero() {
		return &domain.DataError{Source: source, Reason: fmt.Sprintf("first bracket lower bound must be 0, got %s", brackets[0].Lower)}
	}
	prev := brackets[0].Lower
	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return &domain.DataError{Source: source, Reason: fmt.Sprintf("bracket %d has negative rate %s", i, b.Rate)}
		}
		if i > 0 && b.Lower.LessThanOrEqual(prev) {
			return &domain.DataError{Source: source, Reason: fmt.Sprintf("bracket %d lower bound %s does not increase past %s", i, b.Lower, prev)}
		}
		prev = b.Lower
	}
	return nil
}

// DefaultTaxTable returns the built-in 2025 federal schedules (single and
// married filing jointly) plus a few flat-rate state entries. Figures match
// the 2025 IRS tables; future years fall back to these until indexed tables
// are supplied.
func DefaultTaxTable() *domain.TaxTable {
	single := domain.FilingSchedule{
		StandardDeduction: decimal.NewFromInt(15000),
		Ordinary: []domain.Bracket{
			{Lower: decimal.Zero, Rate: decimal.NewFromFloat(0.10)},
			{Lower: decimal.NewFromInt(11925), Rate: decimal.NewFromFloat(0.12)},
			{Lower: decimal.NewFromInt(48475), Rate: decimal.NewFromFloat(0.22)},
			{Lower: decimal.NewFromInt(103350), Rate: decimal.NewFromFloat(0.24)},
			{Lower: decimal.NewFromInt(197300), Rate: decimal.NewFromFloat(0.32)},
			{Lower: decimal.NewFromInt(250525), Rate: decimal.NewFromFloat(0.35)},
			{Lower: decimal.NewFromInt(626350), Rate: decimal.NewFromFloat(0.37)},
		},
		CapitalGains: []domain.Bracket{
			{Lower: decimal.Zero, Rate: decimal.Zero},
			{Lower: decimal.NewFromInt(48350), Rate: decimal.NewFromFloat(0.15)},
			{Lower: decimal.NewFromInt(533400), Rate: decimal.NewFromFloat(0.20)},
		},
	}

	joint := domain.FilingSchedule{
		StandardDeduction: decimal.NewFromInt(30000),
		Ordinary: []domain.Bracket{
			{Lower: decimal.Zero, Rate: decimal.NewFromFloat(0.10)},
			{Lower: decimal.NewFromInt(23850), Rate: decimal.NewFromFloat(0.12)},
			{Lower: decimal.NewFromInt(96950), Rate: decimal.NewFromFloat(0.22)},
			{Lower: decimal.NewFromInt(206700), Rate: decimal.NewFromFloat(0.24)},
			{Lower: decimal.NewFromInt(394600), Rate: decimal.NewFromFloat(0.32)},
			{Lower: decimal.NewFromInt(501050), Rate: decimal.NewFromFloat(0.35)},
			{Lower: decimal.NewFromInt(751600), Rate: decimal.NewFromFloat(0.37)},
		},
		CapitalGains: []domain.Bracket{
			{Lower: decimal.Zero, Rate: decimal.Zero},
			{Lower: decimal.NewFromInt(96700), Rate: decimal.NewFromFloat(0.15)},
			{Lower: decimal.NewFromInt(600050), Rate: decimal.NewFromFloat(0.20)},
		},
	}

	return &domain.TaxTable{
		Federal: map[int]map[domain.FilingStatus]domain.FilingSchedule{
			2025: {
				domain.FilingSingle:       single,
				domain.FilingMarriedJoint: joint,
			},
		},
		State: map[string]domain.StateTaxTable{
			"MI": {FlatRate: decimal.NewFromFloat(0.0425)},
			"PA": {FlatRate: decimal.NewFromFloat(0.0307)},
			"IL": {FlatRate: decimal.NewFromFloat(0.0495)},
		},
	}
}
