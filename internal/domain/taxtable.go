package domain

import (
	"github.com/shopspring/decimal"
)

// Bracket is one marginal-rate step: Rate applies to the income slice above
// Lower and below the next bracket's Lower.
type Bracket struct {
	Lower decimal.Decimal `yaml:"lower"`
	Rate  decimal.Decimal `yaml:"rate"`
}

// FilingSchedule holds one filing status's federal schedules for one tax
// year. CapitalGains thresholds are evaluated with ordinary income stacked
// underneath the gains.
type FilingSchedule struct {
	StandardDeduction decimal.Decimal `yaml:"standard_deduction,omitempty"`
	Ordinary          []Bracket       `yaml:"ordinary"`
	CapitalGains      []Bracket       `yaml:"capital_gains,omitempty"`
}

// StateTaxTable is a flat or bracketed state schedule. It applies to
// ordinary income only unless IncludeCapitalGains is set.
type StateTaxTable struct {
	FlatRate            decimal.Decimal `yaml:"flat_rate,omitempty"`
	Brackets            []Bracket       `yaml:"brackets,omitempty"`
	StandardDeduction   decimal.Decimal `yaml:"standard_deduction,omitempty"`
	IncludeCapitalGains bool            `yaml:"include_capital_gains,omitempty"`
}

// TaxTable maps tax year and filing status to bracket schedules. Loaded
// once, validated, and treated as read-only for the duration of a run.
type TaxTable struct {
	Federal map[int]map[FilingStatus]FilingSchedule `yaml:"federal"`
	State   map[string]StateTaxTable                `yaml:"state,omitempty"`
}

// Schedule returns the federal schedule for a (year, status) pair, falling
// back to the nearest earlier year present in the table. The second return
// is false when no year at or before the requested one exists.
func (t *TaxTable) Schedule(year int, status FilingStatus) (FilingSchedule, bool) {
	best := 0
	for y := range t.Federal {
		if y <= year && y > best {
			if _, ok := t.Federal[y][status]; ok {
				best = y
			}
		}
	}
	if best == 0 {
		return FilingSchedule{}, false
	}
	return t.Federal[best][status], true
}
