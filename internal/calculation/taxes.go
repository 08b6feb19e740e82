package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Ordinary income is taxed with standard marginal-rate semantics: each
//    bracket's rate applies only to the income slice within that bracket.
// 2. Long-term capital gains use their own bracket set, stacked on top of
//    taxable ordinary income: the gains slice runs from taxable ordinary
//    income to taxable ordinary income + gains when measured against the
//    capital-gains thresholds.
// 3. The standard deduction reduces ordinary income before the bracket
//    walk. Gains stack on the post-deduction amount.
// 4. State tax applies to ordinary income only, unless the state entry sets
//    include_capital_gains.
// 5. Bracket thresholds are not inflation-indexed across projection years;
//    lookups fall back to the nearest earlier table year.

// TaxEngine computes federal and state taxes from a bracket table. The
// table is read-only for the engine's lifetime, so one engine is safely
// shared across parallel path simulations.
type TaxEngine struct {
	table *domain.TaxTable
}

// NewTaxEngine creates a tax engine over a validated table.
func NewTaxEngine(table *domain.TaxTable) *TaxEngine {
	return &TaxEngine{table: table}
}

// Tax computes federal and state tax on a year's ordinary income and
// long-term capital gains. Negative incomes are a DataError, not clamped.
func (te *TaxEngine) Tax(ordinary, gains decimal.Decimal, status domain.FilingStatus, year int, state string) (decimal.Decimal, decimal.Decimal, error) {
	if ordinary.IsNegative() {
		return decimal.Zero, decimal.Zero, &domain.DataError{Source: "tax engine", Reason: fmt.Sprintf("negative ordinary income %s", ordinary)}
	}
	if gains.IsNegative() {
		return decimal.Zero, decimal.Zero, &domain.DataError{Source: "tax engine", Reason: fmt.Sprintf("negative capital gains %s", gains)}
	}

	sched, ok := te.table.Schedule(year, status)
	if !ok {
		return decimal.Zero, decimal.Zero, &domain.DataError{Source: "tax table", Reason: fmt.Sprintf("no federal schedule for %s at or before %d", status, year)}
	}

	taxableOrdinary := ordinary.Sub(sched.StandardDeduction)
	if taxableOrdinary.IsNegative() {
		taxableOrdinary = decimal.Zero
	}

	federal := taxOnSlice(sched.Ordinary, decimal.Zero, taxableOrdinary)

	// Capital-gains thresholds see ordinary income underneath the gains.
	if gains.IsPositive() && len(sched.CapitalGains) > 0 {
		federal = federal.Add(taxOnSlice(sched.CapitalGains, taxableOrdinary, taxableOrdinary.Add(gains)))
	}

	stateTax, err := te.stateTax(ordinary, gains, state)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return federal, stateTax, nil
}

func (te *TaxEngine) stateTax(ordinary, gains decimal.Decimal, state string) (decimal.Decimal, error) {
	if state == "" {
		return decimal.Zero, nil
	}
	entry, ok := te.table.State[state]
	if !ok {
		return decimal.Zero, &domain.DataError{Source: "tax table", Reason: fmt.Sprintf("no state entry for %q", state)}
	}

	base := ordinary
	if entry.IncludeCapitalGains {
		base = base.Add(gains)
	}
	base = base.Sub(entry.StandardDeduction)
	if base.IsNegative() {
		base = decimal.Zero
	}

	if len(entry.Brackets) > 0 {
		return taxOnSlice(entry.Brackets, decimal.Zero, base), nil
	}
	return base.Mul(entry.FlatRate), nil
}

// taxOnSlice sums marginal tax over the income slice [from, to) against an
// ordered bracket list. Bracket i spans from its lower bound to the next
// bracket's lower bound; the last bracket is unbounded.
func taxOnSlice(brackets []domain.Bracket, from, to decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, b := range brackets {
		lo := decimal.Max(b.Lower, from)
		var hi decimal.Decimal
		if i+1 < len(brackets) {
			hi = decimal.Min(brackets[i+1].Lower, to)
		} else {
			hi = to
		}
		if hi.GreaterThan(lo) {
			total = total.Add(hi.Sub(lo).Mul(b.Rate))
		}
	}
	return total
}
