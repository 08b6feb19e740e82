package domain

import (
	"github.com/shopspring/decimal"
)

// AccountYear is one account's slice of a LedgerYear: every flow that
// touched the account during the year, plus its bracketing balances.
type AccountYear struct {
	Name            string          `json:"name"`
	Type            AccountType     `json:"type"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Contribution    decimal.Decimal `json:"contribution"`
	ReturnRate      decimal.Decimal `json:"return_rate"`
	Growth          decimal.Decimal `json:"growth"`
	Withdrawal      decimal.Decimal `json:"withdrawal"`
	RMD             decimal.Decimal `json:"rmd"`
	Conversion      decimal.Decimal `json:"conversion"` // positive into Roth, negative out of tax-deferred
	TaxPaid         decimal.Decimal `json:"tax_paid"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
}

// LedgerYear records one simulated calendar year of one path. Produced
// exactly once per (path, year) and immutable after creation.
type LedgerYear struct {
	Year       int  `json:"year"`
	PrimaryAge int  `json:"primary_age"`
	Failed     bool `json:"failed"`

	Accounts []AccountYear `json:"accounts"`

	SocialSecurity decimal.Decimal `json:"social_security"`
	SalaryIncome   decimal.Decimal `json:"salary_income"`
	Spending       decimal.Decimal `json:"spending"`

	RMDRequired decimal.Decimal `json:"rmd_required"`
	RMDTaken    decimal.Decimal `json:"rmd_taken"`
	Conversion  decimal.Decimal `json:"conversion"`

	OrdinaryIncome decimal.Decimal `json:"ordinary_income"`
	CapitalGains   decimal.Decimal `json:"capital_gains"`
	FederalTax     decimal.Decimal `json:"federal_tax"`
	StateTax       decimal.Decimal `json:"state_tax"`

	NetWorth decimal.Decimal `json:"net_worth"`
}

// TotalTax returns federal plus state tax for the year.
func (ly *LedgerYear) TotalTax() decimal.Decimal {
	return ly.FederalTax.Add(ly.StateTax)
}

// TotalIncome returns all cash income realized in the year: benefits,
// salary, and gross account withdrawals (RMDs included).
func (ly *LedgerYear) TotalIncome() decimal.Decimal {
	total := ly.SocialSecurity.Add(ly.SalaryIncome)
	for _, acct := range ly.Accounts {
		total = total.Add(acct.Withdrawal).Add(acct.RMD)
	}
	return total
}

// PathOutcome is the terminal state of one simulated path. Owned by the
// Monte Carlo engine once returned; never mutated afterward.
type PathOutcome struct {
	PathIndex        int             `json:"path_index"`
	Success          bool            `json:"success"`
	FailedYear       int             `json:"failed_year,omitempty"` // calendar year funds ran out; zero on success
	TerminalNetWorth decimal.Decimal `json:"terminal_net_worth"`
	LifetimeTax      decimal.Decimal `json:"lifetime_tax"`
	Ledger           []LedgerYear    `json:"ledger"`
}

// PercentileBand holds the 10th/50th/90th percentile of a quantity for each
// year of the horizon, computed across all paths.
type PercentileBand struct {
	P10 []decimal.Decimal `json:"p10"`
	P50 []decimal.Decimal `json:"p50"`
	P90 []decimal.Decimal `json:"p90"`
}

// TaxStatistics summarizes lifetime tax paid across paths.
type TaxStatistics struct {
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	P10    decimal.Decimal `json:"p10"`
	P90    decimal.Decimal `json:"p90"`
}

// SimulationSummary aggregates all paths of one Monte Carlo run. It is
// derived and recomputable; it is never persisted as a source of truth.
type SimulationSummary struct {
	ScenarioID string `json:"scenario_id"`
	NumPaths   int    `json:"num_paths"`
	Seed       int64  `json:"seed"`

	Years []int `json:"years"`
	Ages  []int `json:"ages"`

	SuccessProbability decimal.Decimal `json:"success_probability"`

	NetWorth PercentileBand `json:"net_worth"`
	Income   PercentileBand `json:"income"`

	LifetimeTax            TaxStatistics   `json:"lifetime_tax"`
	MedianTerminalNetWorth decimal.Decimal `json:"median_terminal_net_worth"`

	// MedianLedger is the full ledger of the path whose terminal net worth
	// sits closest to the median, kept for audit display.
	MedianLedger []LedgerYear `json:"median_ledger,omitempty"`
}
