package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FilingStatus selects the bracket set used for federal taxes.
type FilingStatus string

const (
	FilingSingle       FilingStatus = "single"
	FilingMarriedJoint FilingStatus = "married_joint"
)

// AccountType classifies an account for tax treatment and withdrawal ordering.
type AccountType string

const (
	AccountTaxable     AccountType = "taxable"
	AccountTaxDeferred AccountType = "tax_deferred"
	AccountRoth        AccountType = "roth"
)

// DefaultWithdrawalOrder is the tax-efficient priority used when a scenario
// does not specify its own: spend taxable money first, preserve Roth longest.
var DefaultWithdrawalOrder = []AccountType{AccountTaxable, AccountTaxDeferred, AccountRoth}

// WithdrawalStrategy selects how spending shortfalls are funded.
type WithdrawalStrategy string

const (
	// WithdrawStandard drains accounts in the priority order.
	WithdrawStandard WithdrawalStrategy = "standard"
	// WithdrawProportional splits each withdrawal between taxable and
	// tax-deferred in proportion to their balances, Roth last.
	WithdrawProportional WithdrawalStrategy = "proportional"
	// WithdrawTaxBracket fills tax-deferred withdrawals up to a configured
	// ordinary-income limit first, then taxable, then Roth.
	WithdrawTaxBracket WithdrawalStrategy = "tax_bracket"
)

// WithdrawalBracket configures the tax_bracket strategy: PreTaxLimit is the
// target gross ordinary income from tax-deferred draws per year (RMDs count
// against it).
type WithdrawalBracket struct {
	PreTaxLimit decimal.Decimal `yaml:"pre_tax_limit,omitempty"`
}

// Person holds the Social Security inputs for one household member.
// PIA is the monthly benefit earned at full retirement age.
type Person struct {
	Name              string          `yaml:"name"`
	BirthDate         time.Time       `yaml:"birth_date"`
	PIA               decimal.Decimal `yaml:"pia"`
	ClaimingAge       int             `yaml:"claiming_age"`
	FullRetirementAge int             `yaml:"full_retirement_age,omitempty"`
	DeathYear         *int            `yaml:"death_year,omitempty"`
}

// Account is one investment account. Basis applies to taxable accounts only;
// a zero basis is treated as basis == starting balance (no built-in gains).
type Account struct {
	Name               string          `yaml:"name"`
	Type               AccountType     `yaml:"type"`
	Balance            decimal.Decimal `yaml:"balance"`
	Basis              decimal.Decimal `yaml:"basis,omitempty"`
	MeanReturn         decimal.Decimal `yaml:"mean_return"`
	Volatility         decimal.Decimal `yaml:"volatility"`
	AnnualContribution decimal.Decimal `yaml:"annual_contribution,omitempty"`
}

// SpecialExpense is a one-off spending item in a specific calendar year.
type SpecialExpense struct {
	Year   int             `yaml:"year"`
	Amount decimal.Decimal `yaml:"amount"`
}

// SpendingSchedule describes household spending over the plan horizon.
type SpendingSchedule struct {
	BaselineAnnual decimal.Decimal  `yaml:"baseline_annual"`
	GrowthRate     decimal.Decimal  `yaml:"growth_rate,omitempty"`
	Special        []SpecialExpense `yaml:"special,omitempty"`
}

// IncomeSchedule describes earned income before retirement.
type IncomeSchedule struct {
	Salary       decimal.Decimal `yaml:"salary,omitempty"`
	SalaryGrowth decimal.Decimal `yaml:"salary_growth,omitempty"`
}

// RothConversionPolicy caps annual tax-deferred to Roth conversions.
// AnnualCap is a dollar amount; zero disables conversions. When
// PayTaxFromTaxable is false, the tax attributable to the conversion is
// withheld from the amount reaching the Roth account.
type RothConversionPolicy struct {
	AnnualCap         decimal.Decimal `yaml:"annual_cap,omitempty"`
	StartAge          int             `yaml:"start_age,omitempty"`
	EndAge            int             `yaml:"end_age,omitempty"`
	PayTaxFromTaxable bool            `yaml:"pay_tax_from_taxable,omitempty"`
}

// Assumptions holds scenario-level market and benefit assumptions.
type Assumptions struct {
	ReturnsCorrelated bool            `yaml:"returns_correlated,omitempty"`
	SSCOLARate        decimal.Decimal `yaml:"ss_cola_rate,omitempty"`
}

// ScenarioInput is the complete, immutable description of one plan. It is
// supplied once per run and never mutated during simulation; sweeps clone it.
type ScenarioInput struct {
	ID              string               `yaml:"id"`
	People          []Person             `yaml:"people"`
	Accounts        []Account            `yaml:"accounts"`
	FilingStatus    FilingStatus         `yaml:"filing_status"`
	State           string               `yaml:"state,omitempty"`
	StartYear       int                  `yaml:"start_year"`
	RetirementAge   int                  `yaml:"retirement_age"`
	EndAge          int                  `yaml:"end_age"`
	Income          IncomeSchedule       `yaml:"income,omitempty"`
	Spending        SpendingSchedule     `yaml:"spending"`
	WithdrawalOrder []AccountType        `yaml:"withdrawal_order,omitempty"`

	// WithdrawalStrategy defaults to standard (priority-order) when empty.
	WithdrawalStrategy WithdrawalStrategy `yaml:"withdrawal_strategy,omitempty"`
	WithdrawalBracket  WithdrawalBracket  `yaml:"withdrawal_bracket,omitempty"`

	RothConversion RothConversionPolicy `yaml:"roth_conversion,omitempty"`
	Assumptions    Assumptions          `yaml:"assumptions,omitempty"`
}

// Primary returns the household member whose age drives the plan horizon
// and RMD schedule.
func (s *ScenarioInput) Primary() *Person {
	if len(s.People) == 0 {
		return nil
	}
	return &s.People[0]
}

// WithdrawalPriority returns the configured withdrawal order, falling back
// to the tax-efficient default.
func (s *ScenarioInput) WithdrawalPriority() []AccountType {
	if len(s.WithdrawalOrder) == 0 {
		return DefaultWithdrawalOrder
	}
	return s.WithdrawalOrder
}

// Clone returns an independent deep copy. Sweeps mutate only the copy, so
// the source scenario stays immutable for the duration of a run.
func (s *ScenarioInput) Clone() *ScenarioInput {
	out := *s

	out.People = make([]Person, len(s.People))
	copy(out.People, s.People)
	for i, p := range s.People {
		if p.DeathYear != nil {
			y := *p.DeathYear
			out.People[i].DeathYear = &y
		}
	}

	out.Accounts = make([]Account, len(s.Accounts))
	copy(out.Accounts, s.Accounts)

	if s.Spending.Special != nil {
		out.Spending.Special = make([]SpecialExpense, len(s.Spending.Special))
		copy(out.Spending.Special, s.Spending.Special)
	}

	if s.WithdrawalOrder != nil {
		out.WithdrawalOrder = make([]AccountType, len(s.WithdrawalOrder))
		copy(out.WithdrawalOrder, s.WithdrawalOrder)
	}

	return &out
}
