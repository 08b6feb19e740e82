package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rplan/retirement-planner/internal/domain"
	"github.com/rplan/retirement-planner/pkg/dateutil"
)

// InputParser handles loading and saving of scenario files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadScenario loads a scenario from a YAML file and validates it. Nothing
// is simulated from a scenario that fails validation.
func (ip *InputParser) LoadScenario(filename string) (*domain.ScenarioInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var scenario domain.ScenarioInput
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateScenario(&scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// SaveScenario writes a scenario as YAML. LoadScenario(SaveScenario(x))
// yields field-for-field equality.
func (ip *InputParser) SaveScenario(filename string, scenario *domain.ScenarioInput) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// ValidateScenario checks a scenario against the engine's preconditions.
// Out-of-range values are rejected, never clamped.
func (ip *InputParser) ValidateScenario(s *domain.ScenarioInput) error {
	fail := func(field, reason string) error {
		return &domain.ValidationError{Scenario: s.ID, Field: field, Reason: reason}
	}

	if len(s.People) == 0 {
		return fail("people", "at least one person is required")
	}
	if len(s.People) > 2 {
		return fail("people", "at most two people are supported")
	}
	for i, p := range s.People {
		field := fmt.Sprintf("people[%d]", i)
		if p.BirthDate.IsZero() {
			return fail(field+".birth_date", "birth date is required")
		}
		if p.PIA.IsNegative() {
			return fail(field+".pia", "primary insurance amount cannot be negative")
		}
		if p.PIA.IsPositive() && (p.ClaimingAge < 62 || p.ClaimingAge > 70) {
			return fail(field+".claiming_age", fmt.Sprintf("claiming age must be between 62 and 70, got %d", p.ClaimingAge))
		}
		if p.FullRetirementAge != 0 && (p.FullRetirementAge < 65 || p.FullRetirementAge > 67) {
			return fail(field+".full_retirement_age", "full retirement age must be between 65 and 67")
		}
	}

	// A scenario with no accounts is legal; it simulates deterministically
	// (failing immediately when there is spending to fund).
	seen := map[string]bool{}
	for i, a := range s.Accounts {
		field := fmt.Sprintf("accounts[%d]", i)
		if a.Name == "" {
			return fail(field+".name", "account name is required")
		}
		if seen[a.Name] {
			return fail(field+".name", fmt.Sprintf("duplicate account name %q", a.Name))
		}
		seen[a.Name] = true
		switch a.Type {
		case domain.AccountTaxable, domain.AccountTaxDeferred, domain.AccountRoth:
		default:
			return fail(field+".type", fmt.Sprintf("unknown account type %q", a.Type))
		}
		if a.Balance.IsNegative() {
			return fail(field+".balance", "balance cannot be negative")
		}
		if a.Basis.IsNegative() {
			return fail(field+".basis", "basis cannot be negative")
		}
		if a.Basis.GreaterThan(a.Balance) {
			return fail(field+".basis", "basis cannot exceed balance")
		}
		if a.Volatility.IsNegative() {
			return fail(field+".volatility", "volatility cannot be negative")
		}
		if a.AnnualContribution.IsNegative() {
			return fail(field+".annual_contribution", "contribution cannot be negative")
		}
	}

	switch s.FilingStatus {
	case domain.FilingSingle, domain.FilingMarriedJoint:
	default:
		return fail("filing_status", fmt.Sprintf("unknown filing status %q", s.FilingStatus))
	}

	if s.StartYear < 1900 {
		return fail("start_year", "start year is required")
	}

	primary := s.Primary()
	startAge := dateutil.Age(primary.BirthDate, time.Date(s.StartYear, 1, 1, 0, 0, 0, 0, time.UTC))
	if s.EndAge <= startAge {
		return fail("end_age", fmt.Sprintf("end age %d must be after the primary person's starting age %d", s.EndAge, startAge))
	}
	if s.RetirementAge <= 0 {
		return fail("retirement_age", "retirement age is required")
	}

	if s.Spending.BaselineAnnual.IsNegative() {
		return fail("spending.baseline_annual", "spending cannot be negative")
	}
	for i, sp := range s.Spending.Special {
		if sp.Amount.IsNegative() {
			return fail(fmt.Sprintf("spending.special[%d].amount", i), "special expense cannot be negative")
		}
	}

	if len(s.WithdrawalOrder) > 0 {
		if len(s.WithdrawalOrder) != 3 {
			return fail("withdrawal_order", "withdrawal order must list all three account types")
		}
		present := map[domain.AccountType]bool{}
		for _, t := range s.WithdrawalOrder {
			switch t {
			case domain.AccountTaxable, domain.AccountTaxDeferred, domain.AccountRoth:
				present[t] = true
			default:
				return fail("withdrawal_order", fmt.Sprintf("unknown account type %q", t))
			}
		}
		if len(present) != 3 {
			return fail("withdrawal_order", "withdrawal order must not repeat account types")
		}
	}

	switch s.WithdrawalStrategy {
	case "", domain.WithdrawStandard, domain.WithdrawProportional, domain.WithdrawTaxBracket:
	default:
		return fail("withdrawal_strategy", fmt.Sprintf("unknown withdrawal strategy %q", s.WithdrawalStrategy))
	}
	if s.WithdrawalBracket.PreTaxLimit.IsNegative() {
		return fail("withdrawal_bracket.pre_tax_limit", "pre-tax limit cannot be negative")
	}

	rc := s.RothConversion
	if rc.AnnualCap.IsNegative() {
		return fail("roth_conversion.annual_cap", "conversion cap cannot be negative")
	}
	if rc.StartAge != 0 && rc.EndAge != 0 && rc.EndAge < rc.StartAge {
		return fail("roth_conversion.end_age", "conversion window end age precedes start age")
	}

	if s.Assumptions.SSCOLARate.IsNegative() {
		return fail("assumptions.ss_cola_rate", "COLA rate cannot be negative")
	}

	return nil
}

// ExampleScenario builds a ready-to-run sample scenario, used by the CLI's
// example command and the test suite.
func (ip *InputParser) ExampleScenario() *domain.ScenarioInput {
	birthDate := time.Date(1962, 4, 15, 0, 0, 0, 0, time.UTC)
	spouseBirthDate := time.Date(1964, 9, 2, 0, 0, 0, 0, time.UTC)

	return &domain.ScenarioInput{
		ID: "example-household",
		People: []domain.Person{
			{
				Name:        "Alex",
				BirthDate:   birthDate,
				PIA:         decimal.NewFromInt(2400),
				ClaimingAge: 67,
			},
			{
				Name:        "Sam",
				BirthDate:   spouseBirthDate,
				PIA:         decimal.NewFromInt(1900),
				ClaimingAge: 65,
			},
		},
		Accounts: []domain.Account{
			{
				Name:               "brokerage",
				Type:               domain.AccountTaxable,
				Balance:            decimal.NewFromInt(350000),
				Basis:              decimal.NewFromInt(250000),
				MeanReturn:         decimal.NewFromFloat(0.06),
				Volatility:         decimal.NewFromFloat(0.12),
				AnnualContribution: decimal.NewFromInt(10000),
			},
			{
				Name:               "401k",
				Type:               domain.AccountTaxDeferred,
				Balance:            decimal.NewFromInt(850000),
				MeanReturn:         decimal.NewFromFloat(0.05),
				Volatility:         decimal.NewFromFloat(0.10),
				AnnualContribution: decimal.NewFromInt(23000),
			},
			{
				Name:       "roth_ira",
				Type:       domain.AccountRoth,
				Balance:    decimal.NewFromInt(120000),
				MeanReturn: decimal.NewFromFloat(0.06),
				Volatility: decimal.NewFromFloat(0.12),
			},
		},
		FilingStatus:  domain.FilingMarriedJoint,
		State:         "MI",
		StartYear:     2025,
		RetirementAge: 65,
		EndAge:        95,
		Income: domain.IncomeSchedule{
			Salary:       decimal.NewFromInt(140000),
			SalaryGrowth: decimal.NewFromFloat(0.03),
		},
		Spending: domain.SpendingSchedule{
			BaselineAnnual: decimal.NewFromInt(90000),
			Special: []domain.SpecialExpense{
				{Year: 2030, Amount: decimal.NewFromInt(40000)},
			},
		},
		RothConversion: domain.RothConversionPolicy{
			AnnualCap:         decimal.NewFromInt(50000),
			StartAge:          65,
			EndAge:            72,
			PayTaxFromTaxable: true,
		},
		Assumptions: domain.Assumptions{
			ReturnsCorrelated: true,
			SSCOLARate:        decimal.NewFromFloat(0.025),
		},
	}
}
