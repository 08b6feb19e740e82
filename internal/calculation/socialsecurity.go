package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
	"github.com/rplan/retirement-planner/pkg/dateutil"
)

// SocialSecurityCalculator converts a person's PIA into the actual benefit
// at their claiming age, applying month-exact early reductions and delayed
// retirement credits.
type SocialSecurityCalculator struct{}

// NewSocialSecurityCalculator creates a Social Security calculator.
func NewSocialSecurityCalculator() *SocialSecurityCalculator {
	return &SocialSecurityCalculator{}
}

// MonthlyBenefit returns the monthly benefit at the person's claiming age.
//
// Early claiming reduces the PIA by 5/9 of 1% per month for the first 36
// months before FRA and 5/12 of 1% per month beyond that. Delayed claiming
// earns 2/3 of 1% per month (8% per year) up to age 70; months past 70 earn
// nothing.
func (c *SocialSecurityCalculator) MonthlyBenefit(p *domain.Person) decimal.Decimal {
	if !p.PIA.IsPositive() {
		return decimal.Zero
	}

	fra := p.FullRetirementAge
	if fra == 0 {
		fra = dateutil.FullRetirementAge(p.BirthDate.Year())
	}

	claiming := p.ClaimingAge
	if claiming > 70 {
		claiming = 70
	}

	monthsFromFRA := (claiming - fra) * 12

	switch {
	case monthsFromFRA < 0:
		early := -monthsFromFRA
		first := early
		if first > 36 {
			first = 36
		}
		beyond := early - first

		reduction := decimal.NewFromInt(int64(first)).
			Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(900)).
			Add(decimal.NewFromInt(int64(beyond)).
				Mul(decimal.NewFromInt(5)).Div(decimal.NewFromInt(1200)))
		return p.PIA.Mul(decimal.NewFromInt(1).Sub(reduction))

	case monthsFromFRA > 0:
		credit := decimal.NewFromInt(int64(monthsFromFRA)).
			Mul(decimal.NewFromInt(2)).Div(decimal.NewFromInt(300))
		return p.PIA.Mul(decimal.NewFromInt(1).Add(credit))

	default:
		return p.PIA
	}
}

// AnnualBenefit returns the benefit for a calendar year, zero before the
// year the person attains their claiming age. A benefit that starts mid-year
// is credited for the whole year; annual projections do not prorate.
func (c *SocialSecurityCalculator) AnnualBenefit(p *domain.Person, year int) decimal.Decimal {
	if !p.PIA.IsPositive() {
		return decimal.Zero
	}
	if dateutil.AgeInYear(p.BirthDate, year) < p.ClaimingAge {
		return decimal.Zero
	}
	return c.MonthlyBenefit(p).Mul(decimal.NewFromInt(12))
}

// SurvivorBenefit returns the household benefit after one spouse's death:
// the survivor keeps the greater of the two benefits, never both.
func (c *SocialSecurityCalculator) SurvivorBenefit(survivor, deceased decimal.Decimal) decimal.Decimal {
	return decimal.Max(survivor, deceased)
}
