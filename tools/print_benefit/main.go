// Command print_benefit dumps the Social Security claiming-age factors and
// the RMD divisor schedule for quick manual inspection.
package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/calculation"
	"github.com/rplan/retirement-planner/internal/domain"
)

func main() {
	calc := calculation.NewSocialSecurityCalculator()
	pia := decimal.NewFromInt(1000)

	fmt.Println("Benefit per $1000 PIA (FRA 67):")
	for age := 62; age <= 70; age++ {
		p := domain.Person{
			BirthDate:   time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
			PIA:         pia,
			ClaimingAge: age,
		}
		monthly := calc.MonthlyBenefit(&p)
		fmt.Printf("  claim at %d: %s/mo (%s%%)\n",
			age, monthly.StringFixed(2),
			monthly.Div(pia).Mul(decimal.NewFromInt(100)).StringFixed(1))
	}

	fmt.Println()
	fmt.Println("Uniform Lifetime divisors:")
	table := calculation.NewRMDTable()
	for age := 72; age <= 100; age++ {
		div, err := table.Divisor(age)
		if err != nil {
			fmt.Printf("  age %d: %v\n", age, err)
			continue
		}
		fmt.Printf("  age %d: %s\n", age, div)
	}
}
