package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
	"github.com/rplan/retirement-planner/pkg/dateutil"
)

// LedgerSimulator runs one path of a scenario year by year, producing a
// full ledger of balances, flows, and taxes.
//
// Each simulated year proceeds in a fixed order:
//
//  1. market returns compound on the beginning-of-year balances
//  2. contributions and earned income are credited (pre-retirement)
//  3. Social Security benefits are paid, COLA-adjusted, with the
//     survivor keeping the greater benefit after a death
//  4. required minimum distributions come out of tax-deferred accounts
//  5. Roth conversions execute up to the policy cap
//  6. spending is funded from cash income first, then withdrawals under
//     the scenario's withdrawal strategy
//  7. taxes are computed on the year's realized income and settled from
//     accounts; the year's ledger row is recorded
//
// A path fails in the first year spending or taxes cannot be met; the
// ledger ends at the failing year.
type LedgerSimulator struct {
	tax         *TaxEngine
	rmd         *RMDTable
	ss          *SocialSecurityCalculator
	policy      ConversionPolicy
	withdrawals WithdrawalPolicy
	logger      Logger
}

// NewLedgerSimulator creates a simulator over a validated tax table.
func NewLedgerSimulator(table *domain.TaxTable) *LedgerSimulator {
	return &LedgerSimulator{
		tax:    NewTaxEngine(table),
		rmd:    NewRMDTable(),
		ss:     NewSocialSecurityCalculator(),
		logger: NopLogger{},
	}
}

// SetLogger replaces the default no-op logger.
func (ls *LedgerSimulator) SetLogger(l Logger) {
	if l != nil {
		ls.logger = l
	}
}

// SetConversionPolicy substitutes a conversion strategy for the scenario's
// built-in cap-and-window policy.
func (ls *LedgerSimulator) SetConversionPolicy(p ConversionPolicy) {
	ls.policy = p
}

// SetWithdrawalPolicy overrides the withdrawal strategy the scenario selects.
func (ls *LedgerSimulator) SetWithdrawalPolicy(p WithdrawalPolicy) {
	ls.withdrawals = p
}

// ConversionPolicy proposes how much to convert from tax-deferred to Roth
// in a given year. Implementations must be pure so paths stay independent.
type ConversionPolicy interface {
	Propose(age int, deferredBalance decimal.Decimal) decimal.Decimal
}

// CapWindowPolicy converts up to a fixed annual cap inside an age window.
// This is the scenario-driven default strategy.
type CapWindowPolicy struct {
	Policy domain.RothConversionPolicy
}

func (c CapWindowPolicy) Propose(age int, deferredBalance decimal.Decimal) decimal.Decimal {
	rc := c.Policy
	if !rc.AnnualCap.IsPositive() {
		return decimal.Zero
	}
	if rc.StartAge != 0 && age < rc.StartAge {
		return decimal.Zero
	}
	if rc.EndAge != 0 && age > rc.EndAge {
		return decimal.Zero
	}
	return decimal.Min(rc.AnnualCap, deferredBalance)
}

// acctState tracks one account's mutable balance within a path. Basis is
// meaningful for taxable accounts only.
type acctState struct {
	def     domain.Account
	balance decimal.Decimal
	basis   decimal.Decimal
}

// WithdrawalPolicy decides which accounts fund a spending shortfall.
// Implementations return the unmet remainder, the tax-deferred total drawn,
// and the capital gains realized from taxable draws.
type WithdrawalPolicy interface {
	Fund(accounts []acctState, needed decimal.Decimal, ly *domain.LedgerYear) (remaining, deferredDrawn, realizedGains decimal.Decimal)
}

// PriorityOrderPolicy drains accounts in a fixed type order. This is the
// standard strategy.
type PriorityOrderPolicy struct {
	Order []domain.AccountType
}

func (p PriorityOrderPolicy) Fund(accounts []acctState, needed decimal.Decimal, ly *domain.LedgerYear) (remaining, deferredDrawn, realizedGains decimal.Decimal) {
	order := p.Order
	if len(order) == 0 {
		order = domain.DefaultWithdrawalOrder
	}
	return drawByPriority(accounts, order, needed, ly, false)
}

// ProportionalPolicy splits each withdrawal between taxable and tax-deferred
// accounts in proportion to their balances, keeping Roth money for last.
type ProportionalPolicy struct{}

func (ProportionalPolicy) Fund(accounts []acctState, needed decimal.Decimal, ly *domain.LedgerYear) (remaining, deferredDrawn, realizedGains decimal.Decimal) {
	taxBal := totalByType(accounts, domain.AccountTaxable)
	defBal := totalByType(accounts, domain.AccountTaxDeferred)
	combined := taxBal.Add(defBal)

	remaining = needed
	if combined.IsPositive() {
		fromTaxable := decimal.Min(taxBal, needed.Mul(taxBal).Div(combined))
		rem, _, gains := drawByPriority(accounts,
			[]domain.AccountType{domain.AccountTaxable}, fromTaxable, ly, false)
		realizedGains = realizedGains.Add(gains)
		remaining = remaining.Sub(fromTaxable.Sub(rem))
	}

	// The deferred share, plus anything taxable could not cover, cascades
	// deferred first and falls back through the remaining account types.
	rem, drawn, gains := drawByPriority(accounts,
		[]domain.AccountType{domain.AccountTaxDeferred, domain.AccountTaxable, domain.AccountRoth},
		remaining, ly, false)
	deferredDrawn = deferredDrawn.Add(drawn)
	realizedGains = realizedGains.Add(gains)
	return rem, deferredDrawn, realizedGains
}

// BracketFillPolicy fills tax-deferred withdrawals up to a gross ordinary
// income target first, so retirement draws use up a chosen tax bracket
// before taxable money is touched. RMDs already taken count against the
// target; the target is exceeded only when no other account can fund the
// rest.
type BracketFillPolicy struct {
	PreTaxLimit decimal.Decimal
}

func (p BracketFillPolicy) Fund(accounts []acctState, needed decimal.Decimal, ly *domain.LedgerYear) (remaining, deferredDrawn, realizedGains decimal.Decimal) {
	headroom := p.PreTaxLimit.Sub(ly.RMDTaken)
	if headroom.IsNegative() {
		headroom = decimal.Zero
	}

	remaining = needed
	fromDeferred := decimal.Min(headroom, needed)
	if fromDeferred.IsPositive() {
		rem, drawn, _ := drawByPriority(accounts,
			[]domain.AccountType{domain.AccountTaxDeferred}, fromDeferred, ly, false)
		deferredDrawn = deferredDrawn.Add(drawn)
		remaining = remaining.Sub(fromDeferred.Sub(rem))
	}

	rem, drawn, gains := drawByPriority(accounts,
		[]domain.AccountType{domain.AccountTaxable, domain.AccountRoth, domain.AccountTaxDeferred},
		remaining, ly, false)
	deferredDrawn = deferredDrawn.Add(drawn)
	realizedGains = realizedGains.Add(gains)
	return rem, deferredDrawn, realizedGains
}

// withdrawalPolicyFor maps the scenario's declared strategy to a policy.
func withdrawalPolicyFor(s *domain.ScenarioInput) WithdrawalPolicy {
	switch s.WithdrawalStrategy {
	case domain.WithdrawProportional:
		return ProportionalPolicy{}
	case domain.WithdrawTaxBracket:
		return BracketFillPolicy{PreTaxLimit: s.WithdrawalBracket.PreTaxLimit}
	default:
		return PriorityOrderPolicy{Order: s.WithdrawalPriority()}
	}
}

func totalByType(accounts []acctState, typ domain.AccountType) decimal.Decimal {
	total := decimal.Zero
	for i := range accounts {
		if accounts[i].def.Type == typ {
			total = total.Add(accounts[i].balance)
		}
	}
	return total
}

// SimulatePath runs one full path. The sampler supplies the year-by-year
// returns; pass a zero-volatility scenario for a deterministic projection.
// The scenario is never mutated.
func (ls *LedgerSimulator) SimulatePath(s *domain.ScenarioInput, sampler *ReturnSampler, pathIndex int) (*domain.PathOutcome, error) {
	one := decimal.NewFromInt(1)

	accounts := make([]acctState, len(s.Accounts))
	for i, a := range s.Accounts {
		basis := a.Basis
		if a.Type == domain.AccountTaxable && basis.IsZero() {
			basis = a.Balance
		}
		accounts[i] = acctState{def: a, balance: a.Balance, basis: basis}
	}

	primary := s.Primary()
	startAge := dateutil.AgeInYear(primary.BirthDate, s.StartYear)
	horizon := s.EndAge - startAge + 1

	outcome := &domain.PathOutcome{
		PathIndex: pathIndex,
		Success:   true,
		Ledger:    make([]domain.LedgerYear, 0, horizon),
	}

	salary := s.Income.Salary
	spending := s.Spending.BaselineAnnual
	colaFactor := one

	for t := 0; t < horizon; t++ {
		year := s.StartYear + t
		age := startAge + t

		ly := domain.LedgerYear{
			Year:       year,
			PrimaryAge: age,
			Accounts:   make([]domain.AccountYear, len(accounts)),
		}
		for i := range accounts {
			ly.Accounts[i] = domain.AccountYear{
				Name:            accounts[i].def.Name,
				Type:            accounts[i].def.Type,
				StartingBalance: accounts[i].balance,
			}
		}

		// Prior-year-end tax-deferred total drives this year's RMD.
		boyDeferred := decimal.Zero
		for i := range accounts {
			if accounts[i].def.Type == domain.AccountTaxDeferred {
				boyDeferred = boyDeferred.Add(accounts[i].balance)
			}
		}

		// Step 1: returns on beginning-of-year balances.
		returns := sampler.SampleYear(s.Accounts)
		for i := range accounts {
			growth := accounts[i].balance.Mul(returns[i])
			newBal := accounts[i].balance.Add(growth)
			if newBal.IsNegative() {
				growth = accounts[i].balance.Neg()
				newBal = decimal.Zero
			}
			accounts[i].balance = newBal
			ly.Accounts[i].ReturnRate = returns[i]
			ly.Accounts[i].Growth = growth
		}

		// Step 2: contributions and salary, while still working.
		working := age < s.RetirementAge
		if working {
			for i := range accounts {
				c := accounts[i].def.AnnualContribution
				if c.IsPositive() {
					accounts[i].balance = accounts[i].balance.Add(c)
					if accounts[i].def.Type == domain.AccountTaxable {
						accounts[i].basis = accounts[i].basis.Add(c)
					}
					ly.Accounts[i].Contribution = c
				}
			}
			ly.SalaryIncome = salary
		}

		// Step 3: Social Security with COLA and survivor handling.
		ly.SocialSecurity = ls.householdBenefit(s, year).Mul(colaFactor)

		// Step 4: RMD from tax-deferred accounts.
		rmdRequired, err := ls.rmd.RequiredMinimum(age, boyDeferred, primary.BirthDate.Year())
		if err != nil {
			return nil, err
		}
		ly.RMDRequired = rmdRequired
		rmdTaken := decimal.Zero
		if rmdRequired.IsPositive() {
			remaining := rmdRequired
			for i := range accounts {
				if accounts[i].def.Type != domain.AccountTaxDeferred || !remaining.IsPositive() {
					continue
				}
				take := decimal.Min(remaining, accounts[i].balance)
				accounts[i].balance = accounts[i].balance.Sub(take)
				ly.Accounts[i].RMD = take
				rmdTaken = rmdTaken.Add(take)
				remaining = remaining.Sub(take)
			}
		}
		ly.RMDTaken = rmdTaken

		// Step 5: Roth conversion within the policy window.
		conversion := ls.convert(s, accounts, age, &ly)
		ly.Conversion = conversion

		// Step 6: fund spending from cash income, then withdrawals.
		spendingThisYear := spending
		for _, sp := range s.Spending.Special {
			if sp.Year == year {
				spendingThisYear = spendingThisYear.Add(sp.Amount)
			}
		}
		ly.Spending = spendingThisYear

		cash := ly.SalaryIncome.Add(ly.SocialSecurity).Add(rmdTaken)
		shortfall := spendingThisYear.Sub(cash)

		deferredWithdrawn := decimal.Zero
		realizedGains := decimal.Zero
		if shortfall.IsPositive() {
			policy := ls.withdrawals
			if policy == nil {
				policy = withdrawalPolicyFor(s)
			}
			var drawn, gains decimal.Decimal
			shortfall, drawn, gains = policy.Fund(accounts, shortfall, &ly)
			deferredWithdrawn = drawn
			realizedGains = gains
		} else if shortfall.IsNegative() {
			// Surplus cash is saved into the first taxable account.
			ls.deposit(accounts, shortfall.Neg(), &ly)
			shortfall = decimal.Zero
		}

		if shortfall.IsPositive() {
			ls.logger.Debugf("path %d: funds depleted in %d (age %d), unmet spending %s",
				pathIndex, year, age, shortfall.StringFixed(2))
			ls.fail(&ly, accounts, outcome, year)
			break
		}

		// Step 7: taxes on the year's realized income.
		ly.OrdinaryIncome = ly.SalaryIncome.
			Add(ly.SocialSecurity).
			Add(rmdTaken).
			Add(deferredWithdrawn).
			Add(conversion)
		ly.CapitalGains = realizedGains

		federal, state, err := ls.tax.Tax(ly.OrdinaryIncome, ly.CapitalGains, s.FilingStatus, year, s.State)
		if err != nil {
			return nil, err
		}
		ly.FederalTax = federal
		ly.StateTax = state

		unpaid := ls.settleTax(s, accounts, federal.Add(state), conversion, &ly)
		if unpaid.IsPositive() {
			ls.logger.Debugf("path %d: funds depleted in %d (age %d), unpaid tax %s",
				pathIndex, year, age, unpaid.StringFixed(2))
			ls.fail(&ly, accounts, outcome, year)
			break
		}

		ls.closeYear(&ly, accounts)
		outcome.LifetimeTax = outcome.LifetimeTax.Add(ly.TotalTax())
		outcome.Ledger = append(outcome.Ledger, ly)

		if working {
			salary = salary.Mul(one.Add(s.Income.SalaryGrowth))
		}
		spending = spending.Mul(one.Add(s.Spending.GrowthRate))
		colaFactor = colaFactor.Mul(one.Add(s.Assumptions.SSCOLARate))
	}

	terminal := decimal.Zero
	for i := range accounts {
		terminal = terminal.Add(accounts[i].balance)
	}
	outcome.TerminalNetWorth = terminal
	return outcome, nil
}

// householdBenefit sums the base (un-COLA'd) Social Security benefit of
// every living household member. After a death the survivor keeps the
// greater of the two benefits.
func (ls *LedgerSimulator) householdBenefit(s *domain.ScenarioInput, year int) decimal.Decimal {
	if len(s.People) == 1 {
		p := &s.People[0]
		if p.DeathYear != nil && year >= *p.DeathYear {
			return decimal.Zero
		}
		return ls.ss.AnnualBenefit(p, year)
	}

	a, b := &s.People[0], &s.People[1]
	aDead := a.DeathYear != nil && year >= *a.DeathYear
	bDead := b.DeathYear != nil && year >= *b.DeathYear

	switch {
	case aDead && bDead:
		return decimal.Zero
	case aDead || bDead:
		// The survivor's household benefit is the greater of the two,
		// evaluated as if both were still claiming.
		return ls.ss.SurvivorBenefit(ls.ss.AnnualBenefit(a, year), ls.ss.AnnualBenefit(b, year))
	default:
		return ls.ss.AnnualBenefit(a, year).Add(ls.ss.AnnualBenefit(b, year))
	}
}

// convert executes the conversion proposed by the policy, moving money out
// of tax-deferred accounts into the first Roth account. The gross amount is
// deposited; when the scenario does not pay conversion tax from taxable
// money, settleTax later claws the conversion's tax back out of the Roth
// deposit.
func (ls *LedgerSimulator) convert(s *domain.ScenarioInput, accounts []acctState, age int, ly *domain.LedgerYear) decimal.Decimal {
	policy := ls.policy
	if policy == nil {
		policy = CapWindowPolicy{Policy: s.RothConversion}
	}

	rothIdx := -1
	deferred := decimal.Zero
	for i := range accounts {
		switch accounts[i].def.Type {
		case domain.AccountRoth:
			if rothIdx < 0 {
				rothIdx = i
			}
		case domain.AccountTaxDeferred:
			deferred = deferred.Add(accounts[i].balance)
		}
	}
	if rothIdx < 0 {
		return decimal.Zero
	}

	remaining := decimal.Min(policy.Propose(age, deferred), deferred)
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	converted := decimal.Zero
	for i := range accounts {
		if accounts[i].def.Type != domain.AccountTaxDeferred || !remaining.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, accounts[i].balance)
		if !take.IsPositive() {
			continue
		}
		accounts[i].balance = accounts[i].balance.Sub(take)
		ly.Accounts[i].Conversion = ly.Accounts[i].Conversion.Sub(take)
		converted = converted.Add(take)
		remaining = remaining.Sub(take)
	}

	if converted.IsPositive() {
		accounts[rothIdx].balance = accounts[rothIdx].balance.Add(converted)
		ly.Accounts[rothIdx].Conversion = ly.Accounts[rothIdx].Conversion.Add(converted)
	}
	return converted
}

// drawByPriority pulls the needed amount from accounts in priority order,
// tracking ordinary income from tax-deferred draws and realized gains from
// taxable draws. Returns the unmet remainder, the tax-deferred total, and
// the realized gains. With asTax set, the draw is recorded as tax paid
// rather than as a spending withdrawal.
func drawByPriority(accounts []acctState, priority []domain.AccountType, needed decimal.Decimal, ly *domain.LedgerYear, asTax bool) (remaining, deferredDrawn, realizedGains decimal.Decimal) {
	remaining = needed
	for _, typ := range priority {
		for i := range accounts {
			if accounts[i].def.Type != typ || !remaining.IsPositive() {
				continue
			}
			take := decimal.Min(remaining, accounts[i].balance)
			if !take.IsPositive() {
				continue
			}

			if typ == domain.AccountTaxable && accounts[i].balance.IsPositive() {
				// Gains realize pro-rata: the withdrawn slice carries the
				// account's overall gain fraction.
				gainFraction := accounts[i].balance.Sub(accounts[i].basis).Div(accounts[i].balance)
				if gainFraction.IsNegative() {
					gainFraction = decimal.Zero
				}
				realizedGains = realizedGains.Add(take.Mul(gainFraction))
				accounts[i].basis = accounts[i].basis.Sub(take.Mul(decimal.NewFromInt(1).Sub(gainFraction)))
				if accounts[i].basis.IsNegative() {
					accounts[i].basis = decimal.Zero
				}
			}
			if typ == domain.AccountTaxDeferred {
				deferredDrawn = deferredDrawn.Add(take)
			}

			accounts[i].balance = accounts[i].balance.Sub(take)
			if asTax {
				ly.Accounts[i].TaxPaid = ly.Accounts[i].TaxPaid.Add(take)
			} else {
				ly.Accounts[i].Withdrawal = ly.Accounts[i].Withdrawal.Add(take)
			}
			remaining = remaining.Sub(take)
		}
	}
	return remaining, deferredDrawn, realizedGains
}

// deposit saves surplus cash into the first taxable account. Saved cash is
// after-tax money, so it raises basis alongside balance. With no taxable
// account the surplus is treated as spent.
func (ls *LedgerSimulator) deposit(accounts []acctState, amount decimal.Decimal, ly *domain.LedgerYear) {
	for i := range accounts {
		if accounts[i].def.Type == domain.AccountTaxable {
			accounts[i].balance = accounts[i].balance.Add(amount)
			accounts[i].basis = accounts[i].basis.Add(amount)
			ly.Accounts[i].Contribution = ly.Accounts[i].Contribution.Add(amount)
			return
		}
	}
}

// settleTax pays the year's tax bill from accounts. When conversion tax is
// not paid from taxable money, the conversion's incremental tax comes out
// of the Roth deposit first; the rest settles taxable, then tax-deferred,
// then Roth. Settlement draws do not generate further taxable income in
// the same year. Returns any unpaid remainder.
func (ls *LedgerSimulator) settleTax(s *domain.ScenarioInput, accounts []acctState, total, conversion decimal.Decimal, ly *domain.LedgerYear) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}

	due := total
	if conversion.IsPositive() && !s.RothConversion.PayTaxFromTaxable {
		incremental := ls.conversionTax(s, ly, conversion)
		withheld := decimal.Min(incremental, due)
		for i := range accounts {
			if accounts[i].def.Type != domain.AccountRoth || !withheld.IsPositive() {
				continue
			}
			take := decimal.Min(withheld, accounts[i].balance)
			accounts[i].balance = accounts[i].balance.Sub(take)
			ly.Accounts[i].TaxPaid = ly.Accounts[i].TaxPaid.Add(take)
			due = due.Sub(take)
			withheld = withheld.Sub(take)
		}
	}

	remaining, _, _ := drawByPriority(accounts, domain.DefaultWithdrawalOrder, due, ly, true)
	return remaining
}

// conversionTax computes the marginal tax attributable to the conversion:
// the year's tax with the conversion minus the tax without it.
func (ls *LedgerSimulator) conversionTax(s *domain.ScenarioInput, ly *domain.LedgerYear, conversion decimal.Decimal) decimal.Decimal {
	withFed, withState, err := ls.tax.Tax(ly.OrdinaryIncome, ly.CapitalGains, s.FilingStatus, ly.Year, s.State)
	if err != nil {
		return decimal.Zero
	}
	withoutFed, withoutState, err := ls.tax.Tax(ly.OrdinaryIncome.Sub(conversion), ly.CapitalGains, s.FilingStatus, ly.Year, s.State)
	if err != nil {
		return decimal.Zero
	}
	incremental := withFed.Add(withState).Sub(withoutFed).Sub(withoutState)
	if incremental.IsNegative() {
		return decimal.Zero
	}
	return incremental
}

// closeYear snapshots ending balances and the year's net worth.
func (ls *LedgerSimulator) closeYear(ly *domain.LedgerYear, accounts []acctState) {
	net := decimal.Zero
	for i := range accounts {
		ly.Accounts[i].EndingBalance = accounts[i].balance
		net = net.Add(accounts[i].balance)
	}
	ly.NetWorth = net
}

// fail records the depletion year and terminates the path's ledger.
func (ls *LedgerSimulator) fail(ly *domain.LedgerYear, accounts []acctState, outcome *domain.PathOutcome, year int) {
	ly.Failed = true
	ls.closeYear(ly, accounts)
	outcome.LifetimeTax = outcome.LifetimeTax.Add(ly.TotalTax())
	outcome.Ledger = append(outcome.Ledger, *ly)
	outcome.Success = false
	outcome.FailedYear = year
}
