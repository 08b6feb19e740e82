package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
	"github.com/rplan/retirement-planner/pkg/dateutil"
)

// DefaultNumPaths is the minimum path count for statistically meaningful
// success probabilities.
const DefaultNumPaths = 1000

// MonteCarloConfig controls one Monte Carlo run. Zero values pick defaults:
// DefaultNumPaths paths, a clock-derived seed, one worker per CPU.
type MonteCarloConfig struct {
	NumPaths int
	Seed     int64
	Workers  int
}

// MonteCarloEngine fans a scenario out over many simulated paths and
// aggregates the outcomes. The engine is stateless between runs and safe
// for concurrent use.
type MonteCarloEngine struct {
	sim    *LedgerSimulator
	logger Logger
}

// NewMonteCarloEngine creates an engine over a validated tax table.
func NewMonteCarloEngine(table *domain.TaxTable) *MonteCarloEngine {
	return &MonteCarloEngine{
		sim:    NewLedgerSimulator(table),
		logger: NopLogger{},
	}
}

// SetLogger replaces the default no-op logger on the engine and its
// underlying simulator.
func (e *MonteCarloEngine) SetLogger(l Logger) {
	if l != nil {
		e.logger = l
		e.sim.SetLogger(l)
	}
}

// Run simulates the scenario across cfg.NumPaths independent paths and
// aggregates them. Identical (scenario, seed, numPaths) inputs produce
// identical summaries regardless of worker count, because each path seeds
// its own generator from seed + path index.
//
// Cancellation is checked between paths: a cancelled context abandons the
// run and returns ctx.Err().
func (e *MonteCarloEngine) Run(ctx context.Context, s *domain.ScenarioInput, cfg MonteCarloConfig) (*domain.SimulationSummary, error) {
	numPaths := cfg.NumPaths
	if numPaths <= 0 {
		numPaths = DefaultNumPaths
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = seedFunc()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	e.logger.Infof("monte carlo: scenario %s, %d paths, seed %d, %d workers",
		s.ID, numPaths, seed, workers)

	outcomes := make([]*domain.PathOutcome, numPaths)
	errCh := make(chan error, numPaths)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for p := 0; p < numPaths; p++ {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(pathIndex int) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			sampler := NewReturnSampler(seed, pathIndex, s.Assumptions.ReturnsCorrelated)
			outcome, err := e.sim.SimulatePath(s, sampler, pathIndex)
			if err != nil {
				errCh <- fmt.Errorf("path %d: %w", pathIndex, err)
				return
			}
			outcomes[pathIndex] = outcome
		}(p)
	}
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	return e.aggregate(s, outcomes, seed), nil
}

// aggregate reduces per-path outcomes to the summary statistics. Paths that
// depleted early contribute zero net worth and zero income for the years
// after depletion, so the percentile bands reflect failure rather than
// dropping failed paths from the sample.
func (e *MonteCarloEngine) aggregate(s *domain.ScenarioInput, outcomes []*domain.PathOutcome, seed int64) *domain.SimulationSummary {
	numPaths := len(outcomes)
	startAge := dateutil.AgeInYear(s.Primary().BirthDate, s.StartYear)
	horizon := s.EndAge - startAge + 1

	summary := &domain.SimulationSummary{
		ScenarioID: s.ID,
		NumPaths:   numPaths,
		Seed:       seed,
		Years:      make([]int, horizon),
		Ages:       make([]int, horizon),
		NetWorth: domain.PercentileBand{
			P10: make([]decimal.Decimal, horizon),
			P50: make([]decimal.Decimal, horizon),
			P90: make([]decimal.Decimal, horizon),
		},
		Income: domain.PercentileBand{
			P10: make([]decimal.Decimal, horizon),
			P50: make([]decimal.Decimal, horizon),
			P90: make([]decimal.Decimal, horizon),
		},
	}
	for t := 0; t < horizon; t++ {
		summary.Years[t] = s.StartYear + t
		summary.Ages[t] = startAge + t
	}

	successes := 0
	for _, o := range outcomes {
		if o.Success {
			successes++
		}
	}
	summary.SuccessProbability = decimal.NewFromInt(int64(successes)).
		Div(decimal.NewFromInt(int64(numPaths)))

	netWorths := make([]decimal.Decimal, numPaths)
	incomes := make([]decimal.Decimal, numPaths)
	for t := 0; t < horizon; t++ {
		for i, o := range outcomes {
			if t < len(o.Ledger) {
				netWorths[i] = o.Ledger[t].NetWorth
				incomes[i] = o.Ledger[t].TotalIncome()
			} else {
				netWorths[i] = decimal.Zero
				incomes[i] = decimal.Zero
			}
		}
		sortDecimals(netWorths)
		sortDecimals(incomes)
		summary.NetWorth.P10[t] = percentile(netWorths, 0.10)
		summary.NetWorth.P50[t] = percentile(netWorths, 0.50)
		summary.NetWorth.P90[t] = percentile(netWorths, 0.90)
		summary.Income.P10[t] = percentile(incomes, 0.10)
		summary.Income.P50[t] = percentile(incomes, 0.50)
		summary.Income.P90[t] = percentile(incomes, 0.90)
	}

	taxes := make([]decimal.Decimal, numPaths)
	terminals := make([]decimal.Decimal, numPaths)
	taxSum := decimal.Zero
	for i, o := range outcomes {
		taxes[i] = o.LifetimeTax
		terminals[i] = o.TerminalNetWorth
		taxSum = taxSum.Add(o.LifetimeTax)
	}
	sortDecimals(taxes)
	summary.LifetimeTax = domain.TaxStatistics{
		Mean:   taxSum.Div(decimal.NewFromInt(int64(numPaths))),
		Median: percentile(taxes, 0.50),
		P10:    percentile(taxes, 0.10),
		P90:    percentile(taxes, 0.90),
	}

	sortDecimals(terminals)
	medianTerminal := percentile(terminals, 0.50)
	summary.MedianTerminalNetWorth = medianTerminal

	// The audit ledger comes from the real path whose terminal net worth
	// lands closest to the median, not from a synthetic averaged path.
	closest := outcomes[0]
	closestDist := closest.TerminalNetWorth.Sub(medianTerminal).Abs()
	for _, o := range outcomes[1:] {
		dist := o.TerminalNetWorth.Sub(medianTerminal).Abs()
		if dist.LessThan(closestDist) {
			closest = o
			closestDist = dist
		}
	}
	summary.MedianLedger = closest.Ledger

	e.logger.Infof("monte carlo: scenario %s success probability %s",
		s.ID, summary.SuccessProbability.StringFixed(4))
	return summary
}

func sortDecimals(vals []decimal.Decimal) {
	sort.Slice(vals, func(i, j int) bool { return vals[i].LessThan(vals[j]) })
}

// percentile returns the p-th percentile of a sorted sample with linear
// interpolation between the two nearest ranks.
func percentile(sorted []decimal.Decimal, p float64) decimal.Decimal {
	n := len(sorted)
	if n == 0 {
		return decimal.Zero
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	k := int(rank)
	if k >= n-1 {
		return sorted[n-1]
	}
	frac := decimal.NewFromFloat(rank - float64(k))
	return sorted[k].Add(sorted[k+1].Sub(sorted[k]).Mul(frac))
}
