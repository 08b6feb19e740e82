package calculation

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
)

// SweepResult is the outcome of one conversion cap in a sweep.
type SweepResult struct {
	Cap                    decimal.Decimal      `json:"cap"`
	SuccessProbability     decimal.Decimal      `json:"success_probability"`
	LifetimeTax            domain.TaxStatistics `json:"lifetime_tax"`
	MedianTerminalNetWorth decimal.Decimal      `json:"median_terminal_net_worth"`
}

// RothConversionExplorer compares conversion caps by running the same
// Monte Carlo simulation under each candidate cap.
type RothConversionExplorer struct {
	engine *MonteCarloEngine
	logger Logger
}

// NewRothConversionExplorer creates an explorer over a validated tax table.
func NewRothConversionExplorer(table *domain.TaxTable) *RothConversionExplorer {
	return &RothConversionExplorer{
		engine: NewMonteCarloEngine(table),
		logger: NopLogger{},
	}
}

// SetLogger replaces the default no-op logger.
func (x *RothConversionExplorer) SetLogger(l Logger) {
	if l != nil {
		x.logger = l
		x.engine.SetLogger(l)
	}
}

// DefaultCaps returns a standard sweep grid: no conversions, then $25k
// steps up to $150k.
func DefaultCaps() []decimal.Decimal {
	caps := []decimal.Decimal{decimal.Zero}
	for c := int64(25000); c <= 150000; c += 25000 {
		caps = append(caps, decimal.NewFromInt(c))
	}
	return caps
}

// Sweep runs the scenario once per candidate cap, in parallel, and returns
// results in cap order. All caps share one seed so their paths see the same
// market draws; differences between results come from the caps alone. The
// source scenario is cloned per cap and never mutated.
func (x *RothConversionExplorer) Sweep(ctx context.Context, s *domain.ScenarioInput, caps []decimal.Decimal, cfg MonteCarloConfig) ([]SweepResult, error) {
	if len(caps) == 0 {
		caps = DefaultCaps()
	}
	if cfg.Seed == 0 {
		cfg.Seed = seedFunc()
	}

	x.logger.Infof("conversion sweep: scenario %s, %d caps", s.ID, len(caps))

	results := make([]SweepResult, len(caps))
	errs := make([]error, len(caps))
	var wg sync.WaitGroup

	for i, cap := range caps {
		wg.Add(1)
		go func(i int, cap decimal.Decimal) {
			defer wg.Done()

			variant := s.Clone()
			variant.RothConversion.AnnualCap = cap

			summary, err := x.engine.Run(ctx, variant, cfg)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = SweepResult{
				Cap:                    cap,
				SuccessProbability:     summary.SuccessProbability,
				LifetimeTax:            summary.LifetimeTax,
				MedianTerminalNetWorth: summary.MedianTerminalNetWorth,
			}
		}(i, cap)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Best picks the sweep winner: highest success probability, ties broken by
// lower median lifetime tax.
func Best(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		switch {
		case r.SuccessProbability.GreaterThan(best.SuccessProbability):
			best = r
		case r.SuccessProbability.Equal(best.SuccessProbability) &&
			r.LifetimeTax.Median.LessThan(best.LifetimeTax.Median):
			best = r
		}
	}
	return best, true
}
