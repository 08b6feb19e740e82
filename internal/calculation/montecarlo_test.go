package calculation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rplan/retirement-planner/internal/config"
	"github.com/rplan/retirement-planner/internal/domain"
)

func monteCarloScenario(balance, spending int64, volatility float64) *domain.ScenarioInput {
	return &domain.ScenarioInput{
		ID: "mc",
		People: []domain.Person{
			{Name: "p", BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Accounts: []domain.Account{
			{
				Name:       "roth",
				Type:       domain.AccountRoth,
				Balance:    decimal.NewFromInt(balance),
				MeanReturn: decimal.NewFromFloat(0.04),
				Volatility: decimal.NewFromFloat(volatility),
			},
		},
		FilingStatus:  domain.FilingSingle,
		StartYear:     2025,
		RetirementAge: 60,
		EndAge:        90,
		Spending:      domain.SpendingSchedule{BaselineAnnual: decimal.NewFromInt(spending)},
	}
}

func TestMonteCarloRun(t *testing.T) {
	engine := NewMonteCarloEngine(config.DefaultTaxTable())
	s := monteCarloScenario(1500000, 60000, 0.15)

	summary, err := engine.Run(context.Background(), s, MonteCarloConfig{
		NumPaths: 200,
		Seed:     42,
	})
	require.NoError(t, err)

	assert.Equal(t, "mc", summary.ScenarioID)
	assert.Equal(t, 200, summary.NumPaths)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Len(t, summary.Years, 26)
	assert.Equal(t, 2025, summary.Years[0])
	assert.Equal(t, 65, summary.Ages[0])

	assert.True(t, summary.SuccessProbability.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, summary.SuccessProbability.LessThanOrEqual(decimal.NewFromInt(1)))
	assert.NotEmpty(t, summary.MedianLedger)

	// Bands are ordered p10 <= p50 <= p90 for every year.
	for i := range summary.Years {
		assert.True(t, summary.NetWorth.P10[i].LessThanOrEqual(summary.NetWorth.P50[i]), "year %d", i)
		assert.True(t, summary.NetWorth.P50[i].LessThanOrEqual(summary.NetWorth.P90[i]), "year %d", i)
		assert.True(t, summary.Income.P10[i].LessThanOrEqual(summary.Income.P50[i]), "year %d", i)
		assert.True(t, summary.Income.P50[i].LessThanOrEqual(summary.Income.P90[i]), "year %d", i)
	}
}

// TestMonteCarloDeterministic: same seed, same result, regardless of worker
// count.
func TestMonteCarloDeterministic(t *testing.T) {
	engine := NewMonteCarloEngine(config.DefaultTaxTable())
	s := monteCarloScenario(1500000, 60000, 0.15)

	a, err := engine.Run(context.Background(), s, MonteCarloConfig{NumPaths: 100, Seed: 7, Workers: 1})
	require.NoError(t, err)
	b, err := engine.Run(context.Background(), s, MonteCarloConfig{NumPaths: 100, Seed: 7, Workers: 8})
	require.NoError(t, err)

	assert.True(t, a.SuccessProbability.Equal(b.SuccessProbability))
	assert.True(t, a.MedianTerminalNetWorth.Equal(b.MedianTerminalNetWorth))
	for i := range a.Years {
		assert.True(t, a.NetWorth.P50[i].Equal(b.NetWorth.P50[i]), "year %d", i)
	}
}

// TestMonteCarloExtremes: with zero volatility every path is identical, so
// the success probability is exactly zero or one.
func TestMonteCarloExtremes(t *testing.T) {
	engine := NewMonteCarloEngine(config.DefaultTaxTable())

	rich := monteCarloScenario(5000000, 40000, 0)
	summary, err := engine.Run(context.Background(), rich, MonteCarloConfig{NumPaths: 50, Seed: 1})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1).Equal(summary.SuccessProbability))

	broke := monteCarloScenario(100000, 80000, 0)
	summary, err = engine.Run(context.Background(), broke, MonteCarloConfig{NumPaths: 50, Seed: 1})
	require.NoError(t, err)
	assert.True(t, summary.SuccessProbability.IsZero())
}

// Higher spending can never improve the success probability under the same
// seed.
func TestMonteCarloMonotoneInSpending(t *testing.T) {
	engine := NewMonteCarloEngine(config.DefaultTaxTable())

	frugal := monteCarloScenario(1200000, 40000, 0.15)
	lavish := monteCarloScenario(1200000, 80000, 0.15)

	a, err := engine.Run(context.Background(), frugal, MonteCarloConfig{NumPaths: 200, Seed: 3})
	require.NoError(t, err)
	b, err := engine.Run(context.Background(), lavish, MonteCarloConfig{NumPaths: 200, Seed: 3})
	require.NoError(t, err)

	assert.True(t, a.SuccessProbability.GreaterThanOrEqual(b.SuccessProbability),
		"frugal %s vs lavish %s", a.SuccessProbability, b.SuccessProbability)
}

func TestMonteCarloCancellation(t *testing.T) {
	engine := NewMonteCarloEngine(config.DefaultTaxTable())
	s := monteCarloScenario(1500000, 60000, 0.15)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, s, MonteCarloConfig{NumPaths: 1000, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonteCarloDefaults(t *testing.T) {
	SetSeedFunc(func() int64 { return 99 })
	defer SetSeedFunc(func() int64 { return time.Now().UnixNano() })

	engine := NewMonteCarloEngine(config.DefaultTaxTable())
	s := monteCarloScenario(5000000, 40000, 0)

	summary, err := engine.Run(context.Background(), s, MonteCarloConfig{NumPaths: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(99), summary.Seed)
}

func TestPercentileInterpolation(t *testing.T) {
	vals := []decimal.Decimal{
		decimal.NewFromInt(0),
		decimal.NewFromInt(10),
	}
	assert.True(t, decimal.NewFromInt(5).Equal(percentile(vals, 0.50)))
	assert.True(t, decimal.NewFromInt(1).Equal(percentile(vals, 0.10)))
	assert.True(t, decimal.NewFromInt(9).Equal(percentile(vals, 0.90)))

	five := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(20),
		decimal.NewFromInt(30),
		decimal.NewFromInt(40),
		decimal.NewFromInt(50),
	}
	assert.True(t, decimal.NewFromInt(30).Equal(percentile(five, 0.50)))
	// Interpolated ranks land between samples; rounding absorbs the
	// float64 rank arithmetic.
	assert.True(t, decimal.NewFromInt(14).Equal(percentile(five, 0.10).Round(9)))
	assert.True(t, decimal.NewFromInt(46).Equal(percentile(five, 0.90).Round(9)))

	assert.True(t, percentile(nil, 0.50).IsZero())
	assert.True(t, decimal.NewFromInt(7).Equal(percentile([]decimal.Decimal{decimal.NewFromInt(7)}, 0.90)))
}
