package calculation

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/rplan/retirement-planner/internal/domain"
)

// ReturnSampler draws one year of account returns for a single simulation
// path. Each path owns its own generator, seeded from the run seed plus the
// path index, so a run is reproducible path by path and paths can execute
// in parallel without sharing generator state.
//
// A sampler is NOT safe for concurrent use; create one per goroutine.
type ReturnSampler struct {
	rng        *rand.Rand
	correlated bool
}

// NewReturnSampler creates a sampler for one path. With correlated=true all
// accounts share a single market draw each year; otherwise each account
// gets an independent draw.
func NewReturnSampler(seed int64, pathIndex int, correlated bool) *ReturnSampler {
	return &ReturnSampler{
		rng:        rand.New(rand.NewSource(seed + int64(pathIndex))),
		correlated: correlated,
	}
}

// SampleYear returns one annual return per account, in account order. The
// return for an account is mean + volatility * z with z drawn from the
// standard normal. Draws can produce returns below -100%; balances are
// floored at zero by the ledger, not here.
func (s *ReturnSampler) SampleYear(accounts []domain.Account) []decimal.Decimal {
	returns := make([]decimal.Decimal, len(accounts))

	var shared decimal.Decimal
	if s.correlated {
		shared = decimal.NewFromFloat(s.rng.NormFloat64())
	}

	for i, a := range accounts {
		z := shared
		if !s.correlated {
			z = decimal.NewFromFloat(s.rng.NormFloat64())
		}
		returns[i] = a.MeanReturn.Add(a.Volatility.Mul(z))
	}
	return returns
}
