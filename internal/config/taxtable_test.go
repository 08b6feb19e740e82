package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rplan/retirement-planner/internal/domain"
)

func TestDefaultTaxTableValidates(t *testing.T) {
	require.NoError(t, ValidateTaxTable(DefaultTaxTable()))
}

func TestTaxTableRoundTrip(t *testing.T) {
	original := DefaultTaxTable()
	path := filepath.Join(t.TempDir(), "taxtable.yaml")

	require.NoError(t, SaveTaxTable(path, original))
	loaded, err := LoadTaxTable(path)
	require.NoError(t, err)

	origSched, ok := original.Schedule(2025, domain.FilingMarriedJoint)
	require.True(t, ok)
	loadedSched, ok := loaded.Schedule(2025, domain.FilingMarriedJoint)
	require.True(t, ok)

	assert.True(t, origSched.StandardDeduction.Equal(loadedSched.StandardDeduction))
	require.Len(t, loadedSched.Ordinary, len(origSched.Ordinary))
	for i := range origSched.Ordinary {
		assert.True(t, origSched.Ordinary[i].Lower.Equal(loadedSched.Ordinary[i].Lower))
		assert.True(t, origSched.Ordinary[i].Rate.Equal(loadedSched.Ordinary[i].Rate))
	}
	assert.Len(t, loaded.State, len(original.State))
}

func TestScheduleYearFallback(t *testing.T) {
	table := DefaultTaxTable()

	_, ok := table.Schedule(2024, domain.FilingSingle)
	assert.False(t, ok, "no schedule exists before 2025")

	sched2025, ok := table.Schedule(2025, domain.FilingSingle)
	require.True(t, ok)
	sched2050, ok := table.Schedule(2050, domain.FilingSingle)
	require.True(t, ok)
	assert.True(t, sched2025.StandardDeduction.Equal(sched2050.StandardDeduction))
}

func TestValidateTaxTableFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(table *domain.TaxTable)
	}{
		{
			name:   "no federal schedules",
			mutate: func(table *domain.TaxTable) { table.Federal = nil },
		},
		{
			name: "first bracket not at zero",
			mutate: func(table *domain.TaxTable) {
				sched := table.Federal[2025][domain.FilingSingle]
				sched.Ordinary[0].Lower = decimal.NewFromInt(100)
				table.Federal[2025][domain.FilingSingle] = sched
			},
		},
		{
			name: "non-increasing bounds",
			mutate: func(table *domain.TaxTable) {
				sched := table.Federal[2025][domain.FilingSingle]
				sched.Ordinary[2].Lower = sched.Ordinary[1].Lower
				table.Federal[2025][domain.FilingSingle] = sched
			},
		},
		{
			name: "negative rate",
			mutate: func(table *domain.TaxTable) {
				sched := table.Federal[2025][domain.FilingSingle]
				sched.Ordinary[1].Rate = decimal.NewFromFloat(-0.10)
				table.Federal[2025][domain.FilingSingle] = sched
			},
		},
		{
			name: "negative standard deduction",
			mutate: func(table *domain.TaxTable) {
				sched := table.Federal[2025][domain.FilingSingle]
				sched.StandardDeduction = decimal.NewFromInt(-1)
				table.Federal[2025][domain.FilingSingle] = sched
			},
		},
		{
			name: "empty ordinary brackets",
			mutate: func(table *domain.TaxTable) {
				sched := table.Federal[2025][domain.FilingSingle]
				sched.Ordinary = nil
				table.Federal[2025][domain.FilingSingle] = sched
			},
		},
		{
			name: "negative state flat rate",
			mutate: func(table *domain.TaxTable) {
				table.State["MI"] = domain.StateTaxTable{FlatRate: decimal.NewFromFloat(-0.04)}
			},
		},
		{
			name: "negative state standard deduction",
			mutate: func(table *domain.TaxTable) {
				table.State["MI"] = domain.StateTaxTable{
					FlatRate:          decimal.NewFromFloat(0.04),
					StandardDeduction: decimal.NewFromInt(-500),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := DefaultTaxTable()
			tt.mutate(table)

			err := ValidateTaxTable(table)
			require.Error(t, err)

			var derr *domain.DataError
			assert.True(t, errors.As(err, &derr), "want DataError, got %T", err)
		})
	}
}
