package output

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rplan/retirement-planner/internal/domain"
)

func sampleLedger() []domain.LedgerYear {
	return []domain.LedgerYear{
		{
			Year:       2025,
			PrimaryAge: 65,
			Accounts: []domain.AccountYear{
				{
					Name:            "brokerage",
					Type:            domain.AccountTaxable,
					StartingBalance: decimal.NewFromInt(100000),
					ReturnRate:      decimal.NewFromFloat(0.05),
					Growth:          decimal.NewFromInt(5000),
					Withdrawal:      decimal.NewFromInt(20000),
					EndingBalance:   decimal.NewFromInt(85000),
				},
				{
					Name:            "401k",
					Type:            domain.AccountTaxDeferred,
					StartingBalance: decimal.NewFromInt(500000),
					ReturnRate:      decimal.NewFromFloat(0.05),
					Growth:          decimal.NewFromInt(25000),
					EndingBalance:   decimal.NewFromInt(525000),
				},
			},
			Spending:       decimal.NewFromInt(20000),
			OrdinaryIncome: decimal.NewFromInt(0),
			CapitalGains:   decimal.NewFromInt(8000),
			NetWorth:       decimal.NewFromInt(610000),
		},
		{
			Year:       2026,
			PrimaryAge: 66,
			Accounts: []domain.AccountYear{
				{Name: "brokerage", Type: domain.AccountTaxable},
				{Name: "401k", Type: domain.AccountTaxDeferred},
			},
		},
	}
}

func TestFormatLedger(t *testing.T) {
	data, err := FormatLedger(sampleLedger())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	// Header plus one row per (year, account).
	require.Len(t, records, 5)
	header := records[0]
	assert.Equal(t, "Year", header[0])
	assert.Equal(t, "Account", header[2])

	first := records[1]
	assert.Equal(t, "2025", first[0])
	assert.Equal(t, "65", first[1])
	assert.Equal(t, "brokerage", first[2])
	assert.Equal(t, "taxable", first[3])
	assert.Equal(t, "100000.00", first[4])
	assert.Equal(t, "0.0500", first[6])
	assert.Equal(t, "20000.00", first[8])
	assert.Equal(t, "false", first[len(first)-1])

	second := records[2]
	assert.Equal(t, "401k", second[2])
	assert.Equal(t, "525000.00", second[12])
}

func TestLedgerCSVExporterUsesMedianLedger(t *testing.T) {
	summary := &domain.SimulationSummary{MedianLedger: sampleLedger()}
	data, err := LedgerCSVExporter{}.Format(summary)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestFormatLedgerEmpty(t *testing.T) {
	data, err := FormatLedger(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
