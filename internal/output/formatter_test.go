package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rplan/retirement-planner/internal/domain"
)

func sampleSummary() *domain.SimulationSummary {
	band := func(vals ...int64) []decimal.Decimal {
		out := make([]decimal.Decimal, len(vals))
		for i, v := range vals {
			out[i] = decimal.NewFromInt(v)
		}
		return out
	}
	return &domain.SimulationSummary{
		ScenarioID:         "example",
		NumPaths:           1000,
		Seed:               42,
		Years:              []int{2025, 2026, 2027},
		Ages:               []int{65, 66, 67},
		SuccessProbability: decimal.NewFromFloat(0.914),
		NetWorth: domain.PercentileBand{
			P10: band(400000, 380000, 360000),
			P50: band(600000, 610000, 620000),
			P90: band(800000, 850000, 900000),
		},
		Income: domain.PercentileBand{
			P10: band(40000, 40000, 40000),
			P50: band(55000, 56000, 57000),
			P90: band(70000, 72000, 74000),
		},
		LifetimeTax: domain.TaxStatistics{
			Mean:   decimal.NewFromInt(250000),
			Median: decimal.NewFromInt(240000),
			P10:    decimal.NewFromInt(180000),
			P90:    decimal.NewFromInt(330000),
		},
		MedianTerminalNetWorth: decimal.NewFromInt(615000),
		MedianLedger:           sampleLedger(),
	}
}

func TestGetFormatterByName(t *testing.T) {
	assert.NotNil(t, GetFormatterByName("console"))
	assert.NotNil(t, GetFormatterByName("csv"))
	assert.NotNil(t, GetFormatterByName("ledger-csv"))
	assert.NotNil(t, GetFormatterByName("json"))
	assert.Nil(t, GetFormatterByName("html"))

	// Aliases resolve to canonical formatters.
	assert.Equal(t, "console", GetFormatterByName("TEXT").Name())
	assert.Equal(t, "ledger-csv", GetFormatterByName("ledger").Name())
}

func TestNormalizeFormatName(t *testing.T) {
	assert.Equal(t, "console", NormalizeFormatName("  Text "))
	assert.Equal(t, "ledger-csv", NormalizeFormatName("csv-ledger"))
	assert.Equal(t, "csv", NormalizeFormatName("csv"))
}

func TestAvailableFormatterNames(t *testing.T) {
	names := AvailableFormatterNames()
	assert.Equal(t, []string{"console", "csv", "json", "ledger-csv"}, names)
}

func TestConsoleFormatter(t *testing.T) {
	data, err := ConsoleFormatter{}.Format(sampleSummary())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "example")
	assert.Contains(t, out, "91.4%")
	assert.Contains(t, out, "$615000.00")
	assert.Contains(t, out, "2025 (age 65)")
}

func TestCSVSummarizer(t *testing.T) {
	data, err := CSVSummarizer{}.Format(sampleSummary())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus one row per year")

	assert.Equal(t, "2026", records[2][0])
	assert.Equal(t, "610000.00", records[2][3])
	assert.Equal(t, "72000.00", records[2][7])
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	data, err := JSONFormatter{}.Format(sampleSummary())
	require.NoError(t, err)

	var decoded domain.SimulationSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "example", decoded.ScenarioID)
	assert.Equal(t, 1000, decoded.NumPaths)
	assert.True(t, decimal.NewFromFloat(0.914).Equal(decoded.SuccessProbability))
	assert.Len(t, decoded.MedianLedger, 2)
}

func TestWriteFormatted(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	name, err := WriteFormatted(JSONFormatter{}, sampleSummary(), "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "retirement_report_"))
	assert.True(t, strings.HasSuffix(name, ".json"))

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded domain.SimulationSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "example", decoded.ScenarioID)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatCurrency(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "91.4%", FormatPercentage(decimal.NewFromFloat(0.914)))
	assert.True(t, strings.HasPrefix(FormatCurrency(decimal.Zero), "$"))
}
