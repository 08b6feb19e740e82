package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMDStartAge(t *testing.T) {
	tests := []struct {
		birthYear int
		expected  int
	}{
		{1945, 72},
		{1950, 72},
		{1951, 73},
		{1959, 73},
		{1960, 75},
		{1975, 75},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RMDStartAge(tt.birthYear), "birth year %d", tt.birthYear)
	}
}

func TestUniformLifetimeDivisors(t *testing.T) {
	table := NewRMDTable()

	div, err := table.Divisor(72)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("27.4").Equal(div))

	div, err = table.Divisor(73)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("26.5").Equal(div))

	div, err = table.Divisor(120)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.0").Equal(div))

	// Past the end of the table the final divisor applies.
	div, err = table.Divisor(125)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.0").Equal(div))
}

func TestRequiredMinimum(t *testing.T) {
	table := NewRMDTable()

	// 530000 / 26.5 = 20000 at age 73.
	rmd, err := table.RequiredMinimum(73, decimal.NewFromInt(530000), 1951)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(rmd), "got %s", rmd)

	// Before the start age no distribution is required.
	rmd, err = table.RequiredMinimum(72, decimal.NewFromInt(530000), 1951)
	require.NoError(t, err)
	assert.True(t, rmd.IsZero())

	// Born 1960: nothing until 75 even at 74.
	rmd, err = table.RequiredMinimum(74, decimal.NewFromInt(530000), 1960)
	require.NoError(t, err)
	assert.True(t, rmd.IsZero())

	// Empty tax-deferred balance means no RMD.
	rmd, err = table.RequiredMinimum(80, decimal.Zero, 1945)
	require.NoError(t, err)
	assert.True(t, rmd.IsZero())
}
