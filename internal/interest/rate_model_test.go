package interest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"singular/pkg/number"
)

func testParams() Params {
	p := Params{
		Minimum:    number.Decimal("0.000000001"),
		Maximum:    number.Decimal("0.000001"),
		Elasticity: number.Decimal("86400"),
	}
	p.TargetUtilization.Minimum = number.Decimal("0.7")
	p.TargetUtilization.Maximum = number.Decimal("0.8")
	return p
}

func TestUtilization(t *testing.T) {
	require.True(t, Utilization(number.Decimal("50"), number.Decimal("100")).Equal(number.Decimal("0.5")))
	require.True(t, Utilization(number.Decimal("50"), decimal.Zero).IsZero())
}

func TestRateGrowsAboveBand(t *testing.T) {
	p := testParams()
	rate := number.Decimal("0.00000001")
	util := number.Decimal("0.95")

	prev := rate
	for i := 0; i < 10; i++ {
		rate = p.NextRate(rate, util, 600)
		require.True(t, rate.GreaterThan(prev), "rate must strictly grow while pinned above the band")
		prev = rate
	}

	// a full elasticity window converges to the maximum
	rate = p.NextRate(rate, util, 86400)
	require.True(t, rate.Equal(p.Maximum))
	require.True(t, p.NextRate(rate, util, 600).Equal(p.Maximum), "clamped at the maximum")
}

func TestRateDecaysBelowBand(t *testing.T) {
	p := testParams()
	rate := number.Decimal("0.0000005")
	util := number.Decimal("0.1")

	prev := rate
	for i := 0; i < 10; i++ {
		rate = p.NextRate(rate, util, 600)
		require.True(t, rate.LessThan(prev), "rate must strictly decay while pinned below the band")
		prev = rate
	}

	rate = p.NextRate(rate, util, 86400)
	require.True(t, rate.Equal(p.Minimum))
}

func TestRateStableInsideBand(t *testing.T) {
	p := testParams()
	rate := number.Decimal("0.0000005")
	require.True(t, p.NextRate(rate, number.Decimal("0.75"), 600).Equal(rate))
	require.True(t, p.NextRate(rate, number.Decimal("0.75"), 0).Equal(rate))
}
