package lending

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"singular/pkg/number"
	"singular/pkg/rebase"
)

func d(v string) decimal.Decimal {
	return number.Decimal(v)
}

func TestIsSolventThreshold(t *testing.T) {
	// collateral worth 120, rate 75%: covers 90 of debt
	collateralValue := d("120")
	rate := d("0.75")

	require.False(t, IsSolvent(d("100"), collateralValue, rate), "100 owed > 90 covered")
	require.False(t, IsSolvent(d("90.0000000000000001"), collateralValue, rate))
	require.True(t, IsSolvent(d("90"), collateralValue, rate), "exactly covered is solvent")
	require.True(t, IsSolvent(d("89.99"), collateralValue, rate))

	require.True(t, IsSolvent(decimal.Zero, decimal.Zero, rate), "no debt is always solvent")
	require.False(t, IsSolvent(d("1"), decimal.Zero, rate), "debt without collateral never is")
}

func TestDebtToSolvency(t *testing.T) {
	require.True(t, DebtToSolvency(d("100"), d("120"), d("0.75")).Equal(d("10")))
	require.True(t, DebtToSolvency(d("90"), d("120"), d("0.75")).IsZero())
	require.True(t, DebtToSolvency(d("80"), d("120"), d("0.75")).IsZero())
}

func TestClosingFactorGrowsWithShortfall(t *testing.T) {
	totalBorrow := rebase.Rebase{Elastic: d("1000"), Base: d("1000")}
	rate := d("0.8")
	multiplier := d("0.1")

	healthy := ClosingFactor(totalBorrow, d("100"), d("130"), rate, multiplier)
	require.True(t, healthy.IsZero(), "covered position is not closeable")

	shallow := ClosingFactor(totalBorrow, d("100"), d("124"), rate, multiplier)
	deep := ClosingFactor(totalBorrow, d("100"), d("110"), rate, multiplier)
	require.True(t, shallow.IsPositive())
	require.True(t, deep.GreaterThan(shallow), "deeper shortfall allows closing more")

	hopeless := ClosingFactor(totalBorrow, d("100"), d("10"), rate, multiplier)
	require.True(t, hopeless.Equal(d("100")), "capped at the full position")
}

func TestClosingFactorNeverExceedsPart(t *testing.T) {
	totalBorrow := rebase.Rebase{Elastic: d("2000"), Base: d("1000")}
	got := ClosingFactor(totalBorrow, d("50"), decimal.Zero, d("0.8"), d("0.1"))
	require.True(t, got.Equal(d("50")))
}

func TestCallerReward(t *testing.T) {
	min, max := d("0.01"), d("0.05")
	start, maxTVL := d("90"), d("120")

	require.True(t, CallerReward(d("90"), start, maxTVL, min, max).Equal(max), "just insolvent pays max")
	require.True(t, CallerReward(d("50"), start, maxTVL, min, max).Equal(max), "clamped below the band")
	require.True(t, CallerReward(d("120"), start, maxTVL, min, max).Equal(min), "fully liquidatable pays min")
	require.True(t, CallerReward(d("500"), start, maxTVL, min, max).Equal(min), "clamped above the band")

	mid := CallerReward(d("105"), start, maxTVL, min, max)
	require.True(t, mid.Equal(d("0.03")), "midpoint interpolates linearly, got %s", mid)

	require.True(t, CallerReward(decimal.Zero, start, maxTVL, min, max).IsZero())
}

func TestTVLBounds(t *testing.T) {
	start, max := TVLBounds(d("120"), d("0.75"))
	require.True(t, start.Equal(d("90")))
	require.True(t, max.Equal(d("120")))
}
