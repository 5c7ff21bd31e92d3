package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"singular/core"
	"singular/pkg/number"
)

func testMarket(t0 time.Time) *core.Market {
	m := &core.Market{
		AssetID:           "asset",
		CollateralAssetID: "collateral",
		Symbol:            "TEST",
		LastAccruedAt:     t0,

		TotalBorrowElastic: number.Decimal("1000"),
		TotalBorrowBase:    number.Decimal("1000"),
		TotalAssetElastic:  number.Decimal("2000"),
		TotalAssetBase:     number.Decimal("2000"),

		InterestPerSecond:         number.Decimal("0.000001"),
		StartingInterestPerSecond: number.Decimal("0.000001"),
		MinimumInterestPerSecond:  number.Decimal("0.0000001"),
		MaximumInterestPerSecond:  number.Decimal("0.00001"),
		InterestElasticity:        number.Decimal("86400"),
		MinimumTargetUtilization:  number.Decimal("0.4"),
		MaximumTargetUtilization:  number.Decimal("0.6"),
		ProtocolFeeRate:           number.Decimal("0.1"),
	}
	return m
}

func TestAccrueZeroElapsedIsNoop(t *testing.T) {
	t0 := time.Now()
	m := testMarket(t0)
	before := *m

	require.NoError(t, New().Accrue(context.Background(), m, t0))
	require.True(t, m.TotalBorrowElastic.Equal(before.TotalBorrowElastic))
	require.True(t, m.TotalAssetBase.Equal(before.TotalAssetBase))
	require.True(t, m.FeesEarned.Equal(before.FeesEarned))
}

func TestAccrueAddsInterestAndFees(t *testing.T) {
	t0 := time.Now()
	m := testMarket(t0)

	require.NoError(t, New().Accrue(context.Background(), m, t0.Add(100*time.Second)))

	// 1000 * 0.000001 * 100 = 0.1
	require.True(t, m.TotalBorrowElastic.Equal(number.Decimal("1000.1")))
	require.True(t, m.TotalAssetElastic.Equal(number.Decimal("2000.1")))
	require.True(t, m.TotalBorrowBase.Equal(number.Decimal("1000")), "parts never move on accrual")

	// fee = 0.01 asset, converted into fractions and minted to the fee pot
	require.True(t, m.FeesEarned.IsPositive())
	require.True(t, m.TotalAssetBase.Equal(number.Decimal("2000").Add(m.FeesEarned)))

	// repeating at the same timestamp changes nothing
	snapshot := *m
	require.NoError(t, New().Accrue(context.Background(), m, t0.Add(100*time.Second)))
	require.True(t, m.TotalBorrowElastic.Equal(snapshot.TotalBorrowElastic))
}

func TestAccrueRateConvergence(t *testing.T) {
	t0 := time.Now()
	m := testMarket(t0)
	// utilization pinned at 0.5 inside [0.4, 0.6]: rate holds
	require.NoError(t, New().Accrue(context.Background(), m, t0.Add(time.Second)))
	require.True(t, m.InterestPerSecond.Equal(number.Decimal("0.000001")))

	// pin utilization high by shrinking the pool
	m.TotalAssetElastic = m.TotalBorrowElastic
	prev := m.InterestPerSecond
	at := t0.Add(time.Second)
	for i := 0; i < 5; i++ {
		at = at.Add(600 * time.Second)
		require.NoError(t, New().Accrue(context.Background(), m, at))
		require.True(t, m.InterestPerSecond.GreaterThan(prev), "rate grows above the band")
		prev = m.InterestPerSecond
		m.TotalAssetElastic = m.TotalBorrowElastic
	}

	at = at.Add(instantsToConverge())
	require.NoError(t, New().Accrue(context.Background(), m, at))
	require.True(t, m.InterestPerSecond.Equal(m.MaximumInterestPerSecond))
}

func instantsToConverge() time.Duration {
	return 86400 * time.Second
}

func TestAccrueZeroDebtResetsRate(t *testing.T) {
	t0 := time.Now()
	m := testMarket(t0)
	m.TotalBorrowBase = number.Decimal("0")
	m.TotalBorrowElastic = number.Decimal("0")
	m.InterestPerSecond = number.Decimal("0.00000777")

	require.NoError(t, New().Accrue(context.Background(), m, t0.Add(time.Minute)))
	require.True(t, m.InterestPerSecond.Equal(m.StartingInterestPerSecond))
	require.True(t, m.TotalBorrowElastic.IsZero())
}
