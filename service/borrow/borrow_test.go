package borrow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"singular/core"
	"singular/internal/ledgertest"
	"singular/pkg/calldata"
	"singular/pkg/number"
	"singular/service/accrual"
	"singular/service/position"
)

func testMarket() *core.Market {
	return &core.Market{
		AssetID:           "asset",
		CollateralAssetID: "coll",
		Symbol:            "TEST",
		LastAccruedAt:     time.Now(),

		TotalAssetElastic: number.Decimal("1000"),
		TotalAssetBase:    number.Decimal("1000"),

		CollateralizationRate:            number.Decimal("0.75"),
		LiquidationCollateralizationRate: number.Decimal("0.8"),
		BorrowOpeningFee:                 number.Decimal("0.0005"),
		ProtocolFeeRate:                  number.Decimal("0.1"),

		ExchangeRate: number.Decimal("1"),
	}
}

type fixture struct {
	svc       *Service
	markets   *ledgertest.MarketStore
	positions *ledgertest.PositionStore
	deposits  *ledgertest.DepositStore
	vault     *ledgertest.Vault
	oracle    *ledgertest.Oracle
	market    *core.Market
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	m := testMarket()
	markets := ledgertest.NewMarketStore(m)
	positions := ledgertest.NewPositionStore()
	deposits := ledgertest.NewDepositStore()
	vault := ledgertest.NewVault()
	oracle := &ledgertest.Oracle{Rate: number.Decimal("1"), OK: true}

	_, err := vault.Deposit(ctx, nil, m.VaultHolder(), "asset", number.Decimal("1000"))
	require.NoError(t, err)

	return &fixture{
		svc:       New(markets, positions, deposits, position.New(positions, vault), accrual.New(), oracle, vault),
		markets:   markets,
		positions: positions,
		deposits:  deposits,
		vault:     vault,
		oracle:    oracle,
		market:    m,
	}
}

func (f *fixture) call(t *testing.T, action core.ActionType, userID, amount string) error {
	t.Helper()
	body, err := calldata.Encode(number.Decimal(amount))
	require.NoError(t, err)
	return f.svc.Execute(context.Background(), nil, core.Call{
		Action: action,
		UserID: userID,
		Asset:  "asset",
		Body:   body,
	})
}

func (f *fixture) collateralize(t *testing.T, userID, share string) {
	t.Helper()
	require.NoError(t, f.positions.Save(context.Background(), nil, &core.Position{
		UserID:          userID,
		AssetID:         "asset",
		CollateralShare: number.Decimal(share),
	}))
	f.market.TotalCollateralShare = f.market.TotalCollateralShare.Add(number.Decimal(share))
}

func TestBorrowChargesOpeningFee(t *testing.T) {
	f := setup(t)
	f.collateralize(t, "alice", "200")

	require.NoError(t, f.call(t, core.ActionTypeBorrow, "alice", "100"))

	// debt is amount plus fee; the payout is the bare amount
	p, _ := f.positions.Find(context.Background(), nil, "alice", "asset")
	require.True(t, p.BorrowPart.Equal(number.Decimal("100.05")))
	require.True(t, f.vault.Balance("alice", "asset").Equal(number.Decimal("100")))

	// the fee lands in the lender pool and the fee pot
	require.True(t, f.market.TotalAssetElastic.Equal(number.Decimal("1000.05")))
	require.True(t, f.market.FeesEarned.IsPositive())
}

func TestBorrowRejectsInsolvent(t *testing.T) {
	f := setup(t)
	f.collateralize(t, "alice", "100")

	// capacity is 75 at cr 0.75
	err := f.call(t, core.ActionTypeBorrow, "alice", "76")
	require.Equal(t, core.ErrInsufficientCollateral, err)
	require.True(t, f.vault.Balance("alice", "asset").IsZero(), "rejected borrow pays nothing")
}

func TestBorrowRejectsBeyondIdle(t *testing.T) {
	f := setup(t)
	f.collateralize(t, "alice", "5000")

	err := f.call(t, core.ActionTypeBorrow, "alice", "1001")
	require.Equal(t, core.ErrInsufficientLiquidity, err)
}

func TestRepayClosesDebt(t *testing.T) {
	f := setup(t)
	f.collateralize(t, "alice", "200")
	require.NoError(t, f.call(t, core.ActionTypeBorrow, "alice", "100"))

	// alice owes 100.05 parts; repaying them costs 100.05 asset, more
	// than the 100 paid out, so she tops her balance up first
	_, err := f.vault.Deposit(context.Background(), nil, "alice", "asset", number.Decimal("1"))
	require.NoError(t, err)
	require.NoError(t, f.call(t, core.ActionTypeRepay, "alice", "100.05"))

	p, _ := f.positions.Find(context.Background(), nil, "alice", "asset")
	require.True(t, p.BorrowPart.IsZero())
	require.True(t, f.market.TotalBorrowElastic.IsZero())

	err = f.call(t, core.ActionTypeRepay, "alice", "1")
	require.Equal(t, core.ErrInsufficientBalance, err, "over-repay is rejected, not clamped")
}

func TestAddRemoveAsset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.vault.Deposit(ctx, nil, "lender", "asset", number.Decimal("500"))
	require.NoError(t, err)

	require.NoError(t, f.call(t, core.ActionTypeAddAsset, "lender", "500"))

	d, _ := f.deposits.Find(ctx, nil, "lender", "asset")
	require.True(t, d.Fraction.Equal(number.Decimal("500")), "fractions mint 1:1 at par")
	require.True(t, f.market.TotalAssetElastic.Equal(number.Decimal("1500")))

	// removing more than owned is rejected
	err = f.call(t, core.ActionTypeRemoveAsset, "lender", "500.1")
	require.Equal(t, core.ErrInsufficientBalance, err)

	require.NoError(t, f.call(t, core.ActionTypeRemoveAsset, "lender", "500"))
	d, _ = f.deposits.Find(ctx, nil, "lender", "asset")
	require.True(t, d.Fraction.IsZero())
	require.True(t, f.market.TotalAssetElastic.Equal(number.Decimal("1000")))
}

func TestRemoveAssetLimitedToIdle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.vault.Deposit(ctx, nil, "lender", "asset", number.Decimal("500"))
	require.NoError(t, err)
	require.NoError(t, f.call(t, core.ActionTypeAddAsset, "lender", "500"))

	// borrow most of the pool dry
	f.collateralize(t, "whale", "5000")
	require.NoError(t, f.call(t, core.ActionTypeBorrow, "whale", "1400"))

	err = f.call(t, core.ActionTypeRemoveAsset, "lender", "500")
	require.Equal(t, core.ErrInsufficientLiquidity, err)
}

func TestWithdrawFees(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.collateralize(t, "alice", "200")
	require.NoError(t, f.call(t, core.ActionTypeBorrow, "alice", "100"))

	fees := f.market.FeesEarned
	require.True(t, fees.IsPositive())

	amount, err := f.svc.WithdrawFees(ctx, nil, f.market, "treasury")
	require.NoError(t, err)
	require.True(t, amount.IsPositive())
	require.True(t, f.market.FeesEarned.IsZero())
	require.True(t, f.vault.Balance("treasury", "asset").IsPositive())
}

func TestExecuteValidation(t *testing.T) {
	f := setup(t)

	err := f.call(t, core.ActionTypeBorrow, "alice", "0")
	require.Equal(t, core.ErrInvalidAmount, err)

	err = f.svc.Execute(context.Background(), nil, core.Call{Action: core.ActionTypeBorrow, Asset: "missing"})
	require.Equal(t, core.ErrMarketNotFound, err)

	err = f.svc.Execute(context.Background(), nil, core.Call{Action: core.ActionTypeBorrow, Asset: "asset", Body: []byte("junk")})
	require.Equal(t, core.ErrInvalidArgument, err)
}
