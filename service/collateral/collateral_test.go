package collateral

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

		ExchangeRate: number.Decimal("1"),
	}
}

type fixture struct {
	svc       *Service
	positions *ledgertest.PositionStore
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
	vault := ledgertest.NewVault()
	oracle := &ledgertest.Oracle{Rate: number.Decimal("1"), OK: true}

	_, err := vault.Deposit(ctx, nil, "alice", "coll", number.Decimal("100"))
	require.NoError(t, err)

	return &fixture{
		svc:       New(markets, positions, position.New(positions, vault), accrual.New(), oracle, vault),
		positions: positions,
		vault:     vault,
		oracle:    oracle,
		market:    m,
	}
}

func (f *fixture) call(t *testing.T, action core.ActionType, userID, share string) error {
	t.Helper()
	body, err := calldata.Encode(number.Decimal(share))
	require.NoError(t, err)
	return f.svc.Execute(context.Background(), nil, core.Call{
		Action: action,
		UserID: userID,
		Asset:  "asset",
		Body:   body,
	})
}

func TestAddCollateralPledgesToVaultHolder(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.call(t, core.ActionTypeAddCollateral, "alice", "60"))

	p, _ := f.positions.Find(context.Background(), nil, "alice", "asset")
	require.True(t, p.CollateralShare.Equal(number.Decimal("60")))
	require.True(t, f.market.TotalCollateralShare.Equal(number.Decimal("60")))
	require.True(t, f.vault.Balance("alice", "coll").Equal(number.Decimal("40")))
	require.True(t, f.vault.Balance(f.market.VaultHolder(), "coll").Equal(number.Decimal("60")))
}

func TestAddCollateralRejectsBeyondBalance(t *testing.T) {
	f := setup(t)

	err := f.call(t, core.ActionTypeAddCollateral, "alice", "101")
	require.Equal(t, core.ErrInsufficientBalance, err)
}

func TestRemoveCollateralPaysOut(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.call(t, core.ActionTypeAddCollateral, "alice", "100"))

	require.NoError(t, f.call(t, core.ActionTypeRemoveCollateral, "alice", "30"))

	p, _ := f.positions.Find(context.Background(), nil, "alice", "asset")
	require.True(t, p.CollateralShare.Equal(number.Decimal("70")))
	require.True(t, f.market.TotalCollateralShare.Equal(number.Decimal("70")))
	require.True(t, f.vault.Balance("alice", "coll").Equal(number.Decimal("30")))
}

func TestRemoveCollateralKeepsPositionSolvent(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.call(t, core.ActionTypeAddCollateral, "alice", "100"))

	// 50 owed against 100 collateral at rate 1, cr 0.75:
	// removing 30 leaves capacity 52.5, removing 40 leaves 45
	p, err := f.positions.Find(context.Background(), nil, "alice", "asset")
	require.NoError(t, err)
	p.BorrowPart = number.Decimal("50")
	require.NoError(t, f.positions.Save(context.Background(), nil, p))
	f.market.TotalBorrowElastic = number.Decimal("50")
	f.market.TotalBorrowBase = number.Decimal("50")

	require.NoError(t, f.call(t, core.ActionTypeRemoveCollateral, "alice", "30"))

	// 70 left covers 52.5; taking 10 more would not cover the 50 owed
	require.Equal(t, core.ErrInsufficientCollateral, f.call(t, core.ActionTypeRemoveCollateral, "alice", "10"))
}

func TestRemoveCollateralRequiresPrice(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.call(t, core.ActionTypeAddCollateral, "alice", "100"))

	f.oracle.OK = false
	f.market.ExchangeRate = number.Decimal("0")

	require.Equal(t, core.ErrInvalidPrice, f.call(t, core.ActionTypeRemoveCollateral, "alice", "10"))
}

func TestCollateralValidation(t *testing.T) {
	f := setup(t)

	require.Equal(t, core.ErrInvalidAmount, f.call(t, core.ActionTypeAddCollateral, "alice", "0"))

	err := f.svc.Execute(context.Background(), nil, core.Call{
		Action: core.ActionTypeAddCollateral,
		UserID: "alice",
		Asset:  "asset",
		Body:   []byte("junk"),
	})
	require.Equal(t, core.ErrInvalidArgument, err)

	body, err := calldata.Encode(number.Decimal("1"))
	require.NoError(t, err)
	err = f.svc.Execute(context.Background(), nil, core.Call{
		Action: core.ActionTypeBorrow,
		UserID: "alice",
		Asset:  "asset",
		Body:   body,
	})
	require.Equal(t, core.ErrOperationForbidden, err)
}
