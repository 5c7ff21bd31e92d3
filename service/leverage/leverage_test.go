package leverage

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

		CollateralizationRate: number.Decimal("0.75"),
		BorrowOpeningFee:      number.Decimal("0"),

		ExchangeRate: number.Decimal("1"),
	}
}

type fixture struct {
	svc       *Service
	positions *ledgertest.PositionStore
	vault     *ledgertest.Vault
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
	swapper := ledgertest.NewSwapper("direct", number.Decimal("1"), vault)

	_, err := vault.Deposit(ctx, nil, m.VaultHolder(), "asset", number.Decimal("1000"))
	require.NoError(t, err)
	_, err = vault.Deposit(ctx, nil, m.VaultHolder(), "coll", number.Decimal("1000"))
	require.NoError(t, err)

	return &fixture{
		svc: New(
			markets, positions, position.New(positions, vault), accrual.New(), oracle, vault,
			core.NewSwapperRegistry([]string{"direct"}),
			map[string]core.ISwapper{"direct": swapper},
		),
		positions: positions,
		vault:     vault,
		market:    m,
	}
}

func (f *fixture) call(t *testing.T, action core.ActionType, userID, amount string) error {
	t.Helper()
	body, err := calldata.Encode(number.Decimal(amount), "direct", number.Decimal("0"), []byte{})
	require.NoError(t, err)
	return f.svc.Execute(context.Background(), nil, core.Call{
		Action: action,
		UserID: userID,
		Asset:  "asset",
		Body:   body,
	})
}

func TestLeverUpPledgesSwappedCollateral(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// seed a base position so the levered shape stays solvent
	require.NoError(t, f.positions.Save(ctx, nil, &core.Position{
		UserID: "alice", AssetID: "asset", CollateralShare: number.Decimal("100"),
	}))
	f.market.TotalCollateralShare = number.Decimal("100")

	require.NoError(t, f.call(t, core.ActionTypeLeverUp, "alice", "50"))

	// 50 borrowed, swapped 1:1 and pledged on top of the 100 held
	p, _ := f.positions.Find(ctx, nil, "alice", "asset")
	require.True(t, p.BorrowPart.Equal(number.Decimal("50")))
	require.True(t, p.CollateralShare.Equal(number.Decimal("150")))
	require.True(t, f.market.TotalBorrowElastic.Equal(number.Decimal("50")))
	require.True(t, f.vault.Balance("alice", "asset").IsZero(), "no asset leaves toward the user")
}

func TestLeverUpRejectsInsolventShape(t *testing.T) {
	f := setup(t)

	// with no collateral base, borrowing 100 buys 100 collateral worth
	// 75 of capacity: insolvent by construction
	err := f.call(t, core.ActionTypeLeverUp, "alice", "100")
	require.Equal(t, core.ErrInsufficientCollateral, err)
}

func TestLeverDownRepaysAndReturnsExcess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.positions.Save(ctx, nil, &core.Position{
		UserID: "alice", AssetID: "asset",
		BorrowPart:      number.Decimal("40"),
		CollateralShare: number.Decimal("100"),
	}))
	f.market.TotalCollateralShare = number.Decimal("100")
	f.market.TotalBorrowElastic = number.Decimal("40")
	f.market.TotalBorrowBase = number.Decimal("40")

	// selling 60 collateral returns 60 asset: 40 repays, 20 to alice
	require.NoError(t, f.call(t, core.ActionTypeLeverDown, "alice", "60"))

	p, _ := f.positions.Find(ctx, nil, "alice", "asset")
	require.True(t, p.BorrowPart.IsZero())
	require.True(t, p.CollateralShare.Equal(number.Decimal("40")))
	require.True(t, f.market.TotalBorrowElastic.IsZero())
	require.True(t, f.vault.Balance("alice", "asset").Equal(number.Decimal("20")))
}

func TestLeverageValidation(t *testing.T) {
	f := setup(t)

	err := f.call(t, core.ActionTypeLeverUp, "alice", "0")
	require.Equal(t, core.ErrInvalidAmount, err)

	body, err := calldata.Encode(number.Decimal("1"), "shady", number.Decimal("0"), []byte{})
	require.NoError(t, err)
	err = f.svc.Execute(context.Background(), nil, core.Call{Action: core.ActionTypeLeverUp, UserID: "alice", Asset: "asset", Body: body})
	require.Equal(t, core.ErrSwapperNotAllowed, err)
}
