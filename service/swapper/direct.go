package swapper

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/number"
)

// Direct is the in-house swap venue: it fills at the market's cached
// oracle rate minus a fixed spread, sourcing and sinking liquidity
// through the vault. External venues implement core.ISwapper themselves;
// this one exists so a deployment works out of the box.
type Direct struct {
	name    string
	spread  decimal.Decimal
	markets core.IMarketStore
	vault   core.IVault
}

// NewDirect new direct swapper. spread is a fraction below 1, e.g. 0.003.
func NewDirect(name string, spread decimal.Decimal, markets core.IMarketStore, vault core.IVault) *Direct {
	return &Direct{
		name:    name,
		spread:  spread,
		markets: markets,
		vault:   vault,
	}
}

func (s *Direct) Name() string {
	return s.name
}

func (s *Direct) Swap(ctx context.Context, tx *db.DB, inputAssetID, outputAssetID string, shareIn, minAmountOut decimal.Decimal, recipient string, data []byte) (decimal.Decimal, decimal.Decimal, error) {
	rate, err := s.rate(ctx, tx, inputAssetID, outputAssetID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	amountIn, err := s.vault.ToAmount(ctx, inputAssetID, shareIn, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	amountOut := amountIn.
		Mul(rate).
		Mul(decimal.New(1, 0).Sub(s.spread)).
		Truncate(number.MaxPrecision)
	if amountOut.LessThan(minAmountOut) {
		return decimal.Zero, decimal.Zero, core.ErrMinOutNotReached
	}

	if _, err := s.vault.Withdraw(ctx, tx, s.name, inputAssetID, shareIn); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	shareOut, err := s.vault.Deposit(ctx, tx, recipient, outputAssetID, amountOut)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return amountOut, shareOut, nil
}

// rate output amount per unit of input, read off the market whose asset
// pair matches the swap direction.
func (s *Direct) rate(ctx context.Context, tx *db.DB, inputAssetID, outputAssetID string) (decimal.Decimal, error) {
	// selling collateral for the borrowed asset
	if market, err := s.markets.Find(ctx, tx, outputAssetID); err == nil && market.CollateralAssetID == inputAssetID {
		if !market.ExchangeRate.IsPositive() {
			return decimal.Zero, core.ErrInvalidPrice
		}
		return number.Round(decimal.New(1, 0).Div(market.ExchangeRate), false), nil
	}

	// selling the borrowed asset for collateral
	if market, err := s.markets.Find(ctx, tx, inputAssetID); err == nil && market.CollateralAssetID == outputAssetID {
		if !market.ExchangeRate.IsPositive() {
			return decimal.Zero, core.ErrInvalidPrice
		}
		return market.ExchangeRate, nil
	}

	return decimal.Zero, core.ErrMarketNotFound
}
