package collateral

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/calldata"
)

// Service handles the collateral category.
type Service struct {
	markets   core.IMarketStore
	positions core.IPositionStore
	positionz core.IPositionService
	accrual   core.IAccrualService
	oracle    core.IOracle
	vault     core.IVault
}

// New new collateral service
func New(
	markets core.IMarketStore,
	positions core.IPositionStore,
	positionz core.IPositionService,
	accrual core.IAccrualService,
	oracle core.IOracle,
	vault core.IVault,
) *Service {
	return &Service{
		markets:   markets,
		positions: positions,
		positionz: positionz,
		accrual:   accrual,
		oracle:    oracle,
		vault:     vault,
	}
}

// Execute implements core.Module for the collateral category.
func (s *Service) Execute(ctx context.Context, tx *db.DB, call core.Call) error {
	market, err := s.markets.Find(ctx, tx, call.Asset)
	if err != nil {
		return core.ErrMarketNotFound
	}

	if err := s.accrual.Accrue(ctx, market, time.Now()); err != nil {
		return err
	}

	var share decimal.Decimal
	if err := calldata.Scan(call.Body, &share); err != nil {
		return core.ErrInvalidArgument
	}
	if !share.IsPositive() {
		return core.ErrInvalidAmount
	}

	position, err := s.positions.Find(ctx, tx, call.UserID, market.AssetID)
	if err != nil {
		return err
	}

	switch call.Action {
	case core.ActionTypeAddCollateral:
		err = s.add(ctx, tx, market, position, share)
	case core.ActionTypeRemoveCollateral:
		err = s.remove(ctx, tx, market, position, share)
	default:
		return core.ErrOperationForbidden
	}
	if err != nil {
		return err
	}

	return s.markets.Update(ctx, tx, market)
}

func (s *Service) add(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, share decimal.Decimal) error {
	if err := s.positionz.IncreaseCollateral(ctx, tx, market, position, share); err != nil {
		return err
	}

	return s.vault.Transfer(ctx, tx, position.UserID, market.VaultHolder(), market.CollateralAssetID, share)
}

// remove re-checks solvency at the refreshed rate after the debit; the
// payout leaves the vault only once the position is proven healthy.
func (s *Service) remove(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, share decimal.Decimal) error {
	if rate, ok := s.oracle.Get(ctx, market); ok {
		market.ExchangeRate = rate
	}
	if !market.ExchangeRate.IsPositive() {
		return core.ErrInvalidPrice
	}

	if err := s.positionz.DecreaseCollateral(ctx, tx, market, position, share); err != nil {
		return err
	}

	solvent, err := s.positionz.IsSolvent(ctx, market, position, market.ExchangeRate)
	if err != nil {
		return err
	}
	if !solvent {
		return core.ErrInsufficientCollateral
	}

	return s.vault.Transfer(ctx, tx, market.VaultHolder(), position.UserID, market.CollateralAssetID, share)
}
