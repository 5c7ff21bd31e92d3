package position

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/lending"
)

type positionService struct {
	positions core.IPositionStore
	vault     core.IVault
}

// New new position service
func New(positions core.IPositionStore, vault core.IVault) core.IPositionService {
	return &positionService{
		positions: positions,
		vault:     vault,
	}
}

func (s *positionService) BorrowAmount(market *core.Market, position *core.Position) decimal.Decimal {
	return lending.BorrowAmount(market.TotalBorrow(), position.BorrowPart)
}

func (s *positionService) CollateralValue(ctx context.Context, market *core.Market, position *core.Position, exchangeRate decimal.Decimal) (decimal.Decimal, error) {
	if !position.CollateralShare.IsPositive() {
		return decimal.Zero, nil
	}

	// rounding down: the holder does not get credit for dust
	amount, err := s.vault.ToAmount(ctx, market.CollateralAssetID, position.CollateralShare, false)
	if err != nil {
		return decimal.Zero, err
	}

	return lending.CollateralValue(amount, exchangeRate), nil
}

func (s *positionService) IsSolvent(ctx context.Context, market *core.Market, position *core.Position, exchangeRate decimal.Decimal) (bool, error) {
	if !position.BorrowPart.IsPositive() {
		return true, nil
	}

	value, err := s.CollateralValue(ctx, market, position, exchangeRate)
	if err != nil {
		return false, err
	}

	return lending.IsSolvent(s.BorrowAmount(market, position), value, market.CollateralizationRate), nil
}

// IncreaseBorrow converts amount into parts (rounded up, against the
// borrower) and moves position and global debt rebase together.
func (s *positionService) IncreaseBorrow(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, amount decimal.Decimal) (decimal.Decimal, error) {
	totalBorrow, part := market.TotalBorrow().Add(amount, true)
	market.SetTotalBorrow(totalBorrow)

	position.BorrowPart = position.BorrowPart.Add(part)
	if err := s.positions.Save(ctx, tx, position); err != nil {
		return decimal.Zero, err
	}

	return part, nil
}

// DecreaseBorrow closes part of the debt, returning the asset amount owed
// for it (rounded up). Closing more than the position holds is rejected,
// never clamped.
func (s *positionService) DecreaseBorrow(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, part decimal.Decimal) (decimal.Decimal, error) {
	if part.GreaterThan(position.BorrowPart) {
		return decimal.Zero, core.ErrInsufficientBalance
	}

	totalBorrow, amount, err := market.TotalBorrow().Sub(part, true)
	if err != nil {
		return decimal.Zero, core.ErrInsufficientBalance
	}

	market.SetTotalBorrow(totalBorrow)
	position.BorrowPart = position.BorrowPart.Sub(part)
	if err := s.positions.Save(ctx, tx, position); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

func (s *positionService) IncreaseCollateral(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, share decimal.Decimal) error {
	position.CollateralShare = position.CollateralShare.Add(share)
	market.TotalCollateralShare = market.TotalCollateralShare.Add(share)
	return s.positions.Save(ctx, tx, position)
}

func (s *positionService) DecreaseCollateral(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, share decimal.Decimal) error {
	if share.GreaterThan(position.CollateralShare) {
		return core.ErrInsufficientBalance
	}

	position.CollateralShare = position.CollateralShare.Sub(share)
	market.TotalCollateralShare = market.TotalCollateralShare.Sub(share)
	return s.positions.Save(ctx, tx, position)
}
