package leverage

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/calldata"
	"singular/pkg/number"
)

// Service handles the leverage category: borrowing into collateral
// (lever up) and unwinding collateral into debt repayment (lever down),
// both through an allow-listed swapper.
type Service struct {
	markets   core.IMarketStore
	positions core.IPositionStore
	positionz core.IPositionService
	accrual   core.IAccrualService
	oracle    core.IOracle
	vault     core.IVault
	registry  *core.SwapperRegistry
	swappers  map[string]core.ISwapper
}

// New new leverage service
func New(
	markets core.IMarketStore,
	positions core.IPositionStore,
	positionz core.IPositionService,
	accrual core.IAccrualService,
	oracle core.IOracle,
	vault core.IVault,
	registry *core.SwapperRegistry,
	swappers map[string]core.ISwapper,
) *Service {
	return &Service{
		markets:   markets,
		positions: positions,
		positionz: positionz,
		accrual:   accrual,
		oracle:    oracle,
		vault:     vault,
		registry:  registry,
		swappers:  swappers,
	}
}

// Args leverage call payload
type Args struct {
	Amount    decimal.Decimal `json:"amount"`
	Swapper   string          `json:"swapper"`
	MinAmount decimal.Decimal `json:"min_amount"`
	SwapData  []byte          `json:"swap_data"`
}

// Execute implements core.Module for the leverage category.
func (s *Service) Execute(ctx context.Context, tx *db.DB, call core.Call) error {
	var args Args
	if err := calldata.Scan(call.Body, &args.Amount, &args.Swapper, &args.MinAmount, &args.SwapData); err != nil {
		return core.ErrInvalidArgument
	}
	if !args.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if !s.registry.Allowed(args.Swapper) {
		return core.ErrSwapperNotAllowed
	}
	swapper := s.swappers[args.Swapper]
	if swapper == nil {
		return core.ErrSwapperNotAllowed
	}

	market, err := s.markets.Find(ctx, tx, call.Asset)
	if err != nil {
		return core.ErrMarketNotFound
	}

	if rate, ok := s.oracle.Get(ctx, market); ok {
		market.ExchangeRate = rate
	}
	if !market.ExchangeRate.IsPositive() {
		return core.ErrInvalidPrice
	}

	if err := s.accrual.Accrue(ctx, market, time.Now()); err != nil {
		return err
	}

	position, err := s.positions.Find(ctx, tx, call.UserID, market.AssetID)
	if err != nil {
		return err
	}

	switch call.Action {
	case core.ActionTypeLeverUp:
		err = s.leverUp(ctx, tx, market, position, swapper, args)
	case core.ActionTypeLeverDown:
		err = s.leverDown(ctx, tx, market, position, swapper, args)
	default:
		return core.ErrOperationForbidden
	}
	if err != nil {
		return err
	}

	return s.markets.Update(ctx, tx, market)
}

// leverUp borrows args.Amount, swaps it into collateral and pledges the
// proceeds, all in one call. Solvency is checked on the final shape.
func (s *Service) leverUp(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, swapper core.ISwapper, args Args) error {
	if market.IdleAssetAmount().LessThan(args.Amount) {
		return core.ErrInsufficientLiquidity
	}

	fee := args.Amount.Mul(market.BorrowOpeningFee).Truncate(number.MaxPrecision)
	if _, err := s.positionz.IncreaseBorrow(ctx, tx, market, position, args.Amount.Add(fee)); err != nil {
		return err
	}
	market.SetTotalAsset(market.TotalAsset().AddElastic(fee))
	market.MintFeeFraction(fee)

	share, err := s.vault.ToShare(ctx, market.AssetID, args.Amount, false)
	if err != nil {
		return err
	}
	if err := s.vault.Transfer(ctx, tx, market.VaultHolder(), swapper.Name(), market.AssetID, share); err != nil {
		return err
	}

	_, shareOut, err := swapper.Swap(ctx, tx, market.AssetID, market.CollateralAssetID, share, args.MinAmount, market.VaultHolder(), args.SwapData)
	if err != nil {
		return err
	}

	if err := s.positionz.IncreaseCollateral(ctx, tx, market, position, shareOut); err != nil {
		return err
	}

	solvent, err := s.positionz.IsSolvent(ctx, market, position, market.ExchangeRate)
	if err != nil {
		return err
	}
	if !solvent {
		return core.ErrInsufficientCollateral
	}

	logger.FromContext(ctx).WithField("service", "leverage").
		Debugf("%s levered up %s into %s collateral share", position.UserID, args.Amount, shareOut)

	return nil
}

// leverDown sells args.Amount of collateral share and repays debt with
// the proceeds; anything beyond the debt goes back to the user.
func (s *Service) leverDown(ctx context.Context, tx *db.DB, market *core.Market, position *core.Position, swapper core.ISwapper, args Args) error {
	if err := s.positionz.DecreaseCollateral(ctx, tx, market, position, args.Amount); err != nil {
		return err
	}

	if err := s.vault.Transfer(ctx, tx, market.VaultHolder(), swapper.Name(), market.CollateralAssetID, args.Amount); err != nil {
		return err
	}

	amountOut, _, err := swapper.Swap(ctx, tx, market.CollateralAssetID, market.AssetID, args.Amount, args.MinAmount, market.VaultHolder(), args.SwapData)
	if err != nil {
		return err
	}

	repayPart := market.TotalBorrow().ToBase(amountOut, false)
	if repayPart.GreaterThan(position.BorrowPart) {
		repayPart = position.BorrowPart
	}

	repaid := decimal.Zero
	if repayPart.IsPositive() {
		repaid, err = s.positionz.DecreaseBorrow(ctx, tx, market, position, repayPart)
		if err != nil {
			return err
		}
	}

	// proceeds beyond the repaid debt return to the user
	if excess := amountOut.Sub(repaid); excess.IsPositive() {
		share, err := s.vault.ToShare(ctx, market.AssetID, excess, false)
		if err != nil {
			return err
		}
		if err := s.vault.Transfer(ctx, tx, market.VaultHolder(), position.UserID, market.AssetID, share); err != nil {
			return err
		}
	}

	solvent, err := s.positionz.IsSolvent(ctx, market, position, market.ExchangeRate)
	if err != nil {
		return err
	}
	if !solvent {
		return core.ErrInsufficientCollateral
	}

	return nil
}
