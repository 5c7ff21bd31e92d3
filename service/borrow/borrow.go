package borrow

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

// Service handles the borrow category: borrow, repay and the lender-side
// add/remove asset operations.
type Service struct {
	markets   core.IMarketStore
	positions core.IPositionStore
	deposits  core.IDepositStore
	positionz core.IPositionService
	accrual   core.IAccrualService
	oracle    core.IOracle
	vault     core.IVault
}

// New new borrow service
func New(
	markets core.IMarketStore,
	positions core.IPositionStore,
	deposits core.IDepositStore,
	positionz core.IPositionService,
	accrual core.IAccrualService,
	oracle core.IOracle,
	vault core.IVault,
) *Service {
	return &Service{
		markets:   markets,
		positions: positions,
		deposits:  deposits,
		positionz: positionz,
		accrual:   accrual,
		oracle:    oracle,
		vault:     vault,
	}
}

// Execute implements core.Module for the borrow category.
func (s *Service) Execute(ctx context.Context, tx *db.DB, call core.Call) error {
	market, err := s.markets.Find(ctx, tx, call.Asset)
	if err != nil {
		return core.ErrMarketNotFound
	}

	if err := s.accrual.Accrue(ctx, market, time.Now()); err != nil {
		return err
	}

	var amount decimal.Decimal
	if err := calldata.Scan(call.Body, &amount); err != nil {
		return core.ErrInvalidArgument
	}
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	switch call.Action {
	case core.ActionTypeBorrow:
		err = s.borrow(ctx, tx, market, call.UserID, amount)
	case core.ActionTypeRepay:
		err = s.repay(ctx, tx, market, call.UserID, amount)
	case core.ActionTypeAddAsset:
		err = s.addAsset(ctx, tx, market, call.UserID, amount)
	case core.ActionTypeRemoveAsset:
		err = s.removeAsset(ctx, tx, market, call.UserID, amount)
	default:
		return core.ErrOperationForbidden
	}
	if err != nil {
		return err
	}

	return s.markets.Update(ctx, tx, market)
}

// borrow opens debt of amount plus the opening fee. Exceeding solvency is
// rejected here, one layer above the position mutators, after all
// bookkeeping and before the payout leaves the vault.
func (s *Service) borrow(ctx context.Context, tx *db.DB, market *core.Market, userID string, amount decimal.Decimal) error {
	if rate, ok := s.oracle.Get(ctx, market); ok {
		market.ExchangeRate = rate
	}
	if !market.ExchangeRate.IsPositive() {
		return core.ErrInvalidPrice
	}

	if market.IdleAssetAmount().LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	position, err := s.positions.Find(ctx, tx, userID, market.AssetID)
	if err != nil {
		return err
	}

	fee := amount.Mul(market.BorrowOpeningFee).Truncate(number.MaxPrecision)
	if _, err := s.positionz.IncreaseBorrow(ctx, tx, market, position, amount.Add(fee)); err != nil {
		return err
	}

	// the fee is newly owed to the pool: elastic grows, fee pot is minted
	market.SetTotalAsset(market.TotalAsset().AddElastic(fee))
	market.MintFeeFraction(fee)

	solvent, err := s.positionz.IsSolvent(ctx, market, position, market.ExchangeRate)
	if err != nil {
		return err
	}
	if !solvent {
		return core.ErrInsufficientCollateral
	}

	share, err := s.vault.ToShare(ctx, market.AssetID, amount, false)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("service", "borrow").
		Debugf("%s borrowed %s (+%s fee)", userID, amount, fee)

	return s.vault.Transfer(ctx, tx, market.VaultHolder(), userID, market.AssetID, share)
}

// repay closes `part` of the user's debt; the owed amount is rounded up.
func (s *Service) repay(ctx context.Context, tx *db.DB, market *core.Market, userID string, part decimal.Decimal) error {
	position, err := s.positions.Find(ctx, tx, userID, market.AssetID)
	if err != nil {
		return err
	}

	amount, err := s.positionz.DecreaseBorrow(ctx, tx, market, position, part)
	if err != nil {
		return err
	}

	share, err := s.vault.ToShare(ctx, market.AssetID, amount, true)
	if err != nil {
		return err
	}

	return s.vault.Transfer(ctx, tx, userID, market.VaultHolder(), market.AssetID, share)
}

// addAsset lends amount into the pool, minting deposit fractions at the
// current elastic/base ratio, rounded against the lender.
func (s *Service) addAsset(ctx context.Context, tx *db.DB, market *core.Market, userID string, amount decimal.Decimal) error {
	deposit, err := s.deposits.Find(ctx, tx, userID, market.AssetID)
	if err != nil {
		return err
	}

	fraction := market.TotalAsset().ToBase(amount, false)
	deposit.Fraction = deposit.Fraction.Add(fraction)
	if err := s.deposits.Save(ctx, tx, deposit); err != nil {
		return err
	}
	market.SetTotalAsset(market.TotalAsset().AddPair(amount, fraction))

	share, err := s.vault.ToShare(ctx, market.AssetID, amount, true)
	if err != nil {
		return err
	}

	return s.vault.Transfer(ctx, tx, userID, market.VaultHolder(), market.AssetID, share)
}

// removeAsset burns `fraction` of the lender's claim. Withdrawals are
// limited to idle liquidity; lent-out funds can not leave the pool.
func (s *Service) removeAsset(ctx context.Context, tx *db.DB, market *core.Market, userID string, fraction decimal.Decimal) error {
	deposit, err := s.deposits.Find(ctx, tx, userID, market.AssetID)
	if err != nil {
		return err
	}
	if fraction.GreaterThan(deposit.Fraction) {
		return core.ErrInsufficientBalance
	}

	amount := market.TotalAsset().ToElastic(fraction, false)
	if market.IdleAssetAmount().LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	totalAsset, err := market.TotalAsset().SubPair(amount, fraction)
	if err != nil {
		return core.ErrInsufficientBalance
	}
	market.SetTotalAsset(totalAsset)

	deposit.Fraction = deposit.Fraction.Sub(fraction)
	if err := s.deposits.Save(ctx, tx, deposit); err != nil {
		return err
	}

	share, err := s.vault.ToShare(ctx, market.AssetID, amount, false)
	if err != nil {
		return err
	}

	return s.vault.Transfer(ctx, tx, market.VaultHolder(), userID, market.AssetID, share)
}

// WithdrawFees pays the accumulated fee fractions out to the recipient.
// Invoked from the admin CLI, not through the dispatcher.
func (s *Service) WithdrawFees(ctx context.Context, tx *db.DB, market *core.Market, recipient string) (decimal.Decimal, error) {
	fraction := market.FeesEarned
	if !fraction.IsPositive() {
		return decimal.Zero, nil
	}

	amount := market.TotalAsset().ToElastic(fraction, false)
	if market.IdleAssetAmount().LessThan(amount) {
		return decimal.Zero, core.ErrInsufficientLiquidity
	}

	totalAsset, err := market.TotalAsset().SubPair(amount, fraction)
	if err != nil {
		return decimal.Zero, core.ErrInsufficientBalance
	}
	market.SetTotalAsset(totalAsset)
	market.FeesEarned = decimal.Zero

	share, err := s.vault.ToShare(ctx, market.AssetID, amount, false)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.vault.Transfer(ctx, tx, market.VaultHolder(), recipient, market.AssetID, share); err != nil {
		return decimal.Zero, err
	}

	return amount, s.markets.Update(ctx, tx, market)
}
