package liquidation

import (
	"context"
	"encoding/json"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/lending"
	"singular/pkg/number"
)

// closedLiquidation liquidates each user independently, swapping seized
// collateral to the borrowed asset on the spot. Sizing follows the
// closing-factor policy capped by the caller's maxBorrowPart and the
// user's actual holdings. Positions are re-read per iteration.
func (e *Engine) closedLiquidation(ctx context.Context, tx *db.DB, market *core.Market, liquidator string, swapper core.ISwapper, args Args) error {
	log := logger.FromContext(ctx).WithField("path", core.LiquidationPathClosed)

	liquidatedCount := 0
	for i, userID := range args.Users {
		done, err := e.liquidateUser(ctx, tx, market, liquidator, swapper, userID, args.MaxBorrowParts[i], args.MinAssetAmount, args.SwapData)
		if err != nil {
			return err
		}
		if done {
			liquidatedCount++
		}
	}

	if liquidatedCount == 0 {
		return core.ErrNoLiquidatableUser
	}

	log.Infof("closed-liquidated %d of %d users", liquidatedCount, len(args.Users))
	return nil
}

func (e *Engine) liquidateUser(ctx context.Context, tx *db.DB, market *core.Market, liquidator string, swapper core.ISwapper, userID string, maxBorrowPart, minAssetAmount decimal.Decimal, swapData []byte) (bool, error) {
	position, err := e.positions.Find(ctx, tx, userID, market.AssetID)
	if err != nil {
		return false, err
	}

	borrowAmount := lending.BorrowAmount(market.TotalBorrow(), position.BorrowPart)
	collateralAmount, err := e.vault.ToAmount(ctx, market.CollateralAssetID, position.CollateralShare, false)
	if err != nil {
		return false, err
	}
	value := lending.CollateralValue(collateralAmount, market.ExchangeRate)

	if lending.IsSolvent(borrowAmount, value, market.CollateralizationRate) {
		return false, nil
	}

	startTVL, maxTVL := lending.TVLBounds(value, market.LiquidationCollateralizationRate)
	rewardRate := lending.CallerReward(borrowAmount, startTVL, maxTVL, market.MinLiquidatorReward, market.MaxLiquidatorReward)

	closePart := lending.ClosingFactor(market.TotalBorrow(), position.BorrowPart, value, market.LiquidationCollateralizationRate, market.LiquidationMultiplier)
	if maxBorrowPart.IsPositive() && closePart.GreaterThan(maxBorrowPart) {
		closePart = maxBorrowPart
	}
	if !closePart.IsPositive() {
		return false, nil
	}

	totalBorrow, closeAmount, err := market.TotalBorrow().Sub(closePart, true)
	if err != nil {
		return false, core.ErrInsufficientBalance
	}

	seizeAmount := closeAmount.
		Mul(decimal.New(1, 0).Add(market.LiquidationMultiplier)).
		Mul(market.ExchangeRate).
		Truncate(number.MaxPrecision)
	seizeShare, err := e.vault.ToShare(ctx, market.CollateralAssetID, seizeAmount, false)
	if err != nil {
		return false, err
	}
	// seizing is capped to the user's holdings, a deliberate clamp point
	if seizeShare.GreaterThan(position.CollateralShare) {
		seizeShare = position.CollateralShare
	}

	market.SetTotalBorrow(totalBorrow)
	market.TotalCollateralShare = market.TotalCollateralShare.Sub(seizeShare)
	position.BorrowPart = position.BorrowPart.Sub(closePart)
	position.CollateralShare = position.CollateralShare.Sub(seizeShare)
	if err := e.positions.Save(ctx, tx, position); err != nil {
		return false, err
	}

	// all debits are committed, now the external leg
	if err := e.vault.Transfer(ctx, tx, market.VaultHolder(), swapper.Name(), market.CollateralAssetID, seizeShare); err != nil {
		return false, err
	}

	amountOut, _, err := swapper.Swap(ctx, tx, market.CollateralAssetID, market.AssetID, seizeShare, minAssetAmount, market.VaultHolder(), swapData)
	if err != nil {
		return false, err
	}

	callerAmount := decimal.Zero
	protocolAmount := decimal.Zero
	lenderAmount := decimal.Zero
	if extra := amountOut.Sub(closeAmount); extra.IsPositive() {
		callerAmount = extra.Mul(rewardRate).Truncate(number.MaxPrecision)
		protocolAmount = extra.Sub(callerAmount).Mul(market.ProtocolFeeRate).Truncate(number.MaxPrecision)
		lenderAmount = extra.Sub(callerAmount).Sub(protocolAmount)
	}

	// the pool keeps the proceeds minus the caller's cut; the protocol's
	// slice is minted to the fee pot as lender fractions
	market.SetTotalAsset(market.TotalAsset().AddElastic(amountOut.Sub(closeAmount).Sub(callerAmount)))
	market.MintFeeFraction(protocolAmount)

	if callerAmount.IsPositive() {
		callerShare, err := e.vault.ToShare(ctx, market.AssetID, callerAmount, false)
		if err != nil {
			return false, err
		}
		if err := e.vault.Transfer(ctx, tx, market.VaultHolder(), liquidator, market.AssetID, callerShare); err != nil {
			return false, err
		}
	}

	logger.FromContext(ctx).Debugf("liquidated %s: repaid %s, seized %s share, caller %s", userID, closeAmount, seizeShare, callerAmount)

	detail, _ := json.Marshal([]core.LiquidationDetail{{
		UserID:          userID,
		BorrowPart:      closePart,
		BorrowAmount:    closeAmount,
		CollateralShare: seizeShare,
		RewardRate:      rewardRate,
	}})

	return true, e.events.Create(ctx, tx, &core.LiquidationEvent{
		TraceID:        uuidutil.New(),
		AssetID:        market.AssetID,
		Path:           core.LiquidationPathClosed,
		Liquidator:     liquidator,
		Users:          pq.StringArray{userID},
		BorrowRepaid:   closeAmount,
		CollateralSold: seizeShare,
		CallerShare:    callerAmount,
		ProtocolShare:  protocolAmount,
		LenderShare:    lenderAmount,
		Detail:         types.JSONText(detail),
	})
}
