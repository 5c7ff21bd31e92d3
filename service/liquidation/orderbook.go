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

// the order-book caller takes a fixed cut of any surplus the bids return
// beyond the debt owed
var orderBookCallerCut = number.Decimal("0.01")

// orderBookLiquidation closes every insolvent user in the batch down to
// the liquidation collateralization rate, funded by the queue's standing
// bids. Per-user sizing ignores maxBorrowParts; positions are re-read per
// iteration so duplicate entries act on post-first-occurrence state.
// Aggregate totals are applied to the market in one update after the loop.
func (e *Engine) orderBookLiquidation(ctx context.Context, tx *db.DB, market *core.Market, liquidator string, args Args) error {
	log := logger.FromContext(ctx).WithField("path", core.LiquidationPathOrderBook)

	var (
		allBorrowAmount    = decimal.Zero
		allBorrowPart      = decimal.Zero
		allCollateralShare = decimal.Zero
		liquidated         []string
		details            []core.LiquidationDetail
	)

	for _, userID := range args.Users {
		position, err := e.positions.Find(ctx, tx, userID, market.AssetID)
		if err != nil {
			return err
		}

		borrowAmount := lending.BorrowAmount(market.TotalBorrow(), position.BorrowPart)
		collateralAmount, err := e.vault.ToAmount(ctx, market.CollateralAssetID, position.CollateralShare, false)
		if err != nil {
			return err
		}
		value := lending.CollateralValue(collateralAmount, market.ExchangeRate)

		if lending.IsSolvent(borrowAmount, value, market.CollateralizationRate) {
			continue
		}

		debt := lending.DebtToSolvency(borrowAmount, value, market.LiquidationCollateralizationRate)
		if !debt.IsPositive() {
			continue
		}

		part := market.TotalBorrow().ToBase(debt, false)
		if part.GreaterThan(position.BorrowPart) {
			part = position.BorrowPart
		}

		// full bonus collateral withdrawn, no closing-factor clamp here
		seizeAmount := debt.
			Mul(decimal.New(1, 0).Add(market.LiquidationMultiplier)).
			Mul(market.ExchangeRate).
			Truncate(number.MaxPrecision)
		seizeShare, err := e.vault.ToShare(ctx, market.CollateralAssetID, seizeAmount, false)
		if err != nil {
			return err
		}
		if seizeShare.GreaterThan(position.CollateralShare) {
			return core.ErrInsufficientBalance
		}

		position.BorrowPart = position.BorrowPart.Sub(part)
		position.CollateralShare = position.CollateralShare.Sub(seizeShare)
		if err := e.positions.Save(ctx, tx, position); err != nil {
			return err
		}

		allBorrowAmount = allBorrowAmount.Add(debt)
		allBorrowPart = allBorrowPart.Add(part)
		allCollateralShare = allCollateralShare.Add(seizeShare)
		liquidated = append(liquidated, userID)
		details = append(details, core.LiquidationDetail{
			UserID:          userID,
			BorrowPart:      part,
			BorrowAmount:    debt,
			CollateralShare: seizeShare,
		})
	}

	if len(liquidated) == 0 {
		return core.ErrNoLiquidatableUser
	}

	totalBorrow, err := market.TotalBorrow().SubPair(allBorrowAmount, allBorrowPart)
	if err != nil {
		return core.ErrInsufficientBalance
	}
	market.SetTotalBorrow(totalBorrow)
	market.TotalCollateralShare = market.TotalCollateralShare.Sub(allCollateralShare)

	// bookkeeping is final; hand collateral to the queue and let it fill
	if err := e.vault.Transfer(ctx, tx, market.VaultHolder(), e.queue.Holder(), market.CollateralAssetID, allCollateralShare); err != nil {
		return err
	}
	returned, err := e.queue.ExecuteBids(ctx, tx, market, allCollateralShare, args.SwapData)
	if err != nil {
		return err
	}

	callerAmount := decimal.Zero
	if surplus := returned.Sub(allBorrowAmount); surplus.IsPositive() {
		callerAmount = surplus.Mul(orderBookCallerCut).Truncate(number.MaxPrecision)
	}
	lenderAmount := returned.Sub(allBorrowAmount).Sub(callerAmount)

	// the pool keeps everything the bids returned except the caller cut
	market.SetTotalAsset(market.TotalAsset().AddElastic(lenderAmount))

	if callerAmount.IsPositive() {
		callerShare, err := e.vault.ToShare(ctx, market.AssetID, callerAmount, false)
		if err != nil {
			return err
		}
		if err := e.vault.Transfer(ctx, tx, market.VaultHolder(), liquidator, market.AssetID, callerShare); err != nil {
			return err
		}
	}

	log.Infof("order-book liquidated %d users, repaid %s, seized %s", len(liquidated), allBorrowAmount, allCollateralShare)

	detail, _ := json.Marshal(details)

	return e.events.Create(ctx, tx, &core.LiquidationEvent{
		TraceID:        uuidutil.New(),
		AssetID:        market.AssetID,
		Path:           core.LiquidationPathOrderBook,
		Liquidator:     liquidator,
		Users:          pq.StringArray(liquidated),
		BorrowRepaid:   allBorrowAmount,
		CollateralSold: allCollateralShare,
		CallerShare:    callerAmount,
		LenderShare:    lenderAmount,
		Detail:         types.JSONText(detail),
	})
}
