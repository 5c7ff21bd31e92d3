// Package lending holds the pure solvency and liquidation-sizing math.
// The position service and the liquidation engine both call into this
// package, so the two can not drift apart on rounding or clamping.
package lending

import (
	"github.com/shopspring/decimal"

	"singular/pkg/number"
	"singular/pkg/rebase"
)

// BorrowAmount converts a user's borrow part into an owed asset amount,
// rounded up: the remainder stays with the protocol.
func BorrowAmount(totalBorrow rebase.Rebase, part decimal.Decimal) decimal.Decimal {
	return totalBorrow.ToElastic(part, true)
}

// CollateralValue prices a collateral amount in borrowed-asset units.
// exchangeRate is collateral per one unit of asset; the division rounds
// down, against the position holder.
func CollateralValue(collateralAmount, exchangeRate decimal.Decimal) decimal.Decimal {
	if !exchangeRate.IsPositive() {
		return decimal.Zero
	}
	return number.Round(collateralAmount.Div(exchangeRate), false)
}

// IsSolvent reports whether discounted collateral still covers the debt.
// A user with no borrow part is always solvent; a borrower with no
// collateral never is.
func IsSolvent(borrowAmount, collateralValue, collateralizationRate decimal.Decimal) bool {
	if !borrowAmount.IsPositive() {
		return true
	}
	if !collateralValue.IsPositive() {
		return false
	}
	return collateralValue.Mul(collateralizationRate).GreaterThanOrEqual(borrowAmount)
}

// DebtToSolvency is the asset amount whose repayment restores solvency at
// the liquidation collateralization rate. Zero for a healthy position.
func DebtToSolvency(borrowAmount, collateralValue, liquidationRate decimal.Decimal) decimal.Decimal {
	covered := collateralValue.Mul(liquidationRate)
	if covered.GreaterThanOrEqual(borrowAmount) {
		return decimal.Zero
	}
	return borrowAmount.Sub(covered)
}

// ClosingFactor the maximum borrow part one liquidation call may close.
// The closeable amount is the debt overhang scaled up for the collateral
// bonus the liquidator will seize: the deeper the shortfall, the larger
// the fraction, up to the full position.
func ClosingFactor(totalBorrow rebase.Rebase, part, collateralValue, liquidationRate, liquidationMultiplier decimal.Decimal) decimal.Decimal {
	borrowAmount := BorrowAmount(totalBorrow, part)
	over := DebtToSolvency(borrowAmount, collateralValue, liquidationRate)
	if !over.IsPositive() {
		return decimal.Zero
	}

	// repaying x removes x debt but also removes x*(1+multiplier)*rate
	// worth of discounted collateral coverage
	denominator := decimal.New(1, 0).Sub(liquidationRate.Mul(decimal.New(1, 0).Add(liquidationMultiplier)))
	closeAmount := borrowAmount
	if denominator.IsPositive() {
		closeAmount = number.Round(over.Div(denominator), true)
		if closeAmount.GreaterThan(borrowAmount) {
			closeAmount = borrowAmount
		}
	}

	closePart := totalBorrow.ToBase(closeAmount, false)
	if closePart.GreaterThan(part) {
		closePart = part
	}
	return closePart
}

// CallerReward interpolates the liquidator incentive between maxReward at
// the just-insolvent TVL and minReward at the fully-liquidatable TVL,
// clamped to the bounds outside that range.
func CallerReward(borrowAmount, startTVL, maxTVL, minReward, maxReward decimal.Decimal) decimal.Decimal {
	if !borrowAmount.IsPositive() || !startTVL.IsPositive() {
		return decimal.Zero
	}
	if borrowAmount.LessThanOrEqual(startTVL) {
		return maxReward
	}
	if borrowAmount.GreaterThanOrEqual(maxTVL) {
		return minReward
	}

	progress := borrowAmount.Sub(startTVL).Div(maxTVL.Sub(startTVL))
	reward := maxReward.Sub(maxReward.Sub(minReward).Mul(progress)).Truncate(number.MaxPrecision)
	return number.Clamp(reward, minReward, maxReward)
}

// TVLBounds the just-insolvent and fully-liquidatable debt thresholds for
// a given collateral value.
func TVLBounds(collateralValue, liquidationRate decimal.Decimal) (startTVL, maxTVL decimal.Decimal) {
	return collateralValue.Mul(liquidationRate), collateralValue
}
