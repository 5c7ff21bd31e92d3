// Package interest implements the dynamic per-second borrow rate model.
// The rate drifts toward its far bound whenever utilization leaves the
// configured target band and is clamped to [minimum, maximum] at every step.
package interest

import (
	"github.com/shopspring/decimal"

	"singular/pkg/number"
)

// Utilization borrowed share of the lender pool. Both elastics are asset
// amounts; the pool elastic already includes the lent-out part.
func Utilization(borrowElastic, assetElastic decimal.Decimal) decimal.Decimal {
	if !assetElastic.IsPositive() {
		return decimal.Zero
	}

	return number.Round(borrowElastic.Div(assetElastic), false)
}

// Params rate model bounds
type Params struct {
	Minimum           decimal.Decimal
	Maximum           decimal.Decimal
	TargetUtilization struct {
		Minimum decimal.Decimal
		Maximum decimal.Decimal
	}
	// Elasticity is the number of seconds a full min-to-max swing takes.
	Elasticity decimal.Decimal
}

// NextRate advances the per-second rate by elapsed seconds. Below the
// target band the rate decays linearly toward Minimum, above it grows
// toward Maximum, inside it stays put.
func (p Params) NextRate(current, utilization decimal.Decimal, elapsed int64) decimal.Decimal {
	if elapsed <= 0 || !p.Elasticity.IsPositive() {
		return current
	}

	span := p.Maximum.Sub(p.Minimum)
	step := span.Mul(decimal.NewFromInt(elapsed)).Div(p.Elasticity).Truncate(number.MaxPrecision)

	switch {
	case utilization.LessThan(p.TargetUtilization.Minimum):
		current = current.Sub(step)
	case utilization.GreaterThan(p.TargetUtilization.Maximum):
		current = current.Add(step)
	}

	return number.Clamp(current, p.Minimum, p.Maximum)
}
