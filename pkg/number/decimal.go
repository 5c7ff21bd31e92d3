package number

import (
	"github.com/shopspring/decimal"
)

// MaxPrecision is the decimal precision every rounded division in the
// protocol truncates or ceils at. Amount, share and part values never
// carry more fractional digits than this.
const MaxPrecision int32 = 16

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Ceil rounds d up at the given precision.
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor rounds d down at the given precision.
func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}

// Round rounds d at MaxPrecision in the requested direction. Rounding
// direction is always chosen by the caller: up when the protocol keeps
// the remainder, down when the user does.
func Round(d decimal.Decimal, roundUp bool) decimal.Decimal {
	if roundUp {
		return Ceil(d, MaxPrecision)
	}
	return Floor(d, MaxPrecision)
}

// Clamp limits d to [min, max].
func Clamp(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}
	if d.GreaterThan(max) {
		return max
	}
	return d
}
