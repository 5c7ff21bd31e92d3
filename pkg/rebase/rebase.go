// Package rebase implements the paired elastic/base totals used to convert
// between absolute amounts and share-denominated parts. The elastic side
// tracks total value, the base side tracks total parts; their ratio is the
// implicit exchange rate. Both sides always move together.
package rebase

import (
	"errors"

	"github.com/shopspring/decimal"

	"singular/pkg/number"
)

// ErrNegative is returned when a subtraction would drive either side of a
// rebase below zero. Callers request more than the rebase holds; this is
// an accounting violation and is never clamped here.
var ErrNegative = errors.New("rebase: negative result")

// Rebase is a value type. Mutating methods return the updated rebase so a
// caller can never observe a half-applied pair.
type Rebase struct {
	Elastic decimal.Decimal `json:"elastic"`
	Base    decimal.Decimal `json:"base"`
}

// New returns a zero rebase.
func New() Rebase {
	return Rebase{Elastic: decimal.Zero, Base: decimal.Zero}
}

// ToBase converts an amount into parts. When base is zero the rebase is
// unpopulated and parts equal the amount 1:1. roundUp must be true when the
// parts are credited against the caller (the protocol keeps the remainder).
func (r Rebase) ToBase(amount decimal.Decimal, roundUp bool) decimal.Decimal {
	if r.Base.IsZero() {
		return amount
	}
	return number.Round(amount.Mul(r.Base).Div(r.Elastic), roundUp)
}

// ToElastic converts parts back into an amount, rounded per roundUp.
func (r Rebase) ToElastic(base decimal.Decimal, roundUp bool) decimal.Decimal {
	if r.Base.IsZero() {
		return base
	}
	return number.Round(base.Mul(r.Elastic).Div(r.Base), roundUp)
}

// Add grows both sides by an amount and its part conversion, returning the
// updated rebase and the parts added.
func (r Rebase) Add(amount decimal.Decimal, roundUp bool) (Rebase, decimal.Decimal) {
	base := r.ToBase(amount, roundUp)
	r.Elastic = r.Elastic.Add(amount)
	r.Base = r.Base.Add(base)
	return r, base
}

// Sub shrinks both sides by a part count and its amount conversion,
// returning the updated rebase and the amount removed.
func (r Rebase) Sub(base decimal.Decimal, roundUp bool) (Rebase, decimal.Decimal, error) {
	amount := r.ToElastic(base, roundUp)
	elastic := r.Elastic.Sub(amount)
	remaining := r.Base.Sub(base)
	if elastic.IsNegative() || remaining.IsNegative() {
		return r, decimal.Zero, ErrNegative
	}
	r.Elastic = elastic
	r.Base = remaining
	return r, amount, nil
}

// AddPair grows both sides by explicit amounts. Used when the caller has
// already fixed the amount/part pair and the conversion must not be redone.
func (r Rebase) AddPair(elastic, base decimal.Decimal) Rebase {
	r.Elastic = r.Elastic.Add(elastic)
	r.Base = r.Base.Add(base)
	return r
}

// SubPair shrinks both sides by explicit amounts.
func (r Rebase) SubPair(elastic, base decimal.Decimal) (Rebase, error) {
	e := r.Elastic.Sub(elastic)
	b := r.Base.Sub(base)
	if e.IsNegative() || b.IsNegative() {
		return r, ErrNegative
	}
	r.Elastic = e
	r.Base = b
	return r, nil
}

// AddElastic grows only the elastic side. Interest accrual and lender-pool
// surplus credits dilute or enrich every part holder proportionally.
func (r Rebase) AddElastic(amount decimal.Decimal) Rebase {
	r.Elastic = r.Elastic.Add(amount)
	return r
}
