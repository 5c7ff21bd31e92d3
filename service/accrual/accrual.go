package accrual

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/internal/interest"
	"singular/pkg/number"
)

type accrualService struct{}

// New new accrual service
func New() core.IAccrualService {
	return &accrualService{}
}

// Accrue brings the market's debt up to date at time `at`. The market
// struct is mutated in place; persisting it is the caller's job. Calling
// twice at the same instant is a no-op.
func (s *accrualService) Accrue(ctx context.Context, market *core.Market, at time.Time) error {
	elapsed := at.Unix() - market.LastAccruedAt.Unix()
	if elapsed <= 0 {
		return nil
	}
	market.LastAccruedAt = at

	if !market.InterestPerSecond.IsPositive() {
		market.InterestPerSecond = market.StartingInterestPerSecond
	}

	if !market.TotalBorrowBase.IsPositive() {
		// nothing borrowed, rate falls back to its starting value
		market.InterestPerSecond = market.StartingInterestPerSecond
		return nil
	}

	extraAmount := market.TotalBorrowElastic.
		Mul(market.InterestPerSecond).
		Mul(decimal.NewFromInt(elapsed)).
		Truncate(number.MaxPrecision)

	market.SetTotalBorrow(market.TotalBorrow().AddElastic(extraAmount))
	// interest owed to the pool grows the lender elastic by the same amount
	market.SetTotalAsset(market.TotalAsset().AddElastic(extraAmount))

	// protocol cut of the interest, paid as lender-fraction dilution
	market.MintFeeFraction(extraAmount.Mul(market.ProtocolFeeRate).Truncate(number.MaxPrecision))

	params := interest.Params{
		Minimum:    market.MinimumInterestPerSecond,
		Maximum:    market.MaximumInterestPerSecond,
		Elasticity: market.InterestElasticity,
	}
	params.TargetUtilization.Minimum = market.MinimumTargetUtilization
	params.TargetUtilization.Maximum = market.MaximumTargetUtilization

	utilization := interest.Utilization(market.TotalBorrowElastic, market.TotalAssetElastic)
	market.InterestPerSecond = params.NextRate(market.InterestPerSecond, utilization, elapsed)

	logger.FromContext(ctx).WithField("service", "accrual").
		Debugf("market %s accrued %s over %ds, utilization %s", market.Symbol, extraAmount, elapsed, utilization)

	return nil
}
