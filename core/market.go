package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/pkg/number"
	"singular/pkg/rebase"
)

// Market one isolated lending market: a single borrowed asset against a
// single collateral asset. Rebase totals are stored as paired columns and
// only ever read or written through the pair accessors below, so one side
// can not move without the other.
type Market struct {
	ID                uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID           string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	CollateralAssetID string `sql:"size:36" json:"collateral_asset_id"`
	Symbol            string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`

	TotalBorrowElastic   decimal.Decimal `sql:"type:decimal(32,16)" json:"total_borrow_elastic"`
	TotalBorrowBase      decimal.Decimal `sql:"type:decimal(32,16)" json:"total_borrow_base"`
	TotalAssetElastic    decimal.Decimal `sql:"type:decimal(32,16)" json:"total_asset_elastic"`
	TotalAssetBase       decimal.Decimal `sql:"type:decimal(32,16)" json:"total_asset_base"`
	TotalCollateralShare decimal.Decimal `sql:"type:decimal(32,16)" json:"total_collateral_share"`

	// accrue info
	LastAccruedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"last_accrued_at"`
	InterestPerSecond decimal.Decimal `sql:"type:decimal(32,16)" json:"interest_per_second"`
	FeesEarned        decimal.Decimal `sql:"type:decimal(32,16)" json:"fees_earned"`

	// rate model bounds
	MinimumInterestPerSecond  decimal.Decimal `sql:"type:decimal(32,16)" json:"minimum_interest_per_second"`
	MaximumInterestPerSecond  decimal.Decimal `sql:"type:decimal(32,16)" json:"maximum_interest_per_second"`
	StartingInterestPerSecond decimal.Decimal `sql:"type:decimal(32,16)" json:"starting_interest_per_second"`
	InterestElasticity        decimal.Decimal `sql:"type:decimal(20,8)" json:"interest_elasticity"`
	MinimumTargetUtilization  decimal.Decimal `sql:"type:decimal(20,8)" json:"minimum_target_utilization"`
	MaximumTargetUtilization  decimal.Decimal `sql:"type:decimal(20,8)" json:"maximum_target_utilization"`

	// risk params, fractions below 1
	CollateralizationRate            decimal.Decimal `sql:"type:decimal(20,8)" json:"collateralization_rate"`
	LiquidationCollateralizationRate decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_collateralization_rate"`
	LiquidationMultiplier            decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_multiplier"`
	ProtocolFeeRate                  decimal.Decimal `sql:"type:decimal(20,8)" json:"protocol_fee_rate"`
	BorrowOpeningFee                 decimal.Decimal `sql:"type:decimal(20,8)" json:"borrow_opening_fee"`
	MinLiquidatorReward              decimal.Decimal `sql:"type:decimal(20,8)" json:"min_liquidator_reward"`
	MaxLiquidatorReward              decimal.Decimal `sql:"type:decimal(20,8)" json:"max_liquidator_reward"`

	// last known oracle rate: collateral amount per one unit of asset.
	// Updated on successful oracle reads, reused as-is on failed ones.
	ExchangeRate decimal.Decimal `sql:"type:decimal(32,16)" json:"exchange_rate"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TotalBorrow global debt rebase: elastic is owed asset, base is the sum
// of all users' borrow parts.
func (m *Market) TotalBorrow() rebase.Rebase {
	return rebase.Rebase{Elastic: m.TotalBorrowElastic, Base: m.TotalBorrowBase}
}

func (m *Market) SetTotalBorrow(r rebase.Rebase) {
	m.TotalBorrowElastic = r.Elastic
	m.TotalBorrowBase = r.Base
}

// TotalAsset lender pool rebase: elastic is the pool's asset amount
// (idle plus lent out), base is the lender fraction supply including fees.
func (m *Market) TotalAsset() rebase.Rebase {
	return rebase.Rebase{Elastic: m.TotalAssetElastic, Base: m.TotalAssetBase}
}

func (m *Market) SetTotalAsset(r rebase.Rebase) {
	m.TotalAssetElastic = r.Elastic
	m.TotalAssetBase = r.Base
}

// MintFeeFraction converts an asset amount the pool has already earned
// into lender fractions and books them to the fee pot. Minting fractions
// dilutes every lender proportionally; the fee recipient claims them later.
func (m *Market) MintFeeFraction(amount decimal.Decimal) {
	if !amount.IsPositive() || !m.TotalAssetElastic.IsPositive() {
		return
	}

	fraction := number.Round(amount.Mul(m.TotalAssetBase).Div(m.TotalAssetElastic), false)
	m.FeesEarned = m.FeesEarned.Add(fraction)
	m.TotalAssetBase = m.TotalAssetBase.Add(fraction)
}

// IdleAssetAmount asset sitting in the pool, available for borrows and
// lender withdrawals.
func (m *Market) IdleAssetAmount() decimal.Decimal {
	return m.TotalAssetElastic.Sub(m.TotalBorrowElastic)
}

// VaultHolder vault account label custodying this market's funds.
func (m *Market) VaultHolder() string {
	return "market/" + m.AssetID
}

// IMarketStore market store interface. Find with a non-nil tx reads
// through the transaction so mutating flows see their own writes; a nil
// tx reads committed state.
type IMarketStore interface {
	Create(ctx context.Context, tx *db.DB, market *Market) error
	Find(ctx context.Context, tx *db.DB, assetID string) (*Market, error)
	FindBySymbol(ctx context.Context, symbol string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	Update(ctx context.Context, tx *db.DB, market *Market) error
}

// IAccrualService brings a market's debt up to date
type IAccrualService interface {
	Accrue(ctx context.Context, market *Market, at time.Time) error
}
