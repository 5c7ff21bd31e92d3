package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Position per-user borrow and collateral bookkeeping. A fully repaid or
// fully liquidated position is zeroed, never deleted.
type Position struct {
	ID              uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID          string          `sql:"size:36;unique_index:position_idx" json:"user_id"`
	AssetID         string          `sql:"size:36;unique_index:position_idx" json:"asset_id"`
	BorrowPart      decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_part"`
	CollateralShare decimal.Decimal `sql:"type:decimal(32,16)" json:"collateral_share"`
	Version         int64           `sql:"default:0" json:"version"`
	CreatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPositionStore position store interface. Find returns a zero position
// (ID == 0) when none exists yet; with a non-nil tx it reads through the
// transaction so batched flows see their own uncommitted writes.
type IPositionStore interface {
	Find(ctx context.Context, tx *db.DB, userID, assetID string) (*Position, error)
	FindByMarket(ctx context.Context, assetID string) ([]*Position, error)
	FindByUser(ctx context.Context, userID string) ([]*Position, error)
	Save(ctx context.Context, tx *db.DB, position *Position) error
}

// IPositionService position mutations plus the solvency query. Mutators
// update the position row and the market's in-memory rebase totals in
// lockstep; persisting the market row stays with the caller, once per
// operation. Solvency is a query only, never enforced here.
type IPositionService interface {
	IsSolvent(ctx context.Context, market *Market, position *Position, exchangeRate decimal.Decimal) (bool, error)
	BorrowAmount(market *Market, position *Position) decimal.Decimal
	CollateralValue(ctx context.Context, market *Market, position *Position, exchangeRate decimal.Decimal) (decimal.Decimal, error)
	IncreaseBorrow(ctx context.Context, tx *db.DB, market *Market, position *Position, amount decimal.Decimal) (decimal.Decimal, error)
	DecreaseBorrow(ctx context.Context, tx *db.DB, market *Market, position *Position, part decimal.Decimal) (decimal.Decimal, error)
	IncreaseCollateral(ctx context.Context, tx *db.DB, market *Market, position *Position, share decimal.Decimal) error
	DecreaseCollateral(ctx context.Context, tx *db.DB, market *Market, position *Position, share decimal.Decimal) error
}
