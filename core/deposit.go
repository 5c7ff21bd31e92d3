package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Deposit a lender's fraction claim against the market's totalAsset rebase.
type Deposit struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:deposit_idx" json:"user_id"`
	AssetID   string          `sql:"size:36;unique_index:deposit_idx" json:"asset_id"`
	Fraction  decimal.Decimal `sql:"type:decimal(32,16)" json:"fraction"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IDepositStore deposit store interface
type IDepositStore interface {
	Find(ctx context.Context, tx *db.DB, userID, assetID string) (*Deposit, error)
	FindByMarket(ctx context.Context, assetID string) ([]*Deposit, error)
	Save(ctx context.Context, tx *db.DB, deposit *Deposit) error
}
