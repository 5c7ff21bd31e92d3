package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Liquidation paths
const (
	LiquidationPathOrderBook = "orderbook"
	LiquidationPathClosed    = "closed"
)

// LiquidationEvent one row per closed-path user or per order-book batch.
type LiquidationEvent struct {
	ID             uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID        string          `sql:"size:36;unique_index:trace_idx" json:"trace_id"`
	AssetID        string          `sql:"size:36;index:asset_idx" json:"asset_id"`
	Path           string          `sql:"size:16" json:"path"`
	Liquidator     string          `sql:"size:36" json:"liquidator"`
	Users          pq.StringArray  `sql:"type:varchar(1024)" json:"users"`
	BorrowRepaid   decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_repaid"`
	CollateralSold decimal.Decimal `sql:"type:decimal(32,16)" json:"collateral_sold"`
	CallerShare    decimal.Decimal `sql:"type:decimal(32,16)" json:"caller_share"`
	ProtocolShare  decimal.Decimal `sql:"type:decimal(32,16)" json:"protocol_share"`
	LenderShare    decimal.Decimal `sql:"type:decimal(32,16)" json:"lender_share"`
	Detail         types.JSONText  `sql:"type:TEXT" json:"detail,omitempty"`
	CreatedAt      time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// LiquidationDetail per-user breakdown carried in an event's Detail
// payload: one entry per processed user on the order-book path, a single
// entry on the closed path.
type LiquidationDetail struct {
	UserID          string          `json:"user_id"`
	BorrowPart      decimal.Decimal `json:"borrow_part"`
	BorrowAmount    decimal.Decimal `json:"borrow_amount"`
	CollateralShare decimal.Decimal `json:"collateral_share"`
	RewardRate      decimal.Decimal `json:"reward_rate"`
}

// IEventStore liquidation event store interface
type IEventStore interface {
	Create(ctx context.Context, tx *db.DB, event *LiquidationEvent) error
	FindByMarket(ctx context.Context, assetID string, limit int) ([]*LiquidationEvent, error)
}
