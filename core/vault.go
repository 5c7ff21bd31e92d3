package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// IVault token custody. Balances are share-denominated; shares convert
// to amounts through the vault's own per-asset rebase and every
// conversion carries an explicit rounding direction.
type IVault interface {
	ToShare(ctx context.Context, assetID string, amount decimal.Decimal, roundUp bool) (decimal.Decimal, error)
	ToAmount(ctx context.Context, assetID string, share decimal.Decimal, roundUp bool) (decimal.Decimal, error)
	BalanceOf(ctx context.Context, holder, assetID string) (decimal.Decimal, error)
	Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, share decimal.Decimal) error
	Deposit(ctx context.Context, tx *db.DB, to, assetID string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, tx *db.DB, from, assetID string, share decimal.Decimal) (decimal.Decimal, error)
}

// VaultAsset per-asset share rebase
type VaultAsset struct {
	ID          uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID     string          `sql:"size:36;unique_index:vault_asset_idx" json:"asset_id"`
	TotalAmount decimal.Decimal `sql:"type:decimal(32,16)" json:"total_amount"`
	TotalShare  decimal.Decimal `sql:"type:decimal(32,16)" json:"total_share"`
	Version     int64           `sql:"default:0" json:"version"`
	CreatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// VaultBalance per-holder share balance
type VaultBalance struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Holder    string          `sql:"size:64;unique_index:vault_balance_idx" json:"holder"`
	AssetID   string          `sql:"size:36;unique_index:vault_balance_idx" json:"asset_id"`
	Share     decimal.Decimal `sql:"type:decimal(32,16)" json:"share"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}
