package queue

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/number"
)

// Pool one premium tier of standing bidder funds for a market. Amount is
// asset-denominated; the backing tokens sit in the vault under the queue
// holder, deposited when bidders fund the tier.
type Pool struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:queue_pool_idx" json:"asset_id"`
	Premium   decimal.Decimal `sql:"type:decimal(32,16);unique_index:queue_pool_idx" json:"premium"`
	Amount    decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

const holder = "liquidation/queue"

// Queue a DB backed order-book liquidation venue. Bid matching between
// bidders stays outside the core; here the queue only takes seized
// collateral and pays asset back out of the best funded tier.
type Queue struct {
	db    *db.DB
	vault core.IVault
}

// New new liquidation queue
func New(db *db.DB, vault core.IVault) *Queue {
	return &Queue{db: db, vault: vault}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Pool{})
		if err := tx.AutoMigrate(Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (q *Queue) Holder() string {
	return holder
}

func (q *Queue) NextAvailableBidPool(ctx context.Context, market *core.Market) (core.BidPool, bool, error) {
	var pools []*Pool
	if err := q.db.View().
		Where("asset_id=? and amount>0", market.AssetID).
		Order("premium asc").
		Limit(1).
		Find(&pools).Error; err != nil {
		return core.BidPool{}, false, err
	}

	if len(pools) == 0 {
		return core.BidPool{}, false, nil
	}

	return core.BidPool{ID: pools[0].ID, Amount: pools[0].Amount}, true, nil
}

// ExecuteBids sells the seized collateral to the best tier. Bidders pay
// the collateral's asset value discounted by the tier premium, capped at
// the tier's standing amount.
func (q *Queue) ExecuteBids(ctx context.Context, tx *db.DB, market *core.Market, collateralShare decimal.Decimal, swapData []byte) (decimal.Decimal, error) {
	var pool Pool
	if err := tx.Update().
		Where("asset_id=? and amount>0", market.AssetID).
		Order("premium asc").
		First(&pool).Error; err != nil {
		return decimal.Zero, err
	}

	collateralAmount, err := q.vault.ToAmount(ctx, market.CollateralAssetID, collateralShare, false)
	if err != nil {
		return decimal.Zero, err
	}

	if !market.ExchangeRate.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}

	value := number.Round(collateralAmount.Div(market.ExchangeRate), false)
	assetAmount := number.Round(value.Mul(decimal.New(1, 0).Sub(pool.Premium)), false)
	if assetAmount.GreaterThan(pool.Amount) {
		assetAmount = pool.Amount
	}
	if !assetAmount.IsPositive() {
		return decimal.Zero, core.ErrInsufficientBalance
	}

	version := pool.Version
	pool.Amount = pool.Amount.Sub(assetAmount)
	pool.Version++
	updated := tx.Update().Model(Pool{}).
		Where("id=? and version=?", pool.ID, version).
		Updates(map[string]interface{}{"amount": pool.Amount, "version": pool.Version})
	if updated.Error != nil {
		return decimal.Zero, updated.Error
	}
	if updated.RowsAffected == 0 {
		return decimal.Zero, db.ErrOptimisticLock
	}

	share, err := q.vault.ToShare(ctx, market.AssetID, assetAmount, false)
	if err != nil {
		return decimal.Zero, err
	}

	if err := q.vault.Transfer(ctx, tx, holder, market.VaultHolder(), market.AssetID, share); err != nil {
		return decimal.Zero, err
	}

	return assetAmount, nil
}

// Fund adds bidder money to a premium tier, depositing the tokens with
// the vault under the queue holder.
func (q *Queue) Fund(ctx context.Context, tx *db.DB, market *core.Market, premium, amount decimal.Decimal) error {
	if !amount.IsPositive() || premium.IsNegative() || premium.GreaterThanOrEqual(decimal.New(1, 0)) {
		return core.ErrInvalidAmount
	}

	if _, err := q.vault.Deposit(ctx, tx, holder, market.AssetID, amount); err != nil {
		return err
	}

	var pool Pool
	err := tx.Update().
		Where("asset_id=? and premium=?", market.AssetID, premium).
		First(&pool).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}

		pool = Pool{AssetID: market.AssetID, Premium: premium, Amount: amount}
		return tx.Update().Create(&pool).Error
	}

	version := pool.Version
	pool.Amount = pool.Amount.Add(amount)
	pool.Version++
	updated := tx.Update().Model(Pool{}).
		Where("id=? and version=?", pool.ID, version).
		Updates(map[string]interface{}{"amount": pool.Amount, "version": pool.Version})
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
