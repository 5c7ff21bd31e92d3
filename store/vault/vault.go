package vault

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/number"
	"singular/pkg/rebase"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store. Reads go through s.db, mutations through the
// caller's tx so vault moves commit or revert with the rest of the
// operation.
func New(db *db.DB) core.IVault {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().Model(core.VaultAsset{}).AutoMigrate(core.VaultAsset{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(core.VaultBalance{}).AutoMigrate(core.VaultBalance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) findAsset(tx *db.DB, assetID string) (*core.VaultAsset, error) {
	var asset core.VaultAsset
	if err := tx.View().Where("asset_id=?", assetID).First(&asset).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.VaultAsset{AssetID: assetID}, nil
		}
		return nil, err
	}

	return &asset, nil
}

func (s *vaultStore) findBalance(tx *db.DB, holder, assetID string) (*core.VaultBalance, error) {
	var balance core.VaultBalance
	if err := tx.View().Where("holder=? and asset_id=?", holder, assetID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.VaultBalance{Holder: holder, AssetID: assetID}, nil
		}
		return nil, err
	}

	return &balance, nil
}

func (s *vaultStore) saveAsset(tx *db.DB, asset *core.VaultAsset) error {
	if asset.ID == 0 {
		return tx.Update().Create(asset).Error
	}

	version := asset.Version
	asset.Version++

	updated := tx.Update().Model(core.VaultAsset{}).
		Where("id=? and version=?", asset.ID, version).
		Updates(asset)
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *vaultStore) saveBalance(tx *db.DB, balance *core.VaultBalance) error {
	if balance.ID == 0 {
		return tx.Update().Create(balance).Error
	}

	version := balance.Version
	balance.Version++

	updated := tx.Update().Model(core.VaultBalance{}).
		Where("id=? and version=?", balance.ID, version).
		Updates(balance)
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *vaultStore) rebaseOf(asset *core.VaultAsset) rebase.Rebase {
	return rebase.Rebase{Elastic: asset.TotalAmount, Base: asset.TotalShare}
}

func (s *vaultStore) ToShare(ctx context.Context, assetID string, amount decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	asset, err := s.findAsset(s.db, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return s.rebaseOf(asset).ToBase(amount, roundUp), nil
}

func (s *vaultStore) ToAmount(ctx context.Context, assetID string, share decimal.Decimal, roundUp bool) (decimal.Decimal, error) {
	asset, err := s.findAsset(s.db, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return s.rebaseOf(asset).ToElastic(share, roundUp), nil
}

func (s *vaultStore) BalanceOf(ctx context.Context, holder, assetID string) (decimal.Decimal, error) {
	balance, err := s.findBalance(s.db, holder, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Share, nil
}

func (s *vaultStore) Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, share decimal.Decimal) error {
	if !share.IsPositive() {
		return core.ErrInvalidAmount
	}

	source, err := s.findBalance(tx, from, assetID)
	if err != nil {
		return err
	}

	if source.Share.LessThan(share) {
		return core.ErrInsufficientBalance
	}

	target, err := s.findBalance(tx, to, assetID)
	if err != nil {
		return err
	}

	source.Share = source.Share.Sub(share)
	target.Share = target.Share.Add(share)

	if err := s.saveBalance(tx, source); err != nil {
		return err
	}

	return s.saveBalance(tx, target)
}

func (s *vaultStore) Deposit(ctx context.Context, tx *db.DB, to, assetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	asset, err := s.findAsset(tx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	total, share := s.rebaseOf(asset).Add(number.Round(amount, false), false)
	asset.TotalAmount = total.Elastic
	asset.TotalShare = total.Base

	if err := s.saveAsset(tx, asset); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.findBalance(tx, to, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	balance.Share = balance.Share.Add(share)
	if err := s.saveBalance(tx, balance); err != nil {
		return decimal.Zero, err
	}

	return share, nil
}

func (s *vaultStore) Withdraw(ctx context.Context, tx *db.DB, from, assetID string, share decimal.Decimal) (decimal.Decimal, error) {
	if !share.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	balance, err := s.findBalance(tx, from, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if balance.Share.LessThan(share) {
		return decimal.Zero, core.ErrInsufficientBalance
	}

	asset, err := s.findAsset(tx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	total, amount, err := s.rebaseOf(asset).Sub(share, false)
	if err != nil {
		return decimal.Zero, err
	}

	asset.TotalAmount = total.Elastic
	asset.TotalShare = total.Base

	if err := s.saveAsset(tx, asset); err != nil {
		return decimal.Zero, err
	}

	balance.Share = balance.Share.Sub(share)
	if err := s.saveBalance(tx, balance); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}
