package deposit

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"

	"singular/core"
)

type depositStore struct {
	db *db.DB
}

// New new deposit store
func New(db *db.DB) core.IDepositStore {
	return &depositStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Deposit{})
		if err := tx.AutoMigrate(core.Deposit{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *depositStore) view(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}
	return s.db.View()
}

func (s *depositStore) Find(ctx context.Context, tx *db.DB, userID, assetID string) (*core.Deposit, error) {
	var deposit core.Deposit
	if err := s.view(tx).Where("user_id=? and asset_id=?", userID, assetID).First(&deposit).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Deposit{UserID: userID, AssetID: assetID}, nil
		}
		return nil, err
	}

	return &deposit, nil
}

func (s *depositStore) FindByMarket(ctx context.Context, assetID string) ([]*core.Deposit, error) {
	var deposits []*core.Deposit
	if err := s.db.View().Where("asset_id=?", assetID).Find(&deposits).Error; err != nil {
		return nil, err
	}

	return deposits, nil
}

func (s *depositStore) Save(ctx context.Context, tx *db.DB, deposit *core.Deposit) error {
	if deposit.ID == 0 {
		return tx.Update().Create(deposit).Error
	}

	version := deposit.Version
	deposit.Version++

	updated := tx.Update().Model(core.Deposit{}).
		Where("id=? and version=?", deposit.ID, version).
		Updates(deposit)
	if updated.Error != nil {
		return updated.Error
	}
	if updated.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}
