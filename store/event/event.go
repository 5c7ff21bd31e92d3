package event

import (
	"context"

	"github.com/fox-one/pkg/store/db"

	"singular/core"
)

type eventStore struct {
	db *db.DB
}

// New new liquidation event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LiquidationEvent{})
		if err := tx.AutoMigrate(core.LiquidationEvent{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, event *core.LiquidationEvent) error {
	return tx.Update().Where("trace_id=?", event.TraceID).FirstOrCreate(event).Error
}

func (s *eventStore) FindByMarket(ctx context.Context, assetID string, limit int) ([]*core.LiquidationEvent, error) {
	var events []*core.LiquidationEvent
	if err := s.db.View().
		Where("asset_id=?", assetID).
		Order("id desc").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
