package pricesync

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"

	"singular/core"
	"singular/worker"
)

const checkpointKey = "price_sync_checkpoint"

// Worker refreshes every market's cached exchange rate from the oracle.
// The cached rate is what solvency checks read between liquidations, so
// the sweep runs tighter than the accrual sweep.
type Worker struct {
	worker.TickWorker
	db          *db.DB
	marketStore core.IMarketStore
	oracle      core.IOracle
	property    property.Store
}

// New new price sync worker
func New(database *db.DB, marketStore core.IMarketStore, oracle core.IOracle, propertyStore property.Store, delay time.Duration) *Worker {
	return &Worker{
		TickWorker:  worker.TickWorker{Delay: delay},
		db:          database,
		marketStore: marketStore,
		oracle:      oracle,
		property:    propertyStore,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	for _, m := range markets {
		market := m

		rate, ok := w.oracle.Get(ctx, market)
		if !ok {
			log.WithField("asset", market.AssetID).Infoln("oracle unavailable, keeping cached rate")
			continue
		}

		if rate.Equal(market.ExchangeRate) {
			continue
		}

		market.ExchangeRate = rate
		err := w.db.Tx(func(tx *db.DB) error {
			return w.marketStore.Update(ctx, tx, market)
		})
		if err != nil {
			log.WithField("asset", market.AssetID).Errorln("update market error:", err)
		}
	}

	if err := w.property.Save(ctx, checkpointKey, time.Now().Unix()); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
	}

	return nil
}
