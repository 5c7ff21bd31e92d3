package accrual

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"

	"singular/core"
	"singular/worker"
)

// Worker sweeps every market on a fixed interval so interest keeps
// compounding while no user operation touches the market. Each market
// accrues inside its own transaction.
type Worker struct {
	worker.TickWorker
	db          *db.DB
	marketStore core.IMarketStore
	accrualSrv  core.IAccrualService
}

// New new accrual worker
func New(database *db.DB, marketStore core.IMarketStore, accrualSrv core.IAccrualService, delay time.Duration) *Worker {
	return &Worker{
		TickWorker:  worker.TickWorker{Delay: delay},
		db:          database,
		marketStore: marketStore,
		accrualSrv:  accrualSrv,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accrual")

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	now := time.Now()
	for _, m := range markets {
		market := m
		err := w.db.Tx(func(tx *db.DB) error {
			if err := w.accrualSrv.Accrue(ctx, market, now); err != nil {
				return err
			}

			return w.marketStore.Update(ctx, tx, market)
		})
		if err != nil {
			log.WithField("asset", market.AssetID).Errorln("accrue error:", err)
		}
	}

	return nil
}
