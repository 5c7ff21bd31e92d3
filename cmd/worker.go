package cmd

import (
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"singular/worker"
	accrualworker "singular/worker/accrual"
	"singular/worker/pricesync"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "singular job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		marketStore := provideMarketStore(database)

		accrualSrv := provideAccrualService()
		oracle := provideOracle()

		workers := []worker.Worker{
			accrualworker.New(database, marketStore, accrualSrv, 10*time.Second),
			pricesync.New(database, marketStore, oracle, propertyStore, 5*time.Second),
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if err := g.Wait(); err != nil {
			log.WithError(err).Errorln("workers stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
