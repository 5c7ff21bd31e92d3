package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"

	"singular/pkg/number"
)

// funds a premium tier of the order-book liquidation queue
var queueFundCmd = &cobra.Command{
	Use:   "queue-fund",
	Short: "fund a bid pool on the liquidation queue",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		assetID, _ := cmd.Flags().GetString("asset")
		premium := number.Decimal(mustFlag(cmd, "premium"))
		amount := number.Decimal(mustFlag(cmd, "amount"))
		if assetID == "" || !amount.IsPositive() {
			cmd.PrintErrln("asset and a positive amount are required")
			return
		}

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		vaultStore := provideVault(database)
		liquidationQueue := provideLiquidationQueue(database, vaultStore)

		market, err := marketStore.Find(ctx, nil, assetID)
		if err != nil {
			cmd.PrintErrln("find market error:", err)
			return
		}

		err = database.Tx(func(tx *db.DB) error {
			return liquidationQueue.Fund(ctx, tx, market, premium, amount)
		})
		if err != nil {
			cmd.PrintErrln("fund queue error:", err)
			return
		}

		cmd.Println("funded", amount, "at premium", premium)
	},
}

func init() {
	rootCmd.AddCommand(queueFundCmd)

	queueFundCmd.Flags().String("asset", "", "market asset id")
	queueFundCmd.Flags().String("premium", "0.05", "bid premium, fraction below 1")
	queueFundCmd.Flags().String("amount", "0", "asset amount to commit")
}
