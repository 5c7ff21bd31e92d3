package cmd

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// pays accumulated protocol fees out to the configured fee recipient
var withdrawFeesCmd = &cobra.Command{
	Use:   "withdraw-fees",
	Short: "withdraw accumulated protocol fees of a market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		assetID, _ := cmd.Flags().GetString("asset")
		recipient, _ := cmd.Flags().GetString("recipient")
		if recipient == "" {
			recipient = cfg.App.FeeRecipient
		}
		if assetID == "" || recipient == "" {
			cmd.PrintErrln("asset and recipient are required")
			return
		}

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		borrowSrv := provideBorrowService(database)

		market, err := marketStore.Find(ctx, nil, assetID)
		if err != nil {
			cmd.PrintErrln("find market error:", err)
			return
		}

		err = database.Tx(func(tx *db.DB) error {
			amount, err := borrowSrv.WithdrawFees(ctx, tx, market, recipient)
			if err != nil {
				return err
			}

			cmd.Println("withdrew", amount, market.Symbol, "to", recipient)
			return marketStore.Update(ctx, tx, market)
		})
		if err != nil {
			cmd.PrintErrln("withdraw fees error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(withdrawFeesCmd)

	withdrawFeesCmd.Flags().String("asset", "", "market asset id")
	withdrawFeesCmd.Flags().String("recipient", "", "fee recipient, falls back to config")
}
