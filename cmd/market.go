package cmd

import (
	"strings"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"singular/core"
	"singular/pkg/number"
)

var addMarketCmd = &cobra.Command{
	Use:     "add-market",
	Aliases: []string{"am"},
	Short:   "add market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		symbol, _ := cmd.Flags().GetString("symbol")
		assetID, _ := cmd.Flags().GetString("asset")
		collateralID, _ := cmd.Flags().GetString("collateral")
		if symbol == "" || assetID == "" || collateralID == "" {
			cmd.PrintErrln("symbol, asset and collateral are required")
			return
		}

		market := &core.Market{
			AssetID:           assetID,
			CollateralAssetID: collateralID,
			Symbol:            strings.ToUpper(symbol),
			LastAccruedAt:     time.Now(),

			MinimumInterestPerSecond:  number.Decimal(mustFlag(cmd, "min-rate")),
			MaximumInterestPerSecond:  number.Decimal(mustFlag(cmd, "max-rate")),
			StartingInterestPerSecond: number.Decimal(mustFlag(cmd, "start-rate")),
			InterestElasticity:        number.Decimal(mustFlag(cmd, "elasticity")),
			MinimumTargetUtilization:  number.Decimal(mustFlag(cmd, "min-util")),
			MaximumTargetUtilization:  number.Decimal(mustFlag(cmd, "max-util")),

			CollateralizationRate:            number.Decimal(mustFlag(cmd, "cr")),
			LiquidationCollateralizationRate: number.Decimal(mustFlag(cmd, "liq-cr")),
			LiquidationMultiplier:            number.Decimal(mustFlag(cmd, "liq-multiplier")),
			ProtocolFeeRate:                  number.Decimal(mustFlag(cmd, "fee-rate")),
			BorrowOpeningFee:                 number.Decimal(mustFlag(cmd, "opening-fee")),
			MinLiquidatorReward:              number.Decimal(mustFlag(cmd, "min-reward")),
			MaxLiquidatorReward:              number.Decimal(mustFlag(cmd, "max-reward")),
		}
		market.InterestPerSecond = market.StartingInterestPerSecond

		database := provideDatabase()
		defer database.Close()

		marketStore := provideMarketStore(database)
		err := database.Tx(func(tx *db.DB) error {
			return marketStore.Create(ctx, tx, market)
		})
		if err != nil {
			cmd.PrintErrln("create market error:", err)
			return
		}

		cmd.Println("market", market.Symbol, "created")
	},
}

func mustFlag(cmd *cobra.Command, name string) string {
	return cast.ToString(cmd.Flags().Lookup(name).Value)
}

func init() {
	rootCmd.AddCommand(addMarketCmd)

	addMarketCmd.Flags().String("symbol", "", "market symbol")
	addMarketCmd.Flags().String("asset", "", "borrowed asset id")
	addMarketCmd.Flags().String("collateral", "", "collateral asset id")

	addMarketCmd.Flags().String("min-rate", "0", "minimum interest per second")
	addMarketCmd.Flags().String("max-rate", "0.000001", "maximum interest per second")
	addMarketCmd.Flags().String("start-rate", "0.00000008", "starting interest per second")
	addMarketCmd.Flags().String("elasticity", "86400", "interest adjustment window in seconds")
	addMarketCmd.Flags().String("min-util", "0.7", "minimum target utilization")
	addMarketCmd.Flags().String("max-util", "0.8", "maximum target utilization")

	addMarketCmd.Flags().String("cr", "0.75", "collateralization rate")
	addMarketCmd.Flags().String("liq-cr", "0.8", "liquidation collateralization rate")
	addMarketCmd.Flags().String("liq-multiplier", "0.12", "liquidation multiplier")
	addMarketCmd.Flags().String("fee-rate", "0.1", "protocol fee rate")
	addMarketCmd.Flags().String("opening-fee", "0.0005", "borrow opening fee")
	addMarketCmd.Flags().String("min-reward", "0.01", "minimum liquidator reward rate")
	addMarketCmd.Flags().String("max-reward", "0.05", "maximum liquidator reward rate")
}
