package cmd

import (
	"time"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/service/accrual"
	borrowservice "singular/service/borrow"
	collateralservice "singular/service/collateral"
	"singular/service/dispatcher"
	leverageservice "singular/service/leverage"
	liquidationservice "singular/service/liquidation"
	oracleservice "singular/service/oracle"
	positionservice "singular/service/position"
	swapperservice "singular/service/swapper"
	"singular/store/deposit"
	"singular/store/event"
	"singular/store/market"
	"singular/store/position"
	"singular/store/queue"
	"singular/store/vault"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.Cache(market.New(db), time.Second)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideDepositStore(db *db.DB) core.IDepositStore {
	return deposit.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func provideVault(db *db.DB) core.IVault {
	return vault.New(db)
}

func provideLiquidationQueue(db *db.DB, vault core.IVault) *queue.Queue {
	return queue.New(db, vault)
}

// ------------------service------------------------------------

func provideAccrualService() core.IAccrualService {
	return accrual.New()
}

func provideOracle() core.IOracle {
	return oracleservice.New(oracleservice.Config{
		EndPoint: cfg.PriceOracle.EndPoint,
	})
}

func providePositionService(positions core.IPositionStore, vault core.IVault) core.IPositionService {
	return positionservice.New(positions, vault)
}

func provideSwapperRegistry() *core.SwapperRegistry {
	return core.NewSwapperRegistry(cfg.Swappers)
}

func provideSwappers(markets core.IMarketStore, vault core.IVault) map[string]core.ISwapper {
	swappers := make(map[string]core.ISwapper, len(cfg.Swappers))
	for _, name := range cfg.Swappers {
		swappers[name] = swapperservice.NewDirect(name, decimal.New(3, -3), markets, vault)
	}

	return swappers
}

func provideBorrowService(database *db.DB) *borrowservice.Service {
	marketStore := provideMarketStore(database)
	positionStore := providePositionStore(database)
	depositStore := provideDepositStore(database)
	vaultStore := provideVault(database)

	return borrowservice.New(
		marketStore,
		positionStore,
		depositStore,
		providePositionService(positionStore, vaultStore),
		provideAccrualService(),
		provideOracle(),
		vaultStore,
	)
}

func provideDispatcher(database *db.DB) core.IDispatcher {
	marketStore := provideMarketStore(database)
	positionStore := providePositionStore(database)
	depositStore := provideDepositStore(database)
	eventStore := provideEventStore(database)
	vaultStore := provideVault(database)

	accrualSrv := provideAccrualService()
	oracle := provideOracle()
	positionSrv := providePositionService(positionStore, vaultStore)
	registry := provideSwapperRegistry()
	swappers := provideSwappers(marketStore, vaultStore)
	liquidationQueue := provideLiquidationQueue(database, vaultStore)

	modules := map[core.ModuleType]core.Module{
		core.ModuleTypeBorrow: borrowservice.New(
			marketStore, positionStore, depositStore, positionSrv, accrualSrv, oracle, vaultStore,
		),
		core.ModuleTypeCollateral: collateralservice.New(
			marketStore, positionStore, positionSrv, accrualSrv, oracle, vaultStore,
		),
		core.ModuleTypeLiquidation: liquidationservice.New(
			marketStore, positionStore, eventStore, vaultStore, oracle, accrualSrv, liquidationQueue, registry, swappers,
		),
		core.ModuleTypeLeverage: leverageservice.New(
			marketStore, positionStore, positionSrv, accrualSrv, oracle, vaultStore, registry, swappers,
		),
	}

	return dispatcher.New(database, modules)
}
