package liquidation

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/pkg/calldata"
)

// Engine orchestrates batch liquidations over one market. A batch runs
// either through the order-book queue (when a standing bid can fund the
// whole batch) or through the closed swap path, user by user. Every local
// debit lands before any vault, swapper or queue call.
type Engine struct {
	markets   core.IMarketStore
	positions core.IPositionStore
	events    core.IEventStore
	vault     core.IVault
	oracle    core.IOracle
	accrual   core.IAccrualService
	queue     core.ILiquidationQueue // nil when no order-book venue is configured
	registry  *core.SwapperRegistry
	swappers  map[string]core.ISwapper
}

// New new liquidation engine. queue may be nil.
func New(
	markets core.IMarketStore,
	positions core.IPositionStore,
	events core.IEventStore,
	vault core.IVault,
	oracle core.IOracle,
	accrual core.IAccrualService,
	queue core.ILiquidationQueue,
	registry *core.SwapperRegistry,
	swappers map[string]core.ISwapper,
) *Engine {
	return &Engine{
		markets:   markets,
		positions: positions,
		events:    events,
		vault:     vault,
		oracle:    oracle,
		accrual:   accrual,
		queue:     queue,
		registry:  registry,
		swappers:  swappers,
	}
}

// Args liquidate call payload
type Args struct {
	Users          []string          `json:"users"`
	MaxBorrowParts []decimal.Decimal `json:"max_borrow_parts"`
	Swapper        string            `json:"swapper"`
	// MinAssetAmount guards the closed-path swap output. Zero accepts any output.
	MinAssetAmount decimal.Decimal `json:"min_asset_amount"`
	SwapData       []byte          `json:"swap_data"`
}

// Execute implements core.Module for the liquidation category.
func (e *Engine) Execute(ctx context.Context, tx *db.DB, call core.Call) error {
	var args Args
	if err := calldata.Scan(call.Body, &args.Users, &args.MaxBorrowParts, &args.Swapper, &args.MinAssetAmount, &args.SwapData); err != nil {
		return core.ErrInvalidArgument
	}

	market, err := e.markets.Find(ctx, tx, call.Asset)
	if err != nil {
		return core.ErrMarketNotFound
	}

	if err := e.Liquidate(ctx, tx, market, call.UserID, args); err != nil {
		return err
	}

	return e.markets.Update(ctx, tx, market)
}

// Liquidate runs one batch. Input checks reject before any mutation; a
// batch in which no user qualifies fails with ErrNoLiquidatableUser so the
// surrounding transaction rolls everything back.
func (e *Engine) Liquidate(ctx context.Context, tx *db.DB, market *core.Market, liquidator string, args Args) error {
	log := logger.FromContext(ctx).WithField("service", "liquidation")

	if len(args.Users) == 0 || len(args.Users) != len(args.MaxBorrowParts) {
		return core.ErrLengthMismatch
	}

	var swapper core.ISwapper
	if args.Swapper != "" {
		if !e.registry.Allowed(args.Swapper) {
			return core.ErrSwapperNotAllowed
		}
		swapper = e.swappers[args.Swapper]
		if swapper == nil {
			return core.ErrSwapperNotAllowed
		}
	}

	// refresh the price first; a failed read falls back to the cached
	// rate because a liquidation that can not run is worse than one that
	// runs on a stale price
	if rate, ok := e.oracle.Get(ctx, market); ok {
		market.ExchangeRate = rate
	}
	if !market.ExchangeRate.IsPositive() {
		return core.ErrInvalidPrice
	}

	if err := e.accrual.Accrue(ctx, market, time.Now()); err != nil {
		return err
	}

	if e.queue != nil {
		sum := decimal.Zero
		for _, p := range args.MaxBorrowParts {
			sum = sum.Add(p)
		}
		wanted := market.TotalBorrow().ToElastic(sum, true)

		pool, available, err := e.queue.NextAvailableBidPool(ctx, market)
		if err != nil {
			return err
		}
		if available && pool.Amount.GreaterThanOrEqual(wanted) {
			log.Debugf("bid pool %d covers %s, taking order-book path", pool.ID, wanted)
			return e.orderBookLiquidation(ctx, tx, market, liquidator, args)
		}
	}

	if swapper == nil {
		return core.ErrSwapperNotAllowed
	}

	return e.closedLiquidation(ctx, tx, market, liquidator, swapper, args)
}
