package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// BidPool a standing pool of pre-committed bidder funds on the external
// order-book liquidation queue.
type BidPool struct {
	ID     uint64          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// ILiquidationQueue optional order-book liquidation venue. When no queue is
// configured the engine always takes the closed path. The queue's own
// bid matching is external; the core only hands it seized collateral and
// takes back asset.
type ILiquidationQueue interface {
	// Holder is the queue's vault account; seized collateral is
	// transferred there before bids execute.
	Holder() string
	// NextAvailableBidPool returns available=false when no standing bid
	// can fund a liquidation right now.
	NextAvailableBidPool(ctx context.Context, market *Market) (pool BidPool, available bool, err error)
	// ExecuteBids sells collateralShare against the standing bids and
	// returns the asset amount paid back to the market.
	ExecuteBids(ctx context.Context, tx *db.DB, market *Market, collateralShare decimal.Decimal, swapData []byte) (assetAmount decimal.Decimal, err error)
}
