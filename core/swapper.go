package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// ISwapper external swap venue. Swap sells shareIn of inputAssetID held by
// the swapper's vault account and credits the output asset to recipient.
// minAmountOut is the caller's slippage guard; a zero guard accepts any
// output and is the caller's own risk.
type ISwapper interface {
	Name() string
	Swap(ctx context.Context, tx *db.DB, inputAssetID, outputAssetID string, shareIn, minAmountOut decimal.Decimal, recipient string, data []byte) (amountOut, shareOut decimal.Decimal, err error)
}

// SwapperRegistry allow-list of swap venues, fixed at boot from config.
// Funds never move toward a venue that is not listed.
type SwapperRegistry struct {
	allowed map[string]bool
}

func NewSwapperRegistry(names []string) *SwapperRegistry {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	return &SwapperRegistry{allowed: allowed}
}

func (r *SwapperRegistry) Allowed(name string) bool {
	return r.allowed[name]
}
