package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IOracle price feed. Get returns ok=false when the feed is unavailable;
// callers fall back to the market's cached rate rather than blocking.
type IOracle interface {
	Get(ctx context.Context, market *Market) (rate decimal.Decimal, ok bool)
}
