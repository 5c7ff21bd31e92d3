package market

import (
	"context"
	"testing"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/require"

	"singular/core"
	"singular/pkg/number"
)

// stubMarketStore hands out copies of a single backing row, standing in
// for committed database state.
type stubMarketStore struct {
	market *core.Market
	finds  int
}

func (s *stubMarketStore) Create(ctx context.Context, tx *db.DB, market *core.Market) error {
	copied := *market
	s.market = &copied
	return nil
}

func (s *stubMarketStore) Find(ctx context.Context, tx *db.DB, assetID string) (*core.Market, error) {
	s.finds++
	copied := *s.market
	return &copied, nil
}

func (s *stubMarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	copied := *s.market
	return &copied, nil
}

func (s *stubMarketStore) All(ctx context.Context) ([]*core.Market, error) {
	copied := *s.market
	return []*core.Market{&copied}, nil
}

func (s *stubMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	copied := *market
	copied.Version++
	s.market = &copied
	return nil
}

func TestCacheFindIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	inner := &stubMarketStore{market: &core.Market{
		AssetID:            "asset",
		Symbol:             "TEST",
		TotalBorrowElastic: number.Decimal("100"),
		TotalBorrowBase:    number.Decimal("100"),
	}}
	store := Cache(inner, time.Minute)

	m, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)

	// an operation mutates its struct and then fails before Update;
	// the rollback must not leak into later reads
	m.TotalBorrowElastic = number.Decimal("150")
	m.TotalBorrowBase = number.Decimal("150")

	again, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)
	require.True(t, again.TotalBorrowElastic.Equal(number.Decimal("100")))
	require.True(t, again.TotalBorrowBase.Equal(number.Decimal("100")))

	// both reads were served without a second trip to the inner store
	require.Equal(t, 1, inner.finds)
}

func TestCacheFindBySymbolIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	inner := &stubMarketStore{market: &core.Market{
		AssetID:              "asset",
		Symbol:               "TEST",
		TotalCollateralShare: number.Decimal("40"),
	}}
	store := Cache(inner, time.Minute)

	m, err := store.FindBySymbol(ctx, "TEST")
	require.NoError(t, err)
	m.TotalCollateralShare = number.Decimal("0")

	again, err := store.FindBySymbol(ctx, "TEST")
	require.NoError(t, err)
	require.True(t, again.TotalCollateralShare.Equal(number.Decimal("40")))
}

func TestCacheUpdateEvicts(t *testing.T) {
	ctx := context.Background()
	inner := &stubMarketStore{market: &core.Market{
		AssetID:           "asset",
		Symbol:            "TEST",
		TotalAssetElastic: number.Decimal("1000"),
	}}
	store := Cache(inner, time.Minute)

	m, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)

	m.TotalAssetElastic = number.Decimal("1100")
	require.NoError(t, store.Update(ctx, nil, m))

	again, err := store.Find(ctx, nil, "asset")
	require.NoError(t, err)
	require.True(t, again.TotalAssetElastic.Equal(number.Decimal("1100")))
}
