package market

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"

	"singular/core"
)

// Cache wraps a market store with a short lived read cache. Market rows
// mutate on every accrual so the expiry must stay well below the worker
// interval; writes bust the cached entries immediately. Cached entries
// are copies: callers mutate their own struct, never the cached one, so
// a rolled-back operation can not leak totals into later reads. Reads
// inside a transaction skip the cache entirely.
func Cache(store core.IMarketStore, exp time.Duration) core.IMarketStore {
	return &cacheMarketStore{
		IMarketStore: store,
		cache:        gcache.New(256).LRU().Expiration(exp).Build(),
		sf:           &singleflight.Group{},
	}
}

type cacheMarketStore struct {
	core.IMarketStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func clone(market *core.Market) *core.Market {
	copied := *market
	return &copied
}

func (s *cacheMarketStore) Create(ctx context.Context, tx *db.DB, market *core.Market) error {
	if err := s.IMarketStore.Create(ctx, tx, market); err != nil {
		return err
	}
	s.evict(market)
	return nil
}

func (s *cacheMarketStore) Find(ctx context.Context, tx *db.DB, assetID string) (*core.Market, error) {
	if tx != nil {
		return s.IMarketStore.Find(ctx, tx, assetID)
	}

	key := s.assetKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(*core.Market); ok {
			return clone(market), nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		market, err := s.IMarketStore.Find(ctx, nil, assetID)
		if err != nil {
			return nil, err
		}
		s.cacheMarket(market)
		return market, nil
	})
	if err != nil {
		return nil, err
	}

	return clone(v.(*core.Market)), nil
}

func (s *cacheMarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	key := s.symbolKey(symbol)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(*core.Market); ok {
			return clone(market), nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		market, err := s.IMarketStore.FindBySymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		s.cacheMarket(market)
		return market, nil
	})
	if err != nil {
		return nil, err
	}

	return clone(v.(*core.Market)), nil
}

func (s *cacheMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	if err := s.IMarketStore.Update(ctx, tx, market); err != nil {
		return err
	}
	s.evict(market)
	return nil
}

func (s *cacheMarketStore) cacheMarket(market *core.Market) {
	copied := clone(market)
	s.cache.Set(s.assetKey(market.AssetID), copied)
	s.cache.Set(s.symbolKey(market.Symbol), copied)
}

func (s *cacheMarketStore) evict(market *core.Market) {
	s.cache.Remove(s.assetKey(market.AssetID))
	s.cache.Remove(s.symbolKey(market.Symbol))
}

func (s *cacheMarketStore) assetKey(assetID string) string {
	return fmt.Sprintf("market:asset:%s", assetID)
}

func (s *cacheMarketStore) symbolKey(symbol string) string {
	return fmt.Sprintf("market:symbol:%s", symbol)
}
