package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"singular/core"
	"singular/pkg/resthttp"
)

// Config oracle config
type Config struct {
	EndPoint string
}

type oracleService struct {
	client *resty.Client
	cache  gcache.Cache
	sf     singleflight.Group
}

// New new price oracle backed by an HTTP feed. Reads are cached briefly
// and deduplicated; any failure reports ok=false and the caller falls
// back to its last known rate.
func New(cfg Config) core.IOracle {
	return &oracleService{
		client: resthttp.NewClient(cfg.EndPoint, 10*time.Second),
		cache:  gcache.New(64).LRU().Build(),
		sf:     singleflight.Group{},
	}
}

func (s *oracleService) Get(ctx context.Context, market *core.Market) (decimal.Decimal, bool) {
	key := fmt.Sprintf("%s/%s", market.CollateralAssetID, market.AssetID)
	if v, err := s.cache.Get(key); err == nil {
		if rate, ok := v.(decimal.Decimal); ok {
			return rate, true
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.fetch(ctx, market)
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("service", "oracle").
			Infoln("price read failed, falling back to cached rate")
		return decimal.Zero, false
	}

	rate := v.(decimal.Decimal)
	_ = s.cache.SetWithExpire(key, rate, 10*time.Second)
	return rate, true
}

func (s *oracleService) fetch(ctx context.Context, market *core.Market) (decimal.Decimal, error) {
	var body struct {
		Price decimal.Decimal `json:"price"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("base", market.CollateralAssetID).
		SetQueryParam("quote", market.AssetID).
		SetResult(&body).
		Get("/price")
	if err != nil {
		return decimal.Zero, err
	}
	if !resp.IsSuccess() {
		return decimal.Zero, fmt.Errorf("oracle: status %s", resp.Status())
	}
	if !body.Price.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}

	return body.Price, nil
}
