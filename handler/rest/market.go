package rest

import (
	"net/http"

	"github.com/go-chi/chi"

	"singular/core"
	"singular/handler/render"
	"singular/handler/views"
	"singular/internal/interest"
)

func allMarketsHandler(marketStr core.IMarketStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, err := marketStr.All(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		marketViews := make([]*views.Market, 0, len(markets))
		for _, m := range markets {
			marketViews = append(marketViews, marketView(m))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(marketStr core.IMarketStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, err := marketStr.Find(ctx, nil, chi.URLParam(r, "asset"))
		if err != nil {
			render.NotFoundRequest(w, core.ErrMarketNotFound)
			return
		}

		render.JSON(w, marketView(market))
	}
}

func eventsHandler(eventStr core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		events, err := eventStr.FindByMarket(ctx, chi.URLParam(r, "asset"), 100)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, events)
	}
}

func marketView(market *core.Market) *views.Market {
	return &views.Market{
		Market:      *market,
		Utilization: interest.Utilization(market.TotalBorrowElastic, market.TotalAssetElastic),
		IdleAmount:  market.IdleAssetAmount(),
	}
}
