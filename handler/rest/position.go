package rest

import (
	"net/http"

	"github.com/go-chi/chi"

	"singular/core"
	"singular/handler/render"
	"singular/handler/views"
)

func positionHandler(marketStr core.IMarketStore, positionStr core.IPositionStore, positionSrv core.IPositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, err := marketStr.Find(ctx, nil, chi.URLParam(r, "asset"))
		if err != nil {
			render.NotFoundRequest(w, core.ErrMarketNotFound)
			return
		}

		position, err := positionStr.Find(ctx, nil, chi.URLParam(r, "user"), market.AssetID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		value, err := positionSrv.CollateralValue(ctx, market, position, market.ExchangeRate)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		solvent, err := positionSrv.IsSolvent(ctx, market, position, market.ExchangeRate)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, &views.Position{
			Position:        *position,
			BorrowAmount:    positionSrv.BorrowAmount(market, position),
			CollateralValue: value,
			Solvent:         solvent,
		})
	}
}

func depositHandler(marketStr core.IMarketStore, depositStr core.IDepositStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, err := marketStr.Find(ctx, nil, chi.URLParam(r, "asset"))
		if err != nil {
			render.NotFoundRequest(w, core.ErrMarketNotFound)
			return
		}

		deposit, err := depositStr.Find(ctx, nil, chi.URLParam(r, "user"), market.AssetID)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, deposit)
	}
}
