package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"singular/core"
	"singular/handler/param"
	"singular/handler/render"
	"singular/pkg/calldata"
)

func actionHandler(dispatcher core.IDispatcher, action core.ActionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string          `json:"user_id"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		body, err := calldata.Encode(params.Amount)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(ctx, w, dispatcher, core.Call{
			Action: action,
			UserID: params.UserID,
			Asset:  chi.URLParam(r, "asset"),
			Body:   body,
		})
	}
}

func leverageHandler(dispatcher core.IDispatcher, action core.ActionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID    string          `json:"user_id"`
			Amount    decimal.Decimal `json:"amount"`
			Swapper   string          `json:"swapper"`
			MinAmount decimal.Decimal `json:"min_amount"`
			SwapData  []byte          `json:"swap_data"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		body, err := calldata.Encode(params.Amount, params.Swapper, params.MinAmount, params.SwapData)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(ctx, w, dispatcher, core.Call{
			Action: action,
			UserID: params.UserID,
			Asset:  chi.URLParam(r, "asset"),
			Body:   body,
		})
	}
}

func liquidateHandler(dispatcher core.IDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID         string            `json:"user_id"`
			Users          []string          `json:"users"`
			MaxBorrowParts []decimal.Decimal `json:"max_borrow_parts"`
			Swapper        string            `json:"swapper"`
			MinAssetAmount decimal.Decimal   `json:"min_asset_amount"`
			SwapData       []byte            `json:"swap_data"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		body, err := calldata.Encode(params.Users, params.MaxBorrowParts, params.Swapper, params.MinAssetAmount, params.SwapData)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		execute(ctx, w, dispatcher, core.Call{
			Action: core.ActionTypeLiquidate,
			UserID: params.UserID,
			Asset:  chi.URLParam(r, "asset"),
			Body:   body,
		})
	}
}

func batchHandler(dispatcher core.IDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Calls        []core.Call `json:"calls"`
			RevertOnFail bool        `json:"revert_on_fail"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if len(params.Calls) == 0 {
			render.BadRequest(w, core.ErrInvalidArgument)
			return
		}

		results, err := dispatcher.Batch(ctx, params.Calls, params.RevertOnFail)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, render.H{"results": results})
	}
}

func execute(ctx context.Context, w http.ResponseWriter, dispatcher core.IDispatcher, call core.Call) {
	if err := dispatcher.Execute(ctx, call); err != nil {
		render.BadRequest(w, err)
		return
	}

	render.JSON(w, render.H{"ok": true})
}
