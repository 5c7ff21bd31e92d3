package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"singular/core"
	"singular/handler/render"
)

// Handle handle rest api request
func Handle(
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	depositStore core.IDepositStore,
	eventStore core.IEventStore,
	positionService core.IPositionService,
	dispatcher core.IDispatcher,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets/all", allMarketsHandler(marketStore))
	router.Get("/markets/{asset}", marketHandler(marketStore))
	router.Get("/markets/{asset}/events", eventsHandler(eventStore))
	router.Get("/markets/{asset}/positions/{user}", positionHandler(marketStore, positionStore, positionService))
	router.Get("/markets/{asset}/deposits/{user}", depositHandler(marketStore, depositStore))

	router.Post("/markets/{asset}/borrow", actionHandler(dispatcher, core.ActionTypeBorrow))
	router.Post("/markets/{asset}/repay", actionHandler(dispatcher, core.ActionTypeRepay))
	router.Post("/markets/{asset}/collaterals/add", actionHandler(dispatcher, core.ActionTypeAddCollateral))
	router.Post("/markets/{asset}/collaterals/remove", actionHandler(dispatcher, core.ActionTypeRemoveCollateral))
	router.Post("/markets/{asset}/assets/add", actionHandler(dispatcher, core.ActionTypeAddAsset))
	router.Post("/markets/{asset}/assets/remove", actionHandler(dispatcher, core.ActionTypeRemoveAsset))
	router.Post("/markets/{asset}/leverage/up", leverageHandler(dispatcher, core.ActionTypeLeverUp))
	router.Post("/markets/{asset}/leverage/down", leverageHandler(dispatcher, core.ActionTypeLeverDown))
	router.Post("/markets/{asset}/liquidate", liquidateHandler(dispatcher))
	router.Post("/execute", batchHandler(dispatcher))

	return router
}
