package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// Routes mounts the trading API on r.
func Routes(r chi.Router, t Trader) {
	r.Use(Recover)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write failed")
		}
	})

	r.Route("/positions", func(r chi.Router) {
		r.Get("/active", ActivePositionsHandler(t))
		r.Get("/completed", CompletedPositionsHandler(t))
		r.Post("/completed/more", LoadMoreHandler(t))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", PlaceOrderHandler(t))
		r.Post("/{id}/cancel", CancelOrderHandler(t))
		r.Post("/{id}/cashout", CashOutHandler(t))
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", SettingsHandler(t))
		r.Post("/refresh", RefreshSettingsHandler(t))
		r.Post("/selection", SelectionHandler(t))
	})

	r.Post("/mode", TradingModeHandler(t))
	r.Post("/symbol", SymbolHandler(t))
}
