package handler

import (
	"net/http"

	"binarytrader/src/binary"
	"binarytrader/src/view"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// PlaceOrderHandler submits one order. The body is a binary.PlaceOrderInput.
func PlaceOrderHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in binary.PlaceOrderInput
		if !decodeBody(w, r, &in) {
			return
		}
		order, err := t.PlaceOrder(r.Context(), in)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"type": in.Type,
				"side": in.Side,
			}).WithError(err).Warn("order placement failed")
			writeResult(w, nil, err)
			return
		}
		writeResult(w, order, nil)
	}
}

func CancelOrderHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done, err := t.CancelOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeResult(w, nil, err)
			return
		}
		writeResult(w, view.NewCompletedPosition(done), nil)
	}
}

func CashOutHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done, err := t.CashOut(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeResult(w, nil, err)
			return
		}
		writeResult(w, view.NewCompletedPosition(done), nil)
	}
}
