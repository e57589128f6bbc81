package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"binarytrader/src/binary"
	"binarytrader/src/model"
	"binarytrader/src/view"

	logger "github.com/sirupsen/logrus"
)

// Trader is the part of binary.Store the HTTP layer drives.
type Trader interface {
	Snapshot() binary.Snapshot
	ActiveOrders() []binary.ActiveOrder
	LoadMoreCompletedOrders(ctx context.Context) error
	PlaceOrder(ctx context.Context, in binary.PlaceOrderInput) (model.Order, error)
	CancelOrder(ctx context.Context, id string) (model.CompletedOrder, error)
	CashOut(ctx context.Context, id string) (model.CompletedOrder, error)
	SetTradingMode(ctx context.Context, mode model.TradingMode)
	SetCurrentSymbol(ctx context.Context, symbol string) error
	SettingsView(barrierLevelID, strikeLevelID string) binary.SettingsView
	SetSelection(ctx context.Context, sel binary.Selection)
	RefreshReferenceData(ctx context.Context) error
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeResult maps an action outcome to the result shape. Validation failures
// are the caller's fault, anything else came from the backend.
func writeResult(w http.ResponseWriter, data interface{}, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, view.OK(data))
		return
	}
	status := http.StatusBadGateway
	if binary.IsValidation(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, view.Fail(err))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		logger.WithError(err).Warn("invalid request payload")
		writeJSON(w, http.StatusBadRequest, view.ActionResult{Error: "invalid payload"})
		return false
	}
	return true
}

// Recover turns a panic inside a handler into a failed result.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.WithFields(map[string]interface{}{
					"path":  r.URL.Path,
					"panic": v,
				}).Error("handler panicked")
				writeJSON(w, http.StatusInternalServerError, view.Recovered(v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
