package handler

import (
	"fmt"
	"net/http"

	"binarytrader/src/binary"
	"binarytrader/src/model"
	"binarytrader/src/view"
)

type selectionPayload struct {
	OrderType      string `json:"orderType"`
	ExpiryMinutes  int    `json:"expiryMinutes"`
	Timeframe      string `json:"timeframe"`
	BarrierLevelID string `json:"barrierLevelId"`
	StrikeLevelID  string `json:"strikeLevelId"`
}

// SettingsHandler returns the enabled products, levels and payout for the current selection.
// barrierLevelId and strikeLevelId query params pick a payout override.
func SettingsHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeResult(w, t.SettingsView(q.Get("barrierLevelId"), q.Get("strikeLevelId")), nil)
	}
}

// RefreshSettingsHandler reloads settings, durations and markets and clears their failure latches.
func RefreshSettingsHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := t.RefreshReferenceData(r.Context()); err != nil {
			writeResult(w, nil, err)
			return
		}
		writeResult(w, t.SettingsView("", ""), nil)
	}
}

// SelectionHandler stores the order form selection.
func SelectionHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload selectionPayload
		if !decodeBody(w, r, &payload) {
			return
		}
		sel := binary.Selection{ExpiryMinutes: payload.ExpiryMinutes, Timeframe: payload.Timeframe}
		if payload.OrderType != "" {
			ot, ok := model.ParseOrderType(payload.OrderType)
			if !ok {
				writeJSON(w, http.StatusBadRequest, view.ActionResult{Error: fmt.Sprintf("unknown order type %q", payload.OrderType)})
				return
			}
			sel.OrderType = ot
		}
		if payload.ExpiryMinutes < 0 {
			writeJSON(w, http.StatusBadRequest, view.ActionResult{Error: "expiryMinutes must not be negative"})
			return
		}
		t.SetSelection(r.Context(), sel)
		writeResult(w, t.SettingsView(payload.BarrierLevelID, payload.StrikeLevelID), nil)
	}
}
