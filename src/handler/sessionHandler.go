package handler

import (
	"net/http"
	"strings"

	"binarytrader/src/model"
)

type modePayload struct {
	Mode string `json:"mode"`
}

type symbolPayload struct {
	Symbol string `json:"symbol"`
}

// TradingModeHandler switches between demo and real balances.
func TradingModeHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload modePayload
		if !decodeBody(w, r, &payload) {
			return
		}
		mode := model.ParseTradingMode(payload.Mode)
		t.SetTradingMode(r.Context(), mode)
		writeResult(w, map[string]interface{}{"mode": mode}, nil)
	}
}

// SymbolHandler changes the traded symbol and reloads its orders.
func SymbolHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload symbolPayload
		if !decodeBody(w, r, &payload) {
			return
		}
		symbol := strings.TrimSpace(payload.Symbol)
		if err := t.SetCurrentSymbol(r.Context(), symbol); err != nil {
			writeResult(w, nil, err)
			return
		}
		writeResult(w, map[string]interface{}{"symbol": t.Snapshot().Symbol}, nil)
	}
}
