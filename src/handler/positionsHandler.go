package handler

import (
	"net/http"
	"strconv"

	"binarytrader/src/view"
)

const defaultWindow = 50

// ActivePositionsHandler lists the open positions with their live state.
func ActivePositionsHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, view.ActivePositions(t.ActiveOrders()))
	}
}

// CompletedPositionsHandler returns one window of the loaded history.
// Supports offset and limit query params.
func CompletedPositionsHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, ok := intParam(w, r, "offset", 0)
		if !ok {
			return
		}
		limit, ok := intParam(w, r, "limit", defaultWindow)
		if !ok {
			return
		}

		snap := t.Snapshot()
		win := view.Slice(view.CompletedPositions(snap.Completed), offset, limit, snap.CompletedTotal)
		win.HasMore = win.HasMore || snap.HasMore
		writeJSON(w, http.StatusOK, win)
	}
}

// LoadMoreHandler fetches the next history page from the backend.
func LoadMoreHandler(t Trader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := t.LoadMoreCompletedOrders(r.Context())
		snap := t.Snapshot()
		writeResult(w, map[string]interface{}{
			"loaded":  len(snap.Completed),
			"total":   snap.CompletedTotal,
			"hasMore": snap.HasMore,
		}, err)
	}
}

func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return v, true
}
