package presentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"watt-matters/internal/history"
)

// DashboardHandler serves the live energy view: latest point plus today's
// running usage.
type DashboardHandler struct {
	adapter *Adapter
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(adapter *Adapter) *DashboardHandler {
	return &DashboardHandler{adapter: adapter}
}

// ServeHTTP handles GET /api/v1/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := h.adapter.Snapshot()
	writeJSON(w, map[string]any{
		"latest":       snap.Latest,
		"today":        snap.Today,
		"refreshed_at": snap.RefreshedAt,
	})
}

// InsightsHandler serves the week and month window summaries.
type InsightsHandler struct {
	adapter *Adapter
}

// NewInsightsHandler constructs an InsightsHandler.
func NewInsightsHandler(adapter *Adapter) *InsightsHandler {
	return &InsightsHandler{adapter: adapter}
}

// ServeHTTP handles GET /api/v1/insights.
func (h *InsightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap := h.adapter.Snapshot()
	writeJSON(w, map[string]any{
		"week":         snap.Week,
		"month":        snap.Month,
		"refreshed_at": snap.RefreshedAt,
	})
}

// HistoryHandler serves per-day energy rollups on demand.
type HistoryHandler struct {
	rollup      HistoryReader
	defaultDays int
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(rollup HistoryReader) *HistoryHandler {
	return &HistoryHandler{rollup: rollup, defaultDays: defaultHistoryDays}
}

// ServeHTTP handles GET /api/v1/history?days=n. Thin history is a normal
// state and renders as an empty result, not an error.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	days := h.defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	rows, err := h.rollup.RecentDays(r.Context(), days)
	if err != nil {
		if errors.Is(err, history.ErrInsufficientHistory) {
			writeJSON(w, map[string]any{"days": days, "rows": []history.DayUsage{}, "no_data": true})
			return
		}
		http.Error(w, "history query error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"days": days, "rows": rows})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
