package handlers

import (
	"net/http"
	"strconv"

	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
)

// AnalyticsHandler exposes search analytics reports
type AnalyticsHandler struct {
	analyticsService *services.SearchAnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.SearchAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetZeroResultQueries handles GET /api/analytics/zero-result-queries
func (h *AnalyticsHandler) GetZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.analyticsService.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to get zero result queries")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": events,
		"count":   len(events),
	})
}
