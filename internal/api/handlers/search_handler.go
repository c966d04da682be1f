package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

// SearchHandler handles aggregation search requests
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

type searchRequestBody struct {
	Location string   `json:"location,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`
	SortBy   string   `json:"sortBy,omitempty"`
	Debug    bool     `json:"debug,omitempty"`
}

type searchResponseBody struct {
	Success        bool                     `json:"success"`
	CookieSpots    []entities.Venue         `json:"cookieSpots"`
	Viewport       *entities.Viewport       `json:"viewport"`
	FromCache      bool                     `json:"fromCache"`
	SearchMetadata *entities.SearchMetadata `json:"search_metadata"`
	Message        string                   `json:"message,omitempty"`
}

type searchErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Search handles POST /api/cookie-spots/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithJSON(w, http.StatusBadRequest, searchErrorBody{
			Success: false,
			Message: "invalid request body",
			Error:   err.Error(),
		})
		return
	}

	req := &services.SearchRequest{
		Location: body.Location,
		Lat:      body.Lat,
		Lng:      body.Lng,
		Keyword:  body.Keyword,
		SortBy:   body.SortBy,
		Debug:    body.Debug,
	}

	result, err := h.searchService.Search(r.Context(), req)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}

	venues := result.Venues
	if venues == nil {
		venues = []entities.Venue{}
	}

	respondWithJSON(w, http.StatusOK, searchResponseBody{
		Success:        true,
		CookieSpots:    venues,
		Viewport:       result.Viewport,
		FromCache:      result.FromCache,
		SearchMetadata: result.Metadata,
	})
}

func (h *SearchHandler) respondSearchError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "could not fetch results"

	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeValidation):
		status = http.StatusBadRequest
		message = "invalid search request"
	case apperrors.IsType(err, apperrors.ErrorTypeLocationNotFound):
		message = "location not found"
	}

	reason := err.Error()
	if appErr, ok := err.(*apperrors.AppError); ok {
		reason = appErr.Message
	}

	observability.LoggerFromContext(r.Context()).Error().
		Err(err).
		Int("status", status).
		Msg("search request failed")

	respondWithJSON(w, status, searchErrorBody{
		Success: false,
		Message: message,
		Error:   reason,
	})
}
