package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

// VenueHandler handles CRUD requests for persisted venues
type VenueHandler struct {
	venueService *services.VenueService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(venueService *services.VenueService) *VenueHandler {
	return &VenueHandler{
		venueService: venueService,
	}
}

// ListVenues handles GET /api/cookie-spots
func (h *VenueHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	filter := repositories.VenueFilter{
		City:       query.Get("city"),
		CookieType: query.Get("cookieType"),
		Limit:      limit,
		Offset:     offset,
	}

	venues, err := h.venueService.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list cookie spots")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cookieSpots": venues,
		"count":       len(venues),
	})
}

// SearchVenues handles GET /api/cookie-spots/search
func (h *VenueHandler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	lat, _ := strconv.ParseFloat(query.Get("lat"), 64)
	lng, _ := strconv.ParseFloat(query.Get("lng"), 64)
	radiusKm, _ := strconv.ParseFloat(query.Get("radiusKm"), 64)

	venues, err := h.venueService.Search(r.Context(), repositories.VenueSearchParams{
		Query:     query.Get("q"),
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radiusKm,
		Limit:     limit,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to search cookie spots")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cookieSpots": venues,
		"count":       len(venues),
	})
}

// GetVenue handles GET /api/cookie-spots/{id}
func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("id")
	if venueID == "" {
		respondWithError(w, http.StatusBadRequest, "cookie spot ID is required")
		return
	}

	venue, err := h.venueService.GetByID(r.Context(), venueID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "cookie spot not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, venue)
}

// CreateVenue handles POST /api/cookie-spots
func (h *VenueHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var venue entities.Venue
	if err := json.NewDecoder(r.Body).Decode(&venue); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if venue.Name == "" || venue.Address == "" {
		respondWithError(w, http.StatusBadRequest, "name and address are required")
		return
	}
	if venue.Hours == nil {
		venue.Hours = entities.UnknownHours()
	}

	if err := h.venueService.Create(r.Context(), &venue); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create cookie spot")
		return
	}

	respondWithJSON(w, http.StatusCreated, venue)
}

// UpdateVenue handles PATCH /api/cookie-spots/{id}
func (h *VenueHandler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("id")
	if venueID == "" {
		respondWithError(w, http.StatusBadRequest, "cookie spot ID is required")
		return
	}

	existing, err := h.venueService.GetByID(r.Context(), venueID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "cookie spot not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	existing.ID = venueID

	if err := h.venueService.Update(r.Context(), existing); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to update cookie spot")
		return
	}

	respondWithJSON(w, http.StatusOK, existing)
}

// DeleteVenue handles DELETE /api/cookie-spots/{id}
func (h *VenueHandler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("id")
	if venueID == "" {
		respondWithError(w, http.StatusBadRequest, "cookie spot ID is required")
		return
	}

	if err := h.venueService.Delete(r.Context(), venueID); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "cookie spot not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to delete cookie spot")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
