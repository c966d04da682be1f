package routes

import (
	"net/http"

	"github.com/r1chc/Cookie-Spots-sub000/internal/api/handlers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/middleware"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler    *handlers.SearchHandler
	venueHandler     *handlers.VenueHandler
	analyticsHandler *handlers.AnalyticsHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	venueHandler *handlers.VenueHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		searchHandler:    searchHandler,
		venueHandler:     venueHandler,
		analyticsHandler: analyticsHandler,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Aggregation search endpoint
	r.mux.HandleFunc("POST /api/cookie-spots/search", r.searchHandler.Search)

	// Venue CRUD endpoints
	if r.venueHandler != nil {
		r.mux.HandleFunc("GET /api/cookie-spots", r.venueHandler.ListVenues)
		r.mux.HandleFunc("GET /api/cookie-spots/search", r.venueHandler.SearchVenues)
		r.mux.HandleFunc("POST /api/cookie-spots", r.venueHandler.CreateVenue)
		r.mux.HandleFunc("GET /api/cookie-spots/{id}", r.venueHandler.GetVenue)
		r.mux.HandleFunc("PATCH /api/cookie-spots/{id}", r.venueHandler.UpdateVenue)
		r.mux.HandleFunc("DELETE /api/cookie-spots/{id}", r.venueHandler.DeleteVenue)
	}

	// Analytics endpoints
	if r.analyticsHandler != nil {
		r.mux.HandleFunc("GET /api/analytics/zero-result-queries", r.analyticsHandler.GetZeroResultQueries)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
