package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/cache"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/handlers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
)

type MockPlaceSearchProvider struct {
	mock.Mock
}

func (m *MockPlaceSearchProvider) Geocode(ctx context.Context, location string) ([]providers.GeocodeCandidate, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.GeocodeCandidate), args.Error(1)
}

func (m *MockPlaceSearchProvider) SearchNearby(ctx context.Context, center entities.LatLng, radiusMeters float64, categories []string, maxResults int) ([]providers.PlaceResult, error) {
	args := m.Called(ctx, center, radiusMeters, categories, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.PlaceResult), args.Error(1)
}

func (m *MockPlaceSearchProvider) SearchText(ctx context.Context, query string, maxResults int) ([]providers.PlaceResult, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.PlaceResult), args.Error(1)
}

func (m *MockPlaceSearchProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceResult, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.PlaceResult), args.Error(1)
}

func newSearchHandler(provider *MockPlaceSearchProvider) *handlers.SearchHandler {
	cfg := config.SearchConfig{
		CacheTTLSeconds:     1800,
		DefaultRadiusMeters: 5000,
		CityRadiusMeters:    15000,
		PrecisionThreshold:  5,
		RelevanceThreshold:  5,
		EnrichConcurrency:   8,
	}
	service := services.NewSearchService(cache.NewMemoryAdapter(), provider, nil, nil, cfg, nil)
	return handlers.NewSearchHandler(service)
}

func postSearch(t *testing.T, handler *handlers.SearchHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/cookie-spots/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Search(rec, req)
	return rec
}

func TestSearchHandler_MissingLocationAndCoordinates(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	handler := newSearchHandler(provider)

	rec := postSearch(t, handler, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["error"])
	provider.AssertNotCalled(t, "Geocode")
	provider.AssertNotCalled(t, "SearchNearby")
}

func TestSearchHandler_InvalidJSONBody(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	handler := newSearchHandler(provider)

	rec := postSearch(t, handler, `{"location": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_CoordinatesSearchSucceeds(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	handler := newSearchHandler(provider)

	provider.On("SearchNearby", mock.Anything, entities.LatLng{Lat: 40.7128, Lng: -74.0060}, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{
				ID:           "p-1",
				DisplayName:  "Joe's Bakery",
				OpeningHours: &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}},
			},
		}, nil)

	rec := postSearch(t, handler, `{"lat": 40.7128, "lng": -74.0060}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success        bool                     `json:"success"`
		CookieSpots    []entities.Venue         `json:"cookieSpots"`
		FromCache      bool                     `json:"fromCache"`
		SearchMetadata *entities.SearchMetadata `json:"search_metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.False(t, body.FromCache)
	require.Len(t, body.CookieSpots, 1)
	assert.Equal(t, "Joe's Bakery", body.CookieSpots[0].Name)
	require.NotNil(t, body.SearchMetadata)
	assert.Equal(t, entities.SearchTypeCoordinatesOnly, body.SearchMetadata.SearchType)
}

func TestSearchHandler_LocationNotFoundIsServerError(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	handler := newSearchHandler(provider)

	provider.On("Geocode", mock.Anything, "xyzzy").
		Return([]providers.GeocodeCandidate{}, nil)

	rec := postSearch(t, handler, `{"location": "xyzzy"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "location not found", body["message"])
}

func TestSearchHandler_UpstreamFailureIsServerError(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	handler := newSearchHandler(provider)

	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return(nil, assert.AnError)

	rec := postSearch(t, handler, `{"lat": 40.7128, "lng": -74.0060}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "could not fetch results", body["message"])
}
