package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
)

// MockPlacesProvider implements a deterministic place-search provider for
// local development and testing.
type MockPlacesProvider struct{}

// NewMockPlacesProvider creates a new mock places provider
func NewMockPlacesProvider() providers.PlaceSearchProvider {
	return &MockPlacesProvider{}
}

var mockCities = map[string]providers.GeocodeCandidate{
	"new york": {
		PlaceID:          "mock-nyc",
		FormattedAddress: "New York, NY, USA",
		Location:         entities.LatLng{Lat: 40.7128, Lng: -74.0060},
		Viewport: &entities.Viewport{
			NorthEast: entities.LatLng{Lat: 40.9176, Lng: -73.7004},
			SouthWest: entities.LatLng{Lat: 40.4774, Lng: -74.2591},
		},
		Types: []string{"locality", "political"},
	},
	"williamsburg": {
		PlaceID:          "mock-williamsburg",
		FormattedAddress: "Williamsburg, Brooklyn, NY, USA",
		Location:         entities.LatLng{Lat: 40.7081, Lng: -73.9571},
		Viewport: &entities.Viewport{
			NorthEast: entities.LatLng{Lat: 40.7251, Lng: -73.9363},
			SouthWest: entities.LatLng{Lat: 40.6979, Lng: -73.9690},
		},
		Types: []string{"neighborhood", "political"},
	},
	"chicago": {
		PlaceID:          "mock-chicago",
		FormattedAddress: "Chicago, IL, USA",
		Location:         entities.LatLng{Lat: 41.8781, Lng: -87.6298},
		Types:            []string{"locality", "political"},
	},
}

// Geocode resolves a free-text location against a small fixed city table.
func (m *MockPlacesProvider) Geocode(ctx context.Context, location string) ([]providers.GeocodeCandidate, error) {
	lower := strings.ToLower(location)
	for name, candidate := range mockCities {
		if strings.Contains(lower, name) {
			return []providers.GeocodeCandidate{candidate}, nil
		}
	}
	return nil, nil
}

// SearchNearby returns canned bakeries placed around the center.
func (m *MockPlacesProvider) SearchNearby(ctx context.Context, center entities.LatLng, radiusMeters float64, categories []string, maxResults int) ([]providers.PlaceResult, error) {
	results := m.cannedPlaces(center)
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// SearchText returns canned bakeries for any query.
func (m *MockPlacesProvider) SearchText(ctx context.Context, query string, maxResults int) ([]providers.PlaceResult, error) {
	results := m.cannedPlaces(entities.LatLng{Lat: 40.7128, Lng: -74.0060})
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// PlaceDetails returns a detail record with full opening hours.
func (m *MockPlacesProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceResult, error) {
	weekdays := []string{
		"Monday: 8:00 AM – 6:00 PM",
		"Tuesday: 8:00 AM – 6:00 PM",
		"Wednesday: 8:00 AM – 6:00 PM",
		"Thursday: 8:00 AM – 6:00 PM",
		"Friday: 8:00 AM – 8:00 PM",
		"Saturday: 9:00 AM – 8:00 PM",
		"Sunday: 10:00 AM – 4:00 PM",
	}
	return &providers.PlaceResult{
		ID:               placeID,
		DisplayName:      "Mock Bakery",
		FormattedAddress: "123 Mock St, New York, NY 10001, USA",
		Location:         entities.LatLng{Lat: 40.7128, Lng: -74.0060},
		Types:            []string{"bakery"},
		Rating:           4.5,
		UserRatingCount:  120,
		OpeningHours:     &entities.HoursInput{WeekdayText: weekdays},
	}, nil
}

func (m *MockPlacesProvider) cannedPlaces(center entities.LatLng) []providers.PlaceResult {
	names := []string{
		"Crumble & Co Cookies",
		"The Corner Bakery",
		"Maple Street Patisserie",
		"Brown Butter Dessert Bar",
		"Morning Bean Cafe",
	}
	results := make([]providers.PlaceResult, 0, len(names))
	for i, name := range names {
		results = append(results, providers.PlaceResult{
			ID:               fmt.Sprintf("mock-place-%d", i+1),
			DisplayName:      name,
			FormattedAddress: fmt.Sprintf("%d Mock St, New York, NY 10001, USA", 100+i),
			Location: entities.LatLng{
				Lat: center.Lat + float64(i)*0.001,
				Lng: center.Lng - float64(i)*0.001,
			},
			Types:           []string{"bakery", "cafe"},
			Rating:          4.0 + float64(i)*0.1,
			UserRatingCount: 25 * (i + 1),
		})
	}
	return results
}
