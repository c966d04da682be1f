package providers

import (
	"context"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

// PlaceSearchProvider defines the upstream place-search service consumed by
// the aggregation pipeline. Implementations are treated as black boxes; the
// pipeline never retries their failures.
type PlaceSearchProvider interface {
	// Geocode resolves a free-text location to candidate places.
	Geocode(ctx context.Context, location string) ([]GeocodeCandidate, error)

	// SearchNearby runs a circle-bounded category search around a center.
	SearchNearby(ctx context.Context, center entities.LatLng, radiusMeters float64, categories []string, maxResults int) ([]PlaceResult, error)

	// SearchText runs a free-text place query.
	SearchText(ctx context.Context, query string, maxResults int) ([]PlaceResult, error)

	// PlaceDetails looks up a single place by provider id.
	PlaceDetails(ctx context.Context, placeID string) (*PlaceResult, error)
}

// GeocodeCandidate is one geocoding result.
type GeocodeCandidate struct {
	PlaceID          string
	FormattedAddress string
	Location         entities.LatLng
	Viewport         *entities.Viewport
	Types            []string
}

// PlaceResult is one place record as the provider returns it, before
// normalization into a Venue.
type PlaceResult struct {
	ID                string
	DisplayName       string
	FormattedAddress  string
	Location          entities.LatLng
	Viewport          *entities.Viewport
	AddressComponents []AddressComponent
	Types             []string
	Rating            float64
	UserRatingCount   int
	PriceLevel        string
	Phone             string
	Website           string
	PhotoURLs         []string
	OpeningHours      *entities.HoursInput
}

// AddressComponent is one structured address part.
type AddressComponent struct {
	LongText  string
	ShortText string
	Types     []string
}

// Component returns the long text of the first component tagged with the
// given type, falling back through the alternatives in order.
func Component(components []AddressComponent, primary string, fallback ...string) string {
	for _, comp := range components {
		if containsType(comp.Types, primary) {
			return comp.LongText
		}
	}
	for _, alt := range fallback {
		for _, comp := range components {
			if containsType(comp.Types, alt) {
				return comp.LongText
			}
		}
	}
	return ""
}

func containsType(types []string, target string) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}
