package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
)

// Mocks

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

type MockVenueRepository struct {
	mock.Mock
}

func (m *MockVenueRepository) Find(ctx context.Context, filter repositories.VenueFilter) ([]*entities.Venue, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Venue), args.Error(1)
}

func (m *MockVenueRepository) FindOne(ctx context.Context, id string) (*entities.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Venue), args.Error(1)
}

func (m *MockVenueRepository) InsertOne(ctx context.Context, venue *entities.Venue) error {
	args := m.Called(ctx, venue)
	return args.Error(0)
}

func (m *MockVenueRepository) UpdateOne(ctx context.Context, venue *entities.Venue) error {
	args := m.Called(ctx, venue)
	return args.Error(0)
}

func (m *MockVenueRepository) DeleteOne(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
