package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/cache"
	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

func latLngPtr(v float64) *float64 { return &v }

func newTestSearchService(provider *MockPlaceSearchProvider) (*services.SearchService, providers.CacheProvider) {
	memCache := cache.NewMemoryAdapter()
	service := services.NewSearchService(memCache, provider, nil, nil, testSearchConfig(), nil)
	return service, memCache
}

func TestSearchService_RejectsRequestWithoutLocationOrCoordinates(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	_, err := service.Search(context.Background(), &services.SearchRequest{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	provider.AssertNotCalled(t, "Geocode")
	provider.AssertNotCalled(t, "SearchNearby")
	provider.AssertNotCalled(t, "SearchText")
}

func TestSearchService_CacheHitShortCircuitsUpstream(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, memCache := newTestSearchService(provider)

	entry := entities.CacheEntry{
		Venues: []entities.Venue{
			{ID: "v-1", Name: "Joe's Bakery", Hours: entities.UnknownHours()},
		},
		SearchMetadata: &entities.SearchMetadata{SearchType: entities.SearchTypeCoordinatesOnly},
		InsertedAt:     time.Now(),
	}
	value, err := json.Marshal(entry)
	require.NoError(t, err)
	require.NoError(t, memCache.Set(context.Background(), "all-sources-40.71,-74.00", value, 1800))

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.71),
		Lng: latLngPtr(-74.00),
	})

	require.NoError(t, err)
	assert.True(t, result.FromCache)
	require.Len(t, result.Venues, 1)
	assert.Equal(t, "Joe's Bakery", result.Venues[0].Name)
	provider.AssertNotCalled(t, "Geocode")
	provider.AssertNotCalled(t, "SearchNearby")
	provider.AssertNotCalled(t, "SearchText")
	provider.AssertNotCalled(t, "PlaceDetails")
}

func TestSearchService_CorruptCacheEntryIsDeletedAndRefetched(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, memCache := newTestSearchService(provider)

	key := "all-sources-40.71,-74.00"
	require.NoError(t, memCache.Set(context.Background(), key, []byte(`{"not":"a cache entry"}`), 1800))

	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery", OpeningHours: &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}}},
		}, nil)

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.71),
		Lng: latLngPtr(-74.00),
	})

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	provider.AssertNumberOfCalls(t, "SearchNearby", 1)

	// The corrupt entry was replaced with a valid one
	value, err := memCache.Get(context.Background(), key)
	require.NoError(t, err)
	var entry entities.CacheEntry
	require.NoError(t, json.Unmarshal(value, &entry))
	assert.Len(t, entry.Venues, 1)
}

func TestSearchService_CoordinatesOnlyEnrichesMissingHours(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	placeHours := &entities.HoursInput{
		Periods: []entities.HoursPeriod{
			{
				Open:  entities.HoursPoint{Day: 1, Hour: 9, Minute: 0},
				Close: &entities.HoursPoint{Day: 1, Hour: 17, Minute: 30},
			},
		},
	}

	provider.On("SearchNearby", mock.Anything, entities.LatLng{Lat: 40.7128, Lng: -74.0060}, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery"},
			{ID: "p-2", DisplayName: "Cookie Castle"},
			{ID: "p-3", DisplayName: "Sweet Patisserie"},
		}, nil)
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		provider.On("PlaceDetails", mock.Anything, id).
			Return(&providers.PlaceResult{ID: id, OpeningHours: placeHours}, nil)
	}

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.7128),
		Lng: latLngPtr(-74.0060),
	})

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Len(t, result.Venues, 3)
	provider.AssertNumberOfCalls(t, "PlaceDetails", 3)

	for _, venue := range result.Venues {
		assert.Len(t, venue.Hours, 7)
		require.NotNil(t, venue.Hours["monday"])
		assert.Equal(t, "9:00 AM - 5:30 PM", *venue.Hours["monday"])
	}
	require.NotNil(t, result.Metadata)
	assert.Equal(t, entities.SearchTypeCoordinatesOnly, result.Metadata.SearchType)
}

func TestSearchService_FailedEnrichmentLeavesHoursUnknown(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{{ID: "p-1", DisplayName: "Joe's Bakery"}}, nil)
	provider.On("PlaceDetails", mock.Anything, "p-1").
		Return(nil, assert.AnError)

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.7128),
		Lng: latLngPtr(-74.0060),
	})

	require.NoError(t, err)
	require.Len(t, result.Venues, 1)
	assert.Len(t, result.Venues[0].Hours, 7)
	for _, day := range entities.Weekdays {
		assert.Nil(t, result.Venues[0].Hours[day])
	}
}

func TestSearchService_LocationNotFound(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	provider.On("Geocode", mock.Anything, "nowheresville").
		Return([]providers.GeocodeCandidate{}, nil)

	_, err := service.Search(context.Background(), &services.SearchRequest{Location: "nowheresville"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeLocationNotFound))
	provider.AssertNotCalled(t, "SearchNearby")
	provider.AssertNotCalled(t, "SearchText")
}

func TestSearchService_NeighborhoodUsesTextFanOut(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	viewport := &entities.Viewport{
		NorthEast: entities.LatLng{Lat: 40.72, Lng: -73.94},
		SouthWest: entities.LatLng{Lat: 40.69, Lng: -73.97},
	}
	provider.On("Geocode", mock.Anything, "Williamsburg, Brooklyn").
		Return([]providers.GeocodeCandidate{
			{
				PlaceID:  "geo-1",
				Location: entities.LatLng{Lat: 40.7081, Lng: -73.9571},
				Viewport: viewport,
				Types:    []string{"neighborhood", "political"},
			},
		}, nil)

	boundary := &entities.Viewport{
		NorthEast: entities.LatLng{Lat: 40.715, Lng: -73.945},
		SouthWest: entities.LatLng{Lat: 40.70, Lng: -73.965},
	}
	provider.On("PlaceDetails", mock.Anything, "geo-1").
		Return(&providers.PlaceResult{ID: "geo-1", Viewport: boundary}, nil)

	provider.On("SearchText", mock.Anything, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{
				ID:               "p-1",
				DisplayName:      "Joe's Bakery",
				FormattedAddress: "12 Bedford Ave, Williamsburg, Brooklyn, NY",
				OpeningHours:     &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}},
			},
		}, nil)

	result, err := service.Search(context.Background(), &services.SearchRequest{Location: "Williamsburg, Brooklyn"})

	require.NoError(t, err)
	provider.AssertNumberOfCalls(t, "SearchText", 5)
	provider.AssertNotCalled(t, "SearchNearby")
	require.NotNil(t, result.Metadata)
	assert.Equal(t, entities.SearchTypeNeighborhoodWithBoundary, result.Metadata.SearchType)
	assert.Equal(t, boundary, result.Viewport)
	require.Len(t, result.Venues, 1)
	assert.Equal(t, "Joe's Bakery", result.Venues[0].Name)
}

func TestSearchService_SecondIdenticalSearchIsServedFromCache(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery", OpeningHours: &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}}},
		}, nil)

	req := &services.SearchRequest{Lat: latLngPtr(40.7128), Lng: latLngPtr(-74.0060)}

	first, err := service.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := service.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Venues, second.Venues)
	provider.AssertNumberOfCalls(t, "SearchNearby", 1)
}

func TestSearchService_MergesStoredVenues(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	venueRepo := new(MockVenueRepository)
	memCache := cache.NewMemoryAdapter()
	service := services.NewSearchService(memCache, provider, venueRepo, nil, testSearchConfig(), nil)

	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery", FormattedAddress: "1 Main St", OpeningHours: &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}}},
		}, nil)
	// A coordinate request must scope the store read to the searched circle
	venueRepo.On("Find", mock.Anything, mock.MatchedBy(func(filter repositories.VenueFilter) bool {
		return filter.City == "" &&
			filter.RadiusMeters == 5000 &&
			filter.NearLat == 40.7128 &&
			filter.NearLng == -74.0060
	})).Return([]*entities.Venue{
		{ID: "store-1", Name: "Homemade Cookie Club", Address: "9 Oak St", Hours: entities.UnknownHours()},
	}, nil)

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.7128),
		Lng: latLngPtr(-74.0060),
	})

	require.NoError(t, err)
	require.Len(t, result.Venues, 2)
	// Stored venues lead the merged set
	assert.Equal(t, "store-1", result.Venues[0].ID)
	assert.Equal(t, "p-1", result.Venues[1].ID)
}

func TestSearchService_KeepsProviderTaggedVenueWhenNameIsNeutral(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	hours := &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}}
	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery", OpeningHours: hours},
			{ID: "p-2", DisplayName: "Cookie Corner", OpeningHours: hours},
			{ID: "p-3", DisplayName: "Sweet Tooth", OpeningHours: hours},
			{ID: "p-4", DisplayName: "Cake Walk", OpeningHours: hours},
			{ID: "p-5", DisplayName: "The Pastry Box", OpeningHours: hours},
			// Neutral name; only the provider's own tags mark it relevant
			{ID: "p-6", DisplayName: "Levain", Types: []string{"bakery", "food"}, OpeningHours: hours},
			{ID: "p-7", DisplayName: "Midtown Dental", OpeningHours: hours},
		}, nil)

	result, err := service.Search(context.Background(), &services.SearchRequest{
		Lat: latLngPtr(40.7128),
		Lng: latLngPtr(-74.0060),
	})

	require.NoError(t, err)
	require.Len(t, result.Venues, 6)

	var levain *entities.Venue
	for i := range result.Venues {
		assert.NotEqual(t, "Midtown Dental", result.Venues[i].Name)
		if result.Venues[i].ID == "p-6" {
			levain = &result.Venues[i]
		}
	}
	require.NotNil(t, levain, "provider-tagged venue must survive the relevance filter")
	assert.Equal(t, []string{"bakery"}, levain.CookieTypes)
}

func TestSearchService_KeywordAndSortShapeResponseNotCache(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	service, _ := newTestSearchService(provider)

	hours := &entities.HoursInput{WeekdayText: []string{"Monday: 9 AM"}}
	provider.On("SearchNearby", mock.Anything, mock.Anything, 5000.0, mock.Anything, 20).
		Return([]providers.PlaceResult{
			{ID: "p-1", DisplayName: "Joe's Bakery", Rating: 4.1, OpeningHours: hours},
			{ID: "p-2", DisplayName: "Cookie Corner", Rating: 4.8, OpeningHours: hours},
		}, nil)

	coords := &services.SearchRequest{
		Lat:     latLngPtr(40.7128),
		Lng:     latLngPtr(-74.0060),
		Keyword: "cookie",
	}

	filtered, err := service.Search(context.Background(), coords)
	require.NoError(t, err)
	require.Len(t, filtered.Venues, 1)
	assert.Equal(t, "Cookie Corner", filtered.Venues[0].Name)

	// Same key, no keyword: the cache entry still holds the full set
	full, err := service.Search(context.Background(), &services.SearchRequest{
		Lat:    latLngPtr(40.7128),
		Lng:    latLngPtr(-74.0060),
		SortBy: "rating_asc",
	})
	require.NoError(t, err)
	assert.True(t, full.FromCache)
	require.Len(t, full.Venues, 2)
	assert.Equal(t, "Joe's Bakery", full.Venues[0].Name)
	assert.Equal(t, "Cookie Corner", full.Venues[1].Name)
	provider.AssertNumberOfCalls(t, "SearchNearby", 1)
}
