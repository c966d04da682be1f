//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/cache"
	"github.com/r1chc/Cookie-Spots-sub000/internal/adapters/providers/places"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/handlers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/api/routes"
	"github.com/r1chc/Cookie-Spots-sub000/internal/application/services"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
)

// fakeUpstream mimics the geocoding endpoint and the places endpoints and
// counts how many requests it served.
func fakeUpstream(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/geocode/json"):
			fmt.Fprint(w, `{
				"status": "OK",
				"results": [{
					"place_id": "geo-1",
					"formatted_address": "Brooklyn, NY, USA",
					"types": ["locality", "political"],
					"geometry": {
						"location": {"lat": 40.6782, "lng": -73.9442},
						"viewport": {
							"northeast": {"lat": 40.74, "lng": -73.85},
							"southwest": {"lat": 40.57, "lng": -74.04}
						}
					}
				}]
			}`)
		case strings.HasSuffix(r.URL.Path, "places:searchNearby"):
			fmt.Fprint(w, `{
				"places": [{
					"id": "p-1",
					"displayName": {"text": "Joe's Bakery"},
					"formattedAddress": "1 Main St, Brooklyn, NY",
					"location": {"latitude": 40.68, "longitude": -73.94},
					"rating": 4.6,
					"userRatingCount": 210
				}]
			}`)
		case strings.Contains(r.URL.Path, "/places/"):
			fmt.Fprint(w, `{
				"id": "p-1",
				"displayName": {"text": "Joe's Bakery"},
				"currentOpeningHours": {
					"periods": [{
						"open": {"day": 1, "hour": 9, "minute": 0},
						"close": {"day": 1, "hour": 17, "minute": 30}
					}]
				}
			}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSearchPipeline_EndToEnd(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := fakeUpstream(t, &upstreamCalls)
	defer upstream.Close()

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()
	cacheProvider := cache.NewRedisAdapter(redisClient)

	provider := places.NewGooglePlacesProviderWithOptions(
		"test-key",
		upstream.URL+"/geocode/json",
		upstream.URL,
		nil,
	)

	cfg := config.SearchConfig{
		CacheTTLSeconds:     60,
		DefaultRadiusMeters: 5000,
		CityRadiusMeters:    15000,
		PrecisionThreshold:  5,
		RelevanceThreshold:  5,
		EnrichConcurrency:   4,
	}

	searchService := services.NewSearchService(cacheProvider, provider, nil, nil, cfg, nil)
	searchHandler := handlers.NewSearchHandler(searchService)
	router := routes.NewRouter(searchHandler, nil, nil, nil)
	server := httptest.NewServer(router.SetupRoutes())
	defer server.Close()

	// Unique location per run so prior cache state cannot interfere
	location := "Brooklyn-" + uuid.New().String()

	doSearch := func() map[string]interface{} {
		payload := fmt.Sprintf(`{"location": %q}`, location)
		resp, err := http.Post(server.URL+"/api/cookie-spots/search", "application/json", bytes.NewBufferString(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	first := doSearch()
	assert.Equal(t, true, first["success"])
	assert.Equal(t, false, first["fromCache"])

	spots, ok := first["cookieSpots"].([]interface{})
	require.True(t, ok)
	require.Len(t, spots, 1)

	venue := spots[0].(map[string]interface{})
	assert.Equal(t, "Joe's Bakery", venue["name"])

	hours, ok := venue["hoursOfOperation"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, hours, 7)
	assert.Equal(t, "9:00 AM - 5:30 PM", hours["monday"])

	// City classification: one geocode + one nearby + one detail lookup
	callsAfterFirst := upstreamCalls.Load()
	assert.Equal(t, int64(3), callsAfterFirst)

	second := doSearch()
	assert.Equal(t, true, second["fromCache"])
	assert.Equal(t, callsAfterFirst, upstreamCalls.Load(), "cache hit must not reach upstream")
}

func TestSearchPipeline_CacheExpiryRefetches(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := fakeUpstream(t, &upstreamCalls)
	defer upstream.Close()

	now := time.Now()
	memCache := cache.NewMemoryAdapterWithClock(func() time.Time { return now })

	provider := places.NewGooglePlacesProviderWithOptions(
		"test-key",
		upstream.URL+"/geocode/json",
		upstream.URL,
		nil,
	)

	cfg := config.SearchConfig{
		CacheTTLSeconds:     1800,
		DefaultRadiusMeters: 5000,
		CityRadiusMeters:    15000,
		PrecisionThreshold:  5,
		RelevanceThreshold:  5,
		EnrichConcurrency:   4,
	}

	searchService := services.NewSearchService(memCache, provider, nil, nil, cfg, nil)

	req := &services.SearchRequest{Location: "Brooklyn"}

	first, err := searchService.Search(t.Context(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	callsAfterFirst := upstreamCalls.Load()

	// Step past the TTL; the entry must expire passively on the next read
	now = now.Add(31 * time.Minute)

	second, err := searchService.Search(t.Context(), req)
	require.NoError(t, err)
	assert.False(t, second.FromCache, "expired entry must not be served")
	assert.Greater(t, upstreamCalls.Load(), callsAfterFirst)
}
