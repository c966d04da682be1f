package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

const venueSource = "google_places"

// Provider place types carried over as cookie-type tags on the canonical
// venue, so relevance scoring sees the provider's own classification.
var cookieTypeTags = map[string]bool{
	"bakery":       true,
	"cafe":         true,
	"coffee_shop":  true,
	"dessert_shop": true,
}

// SearchRequest is one inbound aggregation search. At least one of the
// location string or the coordinate pair must be present. Keyword and
// SortBy are presentation-only: they reshape the response but never the
// cached result set.
type SearchRequest struct {
	Location string
	Lat      *float64
	Lng      *float64
	Keyword  string
	SortBy   string
	Debug    bool
}

// Validate rejects requests carrying neither form of location.
func (r *SearchRequest) Validate() error {
	if r.Location == "" && (r.Lat == nil || r.Lng == nil) {
		return apperrors.NewValidationError("either location or lat/lng coordinates are required")
	}
	return nil
}

// SearchResult is the pipeline's output for one request.
type SearchResult struct {
	Venues    []entities.Venue
	Viewport  *entities.Viewport
	Metadata  *entities.SearchMetadata
	FromCache bool
}

// SearchService orchestrates the aggregation pipeline: cache check,
// classification, strategy execution, enrichment, normalization,
// relevance filtering, cache write, and the final merge with the
// persisted store.
type SearchService struct {
	cache      providers.CacheProvider
	classifier *LocationClassifier
	executor   *StrategyExecutor
	enricher   *DetailEnricher
	relevance  *RelevanceFilter
	merge      *MergeService
	venueRepo  repositories.VenueRepository
	analytics  *SearchAnalyticsService
	cfg        config.SearchConfig
	metrics    *observability.Metrics
}

// NewSearchService creates a new search service. venueRepo and analytics
// are optional; nil disables store merging and event logging respectively.
func NewSearchService(
	cache providers.CacheProvider,
	provider providers.PlaceSearchProvider,
	venueRepo repositories.VenueRepository,
	analytics *SearchAnalyticsService,
	cfg config.SearchConfig,
	metrics *observability.Metrics,
) *SearchService {
	return &SearchService{
		cache:      cache,
		classifier: NewLocationClassifier(provider, cfg, metrics),
		executor:   NewStrategyExecutor(provider, cfg, metrics),
		enricher:   NewDetailEnricher(provider, cfg, metrics),
		relevance:  NewRelevanceFilter(cfg.RelevanceThreshold),
		merge:      NewMergeService(),
		venueRepo:  venueRepo,
		analytics:  analytics,
		cfg:        cfg,
		metrics:    metrics,
	}
}

// Search runs the full pipeline for one request. A fresh cache entry
// short-circuits every upstream call; everything after a miss runs as
// strictly sequenced stages.
func (s *SearchService) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "search.Search")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	key := s.cacheKey(req)

	if entry := s.readCache(ctx, key); entry != nil {
		observability.RecordCacheHit(ctx, s.metrics)
		result := s.applyView(req, &SearchResult{
			Venues:    entry.Venues,
			Viewport:  entry.Viewport,
			Metadata:  entry.SearchMetadata,
			FromCache: true,
		})
		s.finish(ctx, req, result, start)
		return result, nil
	}
	observability.RecordCacheMiss(ctx, s.metrics)

	result, err := s.runPipeline(ctx, req)
	if err != nil {
		return nil, err
	}

	// The cache keeps the full merged set; keyword filtering and sorting
	// only shape this response.
	s.writeCache(ctx, key, result)
	result = s.applyView(req, result)
	s.finish(ctx, req, result, start)
	return result, nil
}

// applyView derives the response venue list from the merged set: optional
// keyword filter, optional client-side sort.
func (s *SearchService) applyView(req *SearchRequest, result *SearchResult) *SearchResult {
	if req.Keyword == "" && req.SortBy == "" {
		return result
	}

	venues := result.Venues
	if req.Keyword != "" {
		venues = s.merge.Filter(venues, req.Keyword)
	}
	if req.SortBy != "" {
		venues = s.merge.Sort(venues, SortOrder(req.SortBy))
	}
	return &SearchResult{
		Venues:    venues,
		Viewport:  result.Viewport,
		Metadata:  result.Metadata,
		FromCache: result.FromCache,
	}
}

// runPipeline executes classification through relevance filtering and the
// store merge for one cache miss.
func (s *SearchService) runPipeline(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	resolution, searchType, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	var places []providers.PlaceResult
	if resolution.Neighborhood {
		s.classifier.ResolveBoundary(ctx, resolution)

		var fellBack bool
		places, fellBack, err = s.executor.TextFanOut(ctx, req.Location, resolution)
		if err != nil {
			return nil, err
		}
		switch {
		case fellBack:
			searchType = entities.SearchTypeNeighborhood
		case resolution.BoundaryViewport != nil:
			searchType = entities.SearchTypeNeighborhoodWithBoundary
		default:
			searchType = entities.SearchTypeNeighborhoodText
		}
	} else {
		places, err = s.executor.RadiusSearch(ctx, resolution.Coordinates, resolution.RadiusMeters)
		if err != nil {
			return nil, err
		}
	}

	places = s.enricher.Enrich(ctx, places)

	venues := make([]entities.Venue, 0, len(places))
	for i := range places {
		venues = append(venues, venueFromPlace(&places[i]))
	}
	venues = s.relevance.Apply(venues)
	venues = s.mergeWithStore(ctx, req, resolution, venues)

	viewport := resolution.Viewport
	if resolution.BoundaryViewport != nil {
		viewport = resolution.BoundaryViewport
	}

	metadata := &entities.SearchMetadata{
		SearchType:    searchType,
		Viewport:      viewport,
		LocationLabel: req.Location,
		BoundsFilter:  resolution.BoundaryViewport != nil,
	}
	if searchType == entities.SearchTypeCoordinatesOnly || searchType == entities.SearchTypeNeighborhood {
		metadata.SearchRadius = resolution.RadiusMeters
	}

	return &SearchResult{
		Venues:   venues,
		Viewport: viewport,
		Metadata: metadata,
	}, nil
}

// resolve produces the request's LocationResolution. Explicit coordinates
// always replace a geocoded center.
func (s *SearchService) resolve(ctx context.Context, req *SearchRequest) (*entities.LocationResolution, entities.SearchType, error) {
	if req.Location == "" {
		return &entities.LocationResolution{
			Coordinates:  entities.LatLng{Lat: *req.Lat, Lng: *req.Lng},
			RadiusMeters: s.cfg.DefaultRadiusMeters,
		}, entities.SearchTypeCoordinatesOnly, nil
	}

	resolution, err := s.classifier.Classify(ctx, req.Location)
	if err != nil {
		return nil, "", err
	}
	if req.Lat != nil && req.Lng != nil {
		resolution.Coordinates = entities.LatLng{Lat: *req.Lat, Lng: *req.Lng}
	}
	return resolution, entities.SearchTypeCoordinatesOnly, nil
}

// mergeWithStore folds in venues already persisted for the searched area.
// The store read carries the same scope as the search: the city token for
// a named location, the resolved circle for a coordinate request; with no
// scope the merge is skipped rather than pulling in the whole store.
// Best-effort: a store failure degrades to pipeline-only results.
func (s *SearchService) mergeWithStore(ctx context.Context, req *SearchRequest, resolution *entities.LocationResolution, venues []entities.Venue) []entities.Venue {
	if s.venueRepo == nil {
		return venues
	}

	filter := repositories.VenueFilter{Limit: 100}
	switch {
	case req.Location != "":
		filter.City = strings.TrimSpace(strings.Split(req.Location, ",")[0])
	case resolution != nil && resolution.RadiusMeters > 0:
		filter.NearLat = resolution.Coordinates.Lat
		filter.NearLng = resolution.Coordinates.Lng
		filter.RadiusMeters = resolution.RadiusMeters
	default:
		return venues
	}

	stored, err := s.venueRepo.Find(ctx, filter)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Msg("store lookup failed, returning pipeline results only")
		return venues
	}

	storedVenues := make([]entities.Venue, 0, len(stored))
	for _, venue := range stored {
		storedVenues = append(storedVenues, *venue)
	}
	return s.merge.Merge(storedVenues, venues)
}

// cacheKey derives the canonical cache key for a request.
func (s *SearchService) cacheKey(req *SearchRequest) string {
	if req.Location != "" {
		return "all-sources-" + strings.ToLower(strings.TrimSpace(req.Location))
	}
	return fmt.Sprintf("all-sources-%.2f,%.2f", *req.Lat, *req.Lng)
}

// readCache returns a structurally valid cached entry, or nil. Corrupt
// entries are deleted so the next request refetches.
func (s *SearchService) readCache(ctx context.Context, key string) *entities.CacheEntry {
	value, err := s.cache.Get(ctx, key)
	if err != nil || len(value) == 0 {
		return nil
	}

	var entry entities.CacheEntry
	if err := json.Unmarshal(value, &entry); err != nil || entry.Venues == nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("key", key).
			Msg("corrupt cache entry, deleting")
		if err := s.cache.Delete(ctx, key); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("key", key).
				Msg("failed to delete corrupt cache entry")
		}
		return nil
	}
	return &entry
}

// writeCache stores one result set. Failure is logged, not surfaced.
func (s *SearchService) writeCache(ctx context.Context, key string, result *SearchResult) {
	entry := entities.CacheEntry{
		Venues:         result.Venues,
		Viewport:       result.Viewport,
		SearchMetadata: result.Metadata,
		InsertedAt:     time.Now(),
	}
	value, err := json.Marshal(entry)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().
			Err(err).
			Str("key", key).
			Msg("failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("key", key).
			Msg("cache write failed")
	}
}

// finish records metrics and the analytics event for one completed search.
func (s *SearchService) finish(ctx context.Context, req *SearchRequest, result *SearchResult, start time.Time) {
	elapsed := time.Since(start)
	searchType := ""
	if result.Metadata != nil {
		searchType = string(result.Metadata.SearchType)
	}
	observability.RecordSearchMetric(ctx, s.metrics, searchType, result.FromCache, elapsed)

	if s.analytics == nil {
		return
	}
	event := &entities.SearchEvent{
		Query:       req.Location,
		SearchType:  searchType,
		ResultCount: len(result.Venues),
		FromCache:   result.FromCache,
		LatencyMs:   elapsed.Milliseconds(),
	}
	if req.Lat != nil && req.Lng != nil {
		event.Latitude = *req.Lat
		event.Longitude = *req.Lng
	}
	s.analytics.TrackSearch(ctx, event)
}

// venueFromPlace converts one provider place record into a canonical
// venue.
func venueFromPlace(place *providers.PlaceResult) entities.Venue {
	id := place.ID
	if id == "" {
		id = uuid.New().String()
	}

	var cookieTypes []string
	for _, tag := range place.Types {
		if cookieTypeTags[tag] {
			cookieTypes = append(cookieTypes, tag)
		}
	}

	return entities.Venue{
		ID:              id,
		Name:            place.DisplayName,
		Address:         place.FormattedAddress,
		City:            providers.Component(place.AddressComponents, "locality", "postal_town", "sublocality"),
		StateOrProvince: providers.Component(place.AddressComponents, "administrative_area_level_1"),
		Country:         providers.Component(place.AddressComponents, "country"),
		PostalCode:      providers.Component(place.AddressComponents, "postal_code"),
		Location:        entities.NewGeoPoint(place.Location.Lat, place.Location.Lng),
		Phone:           place.Phone,
		Website:         place.Website,
		Hours:           NormalizeHours(place.OpeningHours),
		PriceRange:      place.PriceLevel,
		Rating:          place.Rating,
		RatingCount:     place.UserRatingCount,
		SourceID:        venueSource,
		SourcePlaceID:   place.ID,
		CookieTypes:     cookieTypes,
		Photos:          place.PhotoURLs,
	}
}
