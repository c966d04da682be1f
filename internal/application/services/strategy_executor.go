package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

// Categories for the circle-bounded nearby search.
var nearbyCategories = []string{"bakery", "cafe", "coffee_shop"}

// Keywords combined with the location name in the text fan-out.
var fanOutKeywords = []string{"bakery", "cafe", "coffee shop", "cookies", "dessert"}

const providerResultCap = 20

// StrategyExecutor chooses and runs one of the two upstream search
// strategies: a single radius-bounded nearby query, or a concurrent
// multi-query text fan-out for neighborhood searches.
type StrategyExecutor struct {
	provider providers.PlaceSearchProvider
	cfg      config.SearchConfig
	metrics  *observability.Metrics
}

// NewStrategyExecutor creates a new strategy executor
func NewStrategyExecutor(provider providers.PlaceSearchProvider, cfg config.SearchConfig, metrics *observability.Metrics) *StrategyExecutor {
	return &StrategyExecutor{
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// RadiusSearch runs a single circle-bounded category search. A failure here
// is fatal for the request.
func (e *StrategyExecutor) RadiusSearch(ctx context.Context, center entities.LatLng, radiusMeters float64) ([]providers.PlaceResult, error) {
	ctx, span := observability.StartSpan(ctx, "executor.RadiusSearch")
	defer span.End()

	observability.RecordUpstreamCall(ctx, e.metrics, "search_nearby")
	results, err := e.provider.SearchNearby(ctx, center, radiusMeters, nearbyCategories, providerResultCap)
	if err != nil {
		return nil, apperrors.NewExternalError("nearby search failed", err)
	}
	return results, nil
}

// TextFanOut issues one text query per cookie-adjacent keyword, all
// concurrent, and merges the results by provider place id keeping the
// first occurrence. A single failed query contributes nothing and is
// logged; only all-queries-failed is fatal. An empty merged set falls back
// to a radius search around the resolved coordinates.
func (e *StrategyExecutor) TextFanOut(ctx context.Context, location string, resolution *entities.LocationResolution) ([]providers.PlaceResult, bool, error) {
	ctx, span := observability.StartSpan(ctx, "executor.TextFanOut")
	defer span.End()

	var (
		mu      sync.Mutex
		batches = make([][]providers.PlaceResult, len(fanOutKeywords))
		failed  int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for i, keyword := range fanOutKeywords {
		group.Go(func() error {
			observability.RecordUpstreamCall(groupCtx, e.metrics, "search_text")
			query := fmt.Sprintf("%s in %s", keyword, location)
			results, err := e.provider.SearchText(groupCtx, query, providerResultCap)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				observability.LoggerFromContext(groupCtx).Warn().
					Err(err).
					Str("query", query).
					Msg("fan-out query failed")
				return nil
			}
			batches[i] = results
			return nil
		})
	}
	// Workers soft-fail individually; Wait is only the stage barrier.
	_ = group.Wait()
	if failed == len(fanOutKeywords) {
		return nil, false, apperrors.NewExternalError("all fan-out queries failed", nil)
	}

	merged := mergeByPlaceID(batches)
	if len(merged) == 0 {
		results, err := e.RadiusSearch(ctx, resolution.Coordinates, resolution.RadiusMeters)
		return results, true, err
	}

	return e.applyPrecisionFilter(ctx, merged, location), false, nil
}

// mergeByPlaceID flattens the fan-out batches in keyword order, dropping
// any place id already seen. Batches are positionally ordered so the merge
// is deterministic regardless of query completion order.
func mergeByPlaceID(batches [][]providers.PlaceResult) []providers.PlaceResult {
	seen := make(map[string]bool)
	merged := []providers.PlaceResult{}
	for _, batch := range batches {
		for _, result := range batch {
			if result.ID != "" && seen[result.ID] {
				continue
			}
			if result.ID != "" {
				seen[result.ID] = true
			}
			merged = append(merged, result)
		}
	}
	return merged
}

// applyPrecisionFilter narrows the merged set to venues whose address
// mentions the neighborhood token. Advisory: if fewer than the configured
// threshold match, the unfiltered set is kept so sparse neighborhoods are
// not emptied out.
func (e *StrategyExecutor) applyPrecisionFilter(ctx context.Context, merged []providers.PlaceResult, location string) []providers.PlaceResult {
	token := strings.ToLower(strings.TrimSpace(strings.Split(location, ",")[0]))
	if token == "" {
		return merged
	}

	precise := []providers.PlaceResult{}
	for _, result := range merged {
		if strings.Contains(strings.ToLower(result.FormattedAddress), token) {
			precise = append(precise, result)
		}
	}

	if len(precise) >= e.cfg.PrecisionThreshold {
		observability.LoggerFromContext(ctx).Debug().
			Int("merged", len(merged)).
			Int("precise", len(precise)).
			Str("token", token).
			Msg("precision filter applied")
		return precise
	}
	return merged
}
