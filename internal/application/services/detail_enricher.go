package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
)

// DetailEnricher fills in opening hours for results the primary search
// returned without them, one detail lookup per venue.
type DetailEnricher struct {
	provider providers.PlaceSearchProvider
	cfg      config.SearchConfig
	metrics  *observability.Metrics
}

// NewDetailEnricher creates a new detail enricher
func NewDetailEnricher(provider providers.PlaceSearchProvider, cfg config.SearchConfig, metrics *observability.Metrics) *DetailEnricher {
	return &DetailEnricher{
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// Enrich dispatches detail lookups for every result missing hours data,
// capped at the configured concurrency. A failed lookup leaves that
// venue's hours unknown; the batch never fails as a whole.
func (e *DetailEnricher) Enrich(ctx context.Context, results []providers.PlaceResult) []providers.PlaceResult {
	ctx, span := observability.StartSpan(ctx, "enricher.Enrich")
	defer span.End()

	group, groupCtx := errgroup.WithContext(ctx)
	limit := e.cfg.EnrichConcurrency
	if limit <= 0 {
		limit = 1
	}
	group.SetLimit(limit)

	for i := range results {
		if !results[i].OpeningHours.Empty() || results[i].ID == "" {
			continue
		}
		group.Go(func() error {
			observability.RecordUpstreamCall(groupCtx, e.metrics, "place_details")
			place, err := e.provider.PlaceDetails(groupCtx, results[i].ID)
			if err != nil {
				observability.RecordEnrichFailure(groupCtx, e.metrics)
				observability.LoggerFromContext(groupCtx).Warn().
					Err(err).
					Str("place_id", results[i].ID).
					Msg("detail enrichment failed, hours stay unknown")
				return nil
			}
			if place != nil && !place.OpeningHours.Empty() {
				results[i].OpeningHours = place.OpeningHours
			}
			return nil
		})
	}

	// Workers never return errors; Wait is only the stage barrier.
	_ = group.Wait()

	return results
}
