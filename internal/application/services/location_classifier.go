package services

import (
	"context"
	"fmt"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
	"github.com/r1chc/Cookie-Spots-sub000/pkg/config"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

// Place type tags that mark a geocoded result as a sub-city area.
var neighborhoodTypes = []string{
	"neighborhood", "sublocality", "sublocality_level_1", "sublocality_level_2",
}

// Place type tags that mark a geocoded result as city or region scale.
var cityScaleTypes = []string{
	"locality", "administrative_area_level_1", "administrative_area_level_2",
}

// LocationClassifier resolves a free-text location to coordinates, a
// viewport, and a coarse place classification that drives strategy
// selection.
type LocationClassifier struct {
	provider providers.PlaceSearchProvider
	cfg      config.SearchConfig
	metrics  *observability.Metrics
}

// NewLocationClassifier creates a new location classifier
func NewLocationClassifier(provider providers.PlaceSearchProvider, cfg config.SearchConfig, metrics *observability.Metrics) *LocationClassifier {
	return &LocationClassifier{
		provider: provider,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// Classify geocodes a location string and classifies the first candidate.
// Zero candidates is a terminal failure for the whole request.
func (c *LocationClassifier) Classify(ctx context.Context, location string) (*entities.LocationResolution, error) {
	ctx, span := observability.StartSpan(ctx, "classifier.Classify")
	defer span.End()

	observability.RecordUpstreamCall(ctx, c.metrics, "geocode")
	candidates, err := c.provider.Geocode(ctx, location)
	if err != nil {
		return nil, apperrors.NewExternalError("geocoding failed", err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewLocationNotFoundError(fmt.Sprintf("no location found for %q", location))
	}

	first := candidates[0]
	resolution := &entities.LocationResolution{
		Coordinates: first.Location,
		Viewport:    first.Viewport,
		PlaceID:     first.PlaceID,
		PlaceTypes:  first.Types,
	}

	resolution.Neighborhood = hasAnyType(resolution, neighborhoodTypes)
	if hasAnyType(resolution, cityScaleTypes) {
		resolution.RadiusMeters = c.cfg.CityRadiusMeters
	} else {
		resolution.RadiusMeters = c.cfg.DefaultRadiusMeters
	}

	return resolution, nil
}

// ResolveBoundary tries one detail lookup to tighten a neighborhood's
// viewport. Best-effort: any failure is logged and the geocoded viewport
// stands.
func (c *LocationClassifier) ResolveBoundary(ctx context.Context, resolution *entities.LocationResolution) {
	if !resolution.Neighborhood || resolution.PlaceID == "" {
		return
	}

	ctx, span := observability.StartSpan(ctx, "classifier.ResolveBoundary")
	defer span.End()

	observability.RecordUpstreamCall(ctx, c.metrics, "place_details")
	place, err := c.provider.PlaceDetails(ctx, resolution.PlaceID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("place_id", resolution.PlaceID).
			Msg("boundary lookup failed, using geocoded viewport")
		return
	}
	if place == nil || place.Viewport == nil {
		return
	}

	resolution.BoundaryViewport = place.Viewport
}

func hasAnyType(resolution *entities.LocationResolution, targets []string) bool {
	for _, t := range targets {
		if resolution.HasType(t) {
			return true
		}
	}
	return false
}
