package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	tsclient "github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/clients/typesense"
)

const collectionName = "cookie_spots"

// TypesenseAdapter implements venue search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements VenueSearchRepository
var _ repositories.VenueSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "address", Type: "string"},
			{Name: "location", Type: "geopoint"},
			{Name: "rating", Type: "float"},
			{Name: "rating_count", Type: "int32"},
			{Name: "cookie_types", Type: "string[]", Facet: pointer.True()},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index indexes a venue
func (a *TypesenseAdapter) Index(ctx context.Context, venue *entities.Venue) error {
	cookieTypes := venue.CookieTypes
	if cookieTypes == nil {
		cookieTypes = []string{}
	}

	document := map[string]interface{}{
		"id":           venue.ID,
		"name":         venue.Name,
		"city":         venue.City,
		"address":      venue.Address,
		"location":     []float64{venue.Location.Lat(), venue.Location.Lng()},
		"rating":       venue.Rating,
		"rating_count": venue.RatingCount,
		"cookie_types": cookieTypes,
		"created_at":   venue.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index venue: %w", err)
	}

	return nil
}

// Delete removes a venue from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete venue from index: %w", err)
	}
	return nil
}

// Search searches indexed venues by text query and optional geo filter.
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.VenueSearchParams) ([]*entities.Venue, error) {
	q := params.Query
	if q == "" {
		q = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,address,city"),
		PerPage: pointer.Int(limit),
	}
	if params.RadiusKm > 0 {
		searchParams.FilterBy = pointer.String(fmt.Sprintf("location:(%f, %f, %f km)", params.Latitude, params.Longitude, params.RadiusKm))
		searchParams.SortBy = pointer.String(fmt.Sprintf("location(%f, %f):asc", params.Latitude, params.Longitude))
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search venues: %w", err)
	}

	venues := []*entities.Venue{}
	if result.Hits == nil {
		return venues, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document

		var lat, lng float64
		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			lat, _ = loc[0].(float64)
			lng, _ = loc[1].(float64)
		}

		// Typesense returns map[string]interface{}; only indexed fields
		// come back, so callers wanting the full record hydrate by ID.
		venue := &entities.Venue{
			Hours: entities.UnknownHours(),
		}
		if val, ok := doc["id"].(string); ok {
			venue.ID = val
		}
		if val, ok := doc["name"].(string); ok {
			venue.Name = val
		}
		if val, ok := doc["city"].(string); ok {
			venue.City = val
		}
		if val, ok := doc["address"].(string); ok {
			venue.Address = val
		}
		venue.Location = entities.NewGeoPoint(lat, lng)
		if val, ok := doc["rating"].(float64); ok {
			venue.Rating = val
		}
		if val, ok := doc["rating_count"].(float64); ok {
			venue.RatingCount = int(val)
		}
		if raw, ok := doc["cookie_types"].([]interface{}); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok {
					venue.CookieTypes = append(venue.CookieTypes, s)
				}
			}
		}

		venues = append(venues, venue)
	}

	return venues, nil
}
