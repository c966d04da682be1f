package repositories

import (
	"context"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

// VenueFilter narrows a venue listing. When RadiusMeters is positive,
// results are limited to a bounding box around (NearLat, NearLng).
type VenueFilter struct {
	City         string
	CookieType   string
	NearLat      float64
	NearLng      float64
	RadiusMeters float64
	Limit        int
	Offset       int
}

// VenueRepository is the persisted venue store. The aggregation pipeline
// only reads from it; writes belong to the CRUD subsystem.
type VenueRepository interface {
	Find(ctx context.Context, filter VenueFilter) ([]*entities.Venue, error)
	FindOne(ctx context.Context, id string) (*entities.Venue, error)
	InsertOne(ctx context.Context, venue *entities.Venue) error
	UpdateOne(ctx context.Context, venue *entities.Venue) error
	DeleteOne(ctx context.Context, id string) error
}

// VenueSearchParams describes a stored-venue keyword/geo search.
type VenueSearchParams struct {
	Query     string
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

// VenueSearchRepository searches the persisted store by keyword and
// proximity. Implementations may be backed by a search engine; callers
// fall back to VenueRepository.Find when none is wired.
type VenueSearchRepository interface {
	Index(ctx context.Context, venue *entities.Venue) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params VenueSearchParams) ([]*entities.Venue, error)
}
