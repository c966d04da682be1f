package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/r1chc/Cookie-Spots-sub000/pkg/errors"
)

const venuesTable = "venues"

// VenueAdapter implements the VenueRepository interface
type VenueAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVenueAdapter creates a new venue adapter
func NewVenueAdapter(client *postgres.Client) repositories.VenueRepository {
	return &VenueAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var venueColumns = []interface{}{
	"id", "name", "description", "address", "city", "state_province",
	"country", "postal_code", "latitude", "longitude", "phone", "website",
	"hours", "price_range", "rating", "rating_count", "source_id",
	"source_place_id", "cookie_types", "dietary_options", "photos",
	"created_at", "updated_at",
}

// Find retrieves venues matching the filter
func (a *VenueAdapter) Find(ctx context.Context, filter repositories.VenueFilter) ([]*entities.Venue, error) {
	ds := a.db.Select(venueColumns...).From(venuesTable)

	if filter.City != "" {
		ds = ds.Where(goqu.L("LOWER(city)").Eq(goqu.L("LOWER(?)", filter.City)))
	}
	if filter.CookieType != "" {
		ds = ds.Where(goqu.L("cookie_types::text").ILike("%" + filter.CookieType + "%"))
	}
	if filter.RadiusMeters > 0 {
		latDelta, lngDelta := boundingBoxDeltas(filter.NearLat, filter.RadiusMeters)
		ds = ds.Where(
			goqu.C("latitude").Between(goqu.Range(filter.NearLat-latDelta, filter.NearLat+latDelta)),
			goqu.C("longitude").Between(goqu.Range(filter.NearLng-lngDelta, filter.NearLng+lngDelta)),
		)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	ds = ds.Order(goqu.I("rating").Desc()).Limit(uint(limit)).Offset(uint(filter.Offset))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build venue query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find venues", err)
	}
	defer rows.Close()

	venues := []*entities.Venue{}
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan venue", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate venues", err)
	}

	return venues, nil
}

// FindOne retrieves a venue by ID
func (a *VenueAdapter) FindOne(ctx context.Context, id string) (*entities.Venue, error) {
	query, args, err := a.db.Select(venueColumns...).
		From(venuesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build venue query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	venue, err := scanVenue(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("venue with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get venue", err)
	}

	return venue, nil
}

// InsertOne creates a new venue
func (a *VenueAdapter) InsertOne(ctx context.Context, venue *entities.Venue) error {
	if venue.ID == "" {
		venue.ID = uuid.New().String()
	}
	now := time.Now()
	if venue.CreatedAt.IsZero() {
		venue.CreatedAt = now
	}
	venue.UpdatedAt = now

	record, err := venueRecord(venue)
	if err != nil {
		return apperrors.NewInternalError("failed to encode venue", err)
	}

	query, args, err := a.db.Insert(venuesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create venue", err)
	}
	return nil
}

// UpdateOne updates a venue
func (a *VenueAdapter) UpdateOne(ctx context.Context, venue *entities.Venue) error {
	venue.UpdatedAt = time.Now()

	record, err := venueRecord(venue)
	if err != nil {
		return apperrors.NewInternalError("failed to encode venue", err)
	}
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update(venuesTable).
		Set(record).
		Where(goqu.Ex{"id": venue.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update venue", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("venue with id %s not found", venue.ID))
	}
	return nil
}

// DeleteOne removes a venue
func (a *VenueAdapter) DeleteOne(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(venuesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete venue", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("venue with id %s not found", id))
	}
	return nil
}

const metersPerDegreeLat = 111320.0

// boundingBoxDeltas converts a radius in meters into latitude/longitude
// degree deltas at the given latitude. Longitude degrees shrink toward the
// poles; the cosine is floored so the box never degenerates.
func boundingBoxDeltas(lat, radiusMeters float64) (latDelta, lngDelta float64) {
	latDelta = radiusMeters / metersPerDegreeLat
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lngDelta = latDelta / cos
	return latDelta, lngDelta
}

func venueRecord(venue *entities.Venue) (goqu.Record, error) {
	hours, err := json.Marshal(venue.Hours)
	if err != nil {
		return nil, err
	}
	cookieTypes, err := json.Marshal(venue.CookieTypes)
	if err != nil {
		return nil, err
	}
	dietary, err := json.Marshal(venue.DietaryOptions)
	if err != nil {
		return nil, err
	}
	photos, err := json.Marshal(venue.Photos)
	if err != nil {
		return nil, err
	}

	return goqu.Record{
		"id":              venue.ID,
		"name":            venue.Name,
		"description":     venue.Description,
		"address":         venue.Address,
		"city":            venue.City,
		"state_province":  venue.StateOrProvince,
		"country":         venue.Country,
		"postal_code":     venue.PostalCode,
		"latitude":        venue.Location.Lat(),
		"longitude":       venue.Location.Lng(),
		"phone":           venue.Phone,
		"website":         venue.Website,
		"hours":           string(hours),
		"price_range":     venue.PriceRange,
		"rating":          venue.Rating,
		"rating_count":    venue.RatingCount,
		"source_id":       venue.SourceID,
		"source_place_id": venue.SourcePlaceID,
		"cookie_types":    string(cookieTypes),
		"dietary_options": string(dietary),
		"photos":          string(photos),
		"created_at":      venue.CreatedAt,
		"updated_at":      venue.UpdatedAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVenue(row rowScanner) (*entities.Venue, error) {
	venue := &entities.Venue{}
	var lat, lng float64
	var hours, cookieTypes, dietary, photos sql.NullString
	var description, phone, website, priceRange, sourceID, sourcePlaceID sql.NullString

	err := row.Scan(
		&venue.ID,
		&venue.Name,
		&description,
		&venue.Address,
		&venue.City,
		&venue.StateOrProvince,
		&venue.Country,
		&venue.PostalCode,
		&lat,
		&lng,
		&phone,
		&website,
		&hours,
		&priceRange,
		&venue.Rating,
		&venue.RatingCount,
		&sourceID,
		&sourcePlaceID,
		&cookieTypes,
		&dietary,
		&photos,
		&venue.CreatedAt,
		&venue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	venue.Description = description.String
	venue.Phone = phone.String
	venue.Website = website.String
	venue.PriceRange = priceRange.String
	venue.SourceID = sourceID.String
	venue.SourcePlaceID = sourcePlaceID.String
	venue.Location = entities.NewGeoPoint(lat, lng)

	venue.Hours = entities.UnknownHours()
	if hours.Valid && hours.String != "" {
		if err := json.Unmarshal([]byte(hours.String), &venue.Hours); err != nil {
			venue.Hours = entities.UnknownHours()
		}
	}
	if cookieTypes.Valid && cookieTypes.String != "" {
		_ = json.Unmarshal([]byte(cookieTypes.String), &venue.CookieTypes)
	}
	if dietary.Valid && dietary.String != "" {
		_ = json.Unmarshal([]byte(dietary.String), &venue.DietaryOptions)
	}
	if photos.Valid && photos.String != "" {
		_ = json.Unmarshal([]byte(photos.String), &venue.Photos)
	}

	return venue, nil
}
