package entities

import (
	"time"
)

// Weekday keys used in HoursOfOperation. Every venue carries exactly these
// seven keys; a nil value means the hours are unknown (the upstream provider
// does not distinguish unknown from closed).
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday",
}

// Venue is the canonical, presentation-ready record for one candidate
// cookie spot. It is the shape returned by the aggregation pipeline and
// the shape persisted by the venue store.
type Venue struct {
	ID              string             `json:"id" db:"id"`
	Name            string             `json:"name" db:"name"`
	Description     string             `json:"description" db:"description"`
	Address         string             `json:"address" db:"address"`
	City            string             `json:"city" db:"city"`
	StateOrProvince string             `json:"stateOrProvince" db:"state_province"`
	Country         string             `json:"country" db:"country"`
	PostalCode      string             `json:"postalCode" db:"postal_code"`
	Location        GeoPoint           `json:"location" db:"-"`
	Phone           string             `json:"phone" db:"phone"`
	Website         string             `json:"website" db:"website"`
	Hours           map[string]*string `json:"hoursOfOperation" db:"-"`
	PriceRange      string             `json:"priceRange" db:"price_range"`
	Rating          float64            `json:"rating" db:"rating"`
	RatingCount     int                `json:"ratingCount" db:"rating_count"`
	SourceID        string             `json:"sourceId" db:"source_id"`
	SourcePlaceID   string             `json:"sourcePlaceId" db:"source_place_id"`
	CookieTypes     []string           `json:"cookieTypes,omitempty" db:"-"`
	DietaryOptions  []string           `json:"dietaryOptions,omitempty" db:"-"`
	Photos          []string           `json:"photos,omitempty" db:"-"`
	CreatedAt       time.Time          `json:"createdAt,omitempty" db:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt,omitempty" db:"updated_at"`
}

// GeoPoint is a GeoJSON-style point. Coordinates are in longitude,
// latitude order, matching what the map layer and the persisted store
// expect.
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewGeoPoint builds a GeoPoint from a latitude/longitude pair.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Lat returns the latitude of the point.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Lng returns the longitude of the point.
func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }

// UnknownHours returns a seven-key hours map with every day nil.
func UnknownHours() map[string]*string {
	hours := make(map[string]*string, len(Weekdays))
	for _, day := range Weekdays {
		hours[day] = nil
	}
	return hours
}

// HasHours reports whether the venue carries any known opening hours.
func (v *Venue) HasHours() bool {
	for _, value := range v.Hours {
		if value != nil {
			return true
		}
	}
	return false
}
