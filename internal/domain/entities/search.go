package entities

import (
	"time"
)

// SearchType identifies which strategy produced a result set.
type SearchType string

const (
	SearchTypeCoordinatesOnly          SearchType = "coordinates_only"
	SearchTypeNeighborhood             SearchType = "neighborhood"
	SearchTypeNeighborhoodWithBoundary SearchType = "neighborhood_with_boundary"
	SearchTypeNeighborhoodText         SearchType = "neighborhood_text"
)

// LatLng is a latitude/longitude pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Viewport is a bounding box for map display.
type Viewport struct {
	NorthEast LatLng `json:"northeast"`
	SouthWest LatLng `json:"southwest"`
}

// LocationResolution is the outcome of classifying a free-text location.
// It is produced once per request and never mutated afterwards.
type LocationResolution struct {
	Coordinates      LatLng
	Viewport         *Viewport
	PlaceID          string
	PlaceTypes       []string
	BoundaryViewport *Viewport
	RadiusMeters     float64
	Neighborhood     bool
}

// HasType reports whether the resolution carries the given place type tag.
func (r *LocationResolution) HasType(target string) bool {
	for _, t := range r.PlaceTypes {
		if t == target {
			return true
		}
	}
	return false
}

// SearchMetadata travels alongside a venue list so the presentation layer
// can draw an appropriate map extent. It is cached with the result set but
// never written to the venue store.
type SearchMetadata struct {
	SearchType    SearchType `json:"searchType"`
	Viewport      *Viewport  `json:"viewport,omitempty"`
	SearchRadius  float64    `json:"searchRadius,omitempty"`
	LocationLabel string     `json:"locationLabel,omitempty"`
	BoundsFilter  bool       `json:"boundsFilter,omitempty"`
}

// CacheEntry is one cached result set for a canonical search key.
type CacheEntry struct {
	Venues         []Venue         `json:"venues"`
	Viewport       *Viewport       `json:"viewport"`
	SearchMetadata *SearchMetadata `json:"search_metadata"`
	InsertedAt     time.Time       `json:"insertedAt"`
}

// SearchEvent records one executed search for analytics.
type SearchEvent struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	SearchType  string    `json:"search_type"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ResultCount int       `json:"result_count"`
	FromCache   bool      `json:"from_cache"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
