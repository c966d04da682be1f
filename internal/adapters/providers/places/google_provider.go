package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
)

const (
	googleGeocodeURL   = "https://maps.googleapis.com/maps/api/geocode/json"
	googlePlacesURL    = "https://places.googleapis.com/v1"
	defaultHTTPTimeout = 8 * time.Second

	searchFieldMask = "places.id,places.displayName,places.formattedAddress," +
		"places.location,places.viewport,places.addressComponents,places.types," +
		"places.rating,places.userRatingCount,places.priceLevel," +
		"places.nationalPhoneNumber,places.websiteUri,places.photos," +
		"places.currentOpeningHours"
	detailFieldMask = "id,displayName,formattedAddress,location,viewport," +
		"addressComponents,types,rating,userRatingCount,priceLevel," +
		"nationalPhoneNumber,websiteUri,photos,currentOpeningHours"
)

// GooglePlacesProvider implements PlaceSearchProvider using the Google
// Geocoding API for text resolution and the Places API for nearby/text
// search and detail lookups.
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
	geocodeURL string
	placesURL  string
}

// NewGooglePlacesProvider creates a new Google places provider.
func NewGooglePlacesProvider(apiKey string) providers.PlaceSearchProvider {
	return NewGooglePlacesProviderWithOptions(apiKey, googleGeocodeURL, googlePlacesURL, nil)
}

// NewGooglePlacesProviderWithOptions allows overriding base URLs and HTTP client (used for tests).
func NewGooglePlacesProviderWithOptions(apiKey, geocodeURL, placesURL string, httpClient *http.Client) providers.PlaceSearchProvider {
	if strings.TrimSpace(geocodeURL) == "" {
		geocodeURL = googleGeocodeURL
	}
	if strings.TrimSpace(placesURL) == "" {
		placesURL = googlePlacesURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GooglePlacesProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		geocodeURL: geocodeURL,
		placesURL:  placesURL,
	}
}

// Geocode resolves a free-text location to candidate places.
func (g *GooglePlacesProvider) Geocode(ctx context.Context, location string) ([]providers.GeocodeCandidate, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return nil, fmt.Errorf("location is required")
	}
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("key", g.apiKey)

	reqURL := fmt.Sprintf("%s?%s", g.geocodeURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if payload.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if payload.Status != "OK" {
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
	}

	candidates := make([]providers.GeocodeCandidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidates = append(candidates, providers.GeocodeCandidate{
			PlaceID:          result.PlaceID,
			FormattedAddress: result.FormattedAddress,
			Location: entities.LatLng{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
			Viewport: result.Geometry.Viewport.toViewport(),
			Types:    result.Types,
		})
	}
	return candidates, nil
}

// SearchNearby runs a circle-bounded category search around a center.
func (g *GooglePlacesProvider) SearchNearby(ctx context.Context, center entities.LatLng, radiusMeters float64, categories []string, maxResults int) ([]providers.PlaceResult, error) {
	body := map[string]interface{}{
		"includedTypes":  categories,
		"maxResultCount": maxResults,
		"locationRestriction": map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]float64{
					"latitude":  center.Lat,
					"longitude": center.Lng,
				},
				"radius": radiusMeters,
			},
		},
	}

	var payload googlePlacesSearchResponse
	if err := g.doPlacesRequest(ctx, http.MethodPost, "/places:searchNearby", searchFieldMask, body, &payload); err != nil {
		return nil, err
	}
	return g.toPlaceResults(payload.Places), nil
}

// SearchText runs a free-text place query.
func (g *GooglePlacesProvider) SearchText(ctx context.Context, query string, maxResults int) ([]providers.PlaceResult, error) {
	body := map[string]interface{}{
		"textQuery":      query,
		"maxResultCount": maxResults,
	}

	var payload googlePlacesSearchResponse
	if err := g.doPlacesRequest(ctx, http.MethodPost, "/places:searchText", searchFieldMask, body, &payload); err != nil {
		return nil, err
	}
	return g.toPlaceResults(payload.Places), nil
}

// PlaceDetails looks up a single place by provider id.
func (g *GooglePlacesProvider) PlaceDetails(ctx context.Context, placeID string) (*providers.PlaceResult, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, fmt.Errorf("place id is required")
	}

	var payload googlePlace
	if err := g.doPlacesRequest(ctx, http.MethodGet, "/places/"+url.PathEscape(placeID), detailFieldMask, nil, &payload); err != nil {
		return nil, err
	}

	result := g.toPlaceResult(payload)
	return &result, nil
}

func (g *GooglePlacesProvider) doPlacesRequest(ctx context.Context, method, path, fieldMask string, body interface{}, out interface{}) error {
	if g.apiKey == "" {
		return fmt.Errorf("google maps api key is required")
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode places request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.placesURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("places request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode places response: %w", err)
	}
	return nil
}

func (g *GooglePlacesProvider) toPlaceResults(places []googlePlace) []providers.PlaceResult {
	results := make([]providers.PlaceResult, 0, len(places))
	for _, place := range places {
		results = append(results, g.toPlaceResult(place))
	}
	return results
}

func (g *GooglePlacesProvider) toPlaceResult(place googlePlace) providers.PlaceResult {
	components := make([]providers.AddressComponent, 0, len(place.AddressComponents))
	for _, comp := range place.AddressComponents {
		components = append(components, providers.AddressComponent{
			LongText:  comp.LongText,
			ShortText: comp.ShortText,
			Types:     comp.Types,
		})
	}

	photos := make([]string, 0, len(place.Photos))
	for _, photo := range place.Photos {
		if photo.Name != "" {
			photos = append(photos, fmt.Sprintf("%s/%s/media?maxWidthPx=800", googlePlacesURL, photo.Name))
		}
	}

	var hours *entities.HoursInput
	if place.CurrentOpeningHours != nil && !place.CurrentOpeningHours.Empty() {
		hours = place.CurrentOpeningHours
	}

	return providers.PlaceResult{
		ID:                place.ID,
		DisplayName:       place.DisplayName.Text,
		FormattedAddress:  place.FormattedAddress,
		Location:          entities.LatLng{Lat: place.Location.Latitude, Lng: place.Location.Longitude},
		Viewport:          place.Viewport.toViewport(),
		AddressComponents: components,
		Types:             place.Types,
		Rating:            place.Rating,
		UserRatingCount:   place.UserRatingCount,
		PriceLevel:        place.PriceLevel,
		Phone:             place.NationalPhoneNumber,
		Website:           place.WebsiteURI,
		PhotoURLs:         photos,
		OpeningHours:      hours,
	}
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	PlaceID          string         `json:"place_id"`
	FormattedAddress string         `json:"formatted_address"`
	Types            []string       `json:"types"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
	Viewport googleBounds   `json:"viewport"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleBounds struct {
	Northeast *googleLocation `json:"northeast,omitempty"`
	Southwest *googleLocation `json:"southwest,omitempty"`
}

func (b googleBounds) toViewport() *entities.Viewport {
	if b.Northeast == nil || b.Southwest == nil {
		return nil
	}
	return &entities.Viewport{
		NorthEast: entities.LatLng{Lat: b.Northeast.Lat, Lng: b.Northeast.Lng},
		SouthWest: entities.LatLng{Lat: b.Southwest.Lat, Lng: b.Southwest.Lng},
	}
}

type googlePlacesSearchResponse struct {
	Places []googlePlace `json:"places"`
}

type googlePlace struct {
	ID                  string                   `json:"id"`
	DisplayName         googleLocalizedText      `json:"displayName"`
	FormattedAddress    string                   `json:"formattedAddress"`
	Location            googlePlaceLocation      `json:"location"`
	Viewport            googlePlaceBounds        `json:"viewport"`
	AddressComponents   []googleAddressComponent `json:"addressComponents"`
	Types               []string                 `json:"types"`
	Rating              float64                  `json:"rating"`
	UserRatingCount     int                      `json:"userRatingCount"`
	PriceLevel          string                   `json:"priceLevel"`
	NationalPhoneNumber string                   `json:"nationalPhoneNumber"`
	WebsiteURI          string                   `json:"websiteUri"`
	Photos              []googlePhoto            `json:"photos"`
	CurrentOpeningHours *entities.HoursInput     `json:"currentOpeningHours"`
}

type googleLocalizedText struct {
	Text string `json:"text"`
}

type googlePlaceLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type googlePlaceBounds struct {
	Low  *googlePlaceLocation `json:"low,omitempty"`
	High *googlePlaceLocation `json:"high,omitempty"`
}

func (b googlePlaceBounds) toViewport() *entities.Viewport {
	if b.Low == nil || b.High == nil {
		return nil
	}
	return &entities.Viewport{
		NorthEast: entities.LatLng{Lat: b.High.Latitude, Lng: b.High.Longitude},
		SouthWest: entities.LatLng{Lat: b.Low.Latitude, Lng: b.Low.Longitude},
	}
}

type googleAddressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

type googlePhoto struct {
	Name string `json:"name"`
}
