package services

import (
	"sort"
	"strings"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

// Name keywords that disqualify a venue outright no matter what other
// signals it carries.
var exclusionKeywords = []string{
	"uniqlo", "clothing", "apparel", "fashion", "shoe", "hardware",
	"pharmacy", "drugstore", "bank", "salon", "barber", "nail",
	"gym", "fitness", "laundry", "furniture", "electronics",
}

// Name keywords that qualify a venue on their own.
var strongKeywords = []string{
	"cookie", "bakery", "pastry", "dessert", "cake", "sweet", "patisserie",
}

// Name keywords that qualify a venue only when nothing stronger matched.
var weakKeywords = []string{"bake", "cafe", "coffee"}

// Description/address keywords checked before falling back to weak name
// matching.
var textKeywords = []string{"cookie", "bakery", "cake"}

// RelevanceFilter removes venues that are clearly not cookie-related and
// ranks what remains.
type RelevanceFilter struct {
	threshold int
}

// NewRelevanceFilter creates a new relevance filter
func NewRelevanceFilter(threshold int) *RelevanceFilter {
	return &RelevanceFilter{threshold: threshold}
}

// IsRelevant classifies one venue as cookie-related.
func (f *RelevanceFilter) IsRelevant(venue *entities.Venue) bool {
	name := strings.ToLower(venue.Name)

	for _, keyword := range exclusionKeywords {
		if strings.Contains(name, keyword) {
			return false
		}
	}
	for _, keyword := range strongKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	if len(venue.CookieTypes) > 0 {
		return true
	}

	text := strings.ToLower(venue.Description + " " + venue.Address)
	for _, keyword := range textKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	for _, keyword := range weakKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// Apply returns the relevant subset when it is large enough, otherwise the
// full set sorted relevant-first then by descending rating. Sparse areas
// therefore still get results, just with the weak matches trailing.
func (f *RelevanceFilter) Apply(venues []entities.Venue) []entities.Venue {
	relevant := []entities.Venue{}
	for i := range venues {
		if f.IsRelevant(&venues[i]) {
			relevant = append(relevant, venues[i])
		}
	}

	if len(relevant) >= f.threshold {
		return relevant
	}

	ranked := make([]entities.Venue, len(venues))
	copy(ranked, venues)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := f.IsRelevant(&ranked[i]), f.IsRelevant(&ranked[j])
		if ri != rj {
			return ri
		}
		return ranked[i].Rating > ranked[j].Rating
	})
	return ranked
}
