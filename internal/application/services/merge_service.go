package services

import (
	"sort"
	"strings"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

// SortOrder selects a client-side sort for merged results. Sorting is
// always re-derived from the merged set; the upstream provider's own sort
// is never trusted.
type SortOrder string

const (
	SortRatingDesc      SortOrder = "rating_desc"
	SortRatingAsc       SortOrder = "rating_asc"
	SortReviewCountDesc SortOrder = "review_count_desc"
)

// MergeService combines pipeline output with venues already held in the
// persisted store, dropping duplicates.
type MergeService struct{}

// NewMergeService creates a new merge service
func NewMergeService() *MergeService {
	return &MergeService{}
}

// Merge returns the union of stored and external venues. Stored venues
// always win: an external venue is dropped when it shares an id with a
// stored one, or when its lower-cased name plus address collides.
func (s *MergeService) Merge(stored, external []entities.Venue) []entities.Venue {
	byID := make(map[string]bool, len(stored))
	byNameAddress := make(map[string]bool, len(stored))

	merged := make([]entities.Venue, 0, len(stored)+len(external))
	for _, venue := range stored {
		merged = append(merged, venue)
		if venue.ID != "" {
			byID[venue.ID] = true
		}
		byNameAddress[compositeKey(&venue)] = true
	}

	for _, venue := range external {
		if venue.ID != "" && byID[venue.ID] {
			continue
		}
		key := compositeKey(&venue)
		if byNameAddress[key] {
			continue
		}
		merged = append(merged, venue)
		if venue.ID != "" {
			byID[venue.ID] = true
		}
		byNameAddress[key] = true
	}

	return merged
}

// Filter keeps venues whose name, description, or type arrays mention the
// keyword. An empty keyword keeps everything.
func (s *MergeService) Filter(venues []entities.Venue, keyword string) []entities.Venue {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return venues
	}

	filtered := []entities.Venue{}
	for _, venue := range venues {
		if venueMatchesKeyword(&venue, keyword) {
			filtered = append(filtered, venue)
		}
	}
	return filtered
}

// Sort orders venues by the requested criterion. Unknown orders fall back
// to rating descending.
func (s *MergeService) Sort(venues []entities.Venue, order SortOrder) []entities.Venue {
	sorted := make([]entities.Venue, len(venues))
	copy(sorted, venues)

	switch order {
	case SortRatingAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Rating < sorted[j].Rating
		})
	case SortReviewCountDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].RatingCount > sorted[j].RatingCount
		})
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Rating > sorted[j].Rating
		})
	}
	return sorted
}

func compositeKey(venue *entities.Venue) string {
	return strings.ToLower(venue.Name) + "|" + strings.ToLower(venue.Address)
}

func venueMatchesKeyword(venue *entities.Venue, keyword string) bool {
	if strings.Contains(strings.ToLower(venue.Name), keyword) {
		return true
	}
	if strings.Contains(strings.ToLower(venue.Description), keyword) {
		return true
	}
	for _, t := range venue.CookieTypes {
		if strings.Contains(strings.ToLower(t), keyword) {
			return true
		}
	}
	for _, t := range venue.DietaryOptions {
		if strings.Contains(strings.ToLower(t), keyword) {
			return true
		}
	}
	return false
}
