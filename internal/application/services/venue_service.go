package services

import (
	"context"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
)

// VenueService handles business logic for persisted venues
type VenueService struct {
	repo       repositories.VenueRepository
	searchRepo repositories.VenueSearchRepository
}

// NewVenueService creates a new venue service
func NewVenueService(repo repositories.VenueRepository, searchRepo repositories.VenueSearchRepository) *VenueService {
	return &VenueService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Create persists a new venue and indexes it
func (s *VenueService) Create(ctx context.Context, venue *entities.Venue) error {
	if err := s.repo.InsertOne(ctx, venue); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, venue); err != nil {
			// Index lag is tolerated; the database row is the source of truth
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("venue_id", venue.ID).
				Msg("failed to index venue")
		}
	}

	return nil
}

// GetByID retrieves a venue by ID
func (s *VenueService) GetByID(ctx context.Context, id string) (*entities.Venue, error) {
	return s.repo.FindOne(ctx, id)
}

// Update updates a venue and refreshes its index entry
func (s *VenueService) Update(ctx context.Context, venue *entities.Venue) error {
	if err := s.repo.UpdateOne(ctx, venue); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, venue); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("venue_id", venue.ID).
				Msg("failed to update venue index")
		}
	}

	return nil
}

// Delete removes a venue and its index entry
func (s *VenueService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteOne(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Err(err).
				Str("venue_id", id).
				Msg("failed to delete venue from index")
		}
	}

	return nil
}

// List retrieves venues matching the filter
func (s *VenueService) List(ctx context.Context, filter repositories.VenueFilter) ([]*entities.Venue, error) {
	return s.repo.Find(ctx, filter)
}

// Search searches stored venues via the search index when available,
// falling back to the database
func (s *VenueService) Search(ctx context.Context, params repositories.VenueSearchParams) ([]*entities.Venue, error) {
	if s.searchRepo != nil {
		return s.searchRepo.Search(ctx, params)
	}
	return s.repo.Find(ctx, repositories.VenueFilter{
		City:  params.Query,
		Limit: params.Limit,
	})
}
