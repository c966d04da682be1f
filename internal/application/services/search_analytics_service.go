package services

import (
	"context"
	"time"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/repositories"
	"github.com/r1chc/Cookie-Spots-sub000/internal/infrastructure/observability"
)

type SearchAnalyticsService struct {
	repo repositories.SearchAnalyticsRepository
}

func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	// Execute in background to not block the user request
	go func() {
		// Use a fresh context since the request context might be cancelled
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			observability.GetLogger().Warn().
				Err(err).
				Msg("failed to log search event")
		}
	}()
}

func (s *SearchAnalyticsService) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.GetZeroResultQueries(ctx, limit)
}
