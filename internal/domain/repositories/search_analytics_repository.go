package repositories

import (
	"context"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/entities"
)

type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}
