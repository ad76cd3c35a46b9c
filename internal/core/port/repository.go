package port

import (
	"context"
	"time"

	"vesselwatch/internal/core/domain"
)

// SummaryRepository persists closed windows and serves the read side of the
// status API.
type SummaryRepository interface {
	InsertSummary(ctx context.Context, summary domain.WindowSummary) error
	RecentSummaries(ctx context.Context, limit int) ([]domain.WindowSummary, error)
	SummariesInRange(ctx context.Context, from, to time.Time) ([]domain.WindowSummary, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type HealthRepository interface {
	CheckDatabaseHealth(ctx context.Context) error
}
