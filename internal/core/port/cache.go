package port

import (
	"context"
	"time"

	"vesselwatch/internal/core/domain"
)

// Cache is the redis-backed read-side cache for the status API. It is a
// convenience layer only: the engine never depends on it and the server
// runs without it when redis is unreachable.
type Cache interface {
	SetLatestSummary(ctx context.Context, summary domain.WindowSummary) error
	// GetLatestSummary returns (nil, nil) when no summary has been cached.
	GetLatestSummary(ctx context.Context) (*domain.WindowSummary, error)
	CountsInRange(ctx context.Context, category domain.Category, from, to time.Time) ([]int, error)
	CleanupOldData(ctx context.Context, olderThan time.Duration) error
	Ping(ctx context.Context) error
}
