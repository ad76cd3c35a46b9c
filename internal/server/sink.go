package server

import (
	"context"
	"log/slog"

	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
)

// summarySink persists each closed window to Postgres and mirrors it into
// the redis cache. A cache failure only costs the status API a convenience
// read, so it is logged and swallowed; a repository failure is returned to
// the engine, which logs it and keeps processing.
type summarySink struct {
	repository port.SummaryRepository
	cache      port.Cache
}

func (s *summarySink) Persist(ctx context.Context, summary domain.WindowSummary) error {
	if err := s.repository.InsertSummary(ctx, summary); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.SetLatestSummary(ctx, summary); err != nil {
			slog.Warn("Failed to cache window summary", "error", err)
		}
	}

	return nil
}
