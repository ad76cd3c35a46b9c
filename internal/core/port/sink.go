package port

import (
	"context"

	"vesselwatch/internal/core/domain"
)

// SummarySink receives each closed window exactly once. The engine does not
// retry or block on acknowledgement; a failing sink only costs the one
// summary it failed on.
type SummarySink interface {
	Persist(ctx context.Context, summary domain.WindowSummary) error
}
