package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vesselwatch/internal/core/port"
)

type HealthRepository struct {
	db *sql.DB
}

func NewHealthRepository(db *sql.DB) port.HealthRepository {
	return &HealthRepository{
		db: db,
	}
}

// CheckDatabaseHealth pings the database and verifies the vessel_counts
// table is present, so a dropped schema surfaces as unhealthy rather than
// as insert failures later.
func (h *HealthRepository) CheckDatabaseHealth(ctx context.Context) error {
	if h.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	if err := h.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	query := `SELECT to_regclass('vessel_counts') IS NOT NULL`
	var exists bool
	if err := h.db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		return fmt.Errorf("database probe failed: %w", err)
	}

	if !exists {
		return fmt.Errorf("vessel_counts table is missing")
	}

	return nil
}
