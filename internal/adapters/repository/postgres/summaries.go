// Package postgres persists window summaries as one row per category in the
// vessel_counts table and serves the read side of the status API.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vesselwatch/internal/core/domain"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{
		db: db,
	}
}

// EnsureSchema creates the vessel_counts table and its index when absent.
func (r *SummaryRepository) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS vessel_counts (
			id BIGSERIAL PRIMARY KEY,
			window_start TIMESTAMPTZ NOT NULL,
			window_end TIMESTAMPTZ NOT NULL,
			vessel_category TEXT NOT NULL,
			unique_vessels INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vessel_counts_window_end
			ON vessel_counts (window_end)`,
	}

	for _, stmt := range ddl {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}

// InsertSummary writes one row per category inside a single transaction, so
// a window is either fully persisted or not at all.
func (r *SummaryRepository) InsertSummary(ctx context.Context, summary domain.WindowSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO vessel_counts (window_start, window_end, vessel_category, unique_vessels)
        VALUES ($1, $2, $3, $4)
    `

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, category := range domain.Categories {
		_, err := stmt.ExecContext(ctx,
			summary.Start,
			summary.End,
			string(category),
			summary.Counts[category],
		)
		if err != nil {
			return fmt.Errorf("failed to insert count for %s: %w", category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit summary: %w", err)
	}

	return nil
}

// RecentSummaries returns up to limit of the most recently closed windows,
// newest first.
func (r *SummaryRepository) RecentSummaries(ctx context.Context, limit int) ([]domain.WindowSummary, error) {
	query := `
        SELECT window_start, window_end, vessel_category, unique_vessels
        FROM vessel_counts
        WHERE window_end IN (
            SELECT DISTINCT window_end FROM vessel_counts
            ORDER BY window_end DESC
            LIMIT $1
        )
        ORDER BY window_end DESC, vessel_category
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent summaries: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SummariesInRange returns every window whose end falls inside [from, to),
// oldest first.
func (r *SummaryRepository) SummariesInRange(ctx context.Context, from, to time.Time) ([]domain.WindowSummary, error) {
	query := `
        SELECT window_start, window_end, vessel_category, unique_vessels
        FROM vessel_counts
        WHERE window_end >= $1 AND window_end < $2
        ORDER BY window_end ASC, vessel_category
    `

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries in range: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// PruneBefore deletes rows for windows that ended before cutoff and reports
// how many were removed.
func (r *SummaryRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM vessel_counts WHERE window_end < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune old summaries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}

	return deleted, nil
}

// scanSummaries folds per-category rows back into WindowSummary values,
// relying on the query's window_end ordering.
func scanSummaries(rows *sql.Rows) ([]domain.WindowSummary, error) {
	var summaries []domain.WindowSummary
	var current *domain.WindowSummary

	for rows.Next() {
		var start, end time.Time
		var category string
		var count int

		if err := rows.Scan(&start, &end, &category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}

		if current == nil || !current.End.Equal(end) {
			summaries = append(summaries, domain.WindowSummary{
				Start:  start,
				End:    end,
				Counts: make(map[domain.Category]int, len(domain.Categories)),
			})
			current = &summaries[len(summaries)-1]
			for _, c := range domain.Categories {
				current.Counts[c] = 0
			}
		}
		current.Counts[domain.Category(category)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}

	return summaries, nil
}
