package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

// ListByGoalsInRange is the one batched read the aggregator leans on: all
// entries for a whole goal set and a whole window in a single range scan.
func (r *PostgresCompletionRepository) ListByGoalsInRange(ctx context.Context, goalIDs []string, from, to time.Time) ([]*domain.CompletionEntry, error) {
	entries := []*domain.CompletionEntry{}
	if len(goalIDs) == 0 {
		return entries, nil
	}

	query := `
		SELECT id, user_id, goal_id, value, period_start, metric_type, target_value
		FROM goal_completions
		WHERE goal_id = ANY($1)
		  AND period_start >= $2::date
		  AND period_start <= $3::date
		ORDER BY period_start ASC`

	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(goalIDs), from, to); err != nil {
		return nil, fmt.Errorf("completion range query failed: %w", err)
	}
	return entries, nil
}

func (r *PostgresCompletionRepository) GetForDay(ctx context.Context, userID, goalID string, day time.Time) (*domain.CompletionEntry, error) {
	var entry domain.CompletionEntry

	query := `
		SELECT id, user_id, goal_id, value, period_start, metric_type, target_value
		FROM goal_completions
		WHERE user_id = $1 AND goal_id = $2 AND period_start = $3::date`

	err := r.db.GetContext(ctx, &entry, query, userID, goalID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("completion day query failed: %w", err)
	}
	return &entry, nil
}
