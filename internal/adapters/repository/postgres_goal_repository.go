package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

func (r *PostgresGoalRepository) ListDailyByGroup(ctx context.Context, groupID string) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}

	query := `
		SELECT id, group_id, title, cadence, metric_type, target_value, unit,
		       created_at, updated_at, deleted_at
		FROM goals
		WHERE group_id = $1
		  AND cadence = $2
		  AND deleted_at IS NULL
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &goals, query, groupID, domain.CadenceDaily); err != nil {
		return nil, fmt.Errorf("goal list query failed: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) ListCreatedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}

	query := `
		SELECT id, group_id, title, cadence, metric_type, target_value, unit,
		       created_at, updated_at, deleted_at
		FROM goals
		WHERE group_id = $1
		  AND deleted_at IS NULL
		  AND created_at::date >= $2::date
		  AND created_at::date <= $3::date
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &goals, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("new goal query failed: %w", err)
	}
	return goals, nil
}
