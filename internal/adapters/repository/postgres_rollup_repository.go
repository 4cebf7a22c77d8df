package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// PostgresRollupRepository reads the upstream-maintained per-day group
// completion rollup. This engine never writes these rows.
type PostgresRollupRepository struct {
	db *sqlx.DB
}

func NewPostgresRollupRepository(db *sqlx.DB) *PostgresRollupRepository {
	return &PostgresRollupRepository{db: db}
}

func (r *PostgresRollupRepository) ListDailyRates(ctx context.Context, groupID string, from, to time.Time) ([]*domain.DailyGroupRate, error) {
	rows := []*domain.DailyGroupRate{}

	query := `
		SELECT group_id, date, gcr, total_possible, total_completed
		FROM group_daily_gcr
		WHERE group_id = $1
		  AND date >= $2::date
		  AND date <= $3::date
		ORDER BY date ASC`

	if err := r.db.SelectContext(ctx, &rows, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("rollup query failed: %w", err)
	}
	return rows, nil
}

// PostgresActivityRepository tallies the week's social signals from the
// group activity event log.
type PostgresActivityRepository struct {
	db *sqlx.DB
}

func NewPostgresActivityRepository(db *sqlx.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) CountActivity(ctx context.Context, groupID string, from, to time.Time) (*domain.ActivityCounts, error) {
	var counts domain.ActivityCounts

	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'photo')    AS photos,
			COUNT(*) FILTER (WHERE kind = 'reaction') AS reactions,
			COUNT(*) FILTER (WHERE kind = 'nudge')    AS nudges
		FROM group_activity
		WHERE group_id = $1
		  AND created_at::date >= $2::date
		  AND created_at::date <= $3::date`

	if err := r.db.GetContext(ctx, &counts, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("activity count query failed: %w", err)
	}
	return &counts, nil
}

// PostgresHeatRepository reads the externally computed momentum snapshot.
type PostgresHeatRepository struct {
	db *sqlx.DB
}

func NewPostgresHeatRepository(db *sqlx.DB) *PostgresHeatRepository {
	return &PostgresHeatRepository{db: db}
}

func (r *PostgresHeatRepository) GetCurrent(ctx context.Context, groupID string) (*domain.GroupHeat, error) {
	var heat domain.GroupHeat

	query := `
		SELECT group_id, score, tier, tier_name, streak_days
		FROM group_heat
		WHERE group_id = $1`

	err := r.db.GetContext(ctx, &heat, query, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Heat is optional; a group may predate the heat service.
			return nil, nil
		}
		return nil, fmt.Errorf("heat query failed: %w", err)
	}
	return &heat, nil
}
