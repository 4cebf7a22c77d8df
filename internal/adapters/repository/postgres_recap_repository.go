package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// PostgresRecapSentRepository owns the dedup marker. The primary key on
// (group_id, week_end) is the only concurrency control for the whole recap
// pipeline: whoever inserts first wins the week.
type PostgresRecapSentRepository struct {
	db *sqlx.DB
}

func NewPostgresRecapSentRepository(db *sqlx.DB) *PostgresRecapSentRepository {
	return &PostgresRecapSentRepository{db: db}
}

func (r *PostgresRecapSentRepository) WasSent(ctx context.Context, groupID string, weekEnd time.Time) (bool, error) {
	var count int
	query := `SELECT count(*) FROM recap_sent WHERE group_id = $1 AND week_end = $2::date`

	if err := r.db.GetContext(ctx, &count, query, groupID, weekEnd); err != nil {
		return false, fmt.Errorf("recap sent check failed: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresRecapSentRepository) SentWithin(ctx context.Context, groupID string, from, to time.Time) (bool, error) {
	var count int
	query := `
		SELECT count(*) FROM recap_sent
		WHERE group_id = $1
		  AND week_end >= $2::date
		  AND week_end <= $3::date`

	if err := r.db.GetContext(ctx, &count, query, groupID, from, to); err != nil {
		return false, fmt.Errorf("recap window check failed: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresRecapSentRepository) MarkSent(ctx context.Context, groupID string, weekEnd time.Time) error {
	query := `INSERT INTO recap_sent (group_id, week_end, sent_at) VALUES ($1, $2::date, NOW())`

	_, err := r.db.ExecContext(ctx, query, groupID, weekEnd)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrRecapAlreadySent
		}
		return fmt.Errorf("recap marker insert failed: %w", err)
	}
	return nil
}

type PostgresNotificationRepository struct {
	db *sqlx.DB
}

func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateBatch(ctx context.Context, notifications []*domain.MemberNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO member_notifications (
			id, user_id, group_id, kind, title, body, payload, created_at
		) VALUES (
			:id, :user_id, :group_id, :kind, :title, :body, :payload, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, notifications); err != nil {
		return fmt.Errorf("notification batch insert failed: %w", err)
	}
	return nil
}
