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

type PostgresGroupRepository struct {
	db *sqlx.DB
}

func NewPostgresGroupRepository(db *sqlx.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	query := `
		SELECT id, name, created_at, updated_at
		FROM groups
		WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &group, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("group query failed: %w", err)
	}
	return &group, nil
}

func (r *PostgresGroupRepository) ListActive(ctx context.Context) ([]*domain.Group, error) {
	groups := []*domain.Group{}

	query := `
		SELECT id, name, created_at, updated_at
		FROM groups
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("group list query failed: %w", err)
	}
	return groups, nil
}

func (r *PostgresGroupRepository) ListActiveMembers(ctx context.Context, groupID string) ([]*domain.Member, error) {
	members := []*domain.Member{}

	query := `
		SELECT gm.user_id, gm.group_id, u.display_name, u.timezone,
		       gm.joined_at, gm.recaps_enabled, gm.pushes_disabled
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1 AND gm.left_at IS NULL
		ORDER BY gm.joined_at ASC`

	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("member list query failed: %w", err)
	}
	return members, nil
}

func (r *PostgresGroupRepository) ListJoinedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Member, error) {
	members := []*domain.Member{}

	query := `
		SELECT gm.user_id, gm.group_id, u.display_name, u.timezone,
		       gm.joined_at, gm.recaps_enabled, gm.pushes_disabled
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		  AND gm.left_at IS NULL
		  AND gm.joined_at::date >= $2::date
		  AND gm.joined_at::date <= $3::date
		ORDER BY gm.joined_at ASC`

	if err := r.db.SelectContext(ctx, &members, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("new member query failed: %w", err)
	}
	return members, nil
}
