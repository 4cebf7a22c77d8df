package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("group member not found")
	ErrInvalidTimezone     = errors.New("invalid IANA timezone")
	ErrGroupNameEmpty      = errors.New("group name cannot be empty")
	ErrGroupInvalidGroupID = errors.New("invalid group id")
)

type Group struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Member is a user's active membership in one group. Timezone is the IANA
// zone the member picked in their profile; JoinedAt bounds which days count
// toward their completion denominators.
type Member struct {
	UserID         string    `json:"user_id" db:"user_id"`
	GroupID        string    `json:"group_id" db:"group_id"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	Timezone       string    `json:"timezone" db:"timezone"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`
	RecapsEnabled  bool      `json:"recaps_enabled" db:"recaps_enabled"`
	PushesDisabled bool      `json:"pushes_disabled" db:"pushes_disabled"`
}

func NewGroup(id, name string) (*Group, error) {
	if id == "" {
		return nil, ErrGroupInvalidGroupID
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrGroupNameEmpty
	}

	now := time.Now().UTC()
	return &Group{
		ID:        id,
		Name:      trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Location resolves the member's timezone, falling back to UTC when the
// stored zone is empty or unknown.
func (m *Member) Location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
