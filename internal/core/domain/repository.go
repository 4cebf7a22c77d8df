package domain

import (
	"context"
	"time"
)

type GroupRepository interface {
	// GetByID retrieves one group by its unique identifier.
	GetByID(ctx context.Context, id string) (*Group, error)

	// ListActive retrieves every group that could be due for a recap.
	ListActive(ctx context.Context) ([]*Group, error)

	// ListActiveMembers retrieves a group's active members with their join
	// timestamps, timezones, and notification preferences.
	ListActiveMembers(ctx context.Context, groupID string) ([]*Member, error)

	// ListJoinedBetween retrieves members whose membership started inside
	// the given window. Feeds the new_member highlight.
	ListJoinedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*Member, error)
}

type GoalRepository interface {
	// ListDailyByGroup retrieves a group's non-deleted daily-cadence goals.
	// Only daily goals enter recap statistics.
	ListDailyByGroup(ctx context.Context, groupID string) ([]*Goal, error)

	// ListCreatedBetween retrieves non-deleted goals created inside the
	// given window. Feeds the new_goal highlight.
	ListCreatedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*Goal, error)
}

type CompletionRepository interface {
	// ListByGoalsInRange retrieves every entry for the goal set within the
	// inclusive date range in one batched query. Aggregation must never
	// fall back to one query per goal or per member.
	ListByGoalsInRange(ctx context.Context, goalIDs []string, from, to time.Time) ([]*CompletionEntry, error)

	// GetForDay retrieves the single entry for (user, goal, day), or
	// ErrCompletionNotFound when the member logged nothing that day.
	GetForDay(ctx context.Context, userID, goalID string, day time.Time) (*CompletionEntry, error)
}

type RollupRepository interface {
	// ListDailyRates retrieves the pre-aggregated per-day group completion
	// rows inside the inclusive date range.
	ListDailyRates(ctx context.Context, groupID string, from, to time.Time) ([]*DailyGroupRate, error)
}

type ActivityRepository interface {
	// CountActivity tallies photos, reactions, and nudges for the group
	// inside the inclusive date range.
	CountActivity(ctx context.Context, groupID string, from, to time.Time) (*ActivityCounts, error)
}

type HeatRepository interface {
	// GetCurrent retrieves the group's momentum snapshot. A group with no
	// heat record yields (nil, nil); heat is optional in a recap.
	GetCurrent(ctx context.Context, groupID string) (*GroupHeat, error)
}

type RecapSentRepository interface {
	// WasSent reports whether the exact (group, week end) marker exists.
	WasSent(ctx context.Context, groupID string, weekEnd time.Time) (bool, error)

	// SentWithin reports whether any marker exists with a week end in the
	// inclusive date range. Guards against timezone-induced double windows.
	SentWithin(ctx context.Context, groupID string, from, to time.Time) (bool, error)

	// MarkSent claims the (group, week end) pair. A concurrent or repeated
	// claim returns ErrRecapAlreadySent; callers treat that as "another run
	// handled this", never as a failure.
	MarkSent(ctx context.Context, groupID string, weekEnd time.Time) error
}

type NotificationRepository interface {
	// CreateBatch persists the in-app notification rows for one recap.
	CreateBatch(ctx context.Context, notifications []*MemberNotification) error
}
