package domain

import (
	"errors"
	"time"
)

var (
	ErrRecapAlreadySent = errors.New("recap already sent for this group and week")
)

// Highlight types and their fixed ranking priorities. Higher wins. Priority 2
// (heat tier increase) is reserved: no historical tier snapshot exists yet, so
// no generator emits it.
const (
	HighlightStreakMilestone = "streak_milestone"
	HighlightPerfectWeek     = "perfect_week"
	HighlightLongestStreak   = "longest_streak"
	HighlightMostImproved    = "most_improved"
	HighlightPhotos          = "photos"
	HighlightReactions       = "reactions"
	HighlightNudges          = "nudges"
	HighlightNewMember       = "new_member"
	HighlightHeatTierUp      = "heat_tier_up"
	HighlightNewGoal         = "new_goal"
	HighlightFallback        = "fallback"

	PriorityStreakMilestone = 10
	PriorityPerfectWeek     = 9
	PriorityLongestStreak   = 8
	PriorityMostImproved    = 7
	PriorityPhotos          = 6
	PriorityReactions       = 5
	PriorityNudges          = 4
	PriorityNewMember       = 3
	PriorityHeatTierUp      = 2
	PriorityNewGoal         = 1
	PriorityFallback        = 0

	MaxHighlights          = 4
	MaxHighlightsPerMember = 2

	FallbackHighlightText = "Keep logging — consistency compounds!"
)

type RecapHighlight struct {
	Type        string `json:"type"`
	Priority    int    `json:"priority"`
	Emoji       string `json:"emoji"`
	Text        string `json:"text"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	StreakDays  int    `json:"streak_days,omitempty"`
}

type RateSummary struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
	Delta    int `json:"delta"`
}

type HeatSummary struct {
	Score      float64 `json:"score"`
	Tier       int     `json:"tier"`
	TierName   string  `json:"tier_name"`
	StreakDays int     `json:"streak_days"`
	TierDelta  int     `json:"tier_delta"`
}

// WeeklyRecapData is one group's assembled recap for one week. It is built
// once, read by the headline waterfall and the notification writer, and then
// discarded; the durable artifacts are the notification rows and the sent
// marker.
type WeeklyRecapData struct {
	GroupID        string            `json:"group_id"`
	GroupName      string            `json:"group_name"`
	Window         Window            `json:"window"`
	CompletionRate RateSummary       `json:"completion_rate"`
	Highlights     []RecapHighlight  `json:"highlights"`
	GoalBreakdown  []GoalWeeklyStats `json:"goal_breakdown"`
	Heat           *HeatSummary      `json:"heat,omitempty"`
	MemberCount    int               `json:"member_count"`
}

// RecapSent is the dedup marker: one row per (group, week end), primary key
// on the pair. Its existence alone means "this group-week was processed".
type RecapSent struct {
	GroupID string    `json:"group_id" db:"group_id"`
	WeekEnd time.Time `json:"week_end" db:"week_end"`
	SentAt  time.Time `json:"sent_at" db:"sent_at"`
}

// MemberNotification is the in-app inbox record written for each opted-in
// member when a recap goes out.
type MemberNotification struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	GroupID   string    `json:"group_id" db:"group_id"`
	Kind      string    `json:"kind" db:"kind"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const NotificationKindWeeklyRecap = "weekly_recap"

// PushRequest is the fire-and-forget delivery unit handed to the push
// dispatcher. Failures are logged by the dispatcher and never surface back.
type PushRequest struct {
	UserIDs []string          `json:"user_ids"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}

// SkipReason classifies why a group was passed over in a sweep. Skips are
// outcomes, not errors.
type SkipReason string

const (
	SkipNone                SkipReason = ""
	SkipOutsideWindow       SkipReason = "outside_window"
	SkipAlreadySent         SkipReason = "already_sent"
	SkipAlreadySentThisWeek SkipReason = "already_sent_this_week"
	SkipInsufficientMembers SkipReason = "insufficient_members"
	SkipNoDailyGoals        SkipReason = "no_daily_goals"
	SkipGroupTooNew         SkipReason = "group_too_new"
)
