package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCompletion  = errors.New("invalid completion entry data")
	ErrCompletionNotFound = errors.New("completion entry not found")
)

// CompletionEntry is one row of the goal-completion log: what a member logged
// for one goal on one day. At most one entry exists per
// (user_id, goal_id, period_start); the log is read-only for this engine.
type CompletionEntry struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	GoalID      string    `json:"goal_id" db:"goal_id"`
	Value       int       `json:"value" db:"value"`
	PeriodStart time.Time `json:"period_start" db:"period_start"`
	MetricType  string    `json:"metric_type" db:"metric_type"`
	TargetValue int       `json:"target_value" db:"target_value"`
}

func (e *CompletionEntry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(e.GoalID) == "" {
		return errors.New("goal_id is required")
	}
	if e.Value < 0 {
		return errors.New("value cannot be negative")
	}
	if e.PeriodStart.IsZero() {
		return errors.New("period_start is required")
	}
	return nil
}

// Satisfied applies the metric-type completion rule carried on the entry
// itself, for callers that do not have the goal definition at hand.
func (e *CompletionEntry) Satisfied() bool {
	switch e.MetricType {
	case MetricTypeBinary:
		return e.Value == 1
	case MetricTypeNumeric, MetricTypeDuration:
		if e.TargetValue <= 0 {
			return e.Value >= 0
		}
		return e.Value >= e.TargetValue
	default:
		return false
	}
}

// DayKey returns the canonical YYYY-MM-DD key for the entry's day.
func (e *CompletionEntry) DayKey() string {
	return e.PeriodStart.UTC().Format("2006-01-02")
}
