package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrGoalTitleEmpty     = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong   = errors.New("goal title is too long (max 100 chars)")
	ErrGoalInvalidGroupID = errors.New("invalid group id")
	ErrInvalidCadence     = errors.New("invalid cadence (must be daily, weekly, monthly, or yearly)")
	ErrInvalidMetricType  = errors.New("invalid metric type (must be binary, numeric, or duration)")
	ErrInvalidTarget      = errors.New("target cannot be negative")
	ErrGoalNotFound       = errors.New("goal not found")
)

const (
	MetricTypeBinary   = "binary"
	MetricTypeNumeric  = "numeric"
	MetricTypeDuration = "duration"

	CadenceDaily   = "daily"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
	CadenceYearly  = "yearly"

	MaxGoalTitleLen = 100
)

type Goal struct {
	ID          string     `json:"id" db:"id"`
	GroupID     string     `json:"group_id" db:"group_id"`
	Title       string     `json:"title" db:"title"`
	Cadence     string     `json:"cadence" db:"cadence"`
	MetricType  string     `json:"metric_type" db:"metric_type"`
	TargetValue int        `json:"target_value" db:"target_value"`
	Unit        string     `json:"unit,omitempty" db:"unit"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewGoal(groupID, title, cadence, metricType string, target int) (*Goal, error) {
	if groupID == "" {
		return nil, ErrGoalInvalidGroupID
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrGoalTitleEmpty
	}
	if len(trimmed) > MaxGoalTitleLen {
		return nil, ErrGoalTitleTooLong
	}

	switch cadence {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceYearly:
	default:
		return nil, ErrInvalidCadence
	}

	switch metricType {
	case MetricTypeBinary, MetricTypeNumeric, MetricTypeDuration:
	default:
		return nil, ErrInvalidMetricType
	}

	safeTarget := target
	if metricType == MetricTypeBinary {
		safeTarget = 1
	} else if target < 0 {
		return nil, ErrInvalidTarget
	}

	now := time.Now().UTC()

	return &Goal{
		GroupID:     groupID,
		Title:       trimmed,
		Cadence:     cadence,
		MetricType:  metricType,
		TargetValue: safeTarget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (g *Goal) IsDeleted() bool {
	return g.DeletedAt != nil
}

// Completes reports whether a logged value satisfies this goal for one day.
// Binary goals need an exact completion, value-based goals must reach the
// target. A value-based goal with no target counts any logged value.
func (g *Goal) Completes(value int) bool {
	switch g.MetricType {
	case MetricTypeBinary:
		return value == 1
	case MetricTypeNumeric, MetricTypeDuration:
		if g.TargetValue <= 0 {
			return value >= 0
		}
		return value >= g.TargetValue
	default:
		return false
	}
}
