package domain

import "time"

// Window is an inclusive calendar-date range, Monday through Sunday for a
// weekly recap. Both bounds are midnight-UTC days.
type Window struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// WeekWindow builds the Monday–Sunday window ending on weekEnd.
func WeekWindow(weekEnd time.Time) Window {
	end := weekEnd.UTC().Truncate(24 * time.Hour)
	return Window{Start: end.AddDate(0, 0, -6), End: end}
}

// Prior returns the window of equal length ending 7 days earlier.
func (w Window) Prior() Window {
	return Window{Start: w.Start.AddDate(0, 0, -7), End: w.End.AddDate(0, 0, -7)}
}

// Days counts the inclusive number of calendar days in the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) Contains(day time.Time) bool {
	d := day.UTC().Truncate(24 * time.Hour)
	return !d.Before(w.Start) && !d.After(w.End)
}

type MemberStats struct {
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Rate         int    `json:"rate"`
	PreviousRate *int   `json:"previous_rate,omitempty"`
}

type GoalWeeklyStats struct {
	GoalID         string `json:"goal_id"`
	Title          string `json:"title"`
	CompletionRate int    `json:"completion_rate"`
	MetricType     string `json:"metric_type"`
}

// streakMilestones are the streak lengths worth celebrating in a recap.
var streakMilestones = map[int]bool{7: true, 14: true, 21: true, 30: true, 50: true, 100: true}

func IsStreakMilestone(days int) bool {
	return streakMilestones[days]
}

// StreakData is one member's live consecutive-day streak on one goal.
// Records exist only for streaks of at least one day.
type StreakData struct {
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name"`
	GoalID             string `json:"goal_id"`
	GoalTitle          string `json:"goal_title"`
	StreakDays         int    `json:"streak_days"`
	MilestonedThisWeek bool   `json:"milestoned_this_week"`
}

// DailyGroupRate is one row of the upstream per-day group completion rollup.
// GCR is the fraction (0..1) of possible completions achieved that day.
type DailyGroupRate struct {
	GroupID        string    `json:"group_id" db:"group_id"`
	Date           time.Time `json:"date" db:"date"`
	GCR            float64   `json:"gcr" db:"gcr"`
	TotalPossible  int       `json:"total_possible" db:"total_possible"`
	TotalCompleted int       `json:"total_completed" db:"total_completed"`
}

// GroupHeat is the externally computed momentum snapshot for a group.
type GroupHeat struct {
	GroupID    string  `json:"group_id" db:"group_id"`
	Score      float64 `json:"score" db:"score"`
	Tier       int     `json:"tier" db:"tier"`
	TierName   string  `json:"tier_name" db:"tier_name"`
	StreakDays int     `json:"streak_days" db:"streak_days"`
}

// ActivityCounts are the group's social signals inside one window.
type ActivityCounts struct {
	Photos    int `json:"photos" db:"photos"`
	Reactions int `json:"reactions" db:"reactions"`
	Nudges    int `json:"nudges" db:"nudges"`
}
