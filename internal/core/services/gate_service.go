package services

import (
	"context"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// Send-window bounds: local Sunday evening, wide enough that a sweep every 30
// minutes lands inside it exactly once.
const (
	sendWindowHour    = 19
	sendWindowLastMin = 29
	minRecapMembers   = 2
	doubleWindowGuard = 6
)

type GateService struct {
	recapRepo domain.RecapSentRepository
}

func NewGateService(recapRepo domain.RecapSentRepository) *GateService {
	return &GateService{recapRepo: recapRepo}
}

// GateResult says whether a group should be processed right now, and for
// which week. A non-eligible result carries the skip reason; the window is
// only meaningful when a timezone triggered.
type GateResult struct {
	Eligible bool
	Reason   domain.SkipReason
	Window   domain.Window
	Timezone string
}

// Evaluate decides whether the group's weekly send window has arrived and
// whether the group qualifies for a recap. The window test scans the distinct
// member timezones: one member whose local clock reads Sunday 19:00–19:29 is
// enough, and that timezone also fixes the week boundary.
func (g *GateService) Evaluate(ctx context.Context, group *domain.Group, members []*domain.Member, goals []*domain.Goal, now time.Time) (*GateResult, error) {
	weekEnd, tz, ok := triggeringWeekEnd(members, now)
	if !ok {
		return &GateResult{Reason: domain.SkipOutsideWindow}, nil
	}
	return g.checkEligibility(ctx, group, members, goals, weekEnd, tz)
}

// EvaluateForced runs every eligibility gate for an explicit week, skipping
// only the timezone-window test. Dedup stays authoritative: a force run can
// never produce a second recap for the same group-week.
func (g *GateService) EvaluateForced(ctx context.Context, group *domain.Group, members []*domain.Member, goals []*domain.Goal, weekEnd time.Time) (*GateResult, error) {
	return g.checkEligibility(ctx, group, members, goals, weekEnd.UTC().Truncate(24*time.Hour), "forced")
}

func (g *GateService) checkEligibility(ctx context.Context, group *domain.Group, members []*domain.Member, goals []*domain.Goal, weekEnd time.Time, tz string) (*GateResult, error) {
	window := domain.WeekWindow(weekEnd)
	result := &GateResult{Window: window, Timezone: tz}

	sent, err := g.recapRepo.WasSent(ctx, group.ID, weekEnd)
	if err != nil {
		return nil, err
	}
	if sent {
		result.Reason = domain.SkipAlreadySent
		return result, nil
	}

	sentNearby, err := g.recapRepo.SentWithin(ctx, group.ID, weekEnd.AddDate(0, 0, -doubleWindowGuard), weekEnd.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	if sentNearby {
		result.Reason = domain.SkipAlreadySentThisWeek
		return result, nil
	}

	if len(members) < minRecapMembers {
		result.Reason = domain.SkipInsufficientMembers
		return result, nil
	}

	if len(goals) == 0 {
		result.Reason = domain.SkipNoDailyGoals
		return result, nil
	}

	if !group.CreatedAt.UTC().Truncate(24 * time.Hour).Before(window.Start) {
		result.Reason = domain.SkipGroupTooNew
		return result, nil
	}

	result.Eligible = true
	return result, nil
}

// triggeringWeekEnd scans the distinct member timezones and returns the week
// end fixed by the first timezone whose local time sits inside the Sunday
// send window: that zone's Sunday, as a midnight-UTC calendar date.
func triggeringWeekEnd(members []*domain.Member, now time.Time) (time.Time, string, bool) {
	seen := make(map[string]bool)
	for _, m := range members {
		tz := m.Timezone
		if seen[tz] {
			continue
		}
		seen[tz] = true

		local := now.In(m.Location())
		if local.Weekday() != time.Sunday {
			continue
		}
		if local.Hour() != sendWindowHour || local.Minute() > sendWindowLastMin {
			continue
		}

		y, mo, d := local.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), tz, true
	}
	return time.Time{}, "", false
}
