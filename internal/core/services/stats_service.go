package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

type StatsService struct {
	groupRepo  domain.GroupRepository
	goalRepo   domain.GoalRepository
	entryRepo  domain.CompletionRepository
	rollupRepo domain.RollupRepository
}

func NewStatsService(groupRepo domain.GroupRepository, goalRepo domain.GoalRepository, entryRepo domain.CompletionRepository, rollupRepo domain.RollupRepository) *StatsService {
	return &StatsService{
		groupRepo:  groupRepo,
		goalRepo:   goalRepo,
		entryRepo:  entryRepo,
		rollupRepo: rollupRepo,
	}
}

// GroupWeekStats is the raw numeric picture of one group's week: per-member
// and per-goal completion rates recomputed from the entry log, plus the
// group-level rate read from the daily rollup.
type GroupWeekStats struct {
	Members      []domain.MemberStats
	Goals        []domain.GoalWeeklyStats
	CurrentRate  int
	PreviousRate int
	MemberCount  int
	GoalCount    int
}

// AggregateWeek computes the group's stats for the given Monday–Sunday window
// and the equal-length window ending 7 days earlier. All completion entries
// for both windows come back in a single batched query; per-member and
// per-goal loops only walk the in-memory index.
func (s *StatsService) AggregateWeek(ctx context.Context, group *domain.Group, window domain.Window) (*GroupWeekStats, error) {
	members, err := s.groupRepo.ListActiveMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListDailyByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	stats := &GroupWeekStats{
		MemberCount: len(members),
		GoalCount:   len(goals),
	}

	prior := window.Prior()

	current, previous, err := s.groupRates(ctx, group.ID, window, prior)
	if err != nil {
		return nil, err
	}
	stats.CurrentRate = current
	stats.PreviousRate = previous

	if len(members) == 0 || len(goals) == 0 {
		return stats, nil
	}

	goalIDs := make([]string, 0, len(goals))
	for _, g := range goals {
		goalIDs = append(goalIDs, g.ID)
	}

	entries, err := s.entryRepo.ListByGoalsInRange(ctx, goalIDs, prior.Start, window.End)
	if err != nil {
		return nil, err
	}

	index := indexEntries(entries)

	for _, m := range members {
		rate, denom := memberRate(index, m, goals, window)
		if denom == 0 {
			continue
		}

		ms := domain.MemberStats{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Rate:        rate,
		}

		if prevRate, prevDenom := memberRate(index, m, goals, prior); prevDenom > 0 {
			ms.PreviousRate = &prevRate
		}

		stats.Members = append(stats.Members, ms)
	}

	for _, g := range goals {
		completed, denom := 0, 0
		for _, m := range members {
			c, d := goalDayUnits(index, m, g, window)
			completed += c
			denom += d
		}
		if denom == 0 {
			continue
		}

		stats.Goals = append(stats.Goals, domain.GoalWeeklyStats{
			GoalID:         g.ID,
			Title:          g.Title,
			CompletionRate: roundRate(completed, denom),
			MetricType:     g.MetricType,
		})
	}

	sort.SliceStable(stats.Goals, func(i, j int) bool {
		return stats.Goals[i].CompletionRate > stats.Goals[j].CompletionRate
	})

	return stats, nil
}

// groupRates averages the pre-aggregated daily rollup rows over each window.
// The rollup spares a second scan of the raw entry log for the headline
// percentage; missing days simply do not contribute.
func (s *StatsService) groupRates(ctx context.Context, groupID string, window, prior domain.Window) (int, int, error) {
	rows, err := s.rollupRepo.ListDailyRates(ctx, groupID, prior.Start, window.End)
	if err != nil {
		return 0, 0, err
	}

	var curSum, prevSum float64
	var curN, prevN int
	for _, r := range rows {
		switch {
		case window.Contains(r.Date):
			curSum += r.GCR
			curN++
		case prior.Contains(r.Date):
			prevSum += r.GCR
			prevN++
		}
	}

	current, previous := 0, 0
	if curN > 0 {
		current = int(math.Round(curSum / float64(curN) * 100))
	}
	if prevN > 0 {
		previous = int(math.Round(prevSum / float64(prevN) * 100))
	}
	return current, previous, nil
}

// entryIndex maps goal ID → user ID → day key → entry.
type entryIndex map[string]map[string]map[string]*domain.CompletionEntry

func indexEntries(entries []*domain.CompletionEntry) entryIndex {
	index := make(entryIndex)
	for _, e := range entries {
		byUser, ok := index[e.GoalID]
		if !ok {
			byUser = make(map[string]map[string]*domain.CompletionEntry)
			index[e.GoalID] = byUser
		}
		byDay, ok := byUser[e.UserID]
		if !ok {
			byDay = make(map[string]*domain.CompletionEntry)
			byUser[e.UserID] = byDay
		}
		byDay[e.DayKey()] = e
	}
	return index
}

func (idx entryIndex) lookup(goalID, userID string, day time.Time) *domain.CompletionEntry {
	return idx[goalID][userID][day.UTC().Format("2006-01-02")]
}

// memberDays clips the window to the member's join date and counts the
// remaining days. A member who joined after the window ends has no countable
// days.
func memberDays(m *domain.Member, w domain.Window) domain.Window {
	joined := m.JoinedAt.UTC().Truncate(24 * time.Hour)
	if joined.After(w.Start) {
		w.Start = joined
	}
	return w
}

func memberRate(index entryIndex, m *domain.Member, goals []*domain.Goal, w domain.Window) (int, int) {
	completed, denom := 0, 0
	for _, g := range goals {
		c, d := goalDayUnits(index, m, g, w)
		completed += c
		denom += d
	}
	if denom == 0 {
		return 0, 0
	}
	return roundRate(completed, denom), denom
}

func goalDayUnits(index entryIndex, m *domain.Member, g *domain.Goal, w domain.Window) (completed, possible int) {
	clipped := memberDays(m, w)
	if clipped.Start.After(clipped.End) {
		return 0, 0
	}

	for day := clipped.Start; !day.After(clipped.End); day = day.AddDate(0, 0, 1) {
		possible++
		if e := index.lookup(g.ID, m.UserID, day); e != nil && g.Completes(e.Value) {
			completed++
		}
	}
	return completed, possible
}

func roundRate(completed, possible int) int {
	return int(math.Round(float64(completed) / float64(possible) * 100))
}
