package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// In-memory implementations of the store interfaces. They back the service
// and worker tests and double as a reference for the semantics the Postgres
// adapters must honor, most importantly the unique-claim behavior of the
// recap-sent marker.

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

type InMemoryGroupRepository struct {
	mu      sync.RWMutex
	groups  map[string]*domain.Group
	members map[string][]*domain.Member
}

func NewInMemoryGroupRepository() *InMemoryGroupRepository {
	return &InMemoryGroupRepository{
		groups:  make(map[string]*domain.Group),
		members: make(map[string][]*domain.Member),
	}
}

func (r *InMemoryGroupRepository) AddGroup(group *domain.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.ID] = group
}

func (r *InMemoryGroupRepository) AddMember(member *domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.GroupID] = append(r.members[member.GroupID], member)
}

func (r *InMemoryGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return group, nil
}

func (r *InMemoryGroupRepository) ListActive(ctx context.Context) ([]*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (r *InMemoryGroupRepository) ListActiveMembers(ctx context.Context, groupID string) ([]*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Member(nil), r.members[groupID]...), nil
}

func (r *InMemoryGroupRepository) ListJoinedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var joined []*domain.Member
	for _, m := range r.members[groupID] {
		day := m.JoinedAt.UTC().Truncate(24 * time.Hour)
		if !day.Before(from) && !day.After(to) {
			joined = append(joined, m)
		}
	}
	return joined, nil
}

type InMemoryGoalRepository struct {
	mu    sync.RWMutex
	goals map[string]*domain.Goal
}

func NewInMemoryGoalRepository() *InMemoryGoalRepository {
	return &InMemoryGoalRepository{goals: make(map[string]*domain.Goal)}
}

func (r *InMemoryGoalRepository) AddGoal(goal *domain.Goal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals[goal.ID] = goal
}

func (r *InMemoryGoalRepository) ListDailyByGroup(ctx context.Context, groupID string) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var goals []*domain.Goal
	for _, g := range r.goals {
		if g.GroupID == groupID && g.Cadence == domain.CadenceDaily && !g.IsDeleted() {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (r *InMemoryGoalRepository) ListCreatedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var goals []*domain.Goal
	for _, g := range r.goals {
		if g.GroupID != groupID || g.IsDeleted() {
			continue
		}
		day := g.CreatedAt.UTC().Truncate(24 * time.Hour)
		if !day.Before(from) && !day.After(to) {
			goals = append(goals, g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

type InMemoryCompletionRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.CompletionEntry
}

func NewInMemoryCompletionRepository() *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{entries: make(map[string]*domain.CompletionEntry)}
}

func completionKey(userID, goalID string, day time.Time) string {
	return userID + "|" + goalID + "|" + dayKey(day)
}

func (r *InMemoryCompletionRepository) AddEntry(entry *domain.CompletionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[completionKey(entry.UserID, entry.GoalID, entry.PeriodStart)] = entry
}

func (r *InMemoryCompletionRepository) ListByGoalsInRange(ctx context.Context, goalIDs []string, from, to time.Time) ([]*domain.CompletionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(goalIDs))
	for _, id := range goalIDs {
		wanted[id] = true
	}

	var out []*domain.CompletionEntry
	for _, e := range r.entries {
		if !wanted[e.GoalID] {
			continue
		}
		day := e.PeriodStart.UTC().Truncate(24 * time.Hour)
		if !day.Before(from) && !day.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *InMemoryCompletionRepository) GetForDay(ctx context.Context, userID, goalID string, day time.Time) (*domain.CompletionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[completionKey(userID, goalID, day)]
	if !ok {
		return nil, domain.ErrCompletionNotFound
	}
	return entry, nil
}

type InMemoryRollupRepository struct {
	mu   sync.RWMutex
	rows map[string][]*domain.DailyGroupRate
}

func NewInMemoryRollupRepository() *InMemoryRollupRepository {
	return &InMemoryRollupRepository{rows: make(map[string][]*domain.DailyGroupRate)}
}

func (r *InMemoryRollupRepository) AddRow(row *domain.DailyGroupRate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[row.GroupID] = append(r.rows[row.GroupID], row)
}

func (r *InMemoryRollupRepository) ListDailyRates(ctx context.Context, groupID string, from, to time.Time) ([]*domain.DailyGroupRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.DailyGroupRate
	for _, row := range r.rows[groupID] {
		day := row.Date.UTC().Truncate(24 * time.Hour)
		if !day.Before(from) && !day.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

type InMemoryActivityRepository struct {
	mu     sync.RWMutex
	counts map[string]domain.ActivityCounts
}

func NewInMemoryActivityRepository() *InMemoryActivityRepository {
	return &InMemoryActivityRepository{counts: make(map[string]domain.ActivityCounts)}
}

func (r *InMemoryActivityRepository) SetCounts(groupID string, counts domain.ActivityCounts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[groupID] = counts
}

func (r *InMemoryActivityRepository) CountActivity(ctx context.Context, groupID string, from, to time.Time) (*domain.ActivityCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := r.counts[groupID]
	return &counts, nil
}

type InMemoryHeatRepository struct {
	mu   sync.RWMutex
	heat map[string]*domain.GroupHeat
}

func NewInMemoryHeatRepository() *InMemoryHeatRepository {
	return &InMemoryHeatRepository{heat: make(map[string]*domain.GroupHeat)}
}

func (r *InMemoryHeatRepository) SetHeat(heat *domain.GroupHeat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heat[heat.GroupID] = heat
}

func (r *InMemoryHeatRepository) GetCurrent(ctx context.Context, groupID string) (*domain.GroupHeat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.heat[groupID], nil
}

type InMemoryRecapSentRepository struct {
	mu      sync.Mutex
	markers map[string]map[string]time.Time
}

func NewInMemoryRecapSentRepository() *InMemoryRecapSentRepository {
	return &InMemoryRecapSentRepository{markers: make(map[string]map[string]time.Time)}
}

func (r *InMemoryRecapSentRepository) WasSent(ctx context.Context, groupID string, weekEnd time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.markers[groupID][dayKey(weekEnd)]
	return ok, nil
}

func (r *InMemoryRecapSentRepository) SentWithin(ctx context.Context, groupID string, from, to time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.markers[groupID] {
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if !day.Before(from) && !day.After(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRecapSentRepository) MarkSent(ctx context.Context, groupID string, weekEnd time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byWeek, ok := r.markers[groupID]
	if !ok {
		byWeek = make(map[string]time.Time)
		r.markers[groupID] = byWeek
	}

	key := dayKey(weekEnd)
	if _, exists := byWeek[key]; exists {
		return domain.ErrRecapAlreadySent
	}
	byWeek[key] = time.Now().UTC()
	return nil
}

type InMemoryNotificationRepository struct {
	mu      sync.Mutex
	created []*domain.MemberNotification
}

func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{}
}

func (r *InMemoryNotificationRepository) CreateBatch(ctx context.Context, notifications []*domain.MemberNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, notifications...)
	return nil
}

func (r *InMemoryNotificationRepository) Created() []*domain.MemberNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.MemberNotification(nil), r.created...)
}
