package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(userID, goalID string, day time.Time, value int) *domain.CompletionEntry {
	return &domain.CompletionEntry{
		ID:          userID + "-" + goalID + "-" + day.Format("2006-01-02"),
		UserID:      userID,
		GoalID:      goalID,
		Value:       value,
		PeriodStart: day,
	}
}

func TestStatsService_AggregateWeek(t *testing.T) {
	ctx := context.Background()

	group := &domain.Group{ID: "g1", Name: "Test Group"}
	window := domain.WeekWindow(utcDay(2024, 1, 14))
	prior := window.Prior()

	goals := []*domain.Goal{
		{ID: "goal1", GroupID: "g1", Title: "Meditate", MetricType: domain.MetricTypeBinary, TargetValue: 1},
		{ID: "goal2", GroupID: "g1", Title: "Read", MetricType: domain.MetricTypeNumeric, TargetValue: 20},
	}

	members := []*domain.Member{
		{UserID: "alice", GroupID: "g1", DisplayName: "Alice", JoinedAt: utcDay(2023, 12, 1)},
		{UserID: "bob", GroupID: "g1", DisplayName: "Bob", JoinedAt: utcDay(2024, 1, 11)},
	}

	t.Run("Success: rates respect join dates and metric rules", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		goalRepo := new(MockGoalRepo)
		entryRepo := new(MockCompletionRepo)
		rollupRepo := new(MockRollupRepo)

		svc := services.NewStatsService(groupRepo, goalRepo, entryRepo, rollupRepo)

		groupRepo.On("ListActiveMembers", ctx, "g1").Return(members, nil)
		goalRepo.On("ListDailyByGroup", ctx, "g1").Return(goals, nil)

		var entries []*domain.CompletionEntry
		// Alice completes the binary goal all seven days of the current week.
		for d := 8; d <= 14; d++ {
			entries = append(entries, entry("alice", "goal1", utcDay(2024, 1, d), 1))
		}
		// Alice reaches the reading target three times, misses once.
		entries = append(entries,
			entry("alice", "goal2", utcDay(2024, 1, 11), 25),
			entry("alice", "goal2", utcDay(2024, 1, 12), 30),
			entry("alice", "goal2", utcDay(2024, 1, 13), 21),
			entry("alice", "goal2", utcDay(2024, 1, 14), 10),
		)
		// Bob joined Jan 11 and logged the binary goal twice.
		entries = append(entries,
			entry("bob", "goal1", utcDay(2024, 1, 11), 1),
			entry("bob", "goal1", utcDay(2024, 1, 12), 1),
		)
		// Alice's prior week: binary goal all seven days.
		for d := 1; d <= 7; d++ {
			entries = append(entries, entry("alice", "goal1", utcDay(2024, 1, d), 1))
		}

		entryRepo.On("ListByGoalsInRange", ctx, []string{"goal1", "goal2"}, prior.Start, window.End).
			Return(entries, nil)

		var rollup []*domain.DailyGroupRate
		for d := 1; d <= 7; d++ {
			rollup = append(rollup, &domain.DailyGroupRate{GroupID: "g1", Date: utcDay(2024, 1, d), GCR: 0.4})
		}
		for d := 8; d <= 14; d++ {
			rollup = append(rollup, &domain.DailyGroupRate{GroupID: "g1", Date: utcDay(2024, 1, d), GCR: 0.5})
		}
		rollupRepo.On("ListDailyRates", ctx, "g1", prior.Start, window.End).Return(rollup, nil)

		stats, err := svc.AggregateWeek(ctx, group, window)

		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, 2, stats.MemberCount)
		assert.Equal(t, 2, stats.GoalCount)
		assert.Equal(t, 50, stats.CurrentRate)
		assert.Equal(t, 40, stats.PreviousRate)

		require.Len(t, stats.Members, 2)

		alice := findMember(stats.Members, "alice")
		require.NotNil(t, alice)
		// 10 completed units over 2 goals x 7 days.
		assert.Equal(t, 71, alice.Rate)
		require.NotNil(t, alice.PreviousRate)
		assert.Equal(t, 50, *alice.PreviousRate)

		bob := findMember(stats.Members, "bob")
		require.NotNil(t, bob)
		// 2 completed units over 2 goals x 4 countable days.
		assert.Equal(t, 25, bob.Rate)
		assert.Nil(t, bob.PreviousRate, "no countable prior days, previous rate undefined")

		require.Len(t, stats.Goals, 2)
		assert.Equal(t, "goal1", stats.Goals[0].GoalID, "breakdown sorted by rate descending")
		assert.Equal(t, 82, stats.Goals[0].CompletionRate) // 9 of 11 member-days
		assert.Equal(t, "goal2", stats.Goals[1].GoalID)
		assert.Equal(t, 27, stats.Goals[1].CompletionRate) // 3 of 11 member-days
	})

	t.Run("Edge case: no goals yields empty member stats, rollup rates survive", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		goalRepo := new(MockGoalRepo)
		entryRepo := new(MockCompletionRepo)
		rollupRepo := new(MockRollupRepo)

		svc := services.NewStatsService(groupRepo, goalRepo, entryRepo, rollupRepo)

		groupRepo.On("ListActiveMembers", ctx, "g1").Return(members, nil)
		goalRepo.On("ListDailyByGroup", ctx, "g1").Return([]*domain.Goal{}, nil)
		rollupRepo.On("ListDailyRates", ctx, "g1", mock.Anything, mock.Anything).
			Return([]*domain.DailyGroupRate{{GroupID: "g1", Date: utcDay(2024, 1, 10), GCR: 0.8}}, nil)

		stats, err := svc.AggregateWeek(ctx, group, window)

		require.NoError(t, err)
		assert.Empty(t, stats.Members)
		assert.Empty(t, stats.Goals)
		assert.Equal(t, 80, stats.CurrentRate)
		entryRepo.AssertNotCalled(t, "ListByGoalsInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Edge case: empty rollup yields zero group rates", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		goalRepo := new(MockGoalRepo)
		entryRepo := new(MockCompletionRepo)
		rollupRepo := new(MockRollupRepo)

		svc := services.NewStatsService(groupRepo, goalRepo, entryRepo, rollupRepo)

		groupRepo.On("ListActiveMembers", ctx, "g1").Return([]*domain.Member{}, nil)
		goalRepo.On("ListDailyByGroup", ctx, "g1").Return(goals, nil)
		rollupRepo.On("ListDailyRates", ctx, "g1", mock.Anything, mock.Anything).
			Return([]*domain.DailyGroupRate{}, nil)

		stats, err := svc.AggregateWeek(ctx, group, window)

		require.NoError(t, err)
		assert.Equal(t, 0, stats.CurrentRate)
		assert.Equal(t, 0, stats.PreviousRate)
		assert.Empty(t, stats.Members)
	})

	t.Run("Fail: repo errors propagate", func(t *testing.T) {
		groupRepo := new(MockGroupRepo)
		goalRepo := new(MockGoalRepo)
		entryRepo := new(MockCompletionRepo)
		rollupRepo := new(MockRollupRepo)

		svc := services.NewStatsService(groupRepo, goalRepo, entryRepo, rollupRepo)

		dbErr := errors.New("db connection lost")
		groupRepo.On("ListActiveMembers", ctx, "g1").Return(nil, dbErr)

		stats, err := svc.AggregateWeek(ctx, group, window)

		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, stats)
	})
}

func findMember(stats []domain.MemberStats, userID string) *domain.MemberStats {
	for i := range stats {
		if stats[i].UserID == userID {
			return &stats[i]
		}
	}
	return nil
}
