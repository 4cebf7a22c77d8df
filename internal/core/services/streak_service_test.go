package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pursueapp/recap-engine/internal/adapters/repository"
	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
)

func seedDays(repo *repository.InMemoryCompletionRepository, userID, goalID string, value int, days ...time.Time) {
	for _, d := range days {
		repo.AddEntry(entry(userID, goalID, d, value))
	}
}

func TestStreakService_StreakFor(t *testing.T) {
	ctx := context.Background()
	today := utcDay(2024, 1, 14)

	binaryGoal := &domain.Goal{ID: "goal1", MetricType: domain.MetricTypeBinary, TargetValue: 1}
	readingGoal := &domain.Goal{ID: "goal2", MetricType: domain.MetricTypeNumeric, TargetValue: 20}

	t.Run("No entries means no streak", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		days, _, err := svc.StreakFor(ctx, "alice", binaryGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 0, days)
	})

	t.Run("Consecutive days ending today", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		seedDays(repo, "alice", "goal1", 1,
			utcDay(2024, 1, 12), utcDay(2024, 1, 13), utcDay(2024, 1, 14))

		days, lastDay, err := svc.StreakFor(ctx, "alice", binaryGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 3, days)
		assert.Equal(t, today, lastDay)
	})

	t.Run("Streak ending yesterday is still alive", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		seedDays(repo, "alice", "goal1", 1,
			utcDay(2024, 1, 12), utcDay(2024, 1, 13))

		days, lastDay, err := svc.StreakFor(ctx, "alice", binaryGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 2, days)
		assert.Equal(t, utcDay(2024, 1, 13), lastDay)
	})

	t.Run("Gap of more than one day breaks the streak", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		seedDays(repo, "alice", "goal1", 1,
			utcDay(2024, 1, 11), utcDay(2024, 1, 12))

		days, _, err := svc.StreakFor(ctx, "alice", binaryGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 0, days)
	})

	t.Run("Insufficient value ends the walk", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		repo.AddEntry(entry("alice", "goal2", utcDay(2024, 1, 14), 25))
		repo.AddEntry(entry("alice", "goal2", utcDay(2024, 1, 13), 10))
		repo.AddEntry(entry("alice", "goal2", utcDay(2024, 1, 12), 30))

		days, _, err := svc.StreakFor(ctx, "alice", readingGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 1, days)
	})

	t.Run("Walk is capped at 365 days", func(t *testing.T) {
		repo := repository.NewInMemoryCompletionRepository()
		svc := services.NewStreakService(repo)

		for i := 0; i < 400; i++ {
			repo.AddEntry(entry("alice", "goal1", today.AddDate(0, 0, -i), 1))
		}

		days, _, err := svc.StreakFor(ctx, "alice", binaryGoal, today)
		require.NoError(t, err)
		assert.Equal(t, 365, days)
	})
}

func TestStreakService_GroupStreaks(t *testing.T) {
	ctx := context.Background()
	today := utcDay(2024, 1, 14)
	week := domain.WeekWindow(today)

	goal := &domain.Goal{ID: "goal1", Title: "Meditate", MetricType: domain.MetricTypeBinary, TargetValue: 1}
	members := []*domain.Member{
		{UserID: "alice", DisplayName: "Alice"},
		{UserID: "bob", DisplayName: "Bob"},
		{UserID: "carol", DisplayName: "Carol"},
	}

	repo := repository.NewInMemoryCompletionRepository()
	svc := services.NewStreakService(repo)

	// Alice: 7-day streak ending today, a fresh milestone.
	for i := 0; i < 7; i++ {
		repo.AddEntry(entry("alice", "goal1", today.AddDate(0, 0, -i), 1))
	}
	// Bob: 3-day streak, no milestone.
	for i := 0; i < 3; i++ {
		repo.AddEntry(entry("bob", "goal1", today.AddDate(0, 0, -i), 1))
	}
	// Carol: nothing logged; zero streaks are never emitted.

	streaks, err := svc.GroupStreaks(ctx, members, []*domain.Goal{goal}, week, today)
	require.NoError(t, err)
	require.Len(t, streaks, 2)

	assert.Equal(t, "alice", streaks[0].UserID, "sorted longest-first")
	assert.Equal(t, 7, streaks[0].StreakDays)
	assert.True(t, streaks[0].MilestonedThisWeek)
	assert.Equal(t, "Meditate", streaks[0].GoalTitle)

	assert.Equal(t, "bob", streaks[1].UserID)
	assert.Equal(t, 3, streaks[1].StreakDays)
	assert.False(t, streaks[1].MilestonedThisWeek)
}

func TestStreakService_MilestoneOutsidePastWeekWindow(t *testing.T) {
	ctx := context.Background()
	today := utcDay(2024, 1, 14)
	// Forced run for the prior week: the streak's newest day falls outside it.
	pastWeek := domain.WeekWindow(utcDay(2024, 1, 7))

	goal := &domain.Goal{ID: "goal1", Title: "Meditate", MetricType: domain.MetricTypeBinary, TargetValue: 1}
	members := []*domain.Member{{UserID: "alice", DisplayName: "Alice"}}

	repo := repository.NewInMemoryCompletionRepository()
	svc := services.NewStreakService(repo)

	for i := 0; i < 7; i++ {
		repo.AddEntry(entry("alice", "goal1", today.AddDate(0, 0, -i), 1))
	}

	streaks, err := svc.GroupStreaks(ctx, members, []*domain.Goal{goal}, pastWeek, today)
	require.NoError(t, err)
	require.Len(t, streaks, 1)
	assert.Equal(t, 7, streaks[0].StreakDays)
	assert.False(t, streaks[0].MilestonedThisWeek, "milestone day is outside the recap window")
}
