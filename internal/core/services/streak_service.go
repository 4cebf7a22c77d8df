package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// maxStreakLookback caps the backward walk. A streak longer than a year is
// pathological data, not a streak.
const maxStreakLookback = 365

const defaultStreakWorkers = 8

type StreakService struct {
	entryRepo domain.CompletionRepository
	workers   int
}

func NewStreakService(entryRepo domain.CompletionRepository) *StreakService {
	return &StreakService{
		entryRepo: entryRepo,
		workers:   defaultStreakWorkers,
	}
}

// StreakFor walks backward one day at a time from today and counts consecutive
// days on which the member's entry satisfies the goal. A streak may end today
// or yesterday; anything older means the streak is broken and counts as zero.
// Returns the streak length and the most recent counted day.
func (s *StreakService) StreakFor(ctx context.Context, userID string, goal *domain.Goal, today time.Time) (int, time.Time, error) {
	day := today.UTC().Truncate(24 * time.Hour)

	ok, err := s.dayCompleted(ctx, userID, goal, day)
	if err != nil {
		return 0, time.Time{}, err
	}
	if !ok {
		// Today may simply not be logged yet; a streak ending yesterday
		// is still alive.
		day = day.AddDate(0, 0, -1)
		ok, err = s.dayCompleted(ctx, userID, goal, day)
		if err != nil {
			return 0, time.Time{}, err
		}
		if !ok {
			return 0, time.Time{}, nil
		}
	}

	lastCounted := day
	streak := 1

	for streak < maxStreakLookback {
		day = day.AddDate(0, 0, -1)
		ok, err := s.dayCompleted(ctx, userID, goal, day)
		if err != nil {
			return 0, time.Time{}, err
		}
		if !ok {
			break
		}
		streak++
	}

	return streak, lastCounted, nil
}

func (s *StreakService) dayCompleted(ctx context.Context, userID string, goal *domain.Goal, day time.Time) (bool, error) {
	entry, err := s.entryRepo.GetForDay(ctx, userID, goal.ID, day)
	if err != nil {
		if errors.Is(err, domain.ErrCompletionNotFound) {
			return false, nil
		}
		return false, err
	}
	return goal.Completes(entry.Value), nil
}

// GroupStreaks computes every (member, goal) streak for the group. Pairs are
// independent, so they fan out across a bounded set of goroutines. Zero
// streaks are not emitted; the result is sorted longest-first so downstream
// highlight generation is deterministic.
func (s *StreakService) GroupStreaks(ctx context.Context, members []*domain.Member, goals []*domain.Goal, week domain.Window, today time.Time) ([]domain.StreakData, error) {
	type pair struct {
		member *domain.Member
		goal   *domain.Goal
	}

	pairs := make([]pair, 0, len(members)*len(goals))
	for _, m := range members {
		for _, g := range goals {
			pairs = append(pairs, pair{member: m, goal: g})
		}
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		streaks  []domain.StreakData
		firstErr error
	)

	sem := make(chan struct{}, s.workers)

	for _, p := range pairs {
		wg.Add(1)
		sem <- struct{}{}
		go func(p pair) {
			defer wg.Done()
			defer func() { <-sem }()

			days, lastDay, err := s.StreakFor(ctx, p.member.UserID, p.goal, today)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if days < 1 {
				return
			}

			streaks = append(streaks, domain.StreakData{
				UserID:             p.member.UserID,
				DisplayName:        p.member.DisplayName,
				GoalID:             p.goal.ID,
				GoalTitle:          p.goal.Title,
				StreakDays:         days,
				MilestonedThisWeek: domain.IsStreakMilestone(days) && week.Contains(lastDay),
			})
		}(p)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(streaks, func(i, j int) bool {
		if streaks[i].StreakDays != streaks[j].StreakDays {
			return streaks[i].StreakDays > streaks[j].StreakDays
		}
		if streaks[i].UserID != streaks[j].UserID {
			return streaks[i].UserID < streaks[j].UserID
		}
		return streaks[i].GoalID < streaks[j].GoalID
	})

	return streaks, nil
}
