package services

import (
	"fmt"
	"sort"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// Signal thresholds for highlight candidates.
const (
	minLongestStreak = 7
	minImprovement   = 10
	minPhotos        = 3
	minReactions     = 5
	minNudges        = 3
)

// HighlightInput is everything the week produced that could become a
// highlight.
type HighlightInput struct {
	Members      []domain.MemberStats
	Streaks      []domain.StreakData
	Activity     domain.ActivityCounts
	NewMembers   []*domain.Member
	NewGoals     []*domain.Goal
	Heat         *domain.GroupHeat
	CurrentRate  int
	PreviousRate int
}

// SelectHighlights turns the week's signals into at most four ranked
// highlights. Every rule fires independently; candidates are then stable-sorted
// by priority and picked greedily with a per-member cap, so no one member
// dominates the recap. The result is never empty: a quiet week gets the
// fallback highlight.
func SelectHighlights(in HighlightInput) []domain.RecapHighlight {
	candidates := generateCandidates(in)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	perMember := make(map[string]int)
	selected := make([]domain.RecapHighlight, 0, domain.MaxHighlights)

	for _, c := range candidates {
		if len(selected) == domain.MaxHighlights {
			break
		}
		if c.UserID != "" && perMember[c.UserID] >= domain.MaxHighlightsPerMember {
			continue
		}
		selected = append(selected, c)
		if c.UserID != "" {
			perMember[c.UserID]++
		}
	}

	if len(selected) < 2 {
		selected = append(selected, domain.RecapHighlight{
			Type:     domain.HighlightFallback,
			Priority: domain.PriorityFallback,
			Emoji:    "✨",
			Text:     domain.FallbackHighlightText,
		})
	}

	return selected
}

// generateCandidates evaluates every rule in fixed priority order. The
// ordering here is what makes the later stable sort deterministic for
// equal-priority candidates.
func generateCandidates(in HighlightInput) []domain.RecapHighlight {
	var out []domain.RecapHighlight

	for _, s := range in.Streaks {
		if !s.MilestonedThisWeek {
			continue
		}
		out = append(out, domain.RecapHighlight{
			Type:        domain.HighlightStreakMilestone,
			Priority:    domain.PriorityStreakMilestone,
			Emoji:       "🔥",
			Text:        fmt.Sprintf("%s hit a %d-day streak on %s!", s.DisplayName, s.StreakDays, s.GoalTitle),
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			StreakDays:  s.StreakDays,
		})
	}

	for _, m := range in.Members {
		if m.Rate != 100 {
			continue
		}
		out = append(out, domain.RecapHighlight{
			Type:        domain.HighlightPerfectWeek,
			Priority:    domain.PriorityPerfectWeek,
			Emoji:       "🏆",
			Text:        fmt.Sprintf("%s finished every goal this week — 100%%!", m.DisplayName),
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
		})
	}

	if best := longestStreak(in.Streaks); best != nil && best.StreakDays >= minLongestStreak {
		out = append(out, domain.RecapHighlight{
			Type:        domain.HighlightLongestStreak,
			Priority:    domain.PriorityLongestStreak,
			Emoji:       "🔥",
			Text:        fmt.Sprintf("%s leads the group with a %d-day streak", best.DisplayName, best.StreakDays),
			UserID:      best.UserID,
			DisplayName: best.DisplayName,
			StreakDays:  best.StreakDays,
		})
	}

	if improved, delta := mostImproved(in.Members); improved != nil {
		out = append(out, domain.RecapHighlight{
			Type:        domain.HighlightMostImproved,
			Priority:    domain.PriorityMostImproved,
			Emoji:       "📈",
			Text:        fmt.Sprintf("%s improved %d%% over last week", improved.DisplayName, delta),
			UserID:      improved.UserID,
			DisplayName: improved.DisplayName,
		})
	}

	if in.Activity.Photos >= minPhotos {
		out = append(out, domain.RecapHighlight{
			Type:     domain.HighlightPhotos,
			Priority: domain.PriorityPhotos,
			Emoji:    "📸",
			Text:     fmt.Sprintf("The group shared %d photos this week", in.Activity.Photos),
		})
	}

	if in.Activity.Reactions >= minReactions {
		out = append(out, domain.RecapHighlight{
			Type:     domain.HighlightReactions,
			Priority: domain.PriorityReactions,
			Emoji:    "❤️",
			Text:     fmt.Sprintf("Members sent %d reactions this week", in.Activity.Reactions),
		})
	}

	if in.Activity.Nudges >= minNudges {
		out = append(out, domain.RecapHighlight{
			Type:     domain.HighlightNudges,
			Priority: domain.PriorityNudges,
			Emoji:    "👊",
			Text:     fmt.Sprintf("%d nudges kept everyone honest", in.Activity.Nudges),
		})
	}

	for _, m := range in.NewMembers {
		out = append(out, domain.RecapHighlight{
			Type:        domain.HighlightNewMember,
			Priority:    domain.PriorityNewMember,
			Emoji:       "👋",
			Text:        fmt.Sprintf("%s joined the group", m.DisplayName),
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
		})
	}

	// Priority 2 (heat tier increase) stays reserved until a weekly tier
	// snapshot exists to diff against.

	for _, g := range in.NewGoals {
		out = append(out, domain.RecapHighlight{
			Type:     domain.HighlightNewGoal,
			Priority: domain.PriorityNewGoal,
			Emoji:    "🎯",
			Text:     fmt.Sprintf("New goal: %s", g.Title),
		})
	}

	return out
}

func longestStreak(streaks []domain.StreakData) *domain.StreakData {
	var best *domain.StreakData
	for i := range streaks {
		if best == nil || streaks[i].StreakDays > best.StreakDays {
			best = &streaks[i]
		}
	}
	return best
}

func mostImproved(members []domain.MemberStats) (*domain.MemberStats, int) {
	var best *domain.MemberStats
	bestDelta := 0
	for i := range members {
		m := &members[i]
		if m.PreviousRate == nil {
			continue
		}
		delta := m.Rate - *m.PreviousRate
		if delta < minImprovement {
			continue
		}
		if best == nil || delta > bestDelta {
			best = m
			bestDelta = delta
		}
	}
	return best, bestDelta
}
