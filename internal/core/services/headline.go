package services

import (
	"fmt"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

const headlineHighRate = 90
const headlineHeatTier = 5
const headlineHeatDelta = 5

// Headline reduces an assembled recap to the one sentence used as the push
// body. The rules form a waterfall: the first match wins, and a very strong
// week outranks an individual streak milestone even when both hold.
func Headline(data *domain.WeeklyRecapData) string {
	rate := data.CompletionRate.Current
	delta := data.CompletionRate.Delta

	if rate >= headlineHighRate {
		return fmt.Sprintf("%s hit %d%% this week! 💪", data.GroupName, rate)
	}

	if m := firstMilestone(data.Highlights); m != nil {
		return fmt.Sprintf("%s hit a %d-day streak! 🔥 Your group finished at %d%%.", m.DisplayName, m.StreakDays, rate)
	}

	if data.Heat != nil && data.Heat.Tier >= headlineHeatTier && delta > headlineHeatDelta {
		return fmt.Sprintf("%s is heating up — now at %s! 🔥", data.GroupName, data.Heat.TierName)
	}

	if delta > 0 {
		return fmt.Sprintf("%s improved %d%% this week — keep climbing! 📈", data.GroupName, delta)
	}

	return fmt.Sprintf("%s finished the week at %d%% — here's your recap.", data.GroupName, rate)
}

func firstMilestone(highlights []domain.RecapHighlight) *domain.RecapHighlight {
	for i := range highlights {
		if highlights[i].Type == domain.HighlightStreakMilestone {
			return &highlights[i]
		}
	}
	return nil
}
