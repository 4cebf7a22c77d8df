package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
)

func recapData(current, previous int) *domain.WeeklyRecapData {
	return &domain.WeeklyRecapData{
		GroupName: "Test Group",
		CompletionRate: domain.RateSummary{
			Current:  current,
			Previous: previous,
			Delta:    current - previous,
		},
	}
}

func TestHeadline(t *testing.T) {
	milestone := domain.RecapHighlight{
		Type:        domain.HighlightStreakMilestone,
		DisplayName: "Sarah",
		StreakDays:  14,
	}

	tests := []struct {
		name string
		data *domain.WeeklyRecapData
		want string
	}{
		{
			name: "high rate",
			data: recapData(92, 85),
			want: "Test Group hit 92% this week! 💪",
		},
		{
			name: "streak milestone",
			data: func() *domain.WeeklyRecapData {
				d := recapData(75, 75)
				d.Highlights = []domain.RecapHighlight{milestone}
				return d
			}(),
			want: "Sarah hit a 14-day streak! 🔥 Your group finished at 75%.",
		},
		{
			name: "high rate outranks a milestone",
			data: func() *domain.WeeklyRecapData {
				d := recapData(95, 80)
				d.Highlights = []domain.RecapHighlight{milestone}
				return d
			}(),
			want: "Test Group hit 95% this week! 💪",
		},
		{
			name: "hot group",
			data: func() *domain.WeeklyRecapData {
				d := recapData(70, 60)
				d.Heat = &domain.HeatSummary{Tier: 5, TierName: "Blaze"}
				return d
			}(),
			want: "Test Group is heating up — now at Blaze! 🔥",
		},
		{
			name: "heat tier too low falls through to improvement",
			data: func() *domain.WeeklyRecapData {
				d := recapData(70, 60)
				d.Heat = &domain.HeatSummary{Tier: 4, TierName: "Warm"}
				return d
			}(),
			want: "Test Group improved 10% this week — keep climbing! 📈",
		},
		{
			name: "improved week",
			data: recapData(65, 55),
			want: "Test Group improved 10% this week — keep climbing! 📈",
		},
		{
			name: "flat week default",
			data: recapData(75, 75),
			want: "Test Group finished the week at 75% — here's your recap.",
		},
		{
			name: "declining week default",
			data: recapData(40, 60),
			want: "Test Group finished the week at 40% — here's your recap.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.Headline(tt.data))
		})
	}
}
