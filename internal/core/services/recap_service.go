package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

const maxGoalBreakdown = 5

const recapPushTitle = "Your Weekly Recap"

// PushDispatcher hands off a push request without waiting for the outcome.
// Delivery failures are the dispatcher's problem, never the assembler's.
type PushDispatcher interface {
	Enqueue(req domain.PushRequest)
}

type RecapService struct {
	groupRepo    domain.GroupRepository
	goalRepo     domain.GoalRepository
	activityRepo domain.ActivityRepository
	heatRepo     domain.HeatRepository
	recapRepo    domain.RecapSentRepository
	notifRepo    domain.NotificationRepository
	stats        *StatsService
	streaks      *StreakService
	gate         *GateService
	pusher       PushDispatcher
}

func NewRecapService(
	groupRepo domain.GroupRepository,
	goalRepo domain.GoalRepository,
	activityRepo domain.ActivityRepository,
	heatRepo domain.HeatRepository,
	recapRepo domain.RecapSentRepository,
	notifRepo domain.NotificationRepository,
	stats *StatsService,
	streaks *StreakService,
	gate *GateService,
	pusher PushDispatcher,
) *RecapService {
	return &RecapService{
		groupRepo:    groupRepo,
		goalRepo:     goalRepo,
		activityRepo: activityRepo,
		heatRepo:     heatRepo,
		recapRepo:    recapRepo,
		notifRepo:    notifRepo,
		stats:        stats,
		streaks:      streaks,
		gate:         gate,
		pusher:       pusher,
	}
}

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
)

// Outcome is the result of one group's recap cycle.
type Outcome struct {
	Status          string            `json:"status"`
	Reason          domain.SkipReason `json:"reason,omitempty"`
	WeekEnd         time.Time         `json:"week_end,omitzero"`
	NotifiedMembers int               `json:"notified_members,omitempty"`
	SkippedMembers  int               `json:"skipped_members,omitempty"`
}

// ProcessGroup runs the full pipeline for one group: gate, aggregate, rank,
// headline, deliver, mark sent. It is the unit of work a sweep fans out.
func (s *RecapService) ProcessGroup(ctx context.Context, group *domain.Group, now time.Time) (*Outcome, error) {
	members, err := s.groupRepo.ListActiveMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListDailyByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	gate, err := s.gate.Evaluate(ctx, group, members, goals, now)
	if err != nil {
		return nil, err
	}
	if !gate.Eligible {
		return &Outcome{Status: OutcomeSkipped, Reason: gate.Reason, WeekEnd: gate.Window.End}, nil
	}

	return s.processEligible(ctx, group, members, goals, gate.Window, now)
}

// ForceProcess runs the pipeline for an explicit group and week, bypassing
// the timezone-window check. Dedup still applies.
func (s *RecapService) ForceProcess(ctx context.Context, groupID string, weekEnd time.Time) (*Outcome, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := s.groupRepo.ListActiveMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListDailyByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	gate, err := s.gate.EvaluateForced(ctx, group, members, goals, weekEnd)
	if err != nil {
		return nil, err
	}
	if !gate.Eligible {
		return &Outcome{Status: OutcomeSkipped, Reason: gate.Reason, WeekEnd: gate.Window.End}, nil
	}

	return s.processEligible(ctx, group, members, goals, gate.Window, time.Now().UTC())
}

func (s *RecapService) processEligible(ctx context.Context, group *domain.Group, members []*domain.Member, goals []*domain.Goal, window domain.Window, now time.Time) (*Outcome, error) {
	data, err := s.assemble(ctx, group, members, goals, window, now)
	if err != nil {
		return nil, fmt.Errorf("assembling recap for group %s: %w", group.ID, err)
	}

	notified, skipped, err := s.deliver(ctx, members, data)
	if err != nil {
		return nil, fmt.Errorf("delivering recap for group %s: %w", group.ID, err)
	}

	// The marker goes in last so a crash mid-delivery leans toward a
	// duplicate on the next run instead of a silently missing recap.
	if err := s.recapRepo.MarkSent(ctx, group.ID, window.End); err != nil {
		if errors.Is(err, domain.ErrRecapAlreadySent) {
			return &Outcome{Status: OutcomeSkipped, Reason: domain.SkipAlreadySent, WeekEnd: window.End}, nil
		}
		return nil, err
	}

	return &Outcome{
		Status:          OutcomeSent,
		WeekEnd:         window.End,
		NotifiedMembers: notified,
		SkippedMembers:  skipped,
	}, nil
}

// assemble builds the immutable WeeklyRecapData. Stats and streaks must land
// before highlight selection; the headline reads the finished struct.
func (s *RecapService) assemble(ctx context.Context, group *domain.Group, members []*domain.Member, goals []*domain.Goal, window domain.Window, now time.Time) (*domain.WeeklyRecapData, error) {
	weekStats, err := s.stats.AggregateWeek(ctx, group, window)
	if err != nil {
		return nil, err
	}

	streaks, err := s.streaks.GroupStreaks(ctx, members, goals, window, now)
	if err != nil {
		return nil, err
	}

	activity, err := s.activityRepo.CountActivity(ctx, group.ID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	newMembers, err := s.groupRepo.ListJoinedBetween(ctx, group.ID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	newGoals, err := s.goalRepo.ListCreatedBetween(ctx, group.ID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	heat, err := s.heatRepo.GetCurrent(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	highlights := SelectHighlights(HighlightInput{
		Members:      weekStats.Members,
		Streaks:      streaks,
		Activity:     *activity,
		NewMembers:   newMembers,
		NewGoals:     newGoals,
		Heat:         heat,
		CurrentRate:  weekStats.CurrentRate,
		PreviousRate: weekStats.PreviousRate,
	})

	breakdown := weekStats.Goals
	if len(breakdown) > maxGoalBreakdown {
		breakdown = breakdown[:maxGoalBreakdown]
	}

	data := &domain.WeeklyRecapData{
		GroupID:   group.ID,
		GroupName: group.Name,
		Window:    window,
		CompletionRate: domain.RateSummary{
			Current:  weekStats.CurrentRate,
			Previous: weekStats.PreviousRate,
			Delta:    weekStats.CurrentRate - weekStats.PreviousRate,
		},
		Highlights:    highlights,
		GoalBreakdown: breakdown,
		MemberCount:   len(members),
	}

	if heat != nil {
		data.Heat = &domain.HeatSummary{
			Score:      heat.Score,
			Tier:       heat.Tier,
			TierName:   heat.TierName,
			StreakDays: heat.StreakDays,
			// No weekly tier snapshot exists yet to diff against.
			TierDelta: 0,
		}
	}

	return data, nil
}

// deliver writes one inbox notification per opted-in member and hands the
// push to the dispatcher. The push is fire-and-forget; the inbox rows are the
// durable record.
func (s *RecapService) deliver(ctx context.Context, members []*domain.Member, data *domain.WeeklyRecapData) (notified, skipped int, err error) {
	headline := Headline(data)

	payload, err := json.Marshal(data)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now().UTC()
	weekEndKey := data.Window.End.Format("2006-01-02")

	var notifications []*domain.MemberNotification
	var pushTargets []string

	for _, m := range members {
		if !m.RecapsEnabled {
			skipped++
			continue
		}

		notifications = append(notifications, &domain.MemberNotification{
			ID:        uuid.NewString(),
			UserID:    m.UserID,
			GroupID:   data.GroupID,
			Kind:      domain.NotificationKindWeeklyRecap,
			Title:     recapPushTitle,
			Body:      headline,
			Payload:   string(payload),
			CreatedAt: now,
		})
		notified++

		if !m.PushesDisabled {
			pushTargets = append(pushTargets, m.UserID)
		}
	}

	if len(notifications) > 0 {
		if err := s.notifRepo.CreateBatch(ctx, notifications); err != nil {
			return 0, 0, err
		}
	}

	if len(pushTargets) > 0 {
		s.pusher.Enqueue(domain.PushRequest{
			UserIDs: pushTargets,
			Title:   recapPushTitle,
			Body:    headline,
			Data: map[string]string{
				"type":     domain.NotificationKindWeeklyRecap,
				"group_id": data.GroupID,
				"week_end": weekEndKey,
			},
		})
	}

	return notified, skipped, nil
}
