package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
	"github.com/pursueapp/recap-engine/internal/core/services"
)

const (
	DefaultSweepInterval = 30 * time.Minute
	DefaultPoolSize      = 4
)

// Scheduler drives the recap pipeline: every interval it sweeps all candidate
// groups and processes each one inside its own error boundary. Groups are
// independent, so a sweep fans out over a small bounded pool.
type Scheduler struct {
	groupRepo domain.GroupRepository
	recaps    *services.RecapService
	interval  time.Duration
	poolSize  int

	mu         sync.Mutex
	lastReport *RunReport
}

// RunReport summarizes one sweep. The scheduler keeps the most recent one
// for the admin API.
type RunReport struct {
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Groups     int                       `json:"groups"`
	Sent       int                       `json:"sent"`
	Errors     int                       `json:"errors"`
	Skipped    map[domain.SkipReason]int `json:"skipped"`
}

func NewScheduler(groupRepo domain.GroupRepository, recaps *services.RecapService, interval time.Duration, poolSize int) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}
	return &Scheduler{
		groupRepo: groupRepo,
		recaps:    recaps,
		interval:  interval,
		poolSize:  poolSize,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		log.Printf("Recap Scheduler started (interval %s, pool %d)", s.interval, s.poolSize)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx, time.Now().UTC())
			case <-ctx.Done():
				log.Println("Recap Scheduler shutting down...")
				return
			}
		}
	}()
}

// Sweep processes every candidate group once. A failure in one group is
// logged and counted; it never stops the sweep. Re-running a sweep is safe:
// dedup is keyed by (group, week end), not by run time.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) *RunReport {
	report := &RunReport{
		StartedAt: now,
		Skipped:   make(map[domain.SkipReason]int),
	}

	groups, err := s.groupRepo.ListActive(ctx)
	if err != nil {
		log.Printf("Sweep aborted: listing groups: %v", err)
		report.Errors++
		report.FinishedAt = time.Now().UTC()
		s.storeReport(report)
		return report
	}

	report.Groups = len(groups)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, s.poolSize)

	for _, group := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(group *domain.Group) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome, err := s.recaps.ProcessGroup(ctx, group, now)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Printf("Recap failed for group %s: %v", group.ID, err)
				report.Errors++
				return
			}

			switch outcome.Status {
			case services.OutcomeSent:
				report.Sent++
				log.Printf("Recap sent for group %s (week ending %s, %d notified)",
					group.ID, outcome.WeekEnd.Format("2006-01-02"), outcome.NotifiedMembers)
			case services.OutcomeSkipped:
				report.Skipped[outcome.Reason]++
			}
		}(group)
	}

	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	s.storeReport(report)

	log.Printf("Sweep finished: %d groups, %d sent, %d errors", report.Groups, report.Sent, report.Errors)
	return report
}

func (s *Scheduler) storeReport(report *RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReport = report
}

// LastReport returns the most recent sweep report, or nil before the first
// sweep completes.
func (s *Scheduler) LastReport() *RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}
