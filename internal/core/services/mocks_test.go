package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepo) ListActive(ctx context.Context) ([]*domain.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Group), args.Error(1)
}

func (m *MockGroupRepo) ListActiveMembers(ctx context.Context, groupID string) ([]*domain.Member, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockGroupRepo) ListJoinedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Member, error) {
	args := m.Called(ctx, groupID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

type MockGoalRepo struct {
	mock.Mock
}

func (m *MockGoalRepo) ListDailyByGroup(ctx context.Context, groupID string) ([]*domain.Goal, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

func (m *MockGoalRepo) ListCreatedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Goal, error) {
	args := m.Called(ctx, groupID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

type MockCompletionRepo struct {
	mock.Mock
}

func (m *MockCompletionRepo) ListByGoalsInRange(ctx context.Context, goalIDs []string, from, to time.Time) ([]*domain.CompletionEntry, error) {
	args := m.Called(ctx, goalIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CompletionEntry), args.Error(1)
}

func (m *MockCompletionRepo) GetForDay(ctx context.Context, userID, goalID string, day time.Time) (*domain.CompletionEntry, error) {
	args := m.Called(ctx, userID, goalID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompletionEntry), args.Error(1)
}

type MockRollupRepo struct {
	mock.Mock
}

func (m *MockRollupRepo) ListDailyRates(ctx context.Context, groupID string, from, to time.Time) ([]*domain.DailyGroupRate, error) {
	args := m.Called(ctx, groupID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DailyGroupRate), args.Error(1)
}

// FakeDispatcher records pushes instead of sending them.
type FakeDispatcher struct {
	mu     sync.Mutex
	pushes []domain.PushRequest
}

func (d *FakeDispatcher) Enqueue(req domain.PushRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, req)
}

func (d *FakeDispatcher) Pushes() []domain.PushRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.PushRequest(nil), d.pushes...)
}
