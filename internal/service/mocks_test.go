package service_test

import (
	"context"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockMemberRepo
type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}
func (m *MockMemberRepo) ListDirectRecruits(ctx context.Context, memberID int32) ([]domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}
func (m *MockMemberRepo) SubtreeIDs(ctx context.Context, memberID int32, maxDepth int32) ([]int32, error) {
	args := m.Called(ctx, memberID, maxDepth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

// MockStatsRepo
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) Get(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralStats), args.Error(1)
}
func (m *MockStatsRepo) Save(ctx context.Context, stats *domain.ReferralStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

// MockAdvancementRepo
type MockAdvancementRepo struct {
	mock.Mock
}

func (m *MockAdvancementRepo) Promote(ctx context.Context, memberID int32, fromRole domain.MembershipRole, rec *domain.RoleAdvancement) (bool, error) {
	args := m.Called(ctx, memberID, fromRole, rec)
	return args.Bool(0), args.Error(1)
}
func (m *MockAdvancementRepo) ListRecent(ctx context.Context, limit int32) ([]domain.RoleAdvancement, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoleAdvancement), args.Error(1)
}
func (m *MockAdvancementRepo) CountTransitions(ctx context.Context, memberIDs []int32) ([]repository.TransitionCount, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TransitionCount), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.AdvancementRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int32) (*domain.AdvancementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdvancementRequest), args.Error(1)
}
func (m *MockRequestRepo) HasPending(ctx context.Context, memberID int32) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) MarkReviewed(ctx context.Context, id int32, status domain.AdvancementRequestStatus, reviewerID int32, rejectionReason string) (bool, error) {
	args := m.Called(ctx, id, status, reviewerID, rejectionReason)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) ListPending(ctx context.Context) ([]domain.AdvancementRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdvancementRequest), args.Error(1)
}

// MockContributionRepo
type MockContributionRepo struct {
	mock.Mock
}

func (m *MockContributionRepo) TotalByMember(ctx context.Context, memberID int32) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingsRepo
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) AdvancementMode(ctx context.Context) (domain.AdvancementMode, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.AdvancementMode), args.Error(1)
}

// MockRecheckQueueRepo
type MockRecheckQueueRepo struct {
	mock.Mock
}

func (m *MockRecheckQueueRepo) Enqueue(ctx context.Context, memberID int32) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}
func (m *MockRecheckQueueRepo) DequeueBatch(ctx context.Context, limit int32) ([]int32, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Recalculate(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralStats), args.Error(1)
}
func (m *MockStatsService) GetStats(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralStats), args.Error(1)
}

// MockProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Evaluate(ctx context.Context, memberID int32) (*domain.RoleProgress, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleProgress), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAdvancementNotification(ctx context.Context, email, name string, fromRole, toRole domain.MembershipRole) error {
	args := m.Called(ctx, email, name, fromRole, toRole)
	return args.Error(0)
}
func (m *MockEmailService) SendRejectionNotification(ctx context.Context, email, name string, requestedRole domain.MembershipRole, reason string) error {
	args := m.Called(ctx, email, name, requestedRole, reason)
	return args.Error(0)
}
