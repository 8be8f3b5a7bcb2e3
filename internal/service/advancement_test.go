package service_test

import (
	"context"
	"testing"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rolePtr(r domain.MembershipRole) *domain.MembershipRole { return &r }

func eligibleProgress(memberID int32, current, next domain.MembershipRole) *domain.RoleProgress {
	return &domain.RoleProgress{
		MemberID:    memberID,
		CurrentRole: current,
		NextRole:    rolePtr(next),
		Requirements: []domain.RequirementProgress{
			{Kind: domain.RequirementDirectReferrals, Current: 2, Required: 2, IsMet: true},
		},
		IsEligible:      true,
		ProgressPercent: 100,
	}
}

type advancementFixture struct {
	memberRepo   *MockMemberRepo
	advRepo      *MockAdvancementRepo
	requestRepo  *MockRequestRepo
	settingsRepo *MockSettingsRepo
	queueRepo    *MockRecheckQueueRepo
	progressSvc  *MockProgressService
	statsSvc     *MockStatsService
	emailSvc     *MockEmailService
	svc          service.AdvancementService
}

func newAdvancementFixture(listeners ...service.AdvancementListener) *advancementFixture {
	f := &advancementFixture{
		memberRepo:   new(MockMemberRepo),
		advRepo:      new(MockAdvancementRepo),
		requestRepo:  new(MockRequestRepo),
		settingsRepo: new(MockSettingsRepo),
		queueRepo:    new(MockRecheckQueueRepo),
		progressSvc:  new(MockProgressService),
		statsSvc:     new(MockStatsService),
		emailSvc:     new(MockEmailService),
	}
	f.svc = service.NewAdvancementService(
		f.memberRepo, f.advRepo, f.requestRepo, f.settingsRepo, f.queueRepo,
		f.progressSvc, f.statsSvc, f.emailSvc, listeners...,
	)
	return f
}

func TestAdvancementService_CheckAndAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("AutomaticPromotes", func(t *testing.T) {
		var heard []domain.RoleAdvancement
		f := newAdvancementFixture(func(_ context.Context, adv domain.RoleAdvancement) {
			heard = append(heard, adv)
		})
		recruiterID := int32(10)
		member := &domain.Member{ID: 1, Name: "Petro", Email: "petro@example.com", MembershipRole: domain.RoleCandidate, ReferredByID: &recruiterID}

		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(member, nil)
		f.advRepo.On("Promote", ctx, int32(1), domain.RoleCandidate, mock.AnythingOfType("*domain.RoleAdvancement")).
			Run(func(args mock.Arguments) {
				rec := args.Get(3).(*domain.RoleAdvancement)
				assert.Equal(t, domain.RoleMember, rec.ToRole)
				assert.Equal(t, domain.TriggerReferralCount, rec.TriggerType)
				assert.Nil(t, rec.ApprovedBy)
				assert.NotEmpty(t, rec.TriggerData)
			}).
			Return(true, nil)
		f.statsSvc.On("Recalculate", ctx, recruiterID).Return(&domain.ReferralStats{MemberID: recruiterID}, nil)
		f.queueRepo.On("Enqueue", ctx, recruiterID).Return(nil)
		f.emailSvc.On("SendAdvancementNotification", ctx, member.Email, member.Name, domain.RoleCandidate, domain.RoleMember).Return(nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.True(t, res.Advanced)
		assert.Equal(t, domain.RoleMember, res.NewRole)
		assert.False(t, res.Queued)
		require.Len(t, heard, 1)
		assert.Equal(t, domain.RoleMember, heard[0].ToRole)
		f.advRepo.AssertExpectations(t)
		f.queueRepo.AssertExpectations(t)
	})

	t.Run("NotEligibleIsNoop", func(t *testing.T) {
		f := newAdvancementFixture()
		progress := eligibleProgress(1, domain.RoleCandidate, domain.RoleMember)
		progress.IsEligible = false
		progress.Requirements[0].IsMet = false

		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(progress, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
		assert.False(t, res.Queued)
		f.advRepo.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("TopRankIsNoop", func(t *testing.T) {
		f := newAdvancementFixture()
		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(&domain.RoleProgress{
			MemberID: 1, CurrentRole: domain.RoleNationalLeader, ProgressPercent: 100,
		}, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
	})

	t.Run("ApprovalModeQueuesRequest", func(t *testing.T) {
		f := newAdvancementFixture()
		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeApprovalRequired, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.requestRepo.On("HasPending", ctx, int32(1)).Return(false, nil)
		f.requestRepo.On("Create", ctx, mock.MatchedBy(func(req *domain.AdvancementRequest) bool {
			return req.MemberID == 1 && req.RequestedRole == domain.RoleMember
		})).Return(nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.True(t, res.Queued)
		assert.False(t, res.Advanced)
		f.advRepo.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ApprovalModeSecondCheckCreatesNothing", func(t *testing.T) {
		f := newAdvancementFixture()
		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeApprovalRequired, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.requestRepo.On("HasPending", ctx, int32(1)).Return(true, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.True(t, res.Queued)
		f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RoleChangedAfterEvaluationBacksOff", func(t *testing.T) {
		f := newAdvancementFixture()
		// Eligibility was computed while the member was a candidate, but a
		// manual advance to activist landed before the promotion attempt. The
		// stale candidate-to-member promotion would be a demotion and must
		// not reach the store.
		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, Email: "p@example.com", MembershipRole: domain.RoleActivist}, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
		assert.False(t, res.Queued)
		f.advRepo.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentIdenticalPromotionBacksOff", func(t *testing.T) {
		f := newAdvancementFixture()
		// The racing promotion already moved the member to the same target
		// rank; the second call sees the changed role and is a quiet no-op.
		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, Email: "p@example.com", MembershipRole: domain.RoleMember}, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
		f.advRepo.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentPromotionLosesQuietly", func(t *testing.T) {
		f := newAdvancementFixture()
		member := &domain.Member{ID: 1, Email: "p@example.com", MembershipRole: domain.RoleCandidate}

		f.settingsRepo.On("AdvancementMode", ctx).Return(domain.AdvancementModeAutomatic, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(member, nil)
		f.advRepo.On("Promote", ctx, int32(1), domain.RoleCandidate, mock.AnythingOfType("*domain.RoleAdvancement")).Return(false, nil)

		res, err := f.svc.CheckAndAdvance(ctx, 1, nil)
		require.NoError(t, err)
		assert.False(t, res.Advanced)
		f.emailSvc.AssertNotCalled(t, "SendAdvancementNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAdvancementService_ManuallyAdvance(t *testing.T) {
	ctx := context.Background()
	adminID := int32(7)

	t.Run("BypassesEligibility", func(t *testing.T) {
		f := newAdvancementFixture()
		member := &domain.Member{ID: 1, Email: "p@example.com", MembershipRole: domain.RoleSupporter}

		f.memberRepo.On("GetByID", ctx, int32(1)).Return(member, nil)
		f.advRepo.On("Promote", ctx, int32(1), domain.RoleSupporter, mock.AnythingOfType("*domain.RoleAdvancement")).
			Run(func(args mock.Arguments) {
				rec := args.Get(3).(*domain.RoleAdvancement)
				assert.Equal(t, domain.TriggerManual, rec.TriggerType)
				assert.Equal(t, domain.RoleActivist, rec.ToRole)
				require.NotNil(t, rec.ApprovedBy)
				assert.Equal(t, adminID, *rec.ApprovedBy)
				assert.NotNil(t, rec.ApprovedAt)
			}).
			Return(true, nil)
		f.emailSvc.On("SendAdvancementNotification", ctx, member.Email, member.Name, domain.RoleSupporter, domain.RoleActivist).Return(nil)

		err := f.svc.ManuallyAdvance(ctx, 1, domain.RoleActivist, adminID, "exceptional field work")
		require.NoError(t, err)
		f.advRepo.AssertExpectations(t)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		f := newAdvancementFixture()
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, MembershipRole: domain.RoleMember}, nil)

		err := f.svc.ManuallyAdvance(ctx, 1, "warlord", adminID, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DemotionRejected", func(t *testing.T) {
		f := newAdvancementFixture()
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, MembershipRole: domain.RoleOrganizer}, nil)

		err := f.svc.ManuallyAdvance(ctx, 1, domain.RoleMember, adminID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("SameRoleRejected", func(t *testing.T) {
		f := newAdvancementFixture()
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, MembershipRole: domain.RoleMember}, nil)

		err := f.svc.ManuallyAdvance(ctx, 1, domain.RoleMember, adminID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("ConcurrentRoleChangeFails", func(t *testing.T) {
		f := newAdvancementFixture()
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, MembershipRole: domain.RoleMember}, nil)
		f.advRepo.On("Promote", ctx, int32(1), domain.RoleMember, mock.AnythingOfType("*domain.RoleAdvancement")).Return(false, nil)

		err := f.svc.ManuallyAdvance(ctx, 1, domain.RoleActivist, adminID, "")
		assert.Error(t, err)
	})
}

func TestAdvancementService_ProcessRequest(t *testing.T) {
	ctx := context.Background()
	adminID := int32(7)

	pendingReq := func() *domain.AdvancementRequest {
		return &domain.AdvancementRequest{
			ID:            5,
			MemberID:      1,
			CurrentRole:   domain.RoleCandidate,
			RequestedRole: domain.RoleMember,
			Status:        domain.AdvancementRequestStatusPending,
		}
	}

	t.Run("Approve", func(t *testing.T) {
		f := newAdvancementFixture()
		member := &domain.Member{ID: 1, Name: "Petro", Email: "p@example.com", MembershipRole: domain.RoleCandidate}

		f.requestRepo.On("GetByID", ctx, int32(5)).Return(pendingReq(), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(member, nil)
		f.progressSvc.On("Evaluate", ctx, int32(1)).Return(eligibleProgress(1, domain.RoleCandidate, domain.RoleMember), nil)
		f.advRepo.On("Promote", ctx, int32(1), domain.RoleCandidate, mock.AnythingOfType("*domain.RoleAdvancement")).
			Run(func(args mock.Arguments) {
				rec := args.Get(3).(*domain.RoleAdvancement)
				require.NotNil(t, rec.ApprovedBy)
				assert.Equal(t, adminID, *rec.ApprovedBy)
				assert.Contains(t, rec.TriggerData, `"request_id":5`)
			}).
			Return(true, nil)
		f.requestRepo.On("MarkReviewed", ctx, int32(5), domain.AdvancementRequestStatusApproved, adminID, "").Return(true, nil)
		f.emailSvc.On("SendAdvancementNotification", ctx, member.Email, member.Name, domain.RoleCandidate, domain.RoleMember).Return(nil)

		err := f.svc.ProcessRequest(ctx, 5, adminID, true, "")
		require.NoError(t, err)
		f.requestRepo.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		f := newAdvancementFixture()
		member := &domain.Member{ID: 1, Name: "Petro", Email: "p@example.com", MembershipRole: domain.RoleCandidate}

		f.requestRepo.On("GetByID", ctx, int32(5)).Return(pendingReq(), nil)
		f.requestRepo.On("MarkReviewed", ctx, int32(5), domain.AdvancementRequestStatusRejected, adminID, "needs more tenure").Return(true, nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(member, nil)
		f.emailSvc.On("SendRejectionNotification", ctx, member.Email, member.Name, domain.RoleMember, "needs more tenure").Return(nil)

		err := f.svc.ProcessRequest(ctx, 5, adminID, false, "needs more tenure")
		require.NoError(t, err)
		f.advRepo.AssertNotCalled(t, "Promote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyProcessed", func(t *testing.T) {
		f := newAdvancementFixture()
		req := pendingReq()
		req.Status = domain.AdvancementRequestStatusApproved
		f.requestRepo.On("GetByID", ctx, int32(5)).Return(req, nil)

		err := f.svc.ProcessRequest(ctx, 5, adminID, true, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("MemberAlreadyAtRequestedRole", func(t *testing.T) {
		f := newAdvancementFixture()
		f.requestRepo.On("GetByID", ctx, int32(5)).Return(pendingReq(), nil)
		f.memberRepo.On("GetByID", ctx, int32(1)).Return(&domain.Member{ID: 1, MembershipRole: domain.RoleMember}, nil)

		err := f.svc.ProcessRequest(ctx, 5, adminID, true, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("RequestNotFound", func(t *testing.T) {
		f := newAdvancementFixture()
		f.requestRepo.On("GetByID", ctx, int32(9)).Return(nil, domain.ErrNotFound)

		err := f.svc.ProcessRequest(ctx, 9, adminID, true, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAdvancementService_Listings(t *testing.T) {
	ctx := context.Background()

	t.Run("RecentAdvancementsDefaultsLimit", func(t *testing.T) {
		f := newAdvancementFixture()
		f.advRepo.On("ListRecent", ctx, int32(20)).Return([]domain.RoleAdvancement{{ID: 1}}, nil)

		advs, err := f.svc.RecentAdvancements(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, advs, 1)
	})

	t.Run("PendingRequests", func(t *testing.T) {
		f := newAdvancementFixture()
		f.requestRepo.On("ListPending", ctx).Return([]domain.AdvancementRequest{{ID: 5}}, nil)

		reqs, err := f.svc.PendingRequests(ctx)
		require.NoError(t, err)
		assert.Len(t, reqs, 1)
	})
}
