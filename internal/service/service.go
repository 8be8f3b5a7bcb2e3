package service

import (
	"context"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
)

type StatsService interface {
	// Recalculate rebuilds the member's cached referral statistics from the
	// tree and the advancement history.
	Recalculate(ctx context.Context, memberID int32) (*domain.ReferralStats, error)
	// GetStats returns the cached statistics, recalculating on first access.
	GetStats(ctx context.Context, memberID int32) (*domain.ReferralStats, error)
}

type ProgressService interface {
	// Evaluate computes the member's progress toward the next rank. Pure read.
	Evaluate(ctx context.Context, memberID int32) (*domain.RoleProgress, error)
}

type AdvancementService interface {
	// CheckAndAdvance applies the organization's advancement policy to an
	// eligible member. actingAdminID is nil for automatic triggers.
	CheckAndAdvance(ctx context.Context, memberID int32, actingAdminID *int32) (*domain.AdvancementResult, error)
	// ManuallyAdvance promotes a member regardless of eligibility. The target
	// role must be higher than the current one.
	ManuallyAdvance(ctx context.Context, memberID int32, toRole domain.MembershipRole, adminID int32, reason string) error
	// ProcessRequest approves or rejects a pending advancement request.
	ProcessRequest(ctx context.Context, requestID int32, adminID int32, approved bool, rejectionReason string) error
	RecentAdvancements(ctx context.Context, limit int32) ([]domain.RoleAdvancement, error)
	PendingRequests(ctx context.Context) ([]domain.AdvancementRequest, error)
}

type EmailService interface {
	SendAdvancementNotification(ctx context.Context, email, name string, fromRole, toRole domain.MembershipRole) error
	SendRejectionNotification(ctx context.Context, email, name string, requestedRole domain.MembershipRole, reason string) error
}
