package repository

import (
	"context"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
)

type MemberRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Member, error)
	ListDirectRecruits(ctx context.Context, memberID int32) ([]domain.Member, error)

	// SubtreeIDs returns the IDs of every descendant of the member (the member
	// itself excluded), walking at most maxDepth levels. A walk that is still
	// producing rows at maxDepth indicates a cycle and fails with
	// domain.ErrDataIntegrity.
	SubtreeIDs(ctx context.Context, memberID int32, maxDepth int32) ([]int32, error)
}

type StatsRepository interface {
	Get(ctx context.Context, memberID int32) (*domain.ReferralStats, error)
	// Save overwrites the member's cached stats row entirely.
	Save(ctx context.Context, stats *domain.ReferralStats) error
}

// TransitionCount is one helped-advance tally row: how many promotion events
// from FromRole to ToRole exist among the given members.
type TransitionCount struct {
	FromRole domain.MembershipRole
	ToRole   domain.MembershipRole
	Count    int32
}

type AdvancementRepository interface {
	// Promote atomically sets the member's role from fromRole to rec.ToRole and
	// appends the advancement record, in a single transaction with a
	// compare-and-set on the current role. Returns false when the member's role
	// no longer matches fromRole (a concurrent promotion won).
	Promote(ctx context.Context, memberID int32, fromRole domain.MembershipRole, rec *domain.RoleAdvancement) (bool, error)
	ListRecent(ctx context.Context, limit int32) ([]domain.RoleAdvancement, error)
	CountTransitions(ctx context.Context, memberIDs []int32) ([]TransitionCount, error)
}

type AdvancementRequestRepository interface {
	Create(ctx context.Context, req *domain.AdvancementRequest) error
	GetByID(ctx context.Context, id int32) (*domain.AdvancementRequest, error)
	HasPending(ctx context.Context, memberID int32) (bool, error)
	// MarkReviewed transitions a pending request to the given terminal status.
	// Returns false when the request was no longer pending.
	MarkReviewed(ctx context.Context, id int32, status domain.AdvancementRequestStatus, reviewerID int32, rejectionReason string) (bool, error)
	ListPending(ctx context.Context) ([]domain.AdvancementRequest, error)
}

type RequirementRepository interface {
	List(ctx context.Context) ([]domain.RankRequirement, error)
}

type ContributionRepository interface {
	TotalByMember(ctx context.Context, memberID int32) (int64, error)
}

type SettingsRepository interface {
	AdvancementMode(ctx context.Context) (domain.AdvancementMode, error)
}

type RecheckQueueRepository interface {
	Enqueue(ctx context.Context, memberID int32) error
	// DequeueBatch removes and returns up to limit queued member IDs.
	DequeueBatch(ctx context.Context, limit int32) ([]int32, error)
}
