package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/logger"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

// AdvancementListener is notified after a promotion commits. Listeners run
// synchronously and must not block; promotion success never depends on them.
type AdvancementListener func(ctx context.Context, adv domain.RoleAdvancement)

type advancementService struct {
	memberRepo   repository.MemberRepository
	advRepo      repository.AdvancementRepository
	requestRepo  repository.AdvancementRequestRepository
	settingsRepo repository.SettingsRepository
	queueRepo    repository.RecheckQueueRepository
	progressSvc  ProgressService
	statsSvc     StatsService
	emailSvc     EmailService
	listeners    []AdvancementListener
}

func NewAdvancementService(
	memberRepo repository.MemberRepository,
	advRepo repository.AdvancementRepository,
	requestRepo repository.AdvancementRequestRepository,
	settingsRepo repository.SettingsRepository,
	queueRepo repository.RecheckQueueRepository,
	progressSvc ProgressService,
	statsSvc StatsService,
	emailSvc EmailService,
	listeners ...AdvancementListener,
) AdvancementService {
	return &advancementService{
		memberRepo:   memberRepo,
		advRepo:      advRepo,
		requestRepo:  requestRepo,
		settingsRepo: settingsRepo,
		queueRepo:    queueRepo,
		progressSvc:  progressSvc,
		statsSvc:     statsSvc,
		emailSvc:     emailSvc,
		listeners:    listeners,
	}
}

func (s *advancementService) CheckAndAdvance(ctx context.Context, memberID int32, actingAdminID *int32) (*domain.AdvancementResult, error) {
	// The advancement mode is admin-editable, so it is read fresh on every
	// call rather than cached.
	mode, err := s.settingsRepo.AdvancementMode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read advancement mode: %w", err)
	}

	progress, err := s.progressSvc.Evaluate(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if progress.NextRole == nil || !progress.IsEligible {
		return &domain.AdvancementResult{}, nil
	}

	if mode == domain.AdvancementModeApprovalRequired && actingAdminID == nil {
		hasPending, err := s.requestRepo.HasPending(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to check pending requests: %w", err)
		}
		if !hasPending {
			req := &domain.AdvancementRequest{
				MemberID:      memberID,
				CurrentRole:   progress.CurrentRole,
				RequestedRole: *progress.NextRole,
			}
			if err := s.requestRepo.Create(ctx, req); err != nil {
				return nil, fmt.Errorf("failed to create advancement request: %w", err)
			}
			logger.Info("Advancement request queued", "member_id", memberID, "requested_role", *progress.NextRole)
		}
		return &domain.AdvancementResult{Queued: true}, nil
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	// Eligibility was computed against progress.CurrentRole. If the member's
	// role moved in the meantime (a concurrent or manual promotion), that
	// snapshot is stale; promoting from the fresh role could write a lower
	// rank over a higher one. Back off and let the recheck queue re-evaluate.
	if member.MembershipRole != progress.CurrentRole {
		return &domain.AdvancementResult{}, nil
	}
	triggerData, _ := json.Marshal(progress.Requirements)
	promoted, err := s.promote(ctx, member, *progress.NextRole, primaryTrigger(progress.Requirements), string(triggerData), actingAdminID)
	if err != nil {
		return nil, err
	}
	if !promoted {
		// A concurrent promotion already moved the member. No-op.
		return &domain.AdvancementResult{}, nil
	}
	return &domain.AdvancementResult{Advanced: true, NewRole: *progress.NextRole}, nil
}

func (s *advancementService) ManuallyAdvance(ctx context.Context, memberID int32, toRole domain.MembershipRole, adminID int32, reason string) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !toRole.Valid() {
		return fmt.Errorf("role %q: %w", toRole, domain.ErrNotFound)
	}
	if toRole.Level() <= member.MembershipRole.Level() {
		return fmt.Errorf("cannot advance member %d from %q to %q: %w", memberID, member.MembershipRole, toRole, domain.ErrInvalidTransition)
	}

	triggerData, _ := json.Marshal(map[string]any{"admin_id": adminID, "reason": reason})
	promoted, err := s.promote(ctx, member, toRole, domain.TriggerManual, string(triggerData), &adminID)
	if err != nil {
		return err
	}
	if !promoted {
		return fmt.Errorf("member %d role changed concurrently, retry the advancement", memberID)
	}
	return nil
}

func (s *advancementService) ProcessRequest(ctx context.Context, requestID int32, adminID int32, approved bool, rejectionReason string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.AdvancementRequestStatusPending {
		return fmt.Errorf("request %d is %s: %w", requestID, req.Status, domain.ErrAlreadyProcessed)
	}

	if !approved {
		marked, err := s.requestRepo.MarkReviewed(ctx, requestID, domain.AdvancementRequestStatusRejected, adminID, rejectionReason)
		if err != nil {
			return fmt.Errorf("failed to reject request: %w", err)
		}
		if !marked {
			return fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyProcessed)
		}
		if member, err := s.memberRepo.GetByID(ctx, req.MemberID); err == nil {
			if err := s.emailSvc.SendRejectionNotification(ctx, member.Email, member.Name, req.RequestedRole, rejectionReason); err != nil {
				logger.Warn("Failed to send rejection notification", "member_id", req.MemberID, "error", err)
			}
		}
		return nil
	}

	member, err := s.memberRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		return err
	}
	if req.RequestedRole.Level() <= member.MembershipRole.Level() {
		return fmt.Errorf("member %d already at or above %q: %w", member.ID, req.RequestedRole, domain.ErrInvalidTransition)
	}

	// Approval is authoritative: eligibility is not re-checked, but the
	// progress snapshot at approval time goes into the audit record.
	trigger := domain.TriggerReferralCount
	triggerData := fmt.Sprintf(`{"request_id":%d}`, requestID)
	if progress, err := s.progressSvc.Evaluate(ctx, member.ID); err == nil {
		trigger = primaryTrigger(progress.Requirements)
		if data, err := json.Marshal(map[string]any{"request_id": requestID, "requirements": progress.Requirements}); err == nil {
			triggerData = string(data)
		}
	}

	promoted, err := s.promote(ctx, member, req.RequestedRole, trigger, triggerData, &adminID)
	if err != nil {
		return err
	}
	if !promoted {
		return fmt.Errorf("member %d role changed concurrently, request %d left pending", member.ID, requestID)
	}

	marked, err := s.requestRepo.MarkReviewed(ctx, requestID, domain.AdvancementRequestStatusApproved, adminID, "")
	if err != nil {
		return fmt.Errorf("failed to mark request approved: %w", err)
	}
	if !marked {
		return fmt.Errorf("request %d: %w", requestID, domain.ErrAlreadyProcessed)
	}
	return nil
}

func (s *advancementService) RecentAdvancements(ctx context.Context, limit int32) ([]domain.RoleAdvancement, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.advRepo.ListRecent(ctx, limit)
}

func (s *advancementService) PendingRequests(ctx context.Context) ([]domain.AdvancementRequest, error) {
	return s.requestRepo.ListPending(ctx)
}

// promote performs the atomic role mutation plus history insert, then the
// post-commit side effects. Returns false when a concurrent promotion won the
// compare-and-set.
func (s *advancementService) promote(ctx context.Context, member *domain.Member, toRole domain.MembershipRole, trigger domain.TriggerType, triggerData string, approvedBy *int32) (bool, error) {
	now := time.Now()
	rec := &domain.RoleAdvancement{
		MemberID:    member.ID,
		FromRole:    member.MembershipRole,
		ToRole:      toRole,
		AdvancedAt:  now,
		TriggerType: trigger,
		TriggerData: triggerData,
		ApprovedBy:  approvedBy,
	}
	if approvedBy != nil {
		rec.ApprovedAt = &now
	}

	promoted, err := s.advRepo.Promote(ctx, member.ID, member.MembershipRole, rec)
	if err != nil {
		return false, fmt.Errorf("failed to promote member %d: %w", member.ID, err)
	}
	if !promoted {
		return false, nil
	}
	logger.Info("Member advanced", "member_id", member.ID, "from_role", member.MembershipRole, "to_role", toRole, "trigger", trigger)

	// The promotion has committed; everything below is best-effort and must
	// not roll it back.
	if member.ReferredByID != nil {
		recruiterID := *member.ReferredByID
		if _, err := s.statsSvc.Recalculate(ctx, recruiterID); err != nil {
			logger.Warn("Failed to recalculate recruiter stats", "recruiter_id", recruiterID, "error", err)
		}
		// The recruiter's own eligibility is re-checked later by the recheck
		// job rather than recursively here.
		if err := s.queueRepo.Enqueue(ctx, recruiterID); err != nil {
			logger.Warn("Failed to enqueue recruiter recheck", "recruiter_id", recruiterID, "error", err)
		}
	}

	if err := s.emailSvc.SendAdvancementNotification(ctx, member.Email, member.Name, rec.FromRole, rec.ToRole); err != nil {
		logger.Warn("Failed to send advancement notification", "member_id", member.ID, "error", err)
	}
	for _, fn := range s.listeners {
		fn(ctx, *rec)
	}
	return true, nil
}

// primaryTrigger picks the advancement trigger recorded in the history: the
// first satisfied requirement in catalog order.
func primaryTrigger(reqs []domain.RequirementProgress) domain.TriggerType {
	for _, req := range reqs {
		if !req.IsMet {
			continue
		}
		switch req.Kind {
		case domain.RequirementContribution:
			return domain.TriggerContribution
		case domain.RequirementDirectReferrals:
			return domain.TriggerReferralCount
		case domain.RequirementTotalReferrals:
			return domain.TriggerTreeCount
		case domain.RequirementHelpedAdvance:
			return domain.TriggerHelpedAdvance
		}
	}
	return domain.TriggerReferralCount
}
