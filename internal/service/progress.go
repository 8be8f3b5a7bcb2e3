package service

import (
	"context"
	"fmt"

	"github.com/ailubes/veterans-orden-sub001/internal/catalog"
	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type progressService struct {
	memberRepo  repository.MemberRepository
	contribRepo repository.ContributionRepository
	statsSvc    StatsService
	catalog     *catalog.Catalog
}

func NewProgressService(
	memberRepo repository.MemberRepository,
	contribRepo repository.ContributionRepository,
	statsSvc StatsService,
	cat *catalog.Catalog,
) ProgressService {
	return &progressService{
		memberRepo:  memberRepo,
		contribRepo: contribRepo,
		statsSvc:    statsSvc,
		catalog:     cat,
	}
}

func (s *progressService) Evaluate(ctx context.Context, memberID int32) (*domain.RoleProgress, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	progress := &domain.RoleProgress{
		MemberID:    member.ID,
		CurrentRole: member.MembershipRole,
	}

	next, err := s.catalog.NextRank(member.MembershipRole)
	if err != nil {
		return nil, err
	}
	if next == nil {
		// Top rank. Terminal state, not an error.
		progress.ProgressPercent = 100
		return progress, nil
	}
	progress.NextRole = &next.Role

	stats, err := s.statsSvc.GetStats(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral stats: %w", err)
	}

	if next.RequiresContribution {
		required := next.MinContributionAmount
		if required <= 0 {
			// Bool-only contribution requirement: any recorded amount counts.
			required = 1
		}
		current, err := s.contribRepo.TotalByMember(ctx, memberID)
		if err != nil {
			return nil, fmt.Errorf("failed to get contribution total: %w", err)
		}
		progress.Requirements = append(progress.Requirements, domain.RequirementProgress{
			Kind:     domain.RequirementContribution,
			Current:  current,
			Required: required,
			IsMet:    current >= required,
		})
	}

	if next.MinDirectReferrals > 0 {
		var current int32
		if next.MinDirectReferralsAtRole != "" {
			current = stats.DirectAtOrAbove(next.MinDirectReferralsAtRole.Level())
		} else {
			current = stats.DirectTotal()
		}
		progress.Requirements = append(progress.Requirements, domain.RequirementProgress{
			Kind:     domain.RequirementDirectReferrals,
			Current:  int64(current),
			Required: int64(next.MinDirectReferrals),
			IsMet:    current >= next.MinDirectReferrals,
		})
	}

	if next.MinTotalReferrals > 0 {
		progress.Requirements = append(progress.Requirements, domain.RequirementProgress{
			Kind:     domain.RequirementTotalReferrals,
			Current:  int64(stats.TotalTreeCount),
			Required: int64(next.MinTotalReferrals),
			IsMet:    stats.TotalTreeCount >= next.MinTotalReferrals,
		})
	}

	if next.MinHelpedAdvance > 0 {
		current := stats.HelpedAdvance[next.HelpedAdvanceFromRole.Level()]
		progress.Requirements = append(progress.Requirements, domain.RequirementProgress{
			Kind:     domain.RequirementHelpedAdvance,
			Current:  int64(current),
			Required: int64(next.MinHelpedAdvance),
			IsMet:    current >= next.MinHelpedAdvance,
		})
	}

	progress.IsEligible = true
	var fractionSum float64
	for _, req := range progress.Requirements {
		if !req.IsMet {
			progress.IsEligible = false
		}
		fraction := float64(req.Current) / float64(req.Required)
		if fraction > 1 {
			fraction = 1
		}
		fractionSum += fraction
	}
	if len(progress.Requirements) == 0 {
		// Every requirement is vacuously satisfied.
		progress.ProgressPercent = 100
	} else {
		progress.ProgressPercent = fractionSum / float64(len(progress.Requirements)) * 100
	}
	return progress, nil
}
