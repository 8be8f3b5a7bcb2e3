package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

// HelpedAdvanceScope selects whose promotions count toward a member's
// helped-advance tallies.
type HelpedAdvanceScope string

const (
	// ScopeChain counts promotions anywhere in the member's subtree, so every
	// ancestor up the recruitment chain gets credit.
	ScopeChain HelpedAdvanceScope = "chain"
	// ScopeDirect counts only promotions of the member's direct recruits.
	ScopeDirect HelpedAdvanceScope = "direct"
)

type statsService struct {
	memberRepo repository.MemberRepository
	statsRepo  repository.StatsRepository
	advRepo    repository.AdvancementRepository
	scope      HelpedAdvanceScope
	maxDepth   int32
}

func NewStatsService(
	memberRepo repository.MemberRepository,
	statsRepo repository.StatsRepository,
	advRepo repository.AdvancementRepository,
	scope HelpedAdvanceScope,
	maxDepth int32,
) StatsService {
	if scope == "" {
		scope = ScopeChain
	}
	if maxDepth <= 0 {
		maxDepth = 64
	}
	return &statsService{
		memberRepo: memberRepo,
		statsRepo:  statsRepo,
		advRepo:    advRepo,
		scope:      scope,
		maxDepth:   maxDepth,
	}
}

func (s *statsService) Recalculate(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	stats := &domain.ReferralStats{MemberID: memberID}

	direct, err := s.memberRepo.ListDirectRecruits(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct recruits: %w", err)
	}
	directIDs := make([]int32, 0, len(direct))
	for _, recruit := range direct {
		if lvl := recruit.MembershipRole.Level(); lvl >= 0 {
			stats.DirectByRole[lvl]++
		}
		directIDs = append(directIDs, recruit.ID)
	}

	subtree, err := s.memberRepo.SubtreeIDs(ctx, memberID, s.maxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to walk referral subtree: %w", err)
	}
	stats.TotalTreeCount = int32(len(subtree))

	tallyIDs := subtree
	if s.scope == ScopeDirect {
		tallyIDs = directIDs
	}
	transitions, err := s.advRepo.CountTransitions(ctx, tallyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to tally helped-advance events: %w", err)
	}
	for _, tc := range transitions {
		fromLvl := tc.FromRole.Level()
		// Only adjacent boundaries are tracked; manual multi-level jumps fall
		// outside every helped-advance counter.
		if fromLvl >= 0 && tc.ToRole.Level() == fromLvl+1 {
			stats.HelpedAdvance[fromLvl] += tc.Count
		}
	}

	stats.LastCalculatedAt = time.Now()
	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save referral stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) GetStats(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	stats, err := s.statsRepo.Get(ctx, memberID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.Recalculate(ctx, memberID)
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}
