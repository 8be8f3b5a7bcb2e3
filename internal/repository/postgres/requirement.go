package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type requirementRepository struct {
	db *sql.DB
}

func NewRequirementRepository(db *sql.DB) repository.RequirementRepository {
	return &requirementRepository{db: db}
}

func (r *requirementRepository) List(ctx context.Context) ([]domain.RankRequirement, error) {
	query := `SELECT role, role_level, requires_contribution, min_contribution_amount_cents,
	                 min_direct_referrals, COALESCE(min_direct_referrals_at_role, ''),
	                 min_total_referrals, min_helped_advance,
	                 COALESCE(helped_advance_from_role, ''), COALESCE(helped_advance_to_role, ''),
	                 privileges
	          FROM rank_requirements ORDER BY role_level`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.RankRequirement
	for rows.Next() {
		var req domain.RankRequirement
		var privileges pq.StringArray
		if err := rows.Scan(
			&req.Role, &req.RoleLevel, &req.RequiresContribution, &req.MinContributionAmount,
			&req.MinDirectReferrals, &req.MinDirectReferralsAtRole,
			&req.MinTotalReferrals, &req.MinHelpedAdvance,
			&req.HelpedAdvanceFromRole, &req.HelpedAdvanceToRole,
			&privileges,
		); err != nil {
			return nil, err
		}
		req.Privileges = privileges
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

type contributionRepository struct {
	db *sql.DB
}

func NewContributionRepository(db *sql.DB) repository.ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) TotalByMember(ctx context.Context, memberID int32) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM contributions WHERE member_id = $1`
	var total int64
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&total)
	return total, err
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// AdvancementMode reads the organization-wide setting. An organization without
// a settings row advances members automatically.
func (r *settingsRepository) AdvancementMode(ctx context.Context) (domain.AdvancementMode, error) {
	query := `SELECT advancement_mode FROM org_settings LIMIT 1`
	var mode domain.AdvancementMode
	err := r.db.QueryRowContext(ctx, query).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AdvancementModeAutomatic, nil
	}
	if err != nil {
		return "", err
	}
	return mode, nil
}
