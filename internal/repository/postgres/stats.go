package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Get(ctx context.Context, memberID int32) (*domain.ReferralStats, error) {
	s := &domain.ReferralStats{MemberID: memberID}
	query := `SELECT direct_by_role, total_tree_count, helped_advance, last_calculated_at FROM referral_stats WHERE member_id = $1`
	var direct, helped pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&direct, &s.TotalTreeCount, &helped, &s.LastCalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stats for member %d: %w", memberID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if len(direct) != domain.NumRoles || len(helped) != domain.NumRoles-1 {
		return nil, fmt.Errorf("stats row for member %d has malformed counters: %w", memberID, domain.ErrDataIntegrity)
	}
	for i, v := range direct {
		s.DirectByRole[i] = int32(v)
	}
	for i, v := range helped {
		s.HelpedAdvance[i] = int32(v)
	}
	return s, nil
}

func (r *statsRepository) Save(ctx context.Context, stats *domain.ReferralStats) error {
	query := `INSERT INTO referral_stats (member_id, direct_by_role, total_tree_count, helped_advance, last_calculated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (member_id) DO UPDATE
	          SET direct_by_role = EXCLUDED.direct_by_role,
	              total_tree_count = EXCLUDED.total_tree_count,
	              helped_advance = EXCLUDED.helped_advance,
	              last_calculated_at = EXCLUDED.last_calculated_at`
	direct := make(pq.Int64Array, domain.NumRoles)
	for i, v := range stats.DirectByRole {
		direct[i] = int64(v)
	}
	helped := make(pq.Int64Array, domain.NumRoles-1)
	for i, v := range stats.HelpedAdvance {
		helped[i] = int64(v)
	}
	_, err := r.db.ExecContext(ctx, query, stats.MemberID, direct, stats.TotalTreeCount, helped, stats.LastCalculatedAt)
	return err
}
