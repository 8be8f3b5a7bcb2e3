package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type advancementRepository struct {
	db *sql.DB
}

func NewAdvancementRepository(db *sql.DB) repository.AdvancementRepository {
	return &advancementRepository{db: db}
}

func (r *advancementRepository) Promote(ctx context.Context, memberID int32, fromRole domain.MembershipRole, rec *domain.RoleAdvancement) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Compare-and-set on the current role serializes concurrent promotion
	// attempts: the loser sees zero rows and backs off.
	res, err := tx.ExecContext(ctx,
		`UPDATE members SET membership_role = $1, role_advanced_at = $2 WHERE id = $3 AND membership_role = $4`,
		rec.ToRole, rec.AdvancedAt, memberID, fromRole,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update member role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO role_advancements (member_id, from_role, to_role, advanced_at, trigger_type, trigger_data, approved_by, approved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		rec.MemberID, rec.FromRole, rec.ToRole, rec.AdvancedAt, rec.TriggerType, rec.TriggerData, rec.ApprovedBy, rec.ApprovedAt,
	).Scan(&rec.ID)
	if err != nil {
		return false, fmt.Errorf("failed to insert advancement record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *advancementRepository) ListRecent(ctx context.Context, limit int32) ([]domain.RoleAdvancement, error) {
	query := `SELECT id, member_id, from_role, to_role, advanced_at, COALESCE(trigger_data, ''), trigger_type, approved_by, approved_at
	          FROM role_advancements ORDER BY advanced_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advs []domain.RoleAdvancement
	for rows.Next() {
		var a domain.RoleAdvancement
		var approvedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.MemberID, &a.FromRole, &a.ToRole, &a.AdvancedAt, &a.TriggerData, &a.TriggerType, &a.ApprovedBy, &approvedAt); err != nil {
			return nil, err
		}
		if approvedAt.Valid {
			t := approvedAt.Time
			a.ApprovedAt = &t
		}
		advs = append(advs, a)
	}
	return advs, rows.Err()
}

func (r *advancementRepository) CountTransitions(ctx context.Context, memberIDs []int32) ([]repository.TransitionCount, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	ids := make(pq.Int64Array, len(memberIDs))
	for i, id := range memberIDs {
		ids[i] = int64(id)
	}
	query := `SELECT from_role, to_role, COUNT(*) FROM role_advancements WHERE member_id = ANY($1) GROUP BY from_role, to_role`
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.TransitionCount
	for rows.Next() {
		var tc repository.TransitionCount
		if err := rows.Scan(&tc.FromRole, &tc.ToRole, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}
