package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id int32) (*domain.Member, error) {
	m := &domain.Member{}
	query := `SELECT id, name, email, membership_role, referred_by_id, role_advanced_at, created_on FROM members WHERE id = $1`
	var advancedAt sql.NullTime
	var createdOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Name, &m.Email, &m.MembershipRole, &m.ReferredByID, &advancedAt, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if advancedAt.Valid {
		t := advancedAt.Time
		m.RoleAdvancedAt = &t
	}
	m.CreatedOn = createdOn.Format("2006-01-02")
	return m, nil
}

func (r *memberRepository) ListDirectRecruits(ctx context.Context, memberID int32) ([]domain.Member, error) {
	query := `SELECT id, name, email, membership_role, referred_by_id, role_advanced_at, created_on FROM members WHERE referred_by_id = $1`
	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		var advancedAt sql.NullTime
		var createdOn time.Time
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.MembershipRole, &m.ReferredByID, &advancedAt, &createdOn); err != nil {
			return nil, err
		}
		if advancedAt.Valid {
			t := advancedAt.Time
			m.RoleAdvancedAt = &t
		}
		m.CreatedOn = createdOn.Format("2006-01-02")
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *memberRepository) SubtreeIDs(ctx context.Context, memberID int32, maxDepth int32) ([]int32, error) {
	query := `WITH RECURSIVE subtree AS (
	              SELECT id, 1 AS depth FROM members WHERE referred_by_id = $1
	              UNION ALL
	              SELECT m.id, s.depth + 1 FROM members m
	              JOIN subtree s ON m.referred_by_id = s.id
	              WHERE s.depth < $2
	          )
	          SELECT id, depth FROM subtree`
	rows, err := r.db.QueryContext(ctx, query, memberID, maxDepth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int32]bool)
	var ids []int32
	for rows.Next() {
		var id, depth int32
		if err := rows.Scan(&id, &depth); err != nil {
			return nil, err
		}
		// The parent pointer forms a tree, so revisiting a node or hitting the
		// depth bound means the graph has a cycle.
		if seen[id] || id == memberID {
			return nil, fmt.Errorf("cycle at member %d in subtree of %d: %w", id, memberID, domain.ErrDataIntegrity)
		}
		if depth >= maxDepth {
			return nil, fmt.Errorf("subtree of member %d exceeds depth %d: %w", memberID, maxDepth, domain.ErrDataIntegrity)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
