package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type advancementRequestRepository struct {
	db *sql.DB
}

func NewAdvancementRequestRepository(db *sql.DB) repository.AdvancementRequestRepository {
	return &advancementRequestRepository{db: db}
}

func (r *advancementRequestRepository) Create(ctx context.Context, req *domain.AdvancementRequest) error {
	query := `INSERT INTO advancement_requests (member_id, current_role, requested_role, status, requested_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	req.Status = domain.AdvancementRequestStatusPending
	req.RequestedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, req.MemberID, req.CurrentRole, req.RequestedRole, req.Status, req.RequestedAt).Scan(&req.ID)
	// A partial unique index guarantees one pending request per member; losing
	// that race is a no-op, not an error.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return nil
	}
	return err
}

func (r *advancementRequestRepository) GetByID(ctx context.Context, id int32) (*domain.AdvancementRequest, error) {
	req := &domain.AdvancementRequest{}
	query := `SELECT id, member_id, current_role, requested_role, status, requested_at, reviewed_by, reviewed_at, COALESCE(rejection_reason, '')
	          FROM advancement_requests WHERE id = $1`
	var reviewedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.MemberID, &req.CurrentRole, &req.RequestedRole, &req.Status, &req.RequestedAt, &req.ReviewedBy, &reviewedAt, &req.RejectionReason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("advancement request %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		req.ReviewedAt = &t
	}
	return req, nil
}

func (r *advancementRequestRepository) HasPending(ctx context.Context, memberID int32) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM advancement_requests WHERE member_id = $1 AND status = 'pending')`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, memberID).Scan(&exists)
	return exists, err
}

func (r *advancementRequestRepository) MarkReviewed(ctx context.Context, id int32, status domain.AdvancementRequestStatus, reviewerID int32, rejectionReason string) (bool, error) {
	query := `UPDATE advancement_requests SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4
	          WHERE id = $5 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, status, reviewerID, time.Now(), rejectionReason, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *advancementRequestRepository) ListPending(ctx context.Context) ([]domain.AdvancementRequest, error) {
	query := `SELECT id, member_id, current_role, requested_role, status, requested_at, reviewed_by, reviewed_at, COALESCE(rejection_reason, '')
	          FROM advancement_requests WHERE status = 'pending' ORDER BY requested_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.AdvancementRequest
	for rows.Next() {
		var req domain.AdvancementRequest
		var reviewedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.MemberID, &req.CurrentRole, &req.RequestedRole, &req.Status, &req.RequestedAt, &req.ReviewedBy, &reviewedAt, &req.RejectionReason); err != nil {
			return nil, err
		}
		if reviewedAt.Valid {
			t := reviewedAt.Time
			req.ReviewedAt = &t
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
