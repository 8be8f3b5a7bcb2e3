package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

type recheckQueueRepository struct {
	db *sql.DB
}

func NewRecheckQueueRepository(db *sql.DB) repository.RecheckQueueRepository {
	return &recheckQueueRepository{db: db}
}

func (r *recheckQueueRepository) Enqueue(ctx context.Context, memberID int32) error {
	query := `INSERT INTO role_recheck_queue (member_id, enqueued_at) VALUES ($1, $2)
	          ON CONFLICT (member_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, memberID, time.Now())
	return err
}

func (r *recheckQueueRepository) DequeueBatch(ctx context.Context, limit int32) ([]int32, error) {
	// SKIP LOCKED lets multiple job runners drain the queue without stepping
	// on each other.
	query := `DELETE FROM role_recheck_queue
	          WHERE member_id IN (
	              SELECT member_id FROM role_recheck_queue
	              ORDER BY enqueued_at
	              LIMIT $1
	              FOR UPDATE SKIP LOCKED
	          )
	          RETURNING member_id`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
