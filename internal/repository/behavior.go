package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/paperdesk/paperdesk/internal/pagination"
)

type BehaviorRepository struct {
	db dbtx
}

func NewBehaviorRepository(pool *pgxpool.Pool) *BehaviorRepository {
	return &BehaviorRepository{db: pool}
}

func NewBehaviorRepositoryWithTx(tx pgx.Tx) *BehaviorRepository {
	return &BehaviorRepository{db: tx}
}

func (r *BehaviorRepository) Create(ctx context.Context, e *domain.BehaviorEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_behaviors (id, user_id, document_id, behavior_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, nullableString(e.DocumentID), string(e.Type), nullableString(e.Payload), e.CreatedAt,
	)
	return err
}

// ListByUser returns the user's behavior events, newest first.
func (r *BehaviorRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.BehaviorEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, document_id, behavior_type, payload, created_at
		 FROM user_behaviors
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBehaviorRows(rows)
}

func scanBehaviorRows(rows pgx.Rows) ([]*domain.BehaviorEvent, error) {
	var events []*domain.BehaviorEvent
	for rows.Next() {
		var e domain.BehaviorEvent
		var documentID, payload *string
		var behaviorType string
		if err := rows.Scan(&e.ID, &e.UserID, &documentID, &behaviorType, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.BehaviorType(behaviorType)
		if documentID != nil {
			e.DocumentID = *documentID
		}
		if payload != nil {
			e.Payload = *payload
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// ListByUserPage returns a keyset page of the user's behavior events, newest
// first. A nil cursor starts from the top.
func (r *BehaviorRepository) ListByUserPage(ctx context.Context, userID string, limit int, cursor *pagination.Cursor) ([]*domain.BehaviorEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, user_id, document_id, behavior_type, payload, created_at
		 FROM user_behaviors
		 WHERE user_id = $1`
	args := []interface{}{userID}
	if cursor != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, cursor.Timestamp, cursor.LastID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + fmt.Sprintf("$%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBehaviorRows(rows)
}

// CountViewAnalyze returns how many VIEW and ANALYZE events a document has
// accumulated across all users.
func (r *BehaviorRepository) CountViewAnalyze(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_behaviors
		 WHERE document_id = $1 AND behavior_type IN ('VIEW', 'ANALYZE')`,
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
