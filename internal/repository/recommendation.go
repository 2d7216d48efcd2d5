package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperdesk/paperdesk/internal/domain"
)

type RecommendationRepository struct {
	db dbtx
}

func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{db: pool}
}

func NewRecommendationRepositoryWithTx(tx pgx.Tx) *RecommendationRepository {
	return &RecommendationRepository{db: tx}
}

const recommendationColumns = `id, user_id, document_id, external_paper_id, title, authors, source, url, reason, score, feedback, created_at`

func (r *RecommendationRepository) CreateBatch(ctx context.Context, recs []*domain.Recommendation) error {
	for _, rec := range recs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO recommendations (id, user_id, document_id, external_paper_id, title, authors, source, url, reason, score, feedback, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rec.ID, rec.UserID, nullableString(rec.DocumentID), nullableString(rec.ExternalPaperID),
			rec.Title, rec.Authors, rec.Source, rec.URL, rec.Reason, rec.Score, nullableString(rec.Feedback), rec.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *RecommendationRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM recommendations WHERE user_id = $1`,
		userID,
	)
	return err
}

// ListByUser returns the user's recommendations ordered by score, best first.
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Recommendation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations
		 WHERE user_id = $1
		 ORDER BY score DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*domain.Recommendation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM recommendations WHERE id = $1`,
		id,
	)
	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecommendationNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *RecommendationRepository) UpdateFeedback(ctx context.Context, id, feedback string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE recommendations SET feedback = $1 WHERE id = $2`,
		feedback, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrRecommendationNotFound
	}
	return nil
}

func scanRecommendation(row pgx.Row) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	var documentID, externalPaperID, feedback *string
	err := row.Scan(&rec.ID, &rec.UserID, &documentID, &externalPaperID,
		&rec.Title, &rec.Authors, &rec.Source, &rec.URL, &rec.Reason, &rec.Score, &feedback, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	if documentID != nil {
		rec.DocumentID = *documentID
	}
	if externalPaperID != nil {
		rec.ExternalPaperID = *externalPaperID
	}
	if feedback != nil {
		rec.Feedback = *feedback
	}
	return &rec, nil
}
