package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperdesk/paperdesk/internal/domain"
)

type AnalysisRepository struct {
	db dbtx
}

func NewAnalysisRepository(pool *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: pool}
}

func NewAnalysisRepositoryWithTx(tx pgx.Tx) *AnalysisRepository {
	return &AnalysisRepository{db: tx}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *domain.DocumentAnalysis) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO document_analyses (id, document_id, background, content, results, notes, status, model, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.DocumentID, a.Background, a.Content, a.Results, a.Notes, string(a.Status), a.Model, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AnalysisRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.DocumentAnalysis, error) {
	var a domain.DocumentAnalysis
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT id, document_id, background, content, results, notes, status, model, created_at, updated_at
		 FROM document_analyses WHERE document_id = $1`,
		documentID,
	).Scan(&a.ID, &a.DocumentID, &a.Background, &a.Content, &a.Results, &a.Notes, &status, &a.Model, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	a.Status = domain.AnalysisStatus(status)
	return &a, nil
}

func (r *AnalysisRepository) UpdateStatus(ctx context.Context, id string, status domain.AnalysisStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE document_analyses SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAnalysisNotFound
	}
	return nil
}
