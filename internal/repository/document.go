package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paperdesk/paperdesk/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

const documentColumns = `id, owner_id, folder_id, group_id, name, original_name, file_type, mime_type, size_bytes, shareable, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, owner_id, folder_id, group_id, name, original_name, file_type, mime_type, size_bytes, shareable, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.OwnerID, nullableString(d.FolderID), nullableString(d.GroupID), d.Name, d.OriginalName,
		d.FileType, d.MimeType, d.SizeBytes, d.Shareable, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		id,
	)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByOwner returns the owner's documents, newest first.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	return scanDocumentRows(rows)
}

// ListShareable returns all documents marked shareable, newest first. When
// groupID is non-empty the result is restricted to that group.
func (r *DocumentRepository) ListShareable(ctx context.Context, groupID string) ([]*domain.Document, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if groupID != "" {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+` FROM documents
			 WHERE shareable = TRUE AND group_id = $1
			 ORDER BY created_at DESC`,
			groupID,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+documentColumns+` FROM documents
			 WHERE shareable = TRUE
			 ORDER BY created_at DESC`,
		)
	}
	if err != nil {
		return nil, err
	}
	return scanDocumentRows(rows)
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var folderID, groupID *string
	err := row.Scan(&d.ID, &d.OwnerID, &folderID, &groupID, &d.Name, &d.OriginalName,
		&d.FileType, &d.MimeType, &d.SizeBytes, &d.Shareable, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if folderID != nil {
		d.FolderID = *folderID
	}
	if groupID != nil {
		d.GroupID = *groupID
	}
	return &d, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
