package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    filename,
    storage_key,
    file_path,
    file_type,
    math_type,
    prompt,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var storageKey sql.NullString
	if doc.StorageKey != "" {
		storageKey = sql.NullString{String: doc.StorageKey, Valid: true}
	}
	var prompt sql.NullString
	if doc.Prompt != "" {
		prompt = sql.NullString{String: doc.Prompt, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		storageKey,
		doc.FileURL,
		doc.MimeType,
		doc.MathType,
		prompt,
		string(doc.Status),
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, filename, storage_key, file_path, file_type, math_type, prompt, status, created_at
FROM documents
WHERE id = $1`

	var doc Document
	var storageKey sql.NullString
	var prompt sql.NullString
	var status string
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&storageKey,
		&doc.FileURL,
		&doc.MimeType,
		&doc.MathType,
		&prompt,
		&status,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	if prompt.Valid {
		doc.Prompt = prompt.String
	}
	doc.Status = Status(status)
	return doc, nil
}

// UpdateStatus sets the stored status for a document.
func (r *PGRepo) UpdateStatus(ctx context.Context, documentID string, status Status) error {
	const query = `UPDATE documents SET status = $2 WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, documentID, string(status))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
