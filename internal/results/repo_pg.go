package results

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. A unique constraint on
// document_id keeps results 1:1 with documents.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new OCR result.
func (r *PGRepo) Create(ctx context.Context, res OCRResult) error {
	const query = `
INSERT INTO ocr_results (
    id,
    document_id,
    original_text,
    corrected_text,
    latex_code,
    confidence,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.DocumentID,
		res.OriginalText,
		res.CorrectedText,
		res.LaTeXCode,
		res.Confidence,
		res.CreatedAt,
	)
	return err
}

// GetByDocumentID returns the result stored for a document.
func (r *PGRepo) GetByDocumentID(ctx context.Context, documentID string) (OCRResult, error) {
	const query = `
SELECT id, document_id, original_text, corrected_text, latex_code, confidence, created_at
FROM ocr_results
WHERE document_id = $1`

	var res OCRResult
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&res.ID,
		&res.DocumentID,
		&res.OriginalText,
		&res.CorrectedText,
		&res.LaTeXCode,
		&res.Confidence,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OCRResult{}, ErrNotFound
		}
		return OCRResult{}, err
	}
	return res, nil
}
