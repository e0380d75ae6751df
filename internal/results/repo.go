package results

import "context"

// Repo defines persistence operations for OCR results.
type Repo interface {
	Create(ctx context.Context, res OCRResult) error
	GetByDocumentID(ctx context.Context, documentID string) (OCRResult, error)
}
