package results

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]OCRResult // documentID -> result
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]OCRResult),
	}
}

// Create stores a result keyed by its document.
func (r *MemoryRepo) Create(ctx context.Context, res OCRResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[res.DocumentID] = res
	return nil
}

// GetByDocumentID returns the result for a document.
func (r *MemoryRepo) GetByDocumentID(ctx context.Context, documentID string) (OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return OCRResult{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[documentID]
	if !ok {
		return OCRResult{}, ErrNotFound
	}
	return res, nil
}
