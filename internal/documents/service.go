package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"mathmend-backend/internal/shared/storage/object"
)

// MaxUploadSize is the largest file the upload endpoint accepts.
const MaxUploadSize = 10 << 20 // 10MB

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
}

// UploadInput carries the validated pieces of a multipart upload.
type UploadInput struct {
	FileName string
	MimeType string
	MathType string
	Prompt   string
	Size     int64
	File     io.Reader
}

// Upload validates the file, saves it to object storage, and records
// the document in status uploaded.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	if userID == "" {
		return Document{}, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	if in.FileName == "" {
		return Document{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if !AllowedMimeType(in.MimeType) {
		return Document{}, fmt.Errorf("%w: unsupported file type %q, only PDF, JPEG and PNG are accepted", ErrInvalidInput, in.MimeType)
	}
	if in.Size > MaxUploadSize {
		return Document{}, fmt.Errorf("%w: file exceeds the 10MB limit", ErrInvalidInput)
	}
	if !ValidMathType(in.MathType) {
		return Document{}, fmt.Errorf("%w: unknown math type %q", ErrInvalidInput, in.MathType)
	}

	storageKey, _, mimeType, err := s.Store.Save(ctx, userID, in.FileName, in.File)
	if err != nil {
		return Document{}, fmt.Errorf("save upload: %w", err)
	}
	if mimeType == "" {
		mimeType = in.MimeType
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   in.FileName,
		StorageKey: storageKey,
		FileURL:    s.Store.URL(storageKey),
		MimeType:   mimeType,
		MathType:   in.MathType,
		Prompt:     in.Prompt,
		Status:     StatusUploaded,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("record document: %w", err)
	}

	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, fmt.Errorf("%w: document id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// ChangeStatus moves a document through its lifecycle, rejecting
// transitions the table does not allow.
func (s *Service) ChangeStatus(ctx context.Context, documentID string, next Status) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if err := doc.Status.Transition(next); err != nil {
		return Document{}, err
	}
	if err := s.Repo.UpdateStatus(ctx, documentID, next); err != nil {
		return Document{}, fmt.Errorf("update status: %w", err)
	}
	doc.Status = next
	return doc, nil
}
