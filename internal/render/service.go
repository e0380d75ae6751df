package render

import (
	"bytes"
	"context"
	"fmt"

	"mathmend-backend/internal/latex"
	"mathmend-backend/internal/shared/storage/object"
	"mathmend-backend/internal/shared/util"
)

// Service renders LaTeX to PDF and stores the output next to the
// user's uploads.
type Service struct {
	Renderer Renderer
	Store    object.ObjectStore
}

// RenderAndStore compiles the source and uploads the PDF under a
// deterministic key so re-rendering overwrites the previous output.
func (s *Service) RenderAndStore(ctx context.Context, userID, documentID, latexCode string) (string, error) {
	if userID == "" || documentID == "" || latexCode == "" {
		return "", fmt.Errorf("userID, documentID and latexCode are required")
	}

	full := latex.WrapDocument(latexCode)

	pdf, err := s.Renderer.Render(ctx, full)
	if err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}

	storageKey := fmt.Sprintf("%s/%s_rendered.pdf", util.HashUserKey(userID), documentID)
	if _, err := s.Store.SaveWithKey(ctx, storageKey, "application/pdf", bytes.NewReader(pdf)); err != nil {
		return "", fmt.Errorf("store pdf: %w", err)
	}

	return s.Store.URL(storageKey), nil
}
