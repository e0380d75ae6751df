// Package llm abstracts the language-model vendor used for OCR correction
// and tutoring.
package llm

import (
	"context"
	"errors"

	"mathmend-backend/internal/latex"
)

// CorrectionInput carries the OCR output to be refined.
type CorrectionInput struct {
	OCRText      string
	OCRLaTeX     string
	MathType     string
	Instructions string
}

// Correction is the refined output. LaTeXCode is always a full document.
type Correction struct {
	CorrectedText string `json:"correctedText"`
	LaTeXCode     string `json:"latexCode"`
}

// Client is the language-model vendor contract.
type Client interface {
	Correct(ctx context.Context, input CorrectionInput) (Correction, error)
	Chat(ctx context.Context, system, user string) (string, error)
}

// PlaceholderAnswer is returned by Chat when no model is configured.
const PlaceholderAnswer = "This is a placeholder answer."

// ErrNotConfigured is returned by the placeholder client's Chat path when
// callers need to distinguish it.
var ErrNotConfigured = errors.New("llm not configured")

// PlaceholderClient stands in when no API key is configured. Correction
// passes OCR output through untouched; Chat returns a fixed answer.
type PlaceholderClient struct{}

// Correct echoes the OCR text and wraps the OCR LaTeX.
func (PlaceholderClient) Correct(ctx context.Context, input CorrectionInput) (Correction, error) {
	_ = ctx
	return Fallback(input), nil
}

// Chat returns the fixed placeholder answer.
func (PlaceholderClient) Chat(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return PlaceholderAnswer, nil
}

// Fallback builds the degraded correction used when the model call fails:
// the raw OCR output, with its LaTeX wrapped into a compilable document.
// When the vendor produced no LaTeX at all, the plain text is converted
// with the basic substitution rules instead.
func Fallback(input CorrectionInput) Correction {
	latexCode := latex.WrapDocument(input.OCRLaTeX)
	if input.OCRLaTeX == "" && input.OCRText != "" {
		latexCode = latex.ConvertText(input.OCRText)
	}
	return Correction{
		CorrectedText: input.OCRText,
		LaTeXCode:     latexCode,
	}
}
