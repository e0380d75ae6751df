package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"mathmend-backend/internal/documents"
	"mathmend-backend/internal/llm"
	"mathmend-backend/internal/ocr"
	"mathmend-backend/internal/shared/metrics"
	"mathmend-backend/internal/shared/storage/object"
	"mathmend-backend/internal/shared/telemetry"
)

// Pipeline runs a document through recognition and correction and
// persists the outcome.
type Pipeline struct {
	Docs  *documents.Service
	Store object.ObjectStore
	OCR   ocr.Client
	LLM   llm.Client
	Repo  Repo
}

// ResultView is the joined shape served by the results fetch endpoint.
type ResultView struct {
	OriginalText  string  `json:"originalText"`
	CorrectedText string  `json:"correctedText"`
	LaTeXCode     string  `json:"latexCode"`
	Confidence    float64 `json:"confidence"`
	MathType      string  `json:"mathType"`
	FileName      string  `json:"fileName"`
}

// Process moves the document to processing, runs OCR and correction,
// stores the result, and marks the document completed. Any failure
// after the processing transition marks the document error; that
// status write is best effort and only logged when it fails.
func (p *Pipeline) Process(ctx context.Context, documentID string) (documents.Document, OCRResult, error) {
	metrics.IncProcessingStarted()
	start := time.Now()

	doc, err := p.Docs.ChangeStatus(ctx, documentID, documents.StatusProcessing)
	if err != nil {
		metrics.IncProcessingFailed()
		return documents.Document{}, OCRResult{}, err
	}

	res, err := p.run(ctx, doc)
	if err != nil {
		metrics.IncProcessingFailed()
		p.markError(ctx, doc.ID)
		return documents.Document{}, OCRResult{}, err
	}

	doc, err = p.Docs.ChangeStatus(ctx, doc.ID, documents.StatusCompleted)
	if err != nil {
		metrics.IncProcessingFailed()
		p.markError(ctx, documentID)
		return documents.Document{}, OCRResult{}, fmt.Errorf("mark completed: %w", err)
	}

	metrics.IncProcessingCompleted()
	metrics.ObserveProcessingDurationMs(float64(time.Since(start).Milliseconds()))
	return doc, res, nil
}

func (p *Pipeline) run(ctx context.Context, doc documents.Document) (OCRResult, error) {
	scratch, err := p.download(ctx, doc)
	if err != nil {
		return OCRResult{}, err
	}
	defer func() {
		if err := os.Remove(scratch); err != nil {
			telemetry.Warn("pipeline.scratch_cleanup", map[string]any{
				"document_id": doc.ID,
				"path":        scratch,
				"error":       err.Error(),
			})
		}
	}()

	recognized, err := p.OCR.Recognize(ctx, scratch)
	if err != nil {
		return OCRResult{}, fmt.Errorf("recognize: %w", err)
	}

	input := llm.CorrectionInput{
		OCRText:      recognized.Text,
		OCRLaTeX:     recognized.LaTeX,
		MathType:     doc.MathType,
		Instructions: doc.Prompt,
	}
	correction, err := p.LLM.Correct(ctx, input)
	if err != nil {
		// Correction is an enhancement; serve the raw OCR output
		// rather than failing the whole document.
		telemetry.Warn("pipeline.correction_degraded", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		correction = llm.Fallback(input)
	}

	res := OCRResult{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		OriginalText:  recognized.Text,
		CorrectedText: correction.CorrectedText,
		LaTeXCode:     correction.LaTeXCode,
		Confidence:    recognized.Confidence,
		CreatedAt:     time.Now().UTC(),
	}
	if err := p.Repo.Create(ctx, res); err != nil {
		return OCRResult{}, fmt.Errorf("store result: %w", err)
	}
	return res, nil
}

// download copies the stored object to a scratch file so the OCR
// client can dispatch on the file extension.
func (p *Pipeline) download(ctx context.Context, doc documents.Document) (string, error) {
	rc, err := p.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("open stored file: %w", err)
	}
	defer rc.Close()

	f, err := os.CreateTemp("", "mathnotes-*"+filepath.Ext(doc.FileName))
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("copy to scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close scratch file: %w", err)
	}
	return f.Name(), nil
}

func (p *Pipeline) markError(ctx context.Context, documentID string) {
	if _, err := p.Docs.ChangeStatus(ctx, documentID, documents.StatusError); err != nil {
		telemetry.Warn("pipeline.status_update_best_effort", map[string]any{
			"document_id": documentID,
			"target":      string(documents.StatusError),
			"error":       err.Error(),
		})
	}
}

// Fetch joins the stored result with its document metadata.
func (p *Pipeline) Fetch(ctx context.Context, documentID string) (ResultView, error) {
	doc, err := p.Docs.Get(ctx, documentID)
	if err != nil {
		return ResultView{}, err
	}
	res, err := p.Repo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return ResultView{}, err
	}
	return ResultView{
		OriginalText:  res.OriginalText,
		CorrectedText: res.CorrectedText,
		LaTeXCode:     res.LaTeXCode,
		Confidence:    res.Confidence,
		MathType:      doc.MathType,
		FileName:      doc.FileName,
	}, nil
}
