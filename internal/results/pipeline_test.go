package results

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mathmend-backend/internal/documents"
	"mathmend-backend/internal/llm"
	"mathmend-backend/internal/ocr"
	"mathmend-backend/internal/shared/storage/object/local"
)

type fakeOCR struct {
	result ocr.Result
	err    error
	calls  int
}

func (f *fakeOCR) Recognize(ctx context.Context, filePath string) (ocr.Result, error) {
	f.calls++
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return f.result, nil
}

type fakeLLM struct {
	correction llm.Correction
	err        error
}

func (f *fakeLLM) Correct(ctx context.Context, input llm.CorrectionInput) (llm.Correction, error) {
	if f.err != nil {
		return llm.Correction{}, f.err
	}
	return f.correction, nil
}

func (f *fakeLLM) Chat(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("not used")
}

func newTestPipeline(t *testing.T, ocrClient ocr.Client, llmClient llm.Client) (*Pipeline, *documents.Service) {
	t.Helper()
	store := local.New(t.TempDir(), "http://localhost:5000")
	docSvc := &documents.Service{Store: store, Repo: documents.NewMemoryRepo()}
	return &Pipeline{
		Docs:  docSvc,
		Store: store,
		OCR:   ocrClient,
		LLM:   llmClient,
		Repo:  NewMemoryRepo(),
	}, docSvc
}

func uploadDoc(t *testing.T, svc *documents.Service) documents.Document {
	t.Helper()
	doc, err := svc.Upload(context.Background(), "user-1", documents.UploadInput{
		FileName: "notes.png",
		MimeType: "image/png",
		MathType: "Calculus",
		Size:     5,
		File:     strings.NewReader("bytes"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return doc
}

func TestProcessHappyPath(t *testing.T) {
	ocrClient := &fakeOCR{result: ocr.Result{Text: "x^2", LaTeX: `x^{2}`, Confidence: 87}}
	llmClient := &fakeLLM{correction: llm.Correction{CorrectedText: "x squared", LaTeXCode: `\documentclass{article}\begin{document}$x^{2}$\end{document}`}}
	p, docSvc := newTestPipeline(t, ocrClient, llmClient)
	doc := uploadDoc(t, docSvc)

	gotDoc, res, err := p.Process(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gotDoc.Status != documents.StatusCompleted {
		t.Errorf("status = %q", gotDoc.Status)
	}
	if res.CorrectedText != "x squared" || res.Confidence != 87 {
		t.Errorf("result = %+v", res)
	}

	view, err := p.Fetch(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if view.MathType != "Calculus" || view.FileName != "notes.png" {
		t.Errorf("view = %+v", view)
	}
}

func TestProcessOCRFailureMarksError(t *testing.T) {
	ocrClient := &fakeOCR{err: errors.New("vendor down")}
	p, docSvc := newTestPipeline(t, ocrClient, &fakeLLM{})
	doc := uploadDoc(t, docSvc)

	_, _, err := p.Process(context.Background(), doc.ID)
	if err == nil || !strings.Contains(err.Error(), "vendor down") {
		t.Fatalf("expected originating error to be surfaced, got %v", err)
	}

	got, err := docSvc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != documents.StatusError {
		t.Errorf("status = %q, want error", got.Status)
	}
}

func TestProcessLLMFailureFallsBackToOCROutput(t *testing.T) {
	ocrClient := &fakeOCR{result: ocr.Result{Text: "raw ocr", LaTeX: `\frac{1}{2}`, Confidence: 90}}
	p, docSvc := newTestPipeline(t, ocrClient, &fakeLLM{err: errors.New("llm down")})
	doc := uploadDoc(t, docSvc)

	gotDoc, res, err := p.Process(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gotDoc.Status != documents.StatusCompleted {
		t.Errorf("status = %q", gotDoc.Status)
	}
	if res.CorrectedText != "raw ocr" {
		t.Errorf("correctedText = %q, want raw OCR text", res.CorrectedText)
	}
	if !strings.Contains(res.LaTeXCode, `\documentclass`) {
		t.Errorf("latexCode should be a wrapped document:\n%s", res.LaTeXCode)
	}
	if !strings.Contains(res.LaTeXCode, `\frac{1}{2}`) {
		t.Errorf("latexCode should carry the OCR latex:\n%s", res.LaTeXCode)
	}
}

func TestProcessCompletedDocumentIsRejected(t *testing.T) {
	ocrClient := &fakeOCR{result: ocr.Result{Text: "x", LaTeX: "x", Confidence: 80}}
	llmClient := &fakeLLM{correction: llm.Correction{CorrectedText: "x", LaTeXCode: `\documentclass{article}\begin{document}x\end{document}`}}
	p, docSvc := newTestPipeline(t, ocrClient, llmClient)
	doc := uploadDoc(t, docSvc)

	if _, _, err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	_, _, err := p.Process(context.Background(), doc.ID)
	if !errors.Is(err, documents.ErrInvalidTransition) {
		t.Fatalf("second Process: want ErrInvalidTransition, got %v", err)
	}
	if ocrClient.calls != 1 {
		t.Errorf("ocr calls = %d, want 1", ocrClient.calls)
	}
}

func TestFetchMissingResult(t *testing.T) {
	p, docSvc := newTestPipeline(t, &fakeOCR{}, &fakeLLM{})
	doc := uploadDoc(t, docSvc)

	_, err := p.Fetch(context.Background(), doc.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
