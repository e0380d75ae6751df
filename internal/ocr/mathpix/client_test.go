package mathpix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mathmend-backend/internal/ocr"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New("app-id", "app-key", srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func writeTempFile(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestRecognizeImage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/text" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("app_id") != "app-id" || r.Header.Get("app_key") != "app-key" {
			t.Errorf("missing auth headers")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		var opts map[string]any
		if err := json.Unmarshal([]byte(r.FormValue("options_json")), &opts); err != nil {
			t.Errorf("options_json not valid JSON: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":         "x squared",
			"latex_styled": `x^{2}`,
			"confidence":   0.87,
		})
	}))

	path := writeTempFile(t, "scan.png", []byte("not-a-real-png"))
	res, err := client.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Text != "x squared" {
		t.Errorf("text = %q", res.Text)
	}
	if res.LaTeX != `x^{2}` {
		t.Errorf("latex = %q", res.LaTeX)
	}
	if res.Confidence != 87 {
		t.Errorf("confidence = %v, want 87", res.Confidence)
	}
}

func TestRecognizePDFUsesDefaultConfidence(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/pdf" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req pdfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.PDF == "" {
			t.Errorf("expected base64 pdf payload")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":  "integral of x",
			"latex": `\int x \, dx`,
		})
	}))

	path := writeTempFile(t, "notes.pdf", []byte("%PDF-1.4 not parseable"))
	res, err := client.Recognize(context.Background(), path)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.Confidence != pdfDefaultConfidence {
		t.Errorf("confidence = %v, want %v", res.Confidence, pdfDefaultConfidence)
	}
	if res.LaTeX != `\int x \, dx` {
		t.Errorf("latex = %q", res.LaTeX)
	}
}

func TestRecognizePDFOversizeVendorError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": "Request too large for processing",
		})
	}))

	path := writeTempFile(t, "big.pdf", []byte("%PDF-1.4"))
	_, err := client.Recognize(context.Background(), path)
	if !errors.Is(err, ocr.ErrPDFTooLarge) {
		t.Fatalf("expected ErrPDFTooLarge, got %v", err)
	}
	if err.Error() != ocr.MsgPDFTooLarge {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestRecognizeVendorErrorIsForwarded(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid credentials"})
	}))

	path := writeTempFile(t, "scan.jpg", []byte("jpg-bytes"))
	_, err := client.Recognize(context.Background(), path)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "invalid credentials") {
		t.Fatalf("expected vendor message in error, got %q", got)
	}
}

func TestRecognizeMissingFile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("vendor should not be called for a missing file")
	}))
	if _, err := client.Recognize(context.Background(), filepath.Join(t.TempDir(), "gone.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
