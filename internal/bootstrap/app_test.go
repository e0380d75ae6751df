package bootstrap

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/shared/config"
)

// fakeVendors stands in for Mathpix, OpenAI and the LaTeX renderer.
func fakeVendors(t *testing.T) (mathpixURL, openaiURL, renderURL string) {
	t.Helper()

	mathpix := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/text" && r.URL.Path != "/v3/pdf" {
			t.Errorf("unexpected mathpix path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":         "x^2 + 2x + 1",
			"latex_styled": `x^{2} + 2x + 1`,
			"confidence":   0.92,
		})
	}))
	t.Cleanup(mathpix.Close)

	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correction, _ := json.Marshal(map[string]string{
			"correctedText": "x^2 + 2x + 1 = (x+1)^2",
			"latexCode":     `$x^{2} + 2x + 1 = (x+1)^{2}$`,
		})
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": string(correction)}},
			},
		})
	}))
	t.Cleanup(openai.Close)

	renderer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.5 rendered"))
	}))
	t.Cleanup(renderer.Close)

	return mathpix.URL, openai.URL, renderer.URL
}

func buildTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mathpixURL, openaiURL, renderURL := fakeVendors(t)
	app, err := Build(config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		PublicBaseURL:   "http://localhost:5000",
		MathpixAppID:    "app-id",
		MathpixAppKey:   "app-key",
		MathpixBaseURL:  mathpixURL,
		OpenAIAPIKey:    "sk-test",
		OpenAIBaseURL:   openaiURL,
		LLMModel:        "gpt-4",
		LatexRenderURL:  renderURL + "/data",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "test-user")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func uploadNotes(t *testing.T, router http.Handler) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="notes.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("fake image bytes"))
	mw.WriteField("mathType", "Algebra")
	mw.WriteField("prompt", "check my factoring")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-Id", "test-user")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		Success    bool   `json:"success"`
		DocumentID string `json:"documentId"`
		FilePath   string `json:"filePath"`
		UserID     string `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if !uploaded.Success || uploaded.DocumentID == "" || uploaded.UserID != "test-user" {
		t.Fatalf("upload response = %+v", uploaded)
	}
	return uploaded.DocumentID
}

func TestUploadProcessFetchRoundTrip(t *testing.T) {
	app := buildTestApp(t)
	documentID := uploadNotes(t, app.Router)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/process-ocr", map[string]string{"documentId": documentID})
	if resp.Code != http.StatusOK {
		t.Fatalf("process status = %d, body %s", resp.Code, resp.Body.String())
	}
	var processed struct {
		Success bool `json:"success"`
		Result  struct {
			OriginalText     string  `json:"originalText"`
			Confidence       float64 `json:"confidence"`
			LaTeXCodePreview string  `json:"latexCodePreview"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&processed); err != nil {
		t.Fatalf("decode process response: %v", err)
	}
	if processed.Result.Confidence < 0 || processed.Result.Confidence > 100 {
		t.Errorf("confidence = %v, want [0,100]", processed.Result.Confidence)
	}

	resp = doJSON(t, app.Router, http.MethodGet, "/api/ocr-results/"+documentID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("fetch status = %d, body %s", resp.Code, resp.Body.String())
	}
	var fetched struct {
		Success bool `json:"success"`
		Results struct {
			OriginalText  string  `json:"originalText"`
			CorrectedText string  `json:"correctedText"`
			LaTeXCode     string  `json:"latexCode"`
			Confidence    float64 `json:"confidence"`
			MathType      string  `json:"mathType"`
			FileName      string  `json:"fileName"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode fetch response: %v", err)
	}
	if fetched.Results.LaTeXCode == "" || !strings.Contains(fetched.Results.LaTeXCode, `\documentclass`) {
		t.Errorf("latexCode = %q, want document-class declaration", fetched.Results.LaTeXCode)
	}
	if fetched.Results.MathType != "Algebra" || fetched.Results.FileName != "notes.png" {
		t.Errorf("results metadata = %+v", fetched.Results)
	}
	if fetched.Results.Confidence != 92 {
		t.Errorf("confidence = %v, want 92", fetched.Results.Confidence)
	}
}

func TestReprocessCompletedDocumentRejected(t *testing.T) {
	app := buildTestApp(t)
	documentID := uploadNotes(t, app.Router)

	if resp := doJSON(t, app.Router, http.MethodPost, "/api/process-ocr", map[string]string{"documentId": documentID}); resp.Code != http.StatusOK {
		t.Fatalf("first process status = %d", resp.Code)
	}
	resp := doJSON(t, app.Router, http.MethodPost, "/api/process-ocr", map[string]string{"documentId": documentID})
	if resp.Code != http.StatusConflict {
		t.Fatalf("second process status = %d, want 409; body %s", resp.Code, resp.Body.String())
	}
}

func TestAskQuestionUsesStoredContext(t *testing.T) {
	app := buildTestApp(t)
	documentID := uploadNotes(t, app.Router)
	if resp := doJSON(t, app.Router, http.MethodPost, "/api/process-ocr", map[string]string{"documentId": documentID}); resp.Code != http.StatusOK {
		t.Fatalf("process status = %d", resp.Code)
	}

	resp := doJSON(t, app.Router, http.MethodPost, "/api/ask-question", map[string]string{
		"question":   "How do I factor this?",
		"mathType":   "Algebra",
		"documentId": documentID,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body %s", resp.Code, resp.Body.String())
	}
	var answered struct {
		Success  bool   `json:"success"`
		Question string `json:"question"`
		Answer   string `json:"answer"`
		MathType string `json:"mathType"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answered); err != nil {
		t.Fatalf("decode ask response: %v", err)
	}
	if !strings.Contains(answered.Answer, "Note: Using context from your document.") {
		t.Errorf("answer missing context note: %q", answered.Answer)
	}
}

func TestAskQuestionWithoutStoredResultHasNoContextNote(t *testing.T) {
	app := buildTestApp(t)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/ask-question", map[string]string{
		"question":   "What is a derivative?",
		"mathType":   "Calculus",
		"documentId": "no-such-document",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body %s", resp.Code, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), "Note: Using context") {
		t.Errorf("context note present without stored result: %s", resp.Body.String())
	}
}

func TestRenderLatexPDFStoresAndServesFile(t *testing.T) {
	app := buildTestApp(t)
	documentID := uploadNotes(t, app.Router)

	resp := doJSON(t, app.Router, http.MethodPost, "/api/render-latex-pdf", map[string]string{
		"latexCode":  `$x^{2}$`,
		"documentId": documentID,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("render status = %d, body %s", resp.Code, resp.Body.String())
	}
	var rendered struct {
		Success bool   `json:"success"`
		PDFURL  string `json:"pdfUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rendered); err != nil {
		t.Fatalf("decode render response: %v", err)
	}
	idx := strings.Index(rendered.PDFURL, "/files/")
	if idx < 0 {
		t.Fatalf("pdfUrl = %q, want /files/ path", rendered.PDFURL)
	}

	fileReq := httptest.NewRequest(http.MethodGet, rendered.PDFURL[idx:], nil)
	fileResp := httptest.NewRecorder()
	app.Router.ServeHTTP(fileResp, fileReq)
	if fileResp.Code != http.StatusOK {
		t.Fatalf("file fetch status = %d", fileResp.Code)
	}
	if fileResp.Body.String() != "%PDF-1.5 rendered" {
		t.Errorf("stored pdf bytes = %q", fileResp.Body.String())
	}
}

func TestAPIRequiresIdentity(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/process-ocr", strings.NewReader(`{"documentId":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("error body must carry success:false")
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	app := buildTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="notes.gif"`},
		"Content-Type":        {"image/gif"},
	})
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("gif bytes"))
	mw.WriteField("mathType", "Algebra")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload-document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-Id", "test-user")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", resp.Code, resp.Body.String())
	}
}
