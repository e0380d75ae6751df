// Package mathpix implements ocr.Client against the Mathpix v3 REST API.
package mathpix

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"mathmend-backend/internal/ocr"
	"mathmend-backend/internal/shared/telemetry"
)

const (
	textEndpoint = "/v3/text"
	pdfEndpoint  = "/v3/pdf"

	// The vendor's PDF endpoint does not report confidence.
	pdfDefaultConfidence = 90

	// Scope limit: only the first pages of a PDF are processed.
	maxPDFPages = 3
	pdfPages    = "1-3"
)

// Client calls the Mathpix OCR API. Construct once at process start.
type Client struct {
	appID      string
	appKey     string
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client.
func New(appID, appKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(appID) == "" || strings.TrimSpace(appKey) == "" {
		return nil, fmt.Errorf("MATHPIX_APP_ID and MATHPIX_APP_KEY are required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.mathpix.com"
	}
	return &Client{
		appID:      appID,
		appKey:     appKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type requestOptions struct {
	MathInlineDelimiters  []string `json:"math_inline_delimiters"`
	MathDisplayDelimiters []string `json:"math_display_delimiters"`
	RmSpaces              bool     `json:"rm_spaces"`
	IncludeLatex          bool     `json:"include_latex"`
	IncludeText           bool     `json:"include_text"`
	Pages                 string   `json:"pages,omitempty"`
}

func defaultOptions() requestOptions {
	return requestOptions{
		MathInlineDelimiters:  []string{"$", "$"},
		MathDisplayDelimiters: []string{"$$", "$$"},
		RmSpaces:              true,
		IncludeLatex:          true,
		IncludeText:           true,
	}
}

type apiResponse struct {
	Text        string  `json:"text"`
	LatexStyled string  `json:"latex_styled"`
	Latex       string  `json:"latex"`
	Confidence  float64 `json:"confidence"`
	Error       string  `json:"error"`
}

// Recognize dispatches on file extension: .pdf goes to the PDF endpoint,
// everything else to the image endpoint.
func (c *Client) Recognize(ctx context.Context, filePath string) (ocr.Result, error) {
	if _, err := os.Stat(filePath); err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix: file does not exist: %s", filePath)
	}
	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		return c.recognizePDF(ctx, filePath)
	}
	return c.recognizeImage(ctx, filePath)
}

func (c *Client) recognizeImage(ctx context.Context, filePath string) (ocr.Result, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: read file: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: build form: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: write form: %w", err)
	}
	opts, err := json.Marshal(defaultOptions())
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: encode options: %w", err)
	}
	if err := writer.WriteField("options_json", string(opts)); err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: write options: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+textEndpoint, body)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix image: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(req)

	parsed, err := c.do(req)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("Mathpix image processing failed: %w", err)
	}

	confidence := parsed.Confidence * 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return ocr.Result{
		Text:       parsed.Text,
		LaTeX:      latexFrom(parsed),
		Confidence: confidence,
	}, nil
}

type pdfRequest struct {
	PDF         string `json:"pdf"`
	OptionsJSON string `json:"options_json"`
}

func (c *Client) recognizePDF(ctx context.Context, filePath string) (ocr.Result, error) {
	if pages, ok := pageCount(filePath); ok && pages > maxPDFPages {
		return ocr.Result{}, ocr.ErrPDFTooLarge
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix pdf: read file: %w", err)
	}

	opts := defaultOptions()
	opts.Pages = pdfPages
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix pdf: encode options: %w", err)
	}
	payload, err := json.Marshal(pdfRequest{
		PDF:         base64.StdEncoding.EncodeToString(raw),
		OptionsJSON: string(optsJSON),
	})
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix pdf: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pdfEndpoint, bytes.NewReader(payload))
	if err != nil {
		return ocr.Result{}, fmt.Errorf("mathpix pdf: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	parsed, err := c.do(req)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "request too large") {
			return ocr.Result{}, ocr.ErrPDFTooLarge
		}
		return ocr.Result{}, fmt.Errorf("Mathpix PDF processing failed: %w", err)
	}

	return ocr.Result{
		Text:       parsed.Text,
		LaTeX:      latexFrom(parsed),
		Confidence: pdfDefaultConfidence,
	}, nil
}

func (c *Client) do(req *http.Request) (apiResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return apiResponse{}, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != "" {
		return apiResponse{}, fmt.Errorf("Mathpix API error: %s", parsed.Error)
	}
	if resp.StatusCode/100 != 2 {
		return apiResponse{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parsed, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("app_id", c.appID)
	req.Header.Set("app_key", c.appKey)
}

func latexFrom(resp apiResponse) string {
	if resp.LatexStyled != "" {
		return resp.LatexStyled
	}
	return resp.Latex
}

// pageCount reads the PDF page count locally so hopeless uploads never reach
// the vendor. Unreadable PDFs skip the check and are sent as before.
func pageCount(filePath string) (int, bool) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		telemetry.Warn("mathpix.page_count_skipped", map[string]any{
			"file":  filepath.Base(filePath),
			"error": err.Error(),
		})
		return 0, false
	}
	defer f.Close()
	return reader.NumPage(), true
}

var _ ocr.Client = (*Client)(nil)
