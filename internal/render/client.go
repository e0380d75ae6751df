package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Renderer turns LaTeX source into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, latexCode string) ([]byte, error)
}

// Client renders LaTeX through a latexonline.cc compatible service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient constructs a renderer against the given data endpoint.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type renderRequest struct {
	Code string `json:"code"`
}

// Render posts the source and returns the compiled PDF.
func (c *Client) Render(ctx context.Context, latexCode string) ([]byte, error) {
	encoded, err := json.Marshal(renderRequest{Code: latexCode})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call render service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return nil, fmt.Errorf("render service returned status %d: %s", resp.StatusCode, msg)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("render service returned an empty document")
	}
	return body, nil
}
