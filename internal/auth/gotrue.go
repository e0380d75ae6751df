package auth

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

// GoTrueClient talks to a GoTrue-compatible identity provider
// (Supabase Auth) over its REST surface.
type GoTrueClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoTrueClient constructs a provider client. baseURL is the project
// root; the /auth/v1 prefix is appended per request.
func NewGoTrueClient(baseURL, apiKey string) (*GoTrueClient, error) {
	if baseURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &GoTrueClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// SignUp creates an account; the provider sends the verification code
// out-of-band.
func (c *GoTrueClient) SignUp(ctx context.Context, email, password, name string) error {
	req := signUpRequest{Email: email, Password: password}
	if name != "" {
		req.Data = map[string]any{"name": name}
	}
	return c.post(ctx, "/auth/v1/signup", "", req, nil)
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a session.
func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := c.post(ctx, "/auth/v1/token?grant_type=password", "", passwordGrantRequest{
		Email:    email,
		Password: password,
	}, &session)
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

type verifyRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// VerifyOTP exchanges an emailed signup code for a verified session.
func (c *GoTrueClient) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	var session Session
	err := c.post(ctx, "/auth/v1/verify", "", verifyRequest{
		Type:  "signup",
		Email: email,
		Token: code,
	}, &session)
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// GetUser resolves an access token to its user.
func (c *GoTrueClient) GetUser(ctx context.Context, accessToken string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, accessToken)

	var payload struct {
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	}
	if err := c.do(req, &payload); err != nil {
		return User{}, err
	}

	user := User{ID: payload.ID, Email: payload.Email}
	if name, ok := payload.UserMetadata["name"].(string); ok {
		user.Name = name
	}
	return user, nil
}

func (c *GoTrueClient) post(ctx context.Context, path, accessToken string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, accessToken)
	return c.do(req, out)
}

func (c *GoTrueClient) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if accessToken == "" {
		accessToken = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

func (c *GoTrueClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Status:  resp.StatusCode,
			Message: providerMessage(raw),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// providerMessage pulls a human message out of the few error shapes
// GoTrue is known to return.
func providerMessage(raw []byte) string {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
