package auth

import (
	"context"
	"errors"
	"fmt"
)

// User is the identity the provider reports for a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is an authenticated provider session.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Provider is the identity provider the gate delegates account state to.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) error
	SignIn(ctx context.Context, email, password string) (Session, error)
	VerifyOTP(ctx context.Context, email, code string) (Session, error)
	GetUser(ctx context.Context, accessToken string) (User, error)
}

// ErrNotConfigured indicates no provider credentials were supplied.
var ErrNotConfigured = errors.New("auth provider not configured")

// ProviderError carries the provider's rejection so callers can decide
// whether to forward or replace its message.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %s", e.Status, e.Message)
}
