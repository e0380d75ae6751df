package auth

import (
	"context"
	"errors"
	"regexp"

	"mathmend-backend/internal/shared/telemetry"
)

// allowedEmail limits accounts to the two partner institutions. The
// check runs before any provider call.
var allowedEmail = regexp.MustCompile(`(?i)@(spelman\.edu|morehouse\.edu)$`)

// MsgEmailNotAllowed is returned verbatim when the domain check fails.
const MsgEmailNotAllowed = "Email must end with @spelman.edu or @morehouse.edu."

// MsgInvalidCredentials is the only message login ever returns on
// failure, whatever the provider said.
const MsgInvalidCredentials = "Invalid email or password"

var (
	// ErrEmailNotAllowed indicates the email is outside the allow-list.
	ErrEmailNotAllowed = errors.New(MsgEmailNotAllowed)
	// ErrInvalidCredentials indicates login was rejected.
	ErrInvalidCredentials = errors.New(MsgInvalidCredentials)
	// ErrInvalidCode indicates the verification code was rejected.
	ErrInvalidCode = errors.New("Invalid verification code.")
)

// Service gates account operations on the email allow-list and shapes
// provider failures for the wire.
type Service struct {
	Provider Provider
}

// EmailAllowed reports whether the address belongs to a partner institution.
func EmailAllowed(email string) bool {
	return allowedEmail.MatchString(email)
}

// Register creates an account with the provider. Provider rejection
// messages are forwarded; signup already discloses account existence.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if !EmailAllowed(email) {
		return ErrEmailNotAllowed
	}
	if err := s.Provider.SignUp(ctx, email, password, name); err != nil {
		return err
	}
	return nil
}

// Login exchanges credentials for a session. Every failure collapses
// to the generic invalid-credentials error so the response never
// reveals whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	session, err := s.Provider.SignIn(ctx, email, password)
	if err != nil {
		telemetry.Warn("auth.login_rejected", map[string]any{
			"error": err.Error(),
		})
		return Session{}, ErrInvalidCredentials
	}
	return session, nil
}

// Verify exchanges an emailed 6-digit code for a verified session.
func (s *Service) Verify(ctx context.Context, email, code string) (Session, error) {
	session, err := s.Provider.VerifyOTP(ctx, email, code)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			telemetry.Warn("auth.verify_rejected", map[string]any{
				"status": perr.Status,
				"error":  perr.Message,
			})
			return Session{}, ErrInvalidCode
		}
		return Session{}, err
	}
	return session, nil
}

// Identify resolves a bearer token to its user, for request authentication.
func (s *Service) Identify(ctx context.Context, accessToken string) (User, error) {
	return s.Provider.GetUser(ctx, accessToken)
}
