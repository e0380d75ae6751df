package auth

import (
	"context"

	"mathmend-backend/internal/shared/server/middleware"
)

// Verifier adapts the service to the auth middleware contract.
type Verifier struct {
	Svc *Service
}

// Verify resolves a bearer token through the identity provider.
func (v Verifier) Verify(ctx context.Context, accessToken string) (middleware.Identity, error) {
	user, err := v.Svc.Identify(ctx, accessToken)
	if err != nil {
		return middleware.Identity{}, err
	}
	return middleware.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}, nil
}
