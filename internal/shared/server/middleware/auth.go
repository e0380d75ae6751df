package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mathmend-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
)

// Identity is the verified caller stored in request context.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// IdentityVerifier exchanges a bearer token for the identity it belongs to.
// The identity provider owns sessions; this process only reads them.
type IdentityVerifier interface {
	Verify(ctx context.Context, accessToken string) (Identity, error)
}

// Auth requires a provider-issued bearer token on every request it guards.
// In dev-like environments an X-User-Id header is accepted instead, so the
// pipeline can be exercised without a live identity provider.
func Auth(env string, verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
				respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
				return
			}
			if verifier == nil {
				respond.Error(c, http.StatusUnauthorized, "Authentication is not configured")
				return
			}
			ident, err := verifier.Verify(c.Request.Context(), token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "Missing or invalid token")
				return
			}
			c.Set(userIDKey, ident.ID)
			if ident.Email != "" {
				c.Set(userEmailKey, ident.Email)
			}
			if ident.Name != "" {
				c.Set(userNameKey, ident.Name)
			}
			c.Next()
			return
		}

		if isDevLike(env) {
			if userID := strings.TrimSpace(c.GetHeader("X-User-Id")); userID != "" {
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}

		respond.Error(c, http.StatusUnauthorized, "Missing identity")
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
