// Package middleware holds the gin middleware of the API.
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/api/respond"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
)

const identityKey = "identity"

// Authenticator resolves a token into the identity of a current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// TokenFrom reads the session token from the token cookie, falling back to
// an "Authorization: Bearer" header.
func TokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(config.TokenCookieName); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid token and stores the caller's
// identity on the context.
func RequireAuth(a Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c.Request.Context(), TokenFrom(c))
		if err != nil {
			respond.Error(c, log, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity set by RequireAuth.
func IdentityFrom(c *gin.Context) (auth.Identity, error) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, apperr.Unauthorized("authentication required")
	}
	id, ok := v.(auth.Identity)
	if !ok {
		return auth.Identity{}, apperr.Unauthorized("authentication required")
	}
	return id, nil
}
