package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/auth"
	"github.com/nisix/errkit/errors"
)

// TokenVerifier validates a bearer token. *auth.Service implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthConfig configures the authentication middleware.
type AuthConfig struct {
	Verifier TokenVerifier
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth verifies the Bearer token on each request and stores the claims under
// ContextKeyClaims. Missing or invalid credentials abort with Unauthenticated.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, errors.Unauthenticated(map[string]any{"reason": "missing_token"}))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortWith(c, errors.Unauthenticated(map[string]any{"reason": "invalid_header"}))
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole aborts with Unauthorized unless the authenticated caller holds
// role. It must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Authorize(ClaimsFrom(c), role); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth, or nil.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
