// Package middleware provides the Gin middleware stack used by the server.
//
// Middleware here never writes error bodies itself. Failures are attached to
// the request with c.Error and the request is aborted, leaving the server's
// error handler to format a single consistent response.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/errors"
)

// Gin context keys set by this package.
const (
	ContextKeyRequestID = "request_id"
	ContextKeyClaims    = "auth_claims"
)

// HeaderRequestID is the header carrying the request id.
const HeaderRequestID = "X-Request-Id"

// abortWith records err on the request and stops the handler chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// classifiedCode returns the code of the last classified error on c, if any.
func classifiedCode(c *gin.Context) string {
	if len(c.Errors) == 0 {
		return ""
	}
	return string(errors.CodeOf(c.Errors.Last().Err))
}
