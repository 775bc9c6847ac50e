package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/errors"
)

const defaultMaxBodySize = 10 * 1024 * 1024

// ParseSize parses a human size such as "10MB" or "512KiB", returning def
// when s is empty or invalid.
func ParseSize(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n == 0 {
		return def
	}
	return int64(n)
}

// BodySizeLimit rejects requests whose declared length exceeds maxSize with a
// PayloadTooLarge fault, and caps the body reader for the rest.
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	limit := ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortWith(c, errors.New(errors.ErrCodePayloadTooLarge,
				errors.WithMetadata(map[string]any{"limit_bytes": limit})))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
