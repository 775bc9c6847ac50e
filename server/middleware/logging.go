package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/logger"
)

var healthPaths = []string{"/health", "/alive", "/ready", "/metrics"}

// RequestLogger logs every completed request at a level derived from its
// status. Health-check paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.WithComponent("http")
	}
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := map[string]interface{}{
			logger.FieldMethod:   c.Request.Method,
			logger.FieldPath:     c.Request.URL.Path,
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if code := classifiedCode(c); code != "" {
			fields[logger.FieldCode] = code
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	p := strings.TrimPrefix(path, "/api")
	for _, hp := range healthPaths {
		if p == hp {
			return true
		}
	}
	return false
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
