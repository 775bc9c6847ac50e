// Package endpoint provides built-in operational endpoints.
package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/version"
)

var startTime = time.Now()

// Health reports liveness with the service identity, build and uptime.
// An empty serviceVersion falls back to the build version.
func Health(serviceName, serviceVersion string) gin.HandlerFunc {
	build := version.Get()
	if serviceVersion == "" {
		serviceVersion = build.String()
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    serviceName,
			"version":    serviceVersion,
			"go_version": build.GoVersion,
			"uptime":     time.Since(startTime).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
