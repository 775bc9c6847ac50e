package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/logger"
)

// PanicError is the opaque error recorded when a handler panics.
type PanicError struct {
	Value any
	stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Stack returns the goroutine stack captured at recovery.
func (e *PanicError) Stack() string { return e.stack }

// Recovery recovers handler panics and records them as a PanicError, which
// the error handler renders as a 500 in the opaque shape.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.WithComponent("recovery")
	}
	return func(c *gin.Context) {
		defer func() {
			if v := recover(); v != nil {
				perr := &PanicError{Value: v, stack: string(debug.Stack())}
				log.WithContext(c.Request.Context()).Error("Panic recovered", map[string]interface{}{
					logger.FieldError:  perr.Error(),
					logger.FieldMethod: c.Request.Method,
					logger.FieldPath:   c.Request.URL.Path,
					"client_ip":        c.ClientIP(),
				})
				abortWith(c, perr)
			}
		}()
		c.Next()
	}
}
