package server

import (
	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/config"
	"github.com/nisix/errkit/errors"
	"github.com/nisix/errkit/logger"
	"github.com/nisix/errkit/observability"
)

// ErrorHandlerOptions configures ErrorHandler.
type ErrorHandlerOptions struct {
	// Debug includes stack traces in responses. When nil it defaults to
	// !Production().
	Debug *bool
	// Production reports whether the process runs in production. Defaults to
	// config.IsProduction.
	Production func() bool
	// Logger receives one entry per formatted error. Defaults to the global
	// logger tagged with component "errors".
	Logger *logger.Logger
	// Metrics counts formatted errors when set.
	Metrics *observability.ErrorMetrics
}

// resolveDebug returns the effective debug flag.
func (o ErrorHandlerOptions) resolveDebug() bool {
	if o.Debug != nil {
		return *o.Debug
	}
	production := o.Production
	if production == nil {
		production = config.IsProduction
	}
	return !production()
}

// ErrorHandler returns the Gin middleware that turns errors recorded with
// c.Error into JSON responses.
//
// The debug flag is resolved once here, never per request. After the chain
// runs, the last recorded error is formatted with errors.Format unless the
// handler already wrote a response.
func ErrorHandler(opts ErrorHandlerOptions) gin.HandlerFunc {
	formatOpts := errors.FormatOptions{Debug: opts.resolveDebug()}
	log := opts.Logger
	if log == nil {
		log = logger.WithComponent("errors")
	}

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := errors.Format(err, formatOpts)

		kind, code := observability.KindOpaque, string(errors.ErrCodeUnknownError)
		if ce, ok := errors.AsClassified(err); ok {
			kind, code = observability.KindClassified, string(ce.Code)
		}

		ctx := c.Request.Context()
		fields := map[string]interface{}{
			logger.FieldStatus: status,
			logger.FieldCode:   code,
			logger.FieldMethod: c.Request.Method,
			logger.FieldPath:   c.Request.URL.Path,
		}
		l := log.WithContext(ctx).WithError(err)
		if kind == observability.KindClassified {
			l.Debug("Error is known", fields)
		} else {
			l.Error("Unhandled error", fields)
		}

		observability.RecordSpanError(ctx, err, status, kind, code)
		opts.Metrics.RecordError(ctx, status, kind, code)

		c.JSON(status, body)
	}
}
