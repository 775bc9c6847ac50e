package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nisix/errkit/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError records err for ErrorHandler and aborts the chain.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// NotFoundHandler raises NotFound for unmatched routes.
func NotFoundHandler(c *gin.Context) {
	RespondWithError(c, errors.NotFound(map[string]any{"path": c.Request.URL.Path}))
}

// MethodNotAllowedHandler raises MethodNotAllowed for routes matched by path
// but not by method.
func MethodNotAllowedHandler(c *gin.Context) {
	RespondWithError(c, errors.New(errors.ErrCodeMethodNotAllowed,
		errors.WithMetadata(map[string]any{"method": c.Request.Method})))
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}
