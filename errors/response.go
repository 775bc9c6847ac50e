package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"

	pkgerrors "github.com/pkg/errors"
)

// DefaultMessage is used when a raised error has no message of its own.
const DefaultMessage = "Internal Server Error"

// Response is the flat body sent for a ClassifiedError.
type Response struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Stack    string `json:"stack,omitempty"`
	Metadata any    `json:"metadata,omitempty"`
}

// OpaqueResponse is the nested body sent for any other error.
type OpaqueResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details of an OpaqueResponse. It never carries metadata.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// FormatOptions controls response formatting.
type FormatOptions struct {
	// Debug includes stack traces in the body. Must be false in production.
	Debug bool
}

// statusCarrier is implemented by errors exposing their own status.
type statusCarrier interface {
	Status() int
}

// statusCoder is implemented by errors exposing a status code.
type statusCoder interface {
	StatusCode() int
}

type stackCarrier interface {
	Stack() string
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Format converts err into the HTTP status to send and the body to serialize.
// A ClassifiedError in err's chain yields a flat Response; anything else,
// including nil and typed nil errors, yields an OpaqueResponse nested under
// "error". Metadata that cannot be encoded as JSON is dropped so the body
// always serializes. Format never panics.
func Format(err error, opts FormatOptions) (int, any) {
	if isNil(err) {
		err = nil
	}
	if ce, ok := AsClassified(err); ok {
		status := classifiedStatus(ce)
		resp := Response{
			Status:  status,
			Message: messageOr(ce.Message()),
		}
		if opts.Debug {
			resp.Stack = ce.Stack()
		}
		if !isNil(ce.Metadata) && encodable(ce.Metadata) {
			resp.Metadata = ce.Metadata
		}
		return status, resp
	}

	status := opaqueStatus(err)
	body := ErrorBody{
		Status:  status,
		Message: DefaultMessage,
	}
	if err != nil {
		body.Message = messageOr(err.Error())
		if opts.Debug {
			body.Stack = stackOf(err)
		}
	}
	return status, OpaqueResponse{Error: body}
}

func classifiedStatus(ce *ClassifiedError) int {
	if validStatus(ce.Status) {
		return ce.Status
	}
	return http.StatusInternalServerError
}

// opaqueStatus prefers Status() over StatusCode(), falling back to 500.
func opaqueStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	var sc statusCarrier
	if stderrors.As(err, &sc) && validStatus(sc.Status()) {
		return sc.Status()
	}
	var cc statusCoder
	if stderrors.As(err, &cc) && validStatus(cc.StatusCode()) {
		return cc.StatusCode()
	}
	return http.StatusInternalServerError
}

func stackOf(err error) string {
	var sc stackCarrier
	if stderrors.As(err, &sc) {
		return sc.Stack()
	}
	var st stackTracer
	if stderrors.As(err, &st) {
		return fmt.Sprintf("%s%+v", err.Error(), st.StackTrace())
	}
	return ""
}

// validStatus reports whether status can be written as an HTTP status line.
func validStatus(status int) bool {
	return status >= 100 && status <= 999
}

func messageOr(msg string) string {
	if msg == "" {
		return DefaultMessage
	}
	return msg
}

// encodable reports whether v marshals to JSON.
func encodable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}

// isNil treats nil interfaces and typed nil maps, slices and pointers as absent.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
