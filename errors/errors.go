package errors

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ClassifiedError is an application-raised fault pairing a semantic code with
// the HTTP status it resolves to. It is immutable once built by New.
type ClassifiedError struct {
	// Code is the semantic error code. Its string form doubles as the message.
	Code ErrorCode
	// Status is the resolved HTTP status.
	Status int
	// Metadata is passed through to the response unchanged.
	Metadata any
	// Cause is the underlying error, if any.
	Cause error

	explicitStatus bool
	origin         error
}

// Option customizes a ClassifiedError during construction.
type Option func(*ClassifiedError)

// WithStatus sets an explicit status that takes precedence over the registry.
// Any value counts as given, including 0.
func WithStatus(status int) Option {
	return func(e *ClassifiedError) {
		e.Status = status
		e.explicitStatus = true
	}
}

// WithMetadata attaches opaque metadata to the error.
func WithMetadata(metadata any) Option {
	return func(e *ClassifiedError) { e.Metadata = metadata }
}

// WithCause records the underlying error.
func WithCause(cause error) Option {
	return func(e *ClassifiedError) { e.Cause = cause }
}

// New creates a ClassifiedError. An empty code becomes ErrCodeUnknownError.
// The status is the explicit one when WithStatus is given, otherwise Resolve(code).
func New(code ErrorCode, opts ...Option) *ClassifiedError {
	if code == "" {
		code = ErrCodeUnknownError
	}
	e := &ClassifiedError{Code: code}
	for _, opt := range opts {
		opt(e)
	}
	if !e.explicitStatus {
		e.Status = Resolve(code)
	}
	e.origin = pkgerrors.New(string(code))
	return e
}

// Error returns the code, followed by the cause when one is set.
// Methods on ClassifiedError are safe on a nil receiver.
func (e *ClassifiedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return string(e.Code)
}

// Message returns the descriptive text, which is the code identifier.
func (e *ClassifiedError) Message() string {
	if e == nil {
		return ""
	}
	return string(e.Code)
}

// StatusCode returns the resolved HTTP status.
func (e *ClassifiedError) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// HasExplicitStatus reports whether the status was supplied by the caller.
func (e *ClassifiedError) HasExplicitStatus() bool { return e != nil && e.explicitStatus }

// Stack returns the stack trace captured when the error was created.
func (e *ClassifiedError) Stack() string {
	if e == nil || e.origin == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.origin)
}

// Unwrap returns the underlying cause of the error.
func (e *ClassifiedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another ClassifiedError with the same code.
func (e *ClassifiedError) Is(target error) bool {
	t, ok := target.(*ClassifiedError)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code == e.Code
}

// Is reports whether any error in err's chain matches target. It mirrors the
// standard library so callers need a single errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// IsClassified checks if an error is, or wraps, a non-nil ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// AsClassified extracts a ClassifiedError from err's chain if possible.
// A typed nil *ClassifiedError in the chain does not count.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) && ce != nil {
		return ce, true
	}
	return nil, false
}

// CodeOf returns the code of a classified error, or ErrCodeUnknownError.
func CodeOf(err error) ErrorCode {
	if ce, ok := AsClassified(err); ok {
		return ce.Code
	}
	return ErrCodeUnknownError
}

// --- Common Error Constructors ---

func withOptionalMetadata(code ErrorCode, metadata []any) *ClassifiedError {
	if len(metadata) > 0 {
		return New(code, WithMetadata(metadata[0]))
	}
	return New(code)
}

// BadRequest creates a 400 fault.
func BadRequest(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeBadRequest, metadata)
}

// Unauthenticated creates a 401 fault for callers without valid credentials.
func Unauthenticated(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeUnauthenticated, metadata)
}

// Unauthorized creates a 403 fault for known callers lacking permission.
func Unauthorized(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeUnauthorized, metadata)
}

// Forbidden creates a 403 fault.
func Forbidden(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeForbidden, metadata)
}

// NotFound creates a 404 fault.
func NotFound(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeNotFound, metadata)
}

// Conflict creates a 409 fault.
func Conflict(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeConflict, metadata)
}

// Validation creates a 400 ValidationError fault.
func Validation(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeValidationError, metadata)
}

// TooManyRequests creates a 429 fault.
func TooManyRequests(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeTooManyRequests, metadata)
}

// ServiceUnavailable creates a 503 fault.
func ServiceUnavailable(metadata ...any) *ClassifiedError {
	return withOptionalMetadata(ErrCodeServiceUnavailable, metadata)
}

// Internal creates a 500 fault wrapping cause.
func Internal(cause error) *ClassifiedError {
	return New(ErrCodeInternalServerError, WithCause(cause))
}
