package errors

// ErrorCode represents a machine-readable error code. Its string form is also
// the message a ClassifiedError carries.
type ErrorCode string

// Fallback
const (
	// ErrCodeUnknownError is used when no code is supplied. It is intentionally
	// absent from the status table and resolves through the fallback.
	ErrCodeUnknownError ErrorCode = "UnknownError"
)

// Client errors (4xx)
const (
	ErrCodeBadRequest ErrorCode = "BadRequest"
	// ErrCodeUnauthenticated indicates the caller presented no valid credentials (401).
	ErrCodeUnauthenticated ErrorCode = "Unauthenticated"
	ErrCodePaymentRequired ErrorCode = "PaymentRequired"
	// ErrCodeUnauthorized indicates a known caller lacking permission (403).
	ErrCodeUnauthorized                ErrorCode = "Unauthorized"
	ErrCodeForbidden                   ErrorCode = "Forbidden"
	ErrCodeNotFound                    ErrorCode = "NotFound"
	ErrCodeMethodNotAllowed            ErrorCode = "MethodNotAllowed"
	ErrCodeNotAcceptable               ErrorCode = "NotAcceptable"
	ErrCodeProxyAuthRequired           ErrorCode = "ProxyAuthenticationRequired"
	ErrCodeRequestTimeout              ErrorCode = "RequestTimeout"
	ErrCodeConflict                    ErrorCode = "Conflict"
	ErrCodeGone                        ErrorCode = "Gone"
	ErrCodeLengthRequired              ErrorCode = "LengthRequired"
	ErrCodePreconditionFailed          ErrorCode = "PreconditionFailed"
	ErrCodePayloadTooLarge             ErrorCode = "PayloadTooLarge"
	ErrCodeURITooLong                  ErrorCode = "URITooLong"
	ErrCodeUnsupportedMediaType        ErrorCode = "UnsupportedMediaType"
	ErrCodeRangeNotSatisfiable         ErrorCode = "RangeNotSatisfiable"
	ErrCodeExpectationFailed           ErrorCode = "ExpectationFailed"
	ErrCodeTeapot                      ErrorCode = "ImATeapot"
	ErrCodeMisdirectedRequest          ErrorCode = "MisdirectedRequest"
	ErrCodeUnprocessableEntity         ErrorCode = "UnprocessableEntity"
	ErrCodeLocked                      ErrorCode = "Locked"
	ErrCodeFailedDependency            ErrorCode = "FailedDependency"
	ErrCodeTooEarly                    ErrorCode = "TooEarly"
	ErrCodeUpgradeRequired             ErrorCode = "UpgradeRequired"
	ErrCodePreconditionRequired        ErrorCode = "PreconditionRequired"
	ErrCodeTooManyRequests             ErrorCode = "TooManyRequests"
	ErrCodeRequestHeaderFieldsTooLarge ErrorCode = "RequestHeaderFieldsTooLarge"
	ErrCodeUnavailableForLegalReasons  ErrorCode = "UnavailableForLegalReasons"
)

// Validation errors
const (
	// ErrCodeValidationError indicates the request payload failed validation.
	ErrCodeValidationError ErrorCode = "ValidationError"
)

// Server errors (5xx)
const (
	ErrCodeInternalServerError           ErrorCode = "InternalServerError"
	ErrCodeNotImplemented                ErrorCode = "NotImplemented"
	ErrCodeBadGateway                    ErrorCode = "BadGateway"
	ErrCodeServiceUnavailable            ErrorCode = "ServiceUnavailable"
	ErrCodeGatewayTimeout                ErrorCode = "GatewayTimeout"
	ErrCodeHTTPVersionNotSupported       ErrorCode = "HTTPVersionNotSupported"
	ErrCodeVariantAlsoNegotiates         ErrorCode = "VariantAlsoNegotiates"
	ErrCodeInsufficientStorage           ErrorCode = "InsufficientStorage"
	ErrCodeLoopDetected                  ErrorCode = "LoopDetected"
	ErrCodeNotExtended                   ErrorCode = "NotExtended"
	ErrCodeNetworkAuthenticationRequired ErrorCode = "NetworkAuthenticationRequired"
)

// String returns the code identifier.
func (c ErrorCode) String() string { return string(c) }
