package errors

import (
	"net/http"
	"sort"
)

// DefaultStatus is returned by Resolve for codes missing from the table.
const DefaultStatus = http.StatusInternalServerError

// statusByCode is the single source of truth for code to status mapping.
// Unauthenticated/Unauthorized are inverted relative to the HTTP reason
// phrases: 401 means "no credentials", 403 means "known caller, no permission".
var statusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:                  http.StatusBadRequest,
	ErrCodeUnauthenticated:             http.StatusUnauthorized,
	ErrCodePaymentRequired:             http.StatusPaymentRequired,
	ErrCodeUnauthorized:                http.StatusForbidden,
	ErrCodeForbidden:                   http.StatusForbidden,
	ErrCodeNotFound:                    http.StatusNotFound,
	ErrCodeMethodNotAllowed:            http.StatusMethodNotAllowed,
	ErrCodeNotAcceptable:               http.StatusNotAcceptable,
	ErrCodeProxyAuthRequired:           http.StatusProxyAuthRequired,
	ErrCodeRequestTimeout:              http.StatusRequestTimeout,
	ErrCodeConflict:                    http.StatusConflict,
	ErrCodeGone:                        http.StatusGone,
	ErrCodeLengthRequired:              http.StatusLengthRequired,
	ErrCodePreconditionFailed:          http.StatusPreconditionFailed,
	ErrCodePayloadTooLarge:             http.StatusRequestEntityTooLarge,
	ErrCodeURITooLong:                  http.StatusRequestURITooLong,
	ErrCodeUnsupportedMediaType:        http.StatusUnsupportedMediaType,
	ErrCodeRangeNotSatisfiable:         http.StatusRequestedRangeNotSatisfiable,
	ErrCodeExpectationFailed:           http.StatusExpectationFailed,
	ErrCodeTeapot:                      http.StatusTeapot,
	ErrCodeMisdirectedRequest:          http.StatusMisdirectedRequest,
	ErrCodeUnprocessableEntity:         http.StatusUnprocessableEntity,
	ErrCodeLocked:                      http.StatusLocked,
	ErrCodeFailedDependency:            http.StatusFailedDependency,
	ErrCodeTooEarly:                    http.StatusTooEarly,
	ErrCodeUpgradeRequired:             http.StatusUpgradeRequired,
	ErrCodePreconditionRequired:        http.StatusPreconditionRequired,
	ErrCodeTooManyRequests:             http.StatusTooManyRequests,
	ErrCodeRequestHeaderFieldsTooLarge: http.StatusRequestHeaderFieldsTooLarge,
	ErrCodeUnavailableForLegalReasons:  http.StatusUnavailableForLegalReasons,

	ErrCodeValidationError: http.StatusBadRequest,

	ErrCodeInternalServerError:           http.StatusInternalServerError,
	ErrCodeNotImplemented:                http.StatusNotImplemented,
	ErrCodeBadGateway:                    http.StatusBadGateway,
	ErrCodeServiceUnavailable:            http.StatusServiceUnavailable,
	ErrCodeGatewayTimeout:                http.StatusGatewayTimeout,
	ErrCodeHTTPVersionNotSupported:       http.StatusHTTPVersionNotSupported,
	ErrCodeVariantAlsoNegotiates:         http.StatusVariantAlsoNegotiates,
	ErrCodeInsufficientStorage:           http.StatusInsufficientStorage,
	ErrCodeLoopDetected:                  http.StatusLoopDetected,
	ErrCodeNotExtended:                   http.StatusNotExtended,
	ErrCodeNetworkAuthenticationRequired: http.StatusNetworkAuthenticationRequired,
}

// Resolve returns the HTTP status for code, or DefaultStatus when the code is
// not in the table. It never fails.
func Resolve(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return DefaultStatus
}

// IsKnown reports whether code has an explicit entry in the status table.
func IsKnown(code ErrorCode) bool {
	_, ok := statusByCode[code]
	return ok
}

// Codes returns every code in the status table, sorted by identifier.
func Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(statusByCode))
	for c := range statusByCode {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
