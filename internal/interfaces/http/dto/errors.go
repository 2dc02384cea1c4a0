package dto

import "net/http"

// Transport error codes returned in the "code" field of error responses.
// Clients match on these strings, so they are stable once published.

// Auth codes.
const (
	// ErrCodeUnauthorized covers requests with no usable credentials.
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden covers authenticated callers lacking permission.
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired signals an expired bearer token.
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid signals a malformed or unverifiable token.
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked signals a token invalidated before expiry.
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	// ErrCodeInsufficientScope signals a valid token missing a required scope.
	ErrCodeInsufficientScope = "ERR_INSUFFICIENT_SCOPE"
)

// Webhook signature codes.
const (
	// ErrCodeSignatureMissing signals an absent HMAC signature header.
	ErrCodeSignatureMissing = "ERR_SIGNATURE_MISSING"
	// ErrCodeSignatureInvalid signals a signature that does not match the body.
	ErrCodeSignatureInvalid = "ERR_SIGNATURE_INVALID"
)

// Input codes.
const (
	// ErrCodeBadRequest covers malformed requests.
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation covers field-level validation failures.
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidInput covers semantically invalid input.
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON covers bodies that fail to parse.
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge covers bodies over the configured limit.
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Resource and processing codes.
const (
	// ErrCodeNotFound covers lookups of missing resources.
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict covers state conflicts such as duplicate submissions.
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeInvalidState covers operations not allowed in the current state.
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeUnprocessable covers well-formed requests that cannot be acted on.
	ErrCodeUnprocessable = "ERR_UNPROCESSABLE"
	// ErrCodeUpstreamFailure covers failed calls to the storefront platform.
	ErrCodeUpstreamFailure = "ERR_UPSTREAM_FAILURE"
	// ErrCodeNotReady covers requests arriving before initialization finishes.
	ErrCodeNotReady = "ERR_NOT_READY"
)

// Throttling and fallback codes.
const (
	// ErrCodeRateLimited covers requests rejected by the rate limiter.
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeInternal is the catch-all for unexpected server failures.
	ErrCodeInternal = "ERR_INTERNAL"
)

var errorCodeStatus = map[string]int{
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenInvalid:      http.StatusUnauthorized,
	ErrCodeTokenRevoked:      http.StatusUnauthorized,
	ErrCodeInsufficientScope: http.StatusForbidden,

	ErrCodeSignatureMissing: http.StatusUnauthorized,
	ErrCodeSignatureInvalid: http.StatusUnauthorized,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeUnprocessable:   http.StatusUnprocessableEntity,
	ErrCodeUpstreamFailure: http.StatusBadGateway,
	ErrCodeNotReady:        http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
	ErrCodeInternal:    http.StatusInternalServerError,
}

// GetHTTPStatus maps a transport error code to its HTTP status.
// Unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeToTransport translates the bare codes carried by domain errors
// (NOT_FOUND, RATE_LIMITED, ...) into the prefixed transport form.
var domainCodeToTransport = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"UNAUTHORIZED":      ErrCodeUnauthorized,
	"FORBIDDEN":         ErrCodeForbidden,
	"INVALID_STATE":     ErrCodeInvalidState,
	"RATE_LIMITED":      ErrCodeRateLimited,
	"UNPROCESSABLE":     ErrCodeUnprocessable,
	"UPSTREAM_FAILURE":  ErrCodeUpstreamFailure,
	"NOT_READY":         ErrCodeNotReady,
	"INVALID_SIGNATURE": ErrCodeSignatureInvalid,
	"BAD_REQUEST":       ErrCodeBadRequest,
	"INTERNAL_ERROR":    ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the transport format.
// Codes already in transport format, or unknown ones, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if transport, ok := domainCodeToTransport[code]; ok {
		return transport
	}
	return code
}
