package shared

// DomainError is an error with a stable machine-readable code. Handlers
// map codes onto HTTP statuses at the boundary; domain and application
// code deal only in codes.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped copies
// with customized messages still compare equal to the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates an error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinel errors shared across the domain. The codes are part of the API
// surface; renaming one is a breaking change for clients switching on it.
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized     = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden        = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState     = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrRateLimited      = NewDomainError("RATE_LIMITED", "Too many requests, slow down")
	ErrUnprocessable    = NewDomainError("UNPROCESSABLE", "Request understood but cannot be processed")
	ErrUpstreamFailure  = NewDomainError("UPSTREAM_FAILURE", "Upstream service call failed")
	ErrNotReady         = NewDomainError("NOT_READY", "Resource is not ready for processing")
	ErrInvalidSignature = NewDomainError("INVALID_SIGNATURE", "Request signature verification failed")
)
