package merchandising

import "errors"

// Domain errors for merchandising operations
var (
	// ErrRateLimited indicates the storefront API asked the caller to slow down
	ErrRateLimited = errors.New("merchandising: storefront rate limited")

	// ErrRequestFailed indicates a storefront API request failed
	ErrRequestFailed = errors.New("merchandising: storefront request failed")

	// ErrInvalidResponse indicates the storefront returned an unparsable response
	ErrInvalidResponse = errors.New("merchandising: invalid storefront response")

	// ErrProductNotFound indicates the requested product does not exist at the storefront
	ErrProductNotFound = errors.New("merchandising: product not found")

	// ErrCollectionWriteFailed is the terminal error returned when a
	// collection membership write has exhausted its retry budget
	ErrCollectionWriteFailed = errors.New("merchandising: failed to add product to collection")

	// ErrSnapshotUnavailable indicates the collections snapshot could not be read
	ErrSnapshotUnavailable = errors.New("merchandising: collections snapshot unavailable")

	// ErrSnapshotMalformed indicates the collections snapshot could not be parsed
	ErrSnapshotMalformed = errors.New("merchandising: collections snapshot malformed")

	// ErrMissingSignature indicates a webhook arrived without a signature header
	ErrMissingSignature = errors.New("merchandising: missing webhook signature")

	// ErrInvalidSignature indicates a webhook signature did not match the payload
	ErrInvalidSignature = errors.New("merchandising: invalid webhook signature")

	// ErrMalformedPayload indicates a webhook body could not be decoded
	ErrMalformedPayload = errors.New("merchandising: malformed webhook payload")
)
