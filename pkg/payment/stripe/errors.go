package stripe

import "errors"

var (
	// ErrMissingSecretKey is returned when the client is built without credentials
	ErrMissingSecretKey = errors.New("payment processor secret key is not configured")

	// ErrInvalidRequest is returned for 400/402 responses
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the API key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrNotFound is returned when the payment intent does not exist
	ErrNotFound = errors.New("payment intent not found")

	// ErrIdempotencyConflict is returned when an idempotency key is reused with different parameters
	ErrIdempotencyConflict = errors.New("idempotency key reused with different parameters")

	// ErrProcessor is returned for rate limits and 5xx responses
	ErrProcessor = errors.New("payment processor error")

	// ErrNetworkError is returned when the processor cannot be reached
	ErrNetworkError = errors.New("network error")
)
