package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrUnauthorized is matched by status errors for 401 and 403 responses.
	ErrUnauthorized = errors.New("invalid or unauthorized API key")

	// ErrNotFound is matched by status errors for 404 responses, e.g. an unknown signature.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is matched by status errors for 429 responses.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnsuccessful is matched when the API answers 2xx with "success": false.
	ErrUnsuccessful = errors.New("API reported an unsuccessful request")

	// ErrNoSignatures is returned by ParseSelectedTransactions for an empty signature list.
	ErrNoSignatures = errors.New("at least one transaction signature is required")
)

// ConfigError is returned by New when the client cannot be constructed.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid client configuration: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError represents a network-level failure (DNS, TLS, timeout,
// connection reset) that persisted after all retries.
type TransportError struct {
	Method   string
	Endpoint string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s failed after %d attempt(s): %v",
		e.Method, e.Endpoint, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the final response is not a success. Body holds
// the raw response text verbatim.
type StatusError struct {
	StatusCode int
	Body       string
	// Message is the envelope message for 2xx responses reporting success=false.
	Message  string
	Attempts int
}

func (e *StatusError) Error() string {
	if e.StatusCode >= 200 && e.StatusCode < 300 {
		return fmt.Sprintf("API error %d: unsuccessful response: %s", e.StatusCode, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *StatusError) Is(target error) bool {
	switch {
	case e.StatusCode >= 200 && e.StatusCode < 300:
		return target == ErrUnsuccessful
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return target == ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

// DecodeError indicates the response body did not match the expected JSON shape.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
