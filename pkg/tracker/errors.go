package tracker

import (
	"errors"
	"fmt"
)

// UnauthorizedError means the OAuth token was rejected. Never retried.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: the OAuth token was rejected, check the configured credentials"
}

// PermissionDeniedError means the auditing principal may not inspect the
// requested resource. Denial holds the parsed 403 metadata and is nil when
// the response body could not be parsed.
type PermissionDeniedError struct {
	Denial *AccessDenial
}

func (e *PermissionDeniedError) Error() string {
	if e.Denial != nil && e.Denial.QueueKey != "" {
		return fmt.Sprintf("permission denied for queue %s", e.Denial.QueueKey)
	}
	return "permission denied"
}

// RateLimitError means the remote service kept throttling after the retry
// budget was spent.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts, the request quota is exhausted", e.Attempts)
}

// ServerError is a 5xx response. Not retried.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d from the tracker API", e.Code)
}

// TimeoutError means the request did not complete within the client timeout
// after the retry budget was spent.
type TimeoutError struct {
	URL string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s", e.URL)
}

// ConnectionError means the service could not be reached after the retry
// budget was spent.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// HTTPError is any other 4xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// IsFatal reports whether err belongs to the error classes that abort an
// audit run: bad credentials, exhausted request quota, server failures, and
// connectivity failures that survived the retry budget. Permission denials
// and other 4xx responses are handled per resource and are not fatal.
func IsFatal(err error) bool {
	var (
		unauthorized *UnauthorizedError
		rateLimit    *RateLimitError
		server       *ServerError
		timeout      *TimeoutError
		connection   *ConnectionError
	)
	return errors.As(err, &unauthorized) ||
		errors.As(err, &rateLimit) ||
		errors.As(err, &server) ||
		errors.As(err, &timeout) ||
		errors.As(err, &connection)
}

// IsPermissionDenied reports whether err is a permission denial and, if so,
// returns the parsed denial metadata (which may be nil).
func IsPermissionDenied(err error) (*AccessDenial, bool) {
	var denied *PermissionDeniedError
	if errors.As(err, &denied) {
		return denied.Denial, true
	}
	return nil, false
}
