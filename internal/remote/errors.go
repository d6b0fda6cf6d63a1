package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Failures returned by the remote extractor.
var (
	// ErrRateLimited indicates the provider rejected the request with 429.
	ErrRateLimited = errors.New("remote rate limit exceeded")

	// ErrTransport indicates a network failure or a non-2xx response other than 429.
	ErrTransport = errors.New("remote transport error")

	// ErrMalformedResponse indicates the response could not be turned into a valid record.
	ErrMalformedResponse = errors.New("malformed remote response")
)

// Failure kinds as written to the failure log.
const (
	KindRateLimited = "rate_limited"
	KindTransport   = "transport_error"
	KindMalformed   = "malformed_response"
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Type       string // provider error type, e.g. "overloaded_error"
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("remote API error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("remote API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap classifies the status so errors.Is works against the sentinels.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return ErrTransport
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransport returns true if the error indicates a network or server problem.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformed returns true if the response body was unusable.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// Kind names the failure category of err, or "" for errors outside the taxonomy.
func Kind(err error) string {
	switch {
	case IsRateLimited(err):
		return KindRateLimited
	case IsTransport(err):
		return KindTransport
	case IsMalformed(err):
		return KindMalformed
	}
	return ""
}

// Retryable reports whether another attempt could succeed.
func Retryable(err error) bool {
	return Kind(err) != ""
}
