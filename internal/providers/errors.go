package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of provider failure kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimited
	KindUnauthorized
	KindForbidden
	KindPayloadTooLarge
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindServer:
		return "server_error"
	default:
		return "unknown"
	}
}

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusRequestEntityTooLarge:
		return KindPayloadTooLarge
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Error is a provider failure.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	// Body is the raw response body, if any. It may contain echoed request
	// content and must be redacted before it is logged.
	Body string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// statusError builds an Error from a non-200 HTTP response.
func statusError(provider string, status int, body []byte) *Error {
	return &Error{
		Kind:       KindForStatus(status),
		Provider:   provider,
		StatusCode: status,
		Message:    http.StatusText(status),
		Body:       string(body),
	}
}

// failure wraps a transport or decoding failure that has no status code.
func failure(provider string, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: KindUnknown, Provider: provider, Message: err.Error(), Err: errors.Unwrap(err)}
}

// KindOf returns the failure kind of err, or KindUnknown when err is not a
// provider error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
