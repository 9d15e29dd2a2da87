package sampledb

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a parameter fails a local check.
	// No request is sent to the server in that case.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotAuthenticated is returned by every request issued before a
	// successful Authenticate.
	ErrNotAuthenticated = errors.New("not authenticated: call Authenticate first")

	// ErrAuthenticationFailed is returned when the credential probe is rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrClient matches a *StatusError with a 4xx status.
	ErrClient = errors.New("client error")

	// ErrServer matches a *StatusError with a 5xx status.
	ErrServer = errors.New("server error")

	// ErrTransport wraps failures below HTTP (dial, TLS, reset, context).
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse matches a *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is returned when the server answers with a status the
// operation does not accept. Body holds the response text for diagnosis.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d\nResponse text: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is enables errors.Is matching against ErrClient and ErrServer.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrClient:
		return e.StatusCode >= 400 && e.StatusCode < 500
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// MalformedResponseError is returned when a success response carries a body
// that is not valid JSON.
type MalformedResponseError struct {
	Path string
	Body string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("GET %s: JSON could not be parsed: %v\nJSON was\n%s", e.Path, e.Err, e.Body)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func requireID(name string, id int) error {
	if id <= 0 {
		return invalidArgument("%s must be a positive integer, got %d", name, id)
	}
	return nil
}
