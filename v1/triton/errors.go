package triton

import (
	"errors"
	"fmt"
)

// ErrBackend marks every failure reported by, or on the way to, the
// inference server: transport errors, non-2xx responses and unreadable
// response bodies.
var ErrBackend = errors.New("inference backend error")

// StatusError is returned for non-2xx responses. Message is the server's
// {"error": "..."} text, or the raw body when it is not JSON.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: http %d", ErrBackend, e.StatusCode)
	}
	return fmt.Sprintf("%v: http %d: %s", ErrBackend, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrBackend
}
