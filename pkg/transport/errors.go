package transport

import (
	"fmt"
)

// ErrorBody is the structured failure document returned by the backend.
type ErrorBody struct {
	Message string `json:"message,omitempty"`
}

// HTTPError is returned when the backend answered with a non-2xx status.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   ErrorBody
	Raw    []byte
}

func (e *HTTPError) Error() string {
	if e.Body.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Body.Message)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return "network error"
	}
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
