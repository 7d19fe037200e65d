package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error types for classifying state endpoint failures. Every failure the
// client returns is exactly one of these three kinds; callers turn them
// into log lines and keep polling.

// NetworkError represents a transport or connectivity failure: the
// request never produced an HTTP response.
type NetworkError struct {
	err error
}

func (e *NetworkError) Error() string {
	return e.err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// NewNetworkError wraps an error as a transport failure.
func NewNetworkError(err error) error {
	return &NetworkError{err: err}
}

// ServerError represents a non-2xx HTTP response. Detail carries the
// server's explanation, preferring a structured "detail" field in the
// response body over the raw body text.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Detail)
}

// ParseError represents a response body that could not be decoded or
// that violates the snapshot invariants.
type ParseError struct {
	err error
}

func (e *ParseError) Error() string {
	return e.err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// NewParseError wraps an error as a malformed-response failure.
func NewParseError(err error) error {
	return &ParseError{err: err}
}

// IsNetwork returns true if the error is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsServer returns true if the error is a non-2xx server response.
func IsServer(err error) bool {
	var srvErr *ServerError
	return errors.As(err, &srvErr)
}

// IsParse returns true if the error is a malformed response body.
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// newServerError builds a ServerError from a non-2xx response. The detail
// is drawn from a JSON {"detail": ...} body when present, then the
// trimmed body text, then the HTTP status text.
func newServerError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))

	var structured struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Detail != "" {
		detail = structured.Detail
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen] + "..."
	}

	return &ServerError{Status: status, Detail: detail}
}

// maxDetailLen caps the detail text taken from an error body so a large
// HTML error page does not flood the event log.
const maxDetailLen = 200
