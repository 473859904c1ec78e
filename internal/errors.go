package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures from the backend so callers can react
// without inspecting status codes.
type ErrorKind string

const (
	// KindUnreachable is a transport-level failure: no HTTP response
	// was received at all.
	KindUnreachable ErrorKind = "unreachable"
	// KindUnauthenticated means the credential was missing or rejected
	// (HTTP 401). It forces the session to be torn down.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindForbidden means the caller is authenticated but not permitted
	// (HTTP 403).
	KindForbidden ErrorKind = "forbidden"
	// KindNotFound means the id did not resolve (HTTP 404).
	KindNotFound ErrorKind = "not_found"
	// KindRejected is a semantic validation failure carrying a
	// human-readable reason from the server (other 4xx/5xx).
	KindRejected ErrorKind = "rejected"
)

// APIError is a classified failure from the task backend.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // zero for transport failures
	Message    string // server-supplied reason when available
	Err        error  // underlying cause, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error [%s]: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api error [%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("api error [%s]: status %d", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status to an APIError per the failure
// taxonomy. serverMsg is the {error|message} body field when present.
func classifyStatus(status int, serverMsg string) *APIError {
	switch status {
	case http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthenticated, StatusCode: status, Message: serverMsg}
	case http.StatusForbidden:
		return &APIError{Kind: KindForbidden, StatusCode: status, Message: serverMsg}
	case http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: status, Message: serverMsg}
	default:
		return &APIError{Kind: KindRejected, StatusCode: status, Message: serverMsg}
	}
}

// errKind extracts the ErrorKind from err, or "" when err is not an
// APIError.
func errKind(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsUnauthenticated reports whether err is a credential rejection.
func IsUnauthenticated(err error) bool { return errKind(err) == KindUnauthenticated }

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool { return errKind(err) == KindForbidden }

// IsNotFound reports whether err is a missing-id failure.
func IsNotFound(err error) bool { return errKind(err) == KindNotFound }

// IsUnreachable reports whether err is a transport failure.
func IsUnreachable(err error) bool { return errKind(err) == KindUnreachable }

// MalformedEntityError means a server payload could not be normalized
// into a canonical entity. The entity is dropped, never the cache.
type MalformedEntityError struct {
	Entity string // "task", "user", "attachment"
	Reason string
}

func (e *MalformedEntityError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Entity, e.Reason)
}

// ValidationError is a client-side draft rejection, surfaced before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError represents a failure against the local durable store.
type StorageError struct {
	Op  string // "open", "read", "write"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
