package internal

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{name: "401 unauthenticated", status: http.StatusUnauthorized, want: KindUnauthenticated},
		{name: "403 forbidden", status: http.StatusForbidden, want: KindForbidden},
		{name: "404 not found", status: http.StatusNotFound, want: KindNotFound},
		{name: "400 rejected", status: http.StatusBadRequest, want: KindRejected},
		{name: "422 rejected", status: http.StatusUnprocessableEntity, want: KindRejected},
		{name: "500 rejected", status: http.StatusInternalServerError, want: KindRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyStatus(tt.status, "because")
			if got.Kind != tt.want {
				t.Errorf("classifyStatus(%d) kind = %q, want %q", tt.status, got.Kind, tt.want)
			}
			if got.StatusCode != tt.status {
				t.Errorf("classifyStatus(%d) status = %d", tt.status, got.StatusCode)
			}
			if got.Message != "because" {
				t.Errorf("classifyStatus(%d) message = %q", tt.status, got.Message)
			}
		})
	}
}

func TestAPIError_Predicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{
			name: "unauthenticated matches",
			err:  &APIError{Kind: KindUnauthenticated},
			pred: IsUnauthenticated,
			want: true,
		},
		{
			name: "wrapped unauthenticated matches",
			err:  fmt.Errorf("login: %w", &APIError{Kind: KindUnauthenticated}),
			pred: IsUnauthenticated,
			want: true,
		},
		{
			name: "forbidden matches",
			err:  &APIError{Kind: KindForbidden},
			pred: IsForbidden,
			want: true,
		},
		{
			name: "not found matches",
			err:  &APIError{Kind: KindNotFound},
			pred: IsNotFound,
			want: true,
		},
		{
			name: "unreachable matches",
			err:  &APIError{Kind: KindUnreachable},
			pred: IsUnreachable,
			want: true,
		},
		{
			name: "kind mismatch",
			err:  &APIError{Kind: KindNotFound},
			pred: IsForbidden,
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("plain"),
			pred: IsUnreachable,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			pred: IsNotFound,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	withMsg := &APIError{Kind: KindRejected, StatusCode: 422, Message: "title is required"}
	if got := withMsg.Error(); got != "api error [rejected]: title is required" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("connection refused")
	withErr := &APIError{Kind: KindUnreachable, Err: cause}
	if got := withErr.Error(); got != "api error [unreachable]: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(withErr, cause) {
		t.Error("Unwrap() does not expose the cause")
	}

	bare := &APIError{Kind: KindNotFound, StatusCode: 404}
	if got := bare.Error(); got != "api error [not_found]: status 404" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &StorageError{Op: "write", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() does not expose the cause")
	}
	if got := err.Error(); got != "storage error: write: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "title", Reason: "must not be empty"}
	if got := err.Error(); got != "invalid title: must not be empty" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMalformedEntityError_Error(t *testing.T) {
	err := &MalformedEntityError{Entity: "task", Reason: "no id field"}
	if got := err.Error(); got != "malformed task: no id field" {
		t.Errorf("Error() = %q", got)
	}
}
