package types

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome taxonomy shared across stores, services and the HTTP layer.
// Collaborator failures are wrapped into one of these at the store/service
// boundary so callers can branch with errors.Is instead of string matching.
var (
	// ErrNotFound means the requested resource does not exist in the
	// tenant's partition.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded means the tenant's free-tier ceiling for the
	// resource kind is already reached.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrConflict means a create lost the quota race to a concurrent
	// request. Retrying is always safe: identifiers are freshly generated
	// per attempt.
	ErrConflict = errors.New("conflict")

	// ErrUpstream means a store or external collaborator could not be
	// reached. Not retried internally; retry policy belongs to the caller.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrInvalidCredentials means the identity provider rejected the
	// presented credential.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports malformed input. It never reaches the store.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
