package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the core services. Handlers map these to HTTP
// status codes; everything else matches them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError pinpoints the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps a backing-store failure so callers can distinguish an
// unreachable store from a missing row. The store is not retried here.
func StorageError(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
