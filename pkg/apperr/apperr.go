package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Services wrap these with fmt.Errorf("...: %w", ...) so
// callers can branch with errors.Is while keeping the human-readable message.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("authorization error")
	ErrConflict      = errors.New("conflict")
	ErrPersistence   = errors.New("persistence error")
)

// Validationf returns a validation error with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Persistence wraps a store error so transactional failures keep their cause
// but surface as a single machine-checkable kind.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
