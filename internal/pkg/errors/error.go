package xerrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict: resource already exists")
	ErrInternal       = errors.New("internal server error")
	ErrRateLimited    = errors.New("too many requests")
	ErrSessionExpired = errors.New("session expired or invalid")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrInvalidState   = errors.New("invalid state transition")
	ErrUpstream       = errors.New("upstream service failure")
)

// ValidationError carries field level messages. Values are i18n message ids.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, messageID string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: messageID}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ConflictError is a 409 that carries the conflicting resources back to the caller.
type ConflictError struct {
	MessageID string
	Details   interface{}
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.MessageID
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As re-exported so callers need a single errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
