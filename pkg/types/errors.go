package types

import (
	"errors"
	"fmt"
)

// Machine-readable error classification codes. These surface as the Code
// field of BulkOperationError and in API error payloads.
const (
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeAuth       = "AUTH"
	CodeNetwork    = "NETWORK"
)

// ValidationError represents an error that occurs during validation.
type ValidationError struct {
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with the given message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError represents a reference to an entity that does not exist.
type NotFoundError struct {
	Message string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError creates a new NotFoundError with the given message.
func NewNotFoundError(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ConflictError represents a uniqueness or race violation.
type ConflictError struct {
	Message string
}

// Error returns the error message.
func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a new ConflictError with the given message.
func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsConflictError checks if an error is a ConflictError.
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// PersistenceError represents a fatal failure of the durable-write protocol.
// It always propagates to the caller.
type PersistenceError struct {
	Message string
	Err     error
}

// Error returns the error message.
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError wrapping a cause.
func NewPersistenceError(message string, err error) *PersistenceError {
	return &PersistenceError{Message: message, Err: err}
}

// IsPersistenceError checks if an error is a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// APIError represents a classified failure returned by the remote API.
type APIError struct {
	Code       string
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// NewAPIError creates a new APIError with a classification code.
func NewAPIError(code string, statusCode int, format string, args ...interface{}) *APIError {
	return &APIError{Code: code, StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the classification code from a typed error. The second
// return value is false for unclassified/generic failures.
func ErrorCode(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code, true
	}
	switch {
	case IsValidationError(err):
		return CodeValidation, true
	case IsNotFoundError(err):
		return CodeNotFound, true
	case IsConflictError(err):
		return CodeConflict, true
	}
	return "", false
}

// IsConflictClass reports whether an error represents a conflict, either as a
// ConflictError or as an APIError tagged CONFLICT. The upsert race retry
// keys off this.
func IsConflictClass(err error) bool {
	if IsConflictError(err) {
		return true
	}
	code, ok := ErrorCode(err)
	return ok && code == CodeConflict
}
