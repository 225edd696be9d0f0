// Package errors provides the typed error taxonomy shared by all layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of error for proper handling and response.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeDataIntegrity ErrorType = "DATA_INTEGRITY"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal      ErrorType = "INTERNAL"
	ErrorTypeUnavailable   ErrorType = "UNAVAILABLE"
)

// AppError is the application-wide error type.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying cause and returns the error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithCode attaches a machine-readable code and returns the error.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFoundError creates a not-found error for the named resource.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: resource + " not found"}
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewDataIntegrityError creates an error for corrupted or unreadable
// security-critical state. These abort the whole operation.
func NewDataIntegrityError(message string) *AppError {
	return &AppError{Type: ErrorTypeDataIntegrity, Message: message}
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message}
}

// NewUnavailableError creates an error for an unreachable dependency.
func NewUnavailableError(message string) *AppError {
	return &AppError{Type: ErrorTypeUnavailable, Message: message}
}

// Wrap wraps an error with additional context, preserving its type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Code:    appErr.Code,
			Message: message + ": " + appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: err}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return isType(err, ErrorTypeConflict) }

// IsDataIntegrity reports whether err is a data-integrity error.
func IsDataIntegrity(err error) bool { return isType(err, ErrorTypeDataIntegrity) }

// IsUnavailable reports whether err is an unavailable error.
func IsUnavailable(err error) bool { return isType(err, ErrorTypeUnavailable) }
