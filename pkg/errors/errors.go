package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies a client error
type ErrorType string

const (
	// Local errors, raised before any network call
	ErrorTypeValidation ErrorType = "VALIDATION"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "AUTH"
	ErrorTypeSessionExpired ErrorType = "SESSION_EXPIRED"

	// Server-side business rule rejections
	ErrorTypeActionRejected ErrorType = "ACTION_REJECTED"

	// Transport failures, no response received
	ErrorTypeNetwork ErrorType = "NETWORK"

	// Remaining server responses
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// ClientError is the error type carried across the client
type ClientError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Status  int       `json:"-"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text to surface to the user: the server-supplied
// detail when available, the client message otherwise.
func (e *ClientError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// WithStatus records the HTTP status the error was derived from
func (e *ClientError) WithStatus(status int) *ClientError {
	e.Status = status
	return e
}

// WithCause wraps an underlying error
func (e *ClientError) WithCause(err error) *ClientError {
	e.Cause = err
	return e
}

// Constructor functions for the taxonomy

// NewValidationError creates a local input-validation error
func NewValidationError(message string) *ClientError {
	return &ClientError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewAuthError creates an authentication error (signing rejected or
// credentials rejected by the server)
func NewAuthError(message, detail string) *ClientError {
	if message == "" {
		message = "authentication failed"
	}
	return &ClientError{
		Type:    ErrorTypeAuth,
		Message: message,
		Detail:  detail,
	}
}

// NewSessionExpiredError creates the error returned for any 401 on an
// authenticated call
func NewSessionExpiredError() *ClientError {
	return &ClientError{
		Type:    ErrorTypeSessionExpired,
		Message: "session expired",
		Status:  401,
	}
}

// NewActionRejectedError creates a server-side business rule rejection.
// detail carries the server-supplied human-readable reason when present.
func NewActionRejectedError(message, detail string) *ClientError {
	if message == "" {
		message = "action rejected"
	}
	return &ClientError{
		Type:    ErrorTypeActionRejected,
		Message: message,
		Detail:  detail,
	}
}

// NewNetworkError creates a transport failure error
func NewNetworkError(message string, err error) *ClientError {
	return &ClientError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Cause:   err,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *ClientError {
	return &ClientError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  404,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *ClientError {
	return &ClientError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// Helper functions

// GetClientError extracts a ClientError from an error chain
func GetClientError(err error) *ClientError {
	var cerr *ClientError
	if errors.As(err, &cerr) {
		return cerr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	cerr := GetClientError(err)
	return cerr != nil && cerr.Type == errType
}

// IsValidation checks if an error is a local validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool {
	return IsType(err, ErrorTypeAuth)
}

// IsSessionExpired checks if an error is a session expiry
func IsSessionExpired(err error) bool {
	return IsType(err, ErrorTypeSessionExpired)
}

// IsActionRejected checks if an error is a business rule rejection
func IsActionRejected(err error) bool {
	return IsType(err, ErrorTypeActionRejected)
}

// IsNetwork checks if an error is a transport failure
func IsNetwork(err error) bool {
	return IsType(err, ErrorTypeNetwork)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// Wrap wraps an error with additional context, preserving its type
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if cerr := GetClientError(err); cerr != nil {
		cerr.Message = fmt.Sprintf("%s: %s", message, cerr.Message)
		return cerr
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
