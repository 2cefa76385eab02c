// Package services provides the step configuration service and its error types.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/sdsprotocol/pkg/config"
	"github.com/dukex/sdsprotocol/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrIdentifierRequired = errors.New("step identifier is required")

	// ErrStepNotFound is returned when no step is stored under the identifier (404 Not Found).
	ErrStepNotFound = persistence.ErrStepNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrIdentifierRequired) ||
		errors.Is(err, persistence.ErrInvalidIdentifier) ||
		errors.Is(err, config.ErrMalformedConfig) ||
		errors.Is(err, config.ErrProtocolNotConfigured) ||
		errors.Is(err, config.ErrUnknownProtocol)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, config.ErrIdentifierNotUnique)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
