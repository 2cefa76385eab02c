package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrStepNotFound indicates no step configuration is stored under the identifier.
	ErrStepNotFound = errors.New("step not found")

	// ErrInvalidIdentifier indicates the identifier cannot be used as a storage key.
	ErrInvalidIdentifier = errors.New("invalid step identifier")
)

// StepError wraps step-related errors with additional context.
type StepError struct {
	Op         string // Operation being performed (e.g., "Get", "Save", "Delete")
	Identifier string // Step identifier
	Err        error  // Underlying error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s operation failed for step %q: %v", e.Op, e.Identifier, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for step errors.
func (e *StepError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStepError creates a new step error with context.
func NewStepError(op, identifier string, err error) *StepError {
	return &StepError{
		Op:         op,
		Identifier: identifier,
		Err:        err,
	}
}

// IsStepNotFound checks if an error indicates a step was not found.
func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}
