// Standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrAutomatorNotFound indicates no automator exists for the given id.
	ErrAutomatorNotFound = errors.New("automator not found")

	// ErrAutomatorAlreadyExists indicates an automator with the same id
	// already exists.
	ErrAutomatorAlreadyExists = errors.New("automator already exists")

	// ErrInvalidStatus indicates an automator status outside draft/published.
	ErrInvalidStatus = errors.New("invalid automator status")

	// ErrInvalidSortField indicates a list request named a sort field
	// outside the allowlist.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// AutomatorError wraps automator storage errors with operation context.
type AutomatorError struct {
	Op          string // Operation being performed (e.g. "GetByID", "Save")
	AutomatorID string // Automator ID if applicable
	Err         error  // Underlying error
	Message     string // Additional context message
}

func (e *AutomatorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for automator %s: %s (%v)", e.Op, e.AutomatorID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for automator %s: %v", e.Op, e.AutomatorID, e.Err)
}

func (e *AutomatorError) Unwrap() error {
	return e.Err
}

func (e *AutomatorError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAutomatorError creates a new automator error with context.
func NewAutomatorError(op, automatorID string, err error) *AutomatorError {
	return &AutomatorError{
		Op:          op,
		AutomatorID: automatorID,
		Err:         err,
	}
}

// IsAutomatorNotFound checks if an error indicates a missing automator.
func IsAutomatorNotFound(err error) bool {
	return errors.Is(err, ErrAutomatorNotFound)
}

// IsInvalidSortField checks if an error indicates a disallowed sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
