// Standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guidely/automator/pkg/graph"
)

// Business logic errors indicating client mistakes (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidStatus    = errors.New("invalid automator status")
	ErrEmptyTeamID      = errors.New("team ID cannot be empty")
	ErrEmptyActorID     = errors.New("actor ID cannot be empty")
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

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error is a request validation error that
// should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyTeamID) ||
		errors.Is(err, ErrEmptyActorID)
}

// ValidationFailedError carries the itemized structural problems that block a
// publish. Rendered to the author as a list, not a single message.
type ValidationFailedError struct {
	AutomatorID string
	Issues      []graph.Issue
}

func (e *ValidationFailedError) Error() string {
	messages := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		messages = append(messages, issue.Message)
	}

	return fmt.Sprintf("automator %s cannot be published: %s", e.AutomatorID, strings.Join(messages, "; "))
}

// IsValidationFailed checks whether an error is a blocked publish and
// returns the itemized issues when it is.
func IsValidationFailed(err error) (*ValidationFailedError, bool) {
	var target *ValidationFailedError
	if errors.As(err, &target) {
		return target, true
	}

	return nil, false
}
