package domain

import "strings"

// ValidationError carries the per-field messages produced by boundary
// validation. All checks run before any write, so a ValidationError
// guarantees nothing was persisted.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Details, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}
