package domain

import "fmt"

// ConflictError is returned by the booking path when a slot cannot be committed
type ConflictError struct {
	Reason ConflictReason
}

// NewConflictError creates a ConflictError with the given reason
func NewConflictError(reason ConflictReason) *ConflictError {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking conflict: %s", e.Reason)
}

// Is matches any *ConflictError with the same reason
func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}
