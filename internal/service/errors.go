package service

import (
	"errors"
	"fmt"
)

// Assignment failures. Each is a per-request rejection that leaves the store untouched.
var (
	ErrInvalidRequirement        = errors.New("Photographers required must be greater than 0")
	ErrPastEvent                 = errors.New("Cannot assign photographers to past events")
	ErrAlreadyAssigned           = errors.New("Photographers already assigned to this event")
	ErrInsufficientPhotographers = errors.New("Not enough photographers available")
	ErrConcurrencyConflict       = &conflictError{}
)

type conflictError struct{}

func (*conflictError) Error() string {
	return "Assignment conflicted with a concurrent request, please retry"
}

// Retryable reports that the caller may run the same request again.
func (*conflictError) Retryable() bool { return true }

// AlreadyAssignedError carries the number of assignments the event already has.
type AlreadyAssignedError struct {
	AssignedCount int
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s (%d assigned)", ErrAlreadyAssigned, e.AssignedCount)
}

func (e *AlreadyAssignedError) Unwrap() error { return ErrAlreadyAssigned }

// InsufficientPhotographersError carries how many photographers were needed
// and how many were free on the event date.
type InsufficientPhotographersError struct {
	Required  int
	Available int
}

func (e *InsufficientPhotographersError) Error() string {
	return fmt.Sprintf("%s (required %d, available %d)", ErrInsufficientPhotographers, e.Required, e.Available)
}

func (e *InsufficientPhotographersError) Unwrap() error { return ErrInsufficientPhotographers }

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
