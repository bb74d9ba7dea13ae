package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrConflict signals a lost optimistic-concurrency race; callers may
	// retry after re-reading current state.
	ErrConflict = errors.New("conflict")
	// ErrBusinessRule covers user-facing rule violations: feature disabled,
	// inactive internship, duplicate application, non-pending cancellation.
	ErrBusinessRule = errors.New("business rule violation")
	// ErrUnauthorized signals the actor lacks permission for the action.
	ErrUnauthorized = errors.New("unauthorized action")
	// ErrInvalidTransition is the sentinel matched by
	// InvalidStateTransitionError via errors.Is.
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInternal          = errors.New("internal error")
)

// InvalidStateTransitionError reports an illegal status move together with
// the legal successor set so callers can present valid options.
type InvalidStateTransitionError struct {
	From    ApplicationStatus
	To      ApplicationStatus
	Allowed []ApplicationStatus
}

// NewInvalidTransition builds the structured error from the current status
// and the requested one.
func NewInvalidTransition(from, to ApplicationStatus) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{From: from, To: to, Allowed: from.AllowedTransitions()}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s (allowed: %v)", e.From, e.To, e.Allowed)
}

// Is lets errors.Is(err, ErrInvalidTransition) match the structured error.
func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
