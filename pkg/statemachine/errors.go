package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition: from, to, or event cannot be empty")
	ErrInvalidState      = errors.New("invalid state: initial state cannot be empty")
)

// ErrNoTransitionAvailable indicates no transition is declared for the given state/event combination.
type ErrNoTransitionAvailable struct {
	StateName string
	EventName string
}

// Error implements error.
func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition available from state '%s' for event '%s'", e.StateName, e.EventName)
}

// NewErrNoTransitionAvailable reports that event is not accepted in state.
func NewErrNoTransitionAvailable(stateName, eventName string) *ErrNoTransitionAvailable {
	return &ErrNoTransitionAvailable{
		StateName: stateName,
		EventName: eventName,
	}
}

// ErrConflictingTransition indicates the same state/event pair was declared with two targets.
type ErrConflictingTransition struct {
	StateName string
	EventName string
}

// Error implements error.
func (e *ErrConflictingTransition) Error() string {
	return fmt.Sprintf("conflicting transitions from state '%s' for event '%s'", e.StateName, e.EventName)
}

// NewErrConflictingTransition reports a second target for the same state and event.
func NewErrConflictingTransition(stateName, eventName string) *ErrConflictingTransition {
	return &ErrConflictingTransition{
		StateName: stateName,
		EventName: eventName,
	}
}

// IsNoTransitionAvailableError reports whether err is an ErrNoTransitionAvailable.
func IsNoTransitionAvailableError(err error) bool {
	var e *ErrNoTransitionAvailable
	return errors.As(err, &e)
}

// IsConflictingTransitionError reports whether err is an ErrConflictingTransition.
func IsConflictingTransitionError(err error) bool {
	var e *ErrConflictingTransition
	return errors.As(err, &e)
}
