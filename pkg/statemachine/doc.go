// Package statemachine provides typed finite-state-machine transition tables.
//
// States and events are string-based types declared by the caller, so
// transitions are checked at compile time:
//
//	type Phase string
//	type Trigger string
//
//	const (
//	    Idle    Phase   = "idle"
//	    Running Phase   = "running"
//	    Start   Trigger = "start"
//	)
//
//	table := statemachine.MustNew(Idle,
//	    statemachine.WithTransition(Idle, Running, Start),
//	)
//
//	next, err := table.Next(Idle, Start) // Running, nil
//
// # Table and Machine
//
// A Table is pure: Next resolves a (state, event) pair without remembering
// anything, which lets the current state live inside another container that
// applies updates atomically together with other fields. Machine wraps a
// Table with its own mutex-protected current state for standalone use.
//
// # Error Handling
//
// Undeclared pairs return *ErrNoTransitionAvailable; declaring the same pair
// twice with different targets fails construction with
// *ErrConflictingTransition. Use IsNoTransitionAvailableError and
// IsConflictingTransitionError to inspect them.
package statemachine
