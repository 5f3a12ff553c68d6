package statemachine

import (
	"fmt"
)

// Option configures a transition table during construction.
type Option[S State, E Event] func(*Table[S, E]) error

// TransitionDef defines a transition between states.
type TransitionDef[S State, E Event] struct {
	From  S
	To    S
	Event E
}

// New creates a transition table with the given initial state and options.
func New[S State, E Event](initial S, opts ...Option[S, E]) (*Table[S, E], error) {
	if initial == "" {
		return nil, ErrInvalidState
	}

	t := &Table[S, E]{
		initial:     initial,
		transitions: make(map[S]map[E]S),
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// MustNew is like New but panics on misconfiguration.
// Transition tables are declared at startup, so a bad one should prevent it.
func MustNew[S State, E Event](initial S, opts ...Option[S, E]) *Table[S, E] {
	t, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return t
}

// WithTransition declares a single transition.
func WithTransition[S State, E Event](from, to S, event E) Option[S, E] {
	return func(t *Table[S, E]) error {
		return t.add(from, to, event)
	}
}

// WithTransitionFrom declares the same event leading to one target from several sources.
func WithTransitionFrom[S State, E Event](to S, event E, from ...S) Option[S, E] {
	return func(t *Table[S, E]) error {
		if len(from) == 0 {
			return fmt.Errorf("event %q to %q: %w", event, to, ErrInvalidTransition)
		}
		for _, f := range from {
			if err := t.add(f, to, event); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithTransitions declares multiple transitions at once.
func WithTransitions[S State, E Event](defs []TransitionDef[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		for i, d := range defs {
			if err := t.add(d.From, d.To, d.Event); err != nil {
				return fmt.Errorf("failed to add transition[%d] %s->%s on %s: %w",
					i, d.From, d.To, d.Event, err)
			}
		}
		return nil
	}
}

// WithObserver registers a callback invoked for every resolved transition.
func WithObserver[S State, E Event](obs Observer[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		if obs != nil {
			t.observers = append(t.observers, obs)
		}
		return nil
	}
}

// add registers one transition, rejecting a different target for the same pair.
func (t *Table[S, E]) add(from, to S, event E) error {
	if from == "" || to == "" || event == "" {
		return ErrInvalidTransition
	}
	if _, ok := t.transitions[from]; !ok {
		t.transitions[from] = make(map[E]S)
	}
	if existing, ok := t.transitions[from][event]; ok && existing != to {
		return NewErrConflictingTransition(string(from), string(event))
	}
	t.transitions[from][event] = to
	return nil
}
