package statemachine

import "sync"

// State is a named state of a machine.
type State interface {
	~string
}

// Event is a named event that triggers a transition.
type Event interface {
	~string
}

// Observer is notified after every accepted transition.
type Observer[S State, E Event] func(from, to S, event E)

// Table is a pure transition table: it resolves (state, event) pairs to target
// states without holding a current state itself. Callers keep the current
// state wherever their single source of truth lives (for example inside a
// store.Store) and ask the table for the next one.
//
// A Table is immutable after construction and safe for concurrent use.
type Table[S State, E Event] struct {
	initial     S
	transitions map[S]map[E]S
	observers   []Observer[S, E]
}

// Next returns the target state for event fired in state from.
// It returns *ErrNoTransitionAvailable when the pair is not declared.
func (t *Table[S, E]) Next(from S, event E) (S, error) {
	if to, ok := t.transitions[from][event]; ok {
		for _, obs := range t.observers {
			obs(from, to, event)
		}
		return to, nil
	}
	return from, NewErrNoTransitionAvailable(string(from), string(event))
}

// CanFire reports whether event is declared for state from.
func (t *Table[S, E]) CanFire(from S, event E) bool {
	_, ok := t.transitions[from][event]
	return ok
}

// Initial returns the state a fresh machine starts in.
func (t *Table[S, E]) Initial() S {
	return t.initial
}

// Machine tracks a current state on top of a Table.
// It is used where no external store owns the state. Safe for concurrent use.
type Machine[S State, E Event] struct {
	table   *Table[S, E]
	current S
	mu      sync.RWMutex
}

// NewMachine creates a machine positioned at the table's initial state.
func NewMachine[S State, E Event](table *Table[S, E]) *Machine[S, E] {
	return &Machine[S, E]{table: table, current: table.initial}
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire moves the machine to the next state for event.
func (m *Machine[S, E]) Fire(event E) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	to, err := m.table.Next(m.current, event)
	if err != nil {
		return err
	}
	m.current = to
	return nil
}

// CanFire reports whether event is accepted in the current state.
func (m *Machine[S, E]) CanFire(event E) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.CanFire(m.current, event)
}

// Reset returns the machine to the initial state.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.table.initial
}
