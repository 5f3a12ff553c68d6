package store

import (
	"slices"
	"sync"
)

// subscription pairs a callback with the id used to remove it.
type subscription[S any] struct {
	id uint64
	fn func(S)
}

// Store is a reactive container for a single state value of type S.
// All methods are safe for concurrent use.
type Store[S any] struct {
	mu         sync.Mutex
	state      S
	subs       []subscription[S] // copy-on-write, safe to range outside the lock
	nextID     uint64
	pending    []S
	delivering bool
}

// New creates a store holding the initial state.
func New[S any](initial S) *Store[S] {
	return &Store[S]{state: initial}
}

// Get returns the current state.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies the patch to the current state and notifies subscribers.
// A nil patch is ignored.
func (s *Store[S]) Update(p Patch[S]) {
	if p == nil {
		return
	}

	s.mu.Lock()
	s.state = p.Apply(s.state)
	s.pending = append(s.pending, s.state)
	if s.delivering {
		// Another call (possibly a subscriber of this store) owns the delivery
		// loop and will pick this state up in order.
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.mu.Unlock()

	s.deliver()
}

// UpdateFunc is shorthand for Update(PatchFunc[S](fn)).
func (s *Store[S]) UpdateFunc(fn func(S) S) {
	if fn == nil {
		return
	}
	s.Update(PatchFunc[S](fn))
}

// Subscribe registers fn to be called after every update.
// The returned function removes the subscription; calling it more than once is a no-op.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(slices.Clip(s.subs), subscription[S]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(slices.Clone(s.subs), func(sub subscription[S]) bool {
				return sub.id == id
			})
		})
	}
}

// Len returns the number of active subscriptions.
func (s *Store[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// deliver drains the pending queue in order. Only the goroutine that set
// delivering runs it.
func (s *Store[S]) deliver() {
	completed := false
	defer func() {
		if !completed {
			// A subscriber panicked: release the loop but keep queued states,
			// the next Update delivers them ahead of its own.
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
		}
	}()

	s.mu.Lock()
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		subs := s.subs
		s.mu.Unlock()

		for _, sub := range subs {
			sub.fn(next)
		}

		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
	completed = true
}
