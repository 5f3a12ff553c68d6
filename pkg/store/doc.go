// Package store provides a generic reactive state container.
//
// A Store holds a single state value, applies typed patches to it and
// synchronously notifies every subscriber with the resulting state. It is the
// shared primitive behind the session manager, the layer/filter engine and
// the map view model.
//
// # Patches
//
// Updates are expressed as values implementing Patch[S]. Slice-specific patch
// structs are built from Field values, which carry an optional replacement
// for one top-level field:
//
//	type CounterPatch struct {
//	    Count store.Field[int]
//	}
//
//	func (p CounterPatch) Apply(s Counter) Counter {
//	    s.Count = p.Count.Or(s.Count)
//	    return s
//	}
//
//	s := store.New(Counter{})
//	s.Update(CounterPatch{Count: store.Set(1)})
//
// Merging is shallow: a set field replaces the whole value, nested maps or
// slices are never merged. PatchFunc adapts a pure function of the current
// state for updates that depend on it (toggles, counters).
//
// # Notifications
//
// Subscribers are called in registration order after every update, with the
// state produced by that update. Updates are applied in call order and none is
// dropped or coalesced. A subscriber may call Update; the nested state is
// queued and delivered once the current delivery round completes, before the
// outer Update returns.
//
// Callbacks run on the goroutine that performed the update and must not block
// for long. They must treat the received state as read-only.
//
// A panicking subscriber propagates out of Update. The state that was being
// delivered is not offered to the remaining subscribers, but states queued
// behind it stay queued and are delivered, in order, by the next Update.
package store
