package store

// Patch transforms a state value into its next version.
type Patch[S any] interface {
	Apply(S) S
}

// PatchFunc adapts a pure function to the Patch interface.
type PatchFunc[S any] func(S) S

// Apply calls f.
func (f PatchFunc[S]) Apply(s S) S {
	return f(s)
}

// Field is an optional replacement value for a single top-level state field.
// The zero value is unset and leaves the current value untouched.
type Field[T any] struct {
	value T
	set   bool
}

// Set returns a Field that replaces the current value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Clear returns a Field that replaces the current value with the zero value of T.
func Clear[T any]() Field[T] {
	var zero T
	return Set(zero)
}

// IsSet reports whether the field carries a replacement.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Value returns the replacement value and whether it is set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set
}

// Or returns the replacement when set, otherwise current.
func (f Field[T]) Or(current T) T {
	if f.set {
		return f.value
	}
	return current
}
