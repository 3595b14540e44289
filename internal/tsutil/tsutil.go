// Package tsutil holds small generic slice/set helpers shared by
// crdttree's tests, built on golang-set for order-independent comparisons
// of timestamp collections.
package tsutil

import mapset "github.com/deckarep/golang-set/v2"

// Map applies fn to every element of in, preserving order.
func Map[T, V any](in []T, fn func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// Set is an order-independent collection, used by tests to compare the
// timestamps of two logs without caring about slice order.
type Set[T comparable] struct {
	inner mapset.Set[T]
}

// NewSet returns a Set containing items.
func NewSet[T comparable](items ...T) Set[T] {
	return Set[T]{inner: mapset.NewSet(items...)}
}

// Equal reports whether s and other contain exactly the same elements.
func (s Set[T]) Equal(other Set[T]) bool {
	return s.inner.Equal(other.inner)
}

// ToSlice returns the Set's elements in unspecified order.
func (s Set[T]) ToSlice() []T {
	return s.inner.ToSlice()
}
