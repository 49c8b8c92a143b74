// Package lazy provides a single-slot container for resources whose backing
// allocation is created on first use rather than at declaration time.
package lazy

import "errors"

// ErrNotInitialized is returned by Get when the cell holds no value.
var ErrNotInitialized = errors.New("lazy: used before allocated")

// Cell holds at most one value of type T. The zero value is an empty cell.
//
// Cell performs no synchronization. It is meant to be mutated by a single
// owner, the same way the rest of the device state is.
type Cell[T any] struct {
	value T
	set   bool
}

// InitializeOrReplace installs v and returns the previously held value, if any.
// The caller decides how the previous value is reclaimed.
func (c *Cell[T]) InitializeOrReplace(v T) (prev T, ok bool) {
	prev, ok = c.value, c.set
	c.value = v
	c.set = true
	return prev, ok
}

// Get returns the held value, or ErrNotInitialized if the cell is empty.
func (c *Cell[T]) Get() (T, error) {
	if !c.set {
		var zero T
		return zero, ErrNotInitialized
	}
	return c.value, nil
}

// Initialized reports whether the cell holds a value.
func (c *Cell[T]) Initialized() bool { return c.set }

// Take empties the cell and returns what it held.
func (c *Cell[T]) Take() (T, bool) {
	v, ok := c.value, c.set
	var zero T
	c.value = zero
	c.set = false
	return v, ok
}
