package cell

// Cell is an interior-mutability container for plain-data values.
// Mutation through a shared reference is safe here precisely because
// nobody can hold a reference into the cell: Get hands out copies,
// Set and Replace overwrite in place.
//
// T must be plain data: a value whose copy shares no mutable state
// with the original (no pointers, slices, maps, or handles inside).
// This is an unchecked precondition.
type Cell[T any] struct {
	value T
}

// New creates a cell holding value.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Get returns a copy of the contained value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set overwrites the contained value.
func (c *Cell[T]) Set(value T) {
	c.value = value
}

// Replace stores value and returns the previous one.
func (c *Cell[T]) Replace(value T) T {
	old := c.value
	c.value = value
	return old
}
