// Package box provides Box, an exclusive-ownership heap handle.
//
// A Box owns exactly one heap slot. Ownership moves: Move hands the
// slot to a new Box and turns the source into a tombstone, so the
// moved-from handle can never free or read what it no longer owns.
// Because a Box is itself a fixed-size handle, a value may contain a
// *Box of its own type, which is how recursive structures (list nodes,
// trees) stay representable without unbounded inline size.
package box

import (
	"fmt"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
	"github.com/halcyonlab/handles/heap"
)

const (
	boxLive uint8 = iota
	boxMoved
	boxDropped
)

// Box is the sole owner of one heap slot. The zero value is unusable;
// construct with New or NewIn. Boxes are single-threaded: no
// concurrent access from multiple goroutines is permitted, and that
// contract is not checked.
type Box[T any] struct {
	slot  *heap.Slot[T]
	drop  func(*T)
	state uint8
}

// New allocates a slot on the default allocator and moves value into it.
func New[T any](value T) *Box[T] {
	return NewIn[T](heap.Default(), value, nil)
}

// NewIn allocates on the given allocator. drop, if non-nil, is the
// value's destructor; it runs exactly once, when the box is dropped.
func NewIn[T any](alloc handles.Allocator, value T, drop func(*T)) *Box[T] {
	return &Box[T]{
		slot: heap.NewSlot(alloc, value),
		drop: drop,
	}
}

// Get returns a pointer to the owned value for reading. The caller
// must not retain the pointer past the box's drop.
func (b *Box[T]) Get() *T {
	b.check("Box.Get")
	return b.slot.Value()
}

// GetMut returns a pointer to the owned value for writing. Exclusive
// ownership is what makes the mutation safe; the caller must not
// retain the pointer past the box's drop.
func (b *Box[T]) GetMut() *T {
	b.check("Box.GetMut")
	return b.slot.Value()
}

// Move transfers ownership of the slot to a new box. The receiver
// becomes a tombstone: every later operation on it panics, and it will
// never free the slot it gave away.
func (b *Box[T]) Move() *Box[T] {
	b.check("Box.Move")
	moved := &Box[T]{slot: b.slot, drop: b.drop}
	b.slot = nil
	b.drop = nil
	b.state = boxMoved
	return moved
}

// IntoInner consumes the box, moving the value out to the caller. The
// slot's bookkeeping is released without running the destructor; the
// caller now owns the value.
func (b *Box[T]) IntoInner() T {
	b.check("Box.IntoInner")
	slot := b.slot
	b.slot = nil
	b.drop = nil
	b.state = boxMoved
	return slot.Take()
}

// Drop destroys the owned value and releases its slot. Dropping twice
// is a double free and panics.
func (b *Box[T]) Drop() {
	b.check("Box.Drop")
	slot, drop := b.slot, b.drop
	b.slot = nil
	b.drop = nil
	b.state = boxDropped
	slot.Free(drop)
}

func (b *Box[T]) check(op string) {
	switch b.state {
	case boxMoved:
		panic(errors.UseAfterMove(op, describe[T]()))
	case boxDropped:
		if op == "Box.Drop" {
			panic(errors.DoubleFree(op, describe[T]()))
		}
		panic(errors.UseAfterFree(op, describe[T]()))
	}
}

func describe[T any]() string {
	var zero T
	return fmt.Sprintf("Box[%T]", zero)
}
