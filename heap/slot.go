package heap

import (
	"sync/atomic"
	"unsafe"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
)

const (
	slotLive  uint32 = 1
	slotFreed uint32 = 2
)

// Slot is a single heap allocation holding one value plus its
// allocation bookkeeping. A slot is exclusively owned by whichever
// handle currently references it; it must never be read or written
// after that owner releases it, and the state flag enforces exactly
// that at runtime.
//
// The state flag is atomic so the thread-safe handle variant can
// release slots from whichever goroutine drops last.
type Slot[T any] struct {
	value T
	alloc handles.Allocator
	token handles.Token
	size  uintptr
	align uintptr
	state atomic.Uint32
}

// NewSlot allocates a slot sized and aligned for T and moves value
// into it. Allocator exhaustion is fatal: local recovery cannot fix a
// heap that is out of memory, so it panics rather than returning an
// error.
func NewSlot[T any](alloc handles.Allocator, value T) *Slot[T] {
	var zero T
	size := unsafe.Sizeof(zero)
	align := unsafe.Alignof(zero)

	token, err := alloc.Alloc(size, align)
	if err != nil {
		panic(errors.Exhausted("heap.NewSlot", size, align, err))
	}

	s := &Slot[T]{
		value: value,
		alloc: alloc,
		token: token,
		size:  size,
		align: align,
	}
	s.state.Store(slotLive)
	return s
}

// Value returns a pointer to the contained value. The caller must not
// retain the pointer past the owning handle's release of the slot.
func (s *Slot[T]) Value() *T {
	if s.state.Load() != slotLive {
		panic(errors.UseAfterFree("Slot.Value", "heap.Slot"))
	}
	return &s.value
}

// Live reports whether the slot still holds its value.
func (s *Slot[T]) Live() bool {
	return s.state.Load() == slotLive
}

// Free destroys the contained value and releases the allocation.
//
// If drop is non-nil it is the destructor; otherwise, if the value
// implements handles.Dropper, its Drop method is called. Either runs
// exactly once. A second Free is a double free and panics.
func (s *Slot[T]) Free(drop func(*T)) {
	if !s.state.CompareAndSwap(slotLive, slotFreed) {
		panic(errors.DoubleFree("Slot.Free", "heap.Slot"))
	}

	if drop != nil {
		drop(&s.value)
	} else if d, ok := any(&s.value).(handles.Dropper); ok {
		d.Drop()
	}

	var zero T
	s.value = zero
	s.alloc.Free(s.token, s.size, s.align)
}

// Take moves the value out of the slot and releases the allocation
// without running any destructor. Used by handle types that transfer
// the value back to the caller, who assumes responsibility for it.
func (s *Slot[T]) Take() T {
	if !s.state.CompareAndSwap(slotLive, slotFreed) {
		panic(errors.UseAfterFree("Slot.Take", "heap.Slot"))
	}

	value := s.value
	var zero T
	s.value = zero
	s.alloc.Free(s.token, s.size, s.align)
	return value
}
