// Package arc provides Arc, the thread-safe variant of the
// reference-counted shared handle, and Weak, its non-owning
// back-reference.
//
// Arc has the same surface as package rc but keeps its counts in
// atomics, so handles of one family may be cloned, dropped, upgraded,
// and downgraded concurrently from any number of goroutines. Go's
// atomic operations are sequentially consistent, which subsumes the
// acquire/release ordering the protocol needs: the decrement that
// reaches zero happens-before the value's destruction, so the
// destructor observes every write made by any goroutine that held a
// strong handle.
//
// Each individual Arc value is still owned by a single goroutine at a
// time; what is concurrent is the family, not one handle. Count reads
// are advisory: under concurrency they may be stale by the time the
// caller looks at them, but they are never unsound.
//
// The cycle limitation documented in package rc applies identically:
// strong cycles leak, and Weak is the escape hatch.
package arc

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
	"github.com/halcyonlab/handles/heap"
)

// maxRefs caps the counters well below the int64 limit so that a
// burst of racing increments cannot wrap before the overflow check
// fires. Reaching it means the program is leaking handles by the
// billions; treat as an invariant violation.
const maxRefs = int64(1) << 62

// block is the control block shared by every handle of one family.
// The weak count includes one implicit reference held collectively by
// the strong handles, released by whichever goroutine performs the
// final strong drop; it keeps a racing weak drop from freeing the
// block while the value is still being destroyed.
type block[T any] struct {
	strong atomic.Int64
	weak   atomic.Int64
	slot   *heap.Slot[T]
	drop   func(*T)
	alloc  handles.Allocator
	token  handles.Token
	size   uintptr
	align  uintptr
}

func (b *block[T]) dropWeakRef(op string) {
	n := b.weak.Add(-1)
	if n == 0 {
		b.alloc.Free(b.token, b.size, b.align)
	} else if n < 0 {
		panic(errors.CountUnderflow(op, "arc.block", n))
	}
}

// Arc is an atomically reference-counted strong handle. The zero value
// is unusable; construct with New, NewIn, Clone, or Weak.Upgrade. Use
// by pointer only; copying the struct bypasses Clone and breaks the
// counting contract.
type Arc[T any] struct {
	b *block[T]
}

// New allocates a shared value on the default allocator with a strong
// count of one.
func New[T any](value T) *Arc[T] {
	return NewIn[T](heap.Default(), value, nil)
}

// NewIn allocates on the given allocator. drop, if non-nil, is the
// value's destructor; it runs exactly once, on whichever goroutine
// performs the last strong drop.
func NewIn[T any](alloc handles.Allocator, value T, drop func(*T)) *Arc[T] {
	b := &block[T]{
		slot:  heap.NewSlot(alloc, value),
		drop:  drop,
		alloc: alloc,
	}
	b.strong.Store(1)
	b.weak.Store(1) // implicit reference held by the strong group
	b.size = unsafe.Sizeof(*b)
	b.align = unsafe.Alignof(*b)

	token, err := alloc.Alloc(b.size, b.align)
	if err != nil {
		panic(errors.Exhausted("arc.NewIn", b.size, b.align, err))
	}
	b.token = token

	return &Arc[T]{b: b}
}

// Clone creates another strong handle to the same value. Safe to call
// concurrently with any operation on other handles of the family.
func (a *Arc[T]) Clone() *Arc[T] {
	a.check("Arc.Clone")
	n := a.b.strong.Add(1)
	if n <= 1 {
		// The count can only be incremented from an existing strong
		// handle, so it was at least 1 before the add.
		panic(errors.CountUnderflow("Arc.Clone", describe[T]("Arc"), n))
	}
	if n > maxRefs {
		panic(errors.CountOverflow("Arc.Clone", describe[T]("Arc"), uint64(n)))
	}
	return &Arc[T]{b: a.b}
}

// Get returns a pointer to the shared value. Shared handles grant read
// access only; mutation needs external synchronization or interior
// mutability inside the value.
func (a *Arc[T]) Get() *T {
	a.check("Arc.Get")
	return a.b.slot.Value()
}

// StrongCount returns the number of live strong handles. Advisory
// under concurrency.
func (a *Arc[T]) StrongCount() uint64 {
	a.check("Arc.StrongCount")
	return uint64(a.b.strong.Load())
}

// WeakCount returns the number of live weak handles, excluding the
// implicit reference the strong group holds. Advisory under
// concurrency.
func (a *Arc[T]) WeakCount() uint64 {
	a.check("Arc.WeakCount")
	weak := a.b.weak.Load()
	if a.b.strong.Load() > 0 {
		weak--
	}
	if weak < 0 {
		return 0
	}
	return uint64(weak)
}

// Downgrade creates a weak handle observing the same block without
// keeping the value alive.
func (a *Arc[T]) Downgrade() *Weak[T] {
	a.check("Arc.Downgrade")
	n := a.b.weak.Add(1)
	if n > maxRefs {
		panic(errors.CountOverflow("Arc.Downgrade", describe[T]("Arc"), uint64(n)))
	}
	return &Weak[T]{b: a.b}
}

// Drop releases this strong handle. The goroutine whose decrement
// reaches zero destroys the value; the atomic decrement orders every
// prior access through any strong handle before that destruction.
// Dropping the same handle twice panics.
func (a *Arc[T]) Drop() {
	if a.b == nil {
		panic(errors.DoubleFree("Arc.Drop", describe[T]("Arc")))
	}
	b := a.b
	a.b = nil

	n := b.strong.Add(-1)
	if n == 0 {
		b.slot.Free(b.drop)
		b.dropWeakRef("Arc.Drop")
	} else if n < 0 {
		panic(errors.CountUnderflow("Arc.Drop", describe[T]("Arc"), n))
	}
}

func (a *Arc[T]) check(op string) {
	if a.b == nil {
		panic(errors.UseAfterFree(op, describe[T]("Arc")))
	}
}

func describe[T any](handle string) string {
	var zero T
	return fmt.Sprintf("%s[%T]", handle, zero)
}
