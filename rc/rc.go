// Package rc provides Rc, a reference-counted shared-ownership handle,
// and Weak, its non-owning back-reference.
//
// An Rc family shares one control block holding a strong and a weak
// count next to the value's slot. Clone increments the strong count;
// Drop decrements it, and the last strong drop destroys the value. The
// control block itself outlives the value while weak handles remain,
// so an expired Weak can still observe that the value is gone; the
// block is freed when the last weak reference goes away.
//
// Counters are plain integers: Rc is the cheap, single-threaded
// variant. Cloning or dropping handles of one family from multiple
// goroutines is not permitted and not checked; use package arc where
// that is needed.
//
// # Cycles
//
// Reference counting cannot reclaim strong cycles. If a value reachable
// from an Rc holds (directly or transitively) a strong handle back to
// the same block, the strong count never reaches zero and the family
// leaks. This is an accepted limitation, deliberately not "fixed" here:
// cycle detection is a garbage collector's job. Break cycles by making
// at least one edge a Weak handle.
package rc

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
	"github.com/halcyonlab/handles/heap"
)

// block is the control block shared by every handle of one family.
// The weak count includes one implicit reference held collectively by
// the strong handles; it is what keeps the block alive until both the
// last strong and the last user weak are gone, without letting a weak
// drop race the value's destruction.
type block[T any] struct {
	strong uint64
	weak   uint64
	slot   *heap.Slot[T]
	drop   func(*T)
	alloc  handles.Allocator
	token  handles.Token
	size   uintptr
	align  uintptr
}

func (b *block[T]) dropWeakRef(op string) {
	if b.weak == 0 {
		panic(errors.CountUnderflow(op, "rc.block", -1))
	}
	b.weak--
	if b.weak == 0 {
		b.alloc.Free(b.token, b.size, b.align)
	}
}

// Rc is a strong handle: one owner among many of a shared value. The
// zero value is unusable; construct with New, NewIn, Clone, or
// Weak.Upgrade. Use by pointer only; copying the struct bypasses Clone
// and breaks the counting contract.
type Rc[T any] struct {
	b *block[T]
}

// New allocates a shared value on the default allocator with a strong
// count of one.
func New[T any](value T) *Rc[T] {
	return NewIn[T](heap.Default(), value, nil)
}

// NewIn allocates on the given allocator. drop, if non-nil, is the
// value's destructor; it runs exactly once, when the last strong
// handle drops.
func NewIn[T any](alloc handles.Allocator, value T, drop func(*T)) *Rc[T] {
	b := &block[T]{
		strong: 1,
		weak:   1, // implicit reference held by the strong group
		slot:   heap.NewSlot(alloc, value),
		drop:   drop,
		alloc:  alloc,
	}
	b.size = unsafe.Sizeof(*b)
	b.align = unsafe.Alignof(*b)

	token, err := alloc.Alloc(b.size, b.align)
	if err != nil {
		panic(errors.Exhausted("rc.NewIn", b.size, b.align, err))
	}
	b.token = token

	return &Rc[T]{b: b}
}

// Clone creates another strong handle to the same value.
func (r *Rc[T]) Clone() *Rc[T] {
	r.check("Rc.Clone")
	if r.b.strong == math.MaxUint64 {
		// Billions of billions of live handles means the program lost
		// track of them; treat as an invariant violation, not a value.
		panic(errors.CountOverflow("Rc.Clone", describe[T]("Rc"), r.b.strong))
	}
	r.b.strong++
	return &Rc[T]{b: r.b}
}

// Get returns a pointer to the shared value. Shared handles grant read
// access only; mutation needs a Cell or RefCell inside the value, or
// external synchronization.
func (r *Rc[T]) Get() *T {
	r.check("Rc.Get")
	return r.b.slot.Value()
}

// StrongCount returns the number of live strong handles.
func (r *Rc[T]) StrongCount() uint64 {
	r.check("Rc.StrongCount")
	return r.b.strong
}

// WeakCount returns the number of live weak handles, excluding the
// implicit reference the strong group holds.
func (r *Rc[T]) WeakCount() uint64 {
	r.check("Rc.WeakCount")
	return r.b.weak - 1
}

// Downgrade creates a weak handle observing the same block without
// keeping the value alive.
func (r *Rc[T]) Downgrade() *Weak[T] {
	r.check("Rc.Downgrade")
	if r.b.weak == math.MaxUint64 {
		panic(errors.CountOverflow("Rc.Downgrade", describe[T]("Rc"), r.b.weak))
	}
	r.b.weak++
	return &Weak[T]{b: r.b}
}

// Drop releases this strong handle. When it is the last one, the value
// is destroyed in place; the control block survives until the last
// weak handle is gone. Dropping the same handle twice panics.
func (r *Rc[T]) Drop() {
	if r.b == nil {
		panic(errors.DoubleFree("Rc.Drop", describe[T]("Rc")))
	}
	b := r.b
	r.b = nil

	b.strong--
	if b.strong == 0 {
		b.slot.Free(b.drop)
		b.dropWeakRef("Rc.Drop")
	}
}

func (r *Rc[T]) check(op string) {
	if r.b == nil {
		panic(errors.UseAfterFree(op, describe[T]("Rc")))
	}
}

func describe[T any](handle string) string {
	var zero T
	return fmt.Sprintf("%s[%T]", handle, zero)
}
