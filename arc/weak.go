package arc

import (
	"github.com/halcyonlab/handles/errors"
)

// Weak observes an Arc family's block without keeping the value alive.
// The zero value is unusable; construct with Arc.Downgrade or Clone.
// Like Arc, each Weak value is owned by one goroutine; the family as a
// whole is safe for concurrent use.
type Weak[T any] struct {
	b *block[T]
}

// Clone creates another weak handle to the same block.
func (w *Weak[T]) Clone() *Weak[T] {
	w.check("Weak.Clone")
	n := w.b.weak.Add(1)
	if n > maxRefs {
		panic(errors.CountOverflow("Weak.Clone", describe[T]("Weak"), uint64(n)))
	}
	return &Weak[T]{b: w.b}
}

// Upgrade attempts to produce a new strong handle via a bounded
// CAS-retry loop. The increment only ever succeeds from a nonzero
// count, so an upgrade can never resurrect a value whose strong count
// legitimately reached zero, and it can never observe a transiently
// nonzero count after death: zero is final.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	w.check("Weak.Upgrade")
	for {
		n := w.b.strong.Load()
		if n == 0 {
			return nil, false
		}
		if n >= maxRefs {
			panic(errors.CountOverflow("Weak.Upgrade", describe[T]("Weak"), uint64(n)))
		}
		if w.b.strong.CompareAndSwap(n, n+1) {
			return &Arc[T]{b: w.b}, true
		}
	}
}

// StrongCount returns the number of live strong handles; zero once the
// value has been destroyed. Advisory under concurrency.
func (w *Weak[T]) StrongCount() uint64 {
	w.check("Weak.StrongCount")
	return uint64(w.b.strong.Load())
}

// WeakCount returns the number of live weak handles, excluding the
// implicit reference the strong group holds while the value is alive.
// Advisory under concurrency.
func (w *Weak[T]) WeakCount() uint64 {
	w.check("Weak.WeakCount")
	weak := w.b.weak.Load()
	if w.b.strong.Load() > 0 {
		weak--
	}
	if weak < 0 {
		return 0
	}
	return uint64(weak)
}

// Drop releases this weak handle. When it is the last reference of any
// kind, the control block is freed. Dropping twice panics.
func (w *Weak[T]) Drop() {
	if w.b == nil {
		panic(errors.DoubleFree("Weak.Drop", describe[T]("Weak")))
	}
	b := w.b
	w.b = nil
	b.dropWeakRef("Weak.Drop")
}

func (w *Weak[T]) check(op string) {
	if w.b == nil {
		panic(errors.UseAfterFree(op, describe[T]("Weak")))
	}
}
