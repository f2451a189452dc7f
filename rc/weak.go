package rc

import (
	"math"

	"github.com/halcyonlab/handles/errors"
)

// Weak observes an Rc family's block without keeping the value alive.
// The zero value is unusable; construct with Rc.Downgrade or Clone.
type Weak[T any] struct {
	b *block[T]
}

// Clone creates another weak handle to the same block.
func (w *Weak[T]) Clone() *Weak[T] {
	w.check("Weak.Clone")
	if w.b.weak == math.MaxUint64 {
		panic(errors.CountOverflow("Weak.Clone", describe[T]("Weak"), w.b.weak))
	}
	w.b.weak++
	return &Weak[T]{b: w.b}
}

// Upgrade attempts to produce a new strong handle. It succeeds only
// while the value is still alive; after the last strong handle has
// dropped it reports false. A false result is a normal outcome, not an
// error.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	w.check("Weak.Upgrade")
	if w.b.strong == 0 {
		return nil, false
	}
	if w.b.strong == math.MaxUint64 {
		panic(errors.CountOverflow("Weak.Upgrade", describe[T]("Weak"), w.b.strong))
	}
	w.b.strong++
	return &Rc[T]{b: w.b}, true
}

// StrongCount returns the number of live strong handles; zero once the
// value has been destroyed.
func (w *Weak[T]) StrongCount() uint64 {
	w.check("Weak.StrongCount")
	return w.b.strong
}

// WeakCount returns the number of live weak handles, excluding the
// implicit reference the strong group holds while the value is alive.
func (w *Weak[T]) WeakCount() uint64 {
	w.check("Weak.WeakCount")
	if w.b.strong == 0 {
		return w.b.weak
	}
	return w.b.weak - 1
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
