package cell

import (
	"fmt"
	"math"

	"github.com/halcyonlab/handles/errors"
)

// Borrow-state encoding: 0 is unborrowed, n>0 is n shared borrows,
// stateExclusive is one exclusive borrow.
const stateExclusive int32 = -1

// Sentinel values for errors.Is matching on failed try-borrows.
var (
	// ErrSharedBorrow: the operation needed exclusivity but shared
	// borrows are outstanding.
	ErrSharedBorrow = &errors.Error{Phase: errors.PhaseBorrow, Kind: errors.KindAlreadyBorrowed}

	// ErrExclusiveBorrow: an exclusive borrow is outstanding.
	ErrExclusiveBorrow = &errors.Error{Phase: errors.PhaseBorrow, Kind: errors.KindAlreadyBorrowedMut}
)

// RefCell enforces the borrow rules at runtime instead of statically:
// at any moment the contained value is either unborrowed, shared by
// any number of readers, or held by exactly one writer. Every accessor
// moves the state machine or fails; a failed request leaves the state
// machine untouched, so callers of the Try variants may simply retry
// with a different access pattern.
type RefCell[T any] struct {
	value T
	state int32
}

// NewRefCell creates a cell holding value, unborrowed.
func NewRefCell[T any](value T) *RefCell[T] {
	return &RefCell[T]{value: value}
}

// Borrow takes a shared borrow and returns its guard. It panics if an
// exclusive borrow is outstanding: overlapping a reader with a writer
// is programmer error, not a condition to handle.
func (c *RefCell[T]) Borrow() *Ref[T] {
	g, err := c.tryBorrow("RefCell.Borrow")
	if err != nil {
		panic(err)
	}
	return g
}

// TryBorrow is Borrow returning ErrExclusiveBorrow instead of
// panicking, for callers with a fallback.
func (c *RefCell[T]) TryBorrow() (*Ref[T], error) {
	return c.tryBorrow("RefCell.TryBorrow")
}

// BorrowMut takes the exclusive borrow and returns its guard. It
// panics if any borrow is outstanding.
func (c *RefCell[T]) BorrowMut() *RefMut[T] {
	g, err := c.tryBorrowMut("RefCell.BorrowMut")
	if err != nil {
		panic(err)
	}
	return g
}

// TryBorrowMut is BorrowMut returning a typed error instead of
// panicking: ErrExclusiveBorrow if a writer is outstanding,
// ErrSharedBorrow if readers are.
func (c *RefCell[T]) TryBorrowMut() (*RefMut[T], error) {
	return c.tryBorrowMut("RefCell.TryBorrowMut")
}

func (c *RefCell[T]) tryBorrow(op string) (*Ref[T], error) {
	if c.state == stateExclusive {
		return nil, errors.BorrowMutConflict(op, c.describe(), "exclusive borrow outstanding")
	}
	if c.state == math.MaxInt32 {
		// Billions of live guards means the program lost track of
		// them; treat as an invariant violation, not a value.
		panic(errors.CountOverflow(op, c.describe(), uint64(c.state)))
	}
	c.state++
	return &Ref[T]{cell: c}, nil
}

func (c *RefCell[T]) tryBorrowMut(op string) (*RefMut[T], error) {
	switch {
	case c.state == stateExclusive:
		return nil, errors.BorrowMutConflict(op, c.describe(), "exclusive borrow outstanding")
	case c.state > 0:
		return nil, errors.BorrowConflict(op, c.describe(),
			fmt.Sprintf("%d shared borrow(s) outstanding", c.state))
	}
	c.state = stateExclusive
	return &RefMut[T]{cell: c}, nil
}

func (c *RefCell[T]) describe() string {
	var zero T
	return fmt.Sprintf("RefCell[%T]", zero)
}

// Ref is the guard for a shared borrow. Release it on every exit path,
// normally with defer:
//
//	g := c.Borrow()
//	defer g.Release()
type Ref[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Value returns the borrowed value for reading. Writing through the
// returned pointer violates the shared borrow; it is not checked.
func (r *Ref[T]) Value() *T {
	if r.released {
		panic(errors.GuardReleased("Ref.Value", r.cell.describe()))
	}
	return &r.cell.value
}

// Release returns the borrow to the state machine. Idempotent, so a
// deferred Release after an early manual one is harmless.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.cell.state--
}

// RefMut is the guard for the exclusive borrow. Release it on every
// exit path, normally with defer.
type RefMut[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Value returns the borrowed value for reading or writing.
func (m *RefMut[T]) Value() *T {
	if m.released {
		panic(errors.GuardReleased("RefMut.Value", m.cell.describe()))
	}
	return &m.cell.value
}

// Release returns the borrow to the state machine. Idempotent.
func (m *RefMut[T]) Release() {
	if m.released {
		return
	}
	m.released = true
	m.cell.state = 0
}
