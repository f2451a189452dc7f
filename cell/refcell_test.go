package cell

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	handleerrors "github.com/halcyonlab/handles/errors"
)

func expectPanic(t *testing.T, kind handleerrors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic with kind %q", kind)
		err, ok := r.(*handleerrors.Error)
		require.True(t, ok, "expected *errors.Error panic, got %T: %v", r, r)
		require.Equal(t, kind, err.Kind)
	}()
	fn()
}

func TestRefCell_SharedBorrowsCoexist(t *testing.T) {
	c := NewRefCell("value")

	r1 := c.Borrow()
	r2 := c.Borrow()
	r3 := c.Borrow()

	require.Equal(t, "value", *r1.Value())
	require.Equal(t, "value", *r2.Value())
	require.Equal(t, "value", *r3.Value())

	r1.Release()
	r2.Release()
	r3.Release()
}

func TestRefCell_BorrowMutWhileSharedFails(t *testing.T) {
	c := NewRefCell(1)

	r := c.Borrow()

	expectPanic(t, handleerrors.KindAlreadyBorrowed, func() { c.BorrowMut() })

	_, err := c.TryBorrowMut()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSharedBorrow))

	// A failed request leaves the state machine intact: the reader is
	// still valid, and releasing it unlocks the writer.
	require.Equal(t, 1, *r.Value())
	r.Release()

	m := c.BorrowMut()
	*m.Value() = 2
	m.Release()

	r2 := c.Borrow()
	require.Equal(t, 2, *r2.Value())
	r2.Release()
}

func TestRefCell_BorrowWhileExclusiveFails(t *testing.T) {
	c := NewRefCell(1)

	m := c.BorrowMut()

	expectPanic(t, handleerrors.KindAlreadyBorrowedMut, func() { c.Borrow() })
	expectPanic(t, handleerrors.KindAlreadyBorrowedMut, func() { c.BorrowMut() })

	_, err := c.TryBorrow()
	require.True(t, errors.Is(err, ErrExclusiveBorrow))
	_, err = c.TryBorrowMut()
	require.True(t, errors.Is(err, ErrExclusiveBorrow))

	m.Release()

	r := c.Borrow()
	r.Release()
}

func TestRefCell_FailedTriesDoNotCorrupt(t *testing.T) {
	c := NewRefCell(0)

	r := c.Borrow()
	for i := 0; i < 5; i++ {
		_, err := c.TryBorrowMut()
		require.Error(t, err)
	}
	r.Release()

	// One reader in, one reader out: the failed tries must not have
	// left phantom borrows behind.
	m, err := c.TryBorrowMut()
	require.NoError(t, err)
	m.Release()
}

func TestRefCell_ReleaseIsIdempotent(t *testing.T) {
	c := NewRefCell(7)

	func() {
		r := c.Borrow()
		defer r.Release()
		r.Release() // early manual release; the deferred one is a no-op
	}()

	m := c.BorrowMut()
	defer m.Release()
	require.Equal(t, 7, *m.Value())
}

func TestRefCell_GuardUseAfterRelease(t *testing.T) {
	c := NewRefCell(1)

	r := c.Borrow()
	r.Release()
	expectPanic(t, handleerrors.KindGuardReleased, func() { r.Value() })

	m := c.BorrowMut()
	m.Release()
	expectPanic(t, handleerrors.KindGuardReleased, func() { m.Value() })
}

func TestRefCell_BorrowCountOverflowIsFatal(t *testing.T) {
	c := NewRefCell(0)
	c.state = math.MaxInt32

	expectPanic(t, handleerrors.KindCountOverflow, func() { c.Borrow() })
	expectPanic(t, handleerrors.KindCountOverflow, func() { c.TryBorrow() })

	// A saturated reader count must still admit further failed-but-
	// harmless writer tries.
	_, err := c.TryBorrowMut()
	require.Error(t, err)
	require.EqualValues(t, math.MaxInt32, c.state)
}

func TestRefCell_WritesVisibleToLaterBorrows(t *testing.T) {
	c := NewRefCell([]int{1})

	m := c.BorrowMut()
	*m.Value() = append(*m.Value(), 2)
	m.Release()

	r := c.Borrow()
	defer r.Release()
	require.Equal(t, []int{1, 2}, *r.Value())
}
