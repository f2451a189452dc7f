package arc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/handles/errors"
	"github.com/halcyonlab/handles/heap"
)

func expectPanic(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic with kind %q", kind)
		err, ok := r.(*errors.Error)
		require.True(t, ok, "expected *errors.Error panic, got %T: %v", r, r)
		require.Equal(t, kind, err.Kind)
	}()
	fn()
}

func TestArc_CloneAndDrop(t *testing.T) {
	a := New(5)
	b := a.Clone()

	require.Equal(t, uint64(2), a.StrongCount())

	a.Drop()
	require.Equal(t, uint64(1), b.StrongCount())
	require.Equal(t, 5, *b.Get())

	b.Drop()
}

func TestArc_UseAfterDrop(t *testing.T) {
	a := New(1)
	a.Drop()

	expectPanic(t, errors.KindUseAfterFree, func() { a.Get() })
	expectPanic(t, errors.KindUseAfterFree, func() { a.Clone() })
	expectPanic(t, errors.KindDoubleFree, func() { a.Drop() })
}

func TestArc_WeakUpgradeAfterDeath(t *testing.T) {
	alloc := heap.NewCounting()
	drops := 0

	s := NewIn(alloc, "x", func(*string) { drops++ })
	w := s.Downgrade()

	s.Drop()
	require.Equal(t, 1, drops)

	if _, ok := w.Upgrade(); ok {
		t.Fatal("Upgrade must fail once the strong count reached zero")
	}

	// Zombie state: value slot freed, block waiting on the weak.
	require.Equal(t, int64(1), alloc.Objects())
	w.Drop()
	require.Zero(t, alloc.Objects())
}

func TestArc_ConcurrentCloneDrop(t *testing.T) {
	const (
		goroutines = 16
		rounds     = 1000
	)

	alloc := heap.NewCounting()
	var drops atomic.Int64

	root := NewIn(alloc, int64(99), func(*int64) { drops.Add(1) })

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		h := root.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				c := h.Clone()
				if *c.Get() != 99 {
					t.Errorf("Get() = %d through clone, want 99", *c.Get())
				}
				c.Drop()
			}
			h.Drop()
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(1), root.StrongCount())
	require.Zero(t, drops.Load())

	root.Drop()
	require.Equal(t, int64(1), drops.Load(), "destructor must run exactly once")
	require.Zero(t, alloc.Objects())
}

func TestArc_UpgradeRacesFinalDrop(t *testing.T) {
	const upgraders = 8

	for round := 0; round < 200; round++ {
		alloc := heap.NewCounting()
		var destroyed atomic.Bool

		s := NewIn(alloc, round, func(*int) { destroyed.Store(true) })

		weaks := make([]*Weak[int], upgraders)
		for i := range weaks {
			weaks[i] = s.Downgrade()
		}

		var wg sync.WaitGroup
		for i := 0; i < upgraders; i++ {
			w := weaks[i]
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Bounded: overlapping upgraders can keep the value
				// alive, so an unbounded retry loop might never see
				// the count reach zero.
				for i := 0; i < 1000; i++ {
					h, ok := w.Upgrade()
					if !ok {
						// Zero is final: no later upgrade may succeed.
						if _, again := w.Upgrade(); again {
							t.Error("upgrade succeeded after observing death")
						}
						return
					}
					// Holding a strong handle must keep the value
					// undestroyed, no matter what the other side does.
					if destroyed.Load() {
						t.Error("upgraded a destroyed value")
					}
					h.Drop()
				}
			}()
		}

		s.Drop()
		wg.Wait()

		require.True(t, destroyed.Load(), "destructor must have run")
		for _, w := range weaks {
			w.Drop()
		}
		require.Zero(t, alloc.Objects())
	}
}

func TestArc_ConcurrentDowngrade(t *testing.T) {
	const goroutines = 8

	alloc := heap.NewCounting()
	root := NewIn(alloc, "w", nil)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		h := root.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				w := h.Downgrade()
				w2 := w.Clone()
				up, ok := w.Upgrade()
				if !ok {
					t.Error("upgrade failed while a strong handle is held")
					return
				}
				up.Drop()
				w.Drop()
				w2.Drop()
			}
			h.Drop()
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(1), root.StrongCount())
	require.Zero(t, root.WeakCount())

	root.Drop()
	require.Zero(t, alloc.Objects())
}

func TestArc_CountsAdvisoryButConsistent(t *testing.T) {
	a := New(0)
	b := a.Clone()
	w := a.Downgrade()

	require.Equal(t, uint64(2), a.StrongCount())
	require.Equal(t, uint64(1), a.WeakCount())
	require.Equal(t, uint64(2), w.StrongCount())

	b.Drop()
	a.Drop()

	require.Zero(t, w.StrongCount())
	require.Equal(t, uint64(1), w.WeakCount())
	w.Drop()
}
