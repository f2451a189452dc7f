package heap

import (
	"sync/atomic"

	"github.com/halcyonlab/handles"
	"github.com/halcyonlab/handles/errors"
)

// Counting is a pure accounting allocator: storage lives on the Go
// heap, Counting tracks how much of it is owned by live handles. It is
// safe for concurrent use.
type Counting struct {
	next    atomic.Uint64
	objects atomic.Int64
	bytes   atomic.Int64
}

// NewCounting creates a new counting allocator.
func NewCounting() *Counting {
	return &Counting{}
}

// Alloc records an allocation and returns a fresh token. It never
// fails; exhaustion of the Go heap is a process-level abort long
// before the accounting could fail.
func (a *Counting) Alloc(size, align uintptr) (handles.Token, error) {
	a.objects.Add(1)
	a.bytes.Add(int64(size))
	return handles.Token(a.next.Add(1)), nil
}

// Free releases a token. Freeing more than was allocated means a
// handle decremented bookkeeping it did not own, which is a broken
// invariant, not a recoverable condition.
func (a *Counting) Free(token handles.Token, size, align uintptr) {
	bytes := a.bytes.Add(-int64(size))
	objects := a.objects.Add(-1)
	if objects < 0 || bytes < 0 {
		panic(errors.CountUnderflow("Counting.Free", "heap.Counting", objects))
	}
}

// Objects returns the number of live allocations.
func (a *Counting) Objects() int64 {
	return a.objects.Load()
}

// Bytes returns the number of live allocated bytes.
func (a *Counting) Bytes() int64 {
	return a.bytes.Load()
}

var defaultAlloc = NewCounting()

// Default returns the process-wide allocator used by the one-argument
// handle constructors.
func Default() *Counting {
	return defaultAlloc
}
