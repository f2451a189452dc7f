package handles

// Token is an opaque accounting handle returned by an Allocator.
// Token 0 is reserved and always invalid.
type Token uint64

// Allocator is the host heap boundary the handle types are built on.
//
// Storage itself lives on the Go heap; what the allocator owns is the
// bookkeeping: every live handle-owned value corresponds to exactly one
// outstanding token, which is what makes leaks, double-frees, and
// zombie control blocks observable to callers and tests.
type Allocator interface {
	// Alloc records an allocation of the given size and alignment and
	// returns its token. Exhaustion is the only failure mode.
	Alloc(size, align uintptr) (Token, error)

	// Free releases a token previously returned by Alloc. The size and
	// align must match the original Alloc call.
	Free(token Token, size, align uintptr)
}

// Dropper is optionally implemented by values that need cleanup when
// their owning handle releases them. Drop is called exactly once, on
// the last release, before the backing slot is freed.
type Dropper interface {
	Drop()
}
