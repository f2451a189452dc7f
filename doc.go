// Package handles provides ownership-typed heap handles for Go.
//
// The library is a small family of primitives for managing heap values
// with explicit ownership instead of relying on garbage-collection
// semantics: exclusive boxes, reference-counted shared handles with weak
// back-references, and runtime-checked interior-mutability cells. Each
// handle type makes its move/share/drop contract explicit and enforces
// it with runtime checks, so use-after-free, double-free, and aliasing
// violations surface as loud diagnostics instead of silent corruption.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	handles/    Root package with the Allocator boundary and Dropper hook
//	├── heap/   Tracked heap slots: one allocation, one value, bookkeeping
//	├── box/    Box[T]: exclusive ownership, move semantics, scoped drop
//	├── rc/     Rc[T]/Weak[T]: plain reference counting, single-threaded
//	├── arc/    Arc[T]/Weak[T]: atomic reference counting, thread-safe
//	├── cell/   Cell[T] and RefCell[T]: interior mutability
//	├── errors/ Structured error types for handle diagnostics
//	└── track/  Allocation tracking, lifecycle observers, leak reports
//
// # Ownership Model
//
// Every handle is one of three kinds:
//
//	exclusive - Box[T]: exactly one live handle per value; Move transfers,
//	            the moved-from box becomes a tombstone
//	shared    - Rc[T]/Arc[T]: any number of strong handles; the value is
//	            destroyed when the last strong handle drops
//	weak      - Weak[T]: observes a shared value without keeping it alive;
//	            Upgrade fails once the strong count has reached zero
//
// Shared handles grant read access only. Mutating a shared value requires
// interior mutability: Cell for plain data, RefCell for anything that needs
// the one-writer-xor-many-readers discipline checked at runtime.
//
// # Thread Safety
//
// Box, Rc, Cell, and RefCell are single-threaded by contract: no concurrent
// access from multiple goroutines is permitted, and the contract is not
// checked. Arc and its Weak are safe for concurrent Clone/Drop/Upgrade; the
// count decrement that reaches zero happens-before the value's destruction.
//
// # Cycles
//
// Plain reference counting cannot reclaim strong cycles: two values holding
// strong handles to each other never reach count zero and leak. This is an
// accepted property, not a bug; break cycles by making at least one edge a
// Weak handle. The track package makes such leaks observable.
package handles
