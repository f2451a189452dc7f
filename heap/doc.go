// Package heap provides the tracked allocation slot the handle types
// are built on.
//
// A Slot is one allocation holding one value plus bookkeeping: which
// allocator produced it, its accounting token, and whether it is still
// live. Storage is Go heap memory; the bookkeeping is what turns the
// informal "don't touch this after it's freed" contract into a checked
// one. Reading a freed slot panics with a use-after-free diagnostic,
// freeing it twice panics with a double-free diagnostic.
//
// The package also provides Counting, the default allocator: a pure
// accounting allocator with atomic object and byte counters. Tests and
// leak diagnostics read those counters to observe what plain pointers
// would keep invisible, such as zombie control blocks and cycle leaks.
package heap
