// Package cell provides interior mutability: mutating a value through
// a shared, non-exclusive reference.
//
// Two containers with two disciplines:
//
//   - Cell[T] wraps plain data and lets any holder overwrite it in
//     place, no checks needed. Get returns a copy, so no caller ever
//     holds a reference into the cell.
//   - RefCell[T] wraps anything and enforces the one-writer-xor-
//     many-readers rule with a runtime borrow-state machine. Borrow and
//     BorrowMut hand out guards; violating the discipline panics, and
//     the TryBorrow variants return a typed error instead.
//
// The common use is nesting a cell inside an rc.Rc or arc.Arc to
// combine shared ownership with mutation, since shared handles by
// themselves grant read access only.
//
// Both containers are single-threaded by contract. RefCell's state
// machine guards aliasing within one goroutine; it is not a lock and
// has no relation to OS threads.
package cell
