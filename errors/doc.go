// Package errors provides structured error types for the handles library.
//
// Errors are categorized by Phase (which layer failed) and Kind (error
// category). The Error type carries the context a diagnostic needs: the
// operation that was attempted, the handle it was attempted on, detail
// text, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBorrow, errors.KindAlreadyBorrowed).
//		Op("RefCell.BorrowMut").
//		Handle("RefCell[string]").
//		Detail("2 shared borrows outstanding").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UseAfterFree("Rc.Get", "Rc[int]")
//	err := errors.BorrowConflict("RefCell.Borrow", "RefCell[node]", "exclusive borrow outstanding")
//
// All errors implement the standard error interface and support errors.Is/As.
// Fatal conditions (use-after-free, double-free, count overflow) are raised
// as panics carrying these error values; recoverable conditions (failed
// try-borrows) are returned.
package errors
