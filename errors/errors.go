package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which layer of the library the error occurred in
type Phase string

const (
	PhaseAlloc  Phase = "alloc"  // allocator boundary
	PhaseHandle Phase = "handle" // box/rc/arc lifecycle
	PhaseBorrow Phase = "borrow" // cell borrow discipline
)

// Kind categorizes the error
type Kind string

const (
	KindExhausted          Kind = "exhausted"
	KindUseAfterFree       Kind = "use_after_free"
	KindUseAfterMove       Kind = "use_after_move"
	KindDoubleFree         Kind = "double_free"
	KindCountOverflow      Kind = "count_overflow"
	KindCountUnderflow     Kind = "count_underflow"
	KindAlreadyBorrowed    Kind = "already_borrowed"
	KindAlreadyBorrowedMut Kind = "already_borrowed_mut"
	KindGuardReleased      Kind = "guard_released"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Operation string
	Target    string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Operation != "" {
		b.WriteString(" in ")
		b.WriteString(e.Operation)
	}

	if e.Target != "" {
		b.WriteString(" on ")
		b.WriteString(e.Target)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Two Errors match when their Phase and Kind agree, so sentinel values
// like cell.ErrSharedBorrow work with the standard errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation that was attempted (e.g. "Rc.Clone")
func (b *Builder) Op(op string) *Builder {
	b.err.Operation = op
	return b
}

// Handle sets a description of the handle the operation targeted
func (b *Builder) Handle(h string) *Builder {
	b.err.Target = h
	return b
}

// Detail sets free-form detail text
func (b *Builder) Detail(d string) *Builder {
	b.err.Detail = d
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// Convenience constructors for common error patterns

// Exhausted creates an allocator exhaustion error
func Exhausted(op string, size, align uintptr, cause error) *Error {
	return &Error{
		Phase:     PhaseAlloc,
		Kind:      KindExhausted,
		Operation: op,
		Detail:    fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:     cause,
	}
}

// UseAfterFree creates a use-after-free error
func UseAfterFree(op, handle string) *Error {
	return &Error{
		Phase:     PhaseHandle,
		Kind:      KindUseAfterFree,
		Operation: op,
		Target:    handle,
		Detail:    "value already freed",
	}
}

// UseAfterMove creates a moved-from access error
func UseAfterMove(op, handle string) *Error {
	return &Error{
		Phase:     PhaseHandle,
		Kind:      KindUseAfterMove,
		Operation: op,
		Target:    handle,
		Detail:    "ownership was transferred out of this handle",
	}
}

// DoubleFree creates a double-free error
func DoubleFree(op, handle string) *Error {
	return &Error{
		Phase:     PhaseHandle,
		Kind:      KindDoubleFree,
		Operation: op,
		Target:    handle,
		Detail:    "handle already dropped",
	}
}

// CountOverflow creates a reference-count overflow error
func CountOverflow(op, handle string, count uint64) *Error {
	return &Error{
		Phase:     PhaseHandle,
		Kind:      KindCountOverflow,
		Operation: op,
		Target:    handle,
		Detail:    fmt.Sprintf("reference count %d would overflow", count),
	}
}

// CountUnderflow creates a reference-count underflow error
func CountUnderflow(op, handle string, count int64) *Error {
	return &Error{
		Phase:     PhaseHandle,
		Kind:      KindCountUnderflow,
		Operation: op,
		Target:    handle,
		Detail:    fmt.Sprintf("reference count fell to %d", count),
	}
}

// BorrowConflict creates a shared-borrow conflict error
func BorrowConflict(op, handle, detail string) *Error {
	return &Error{
		Phase:     PhaseBorrow,
		Kind:      KindAlreadyBorrowed,
		Operation: op,
		Target:    handle,
		Detail:    detail,
	}
}

// BorrowMutConflict creates an exclusive-borrow conflict error
func BorrowMutConflict(op, handle, detail string) *Error {
	return &Error{
		Phase:     PhaseBorrow,
		Kind:      KindAlreadyBorrowedMut,
		Operation: op,
		Target:    handle,
		Detail:    detail,
	}
}

// GuardReleased creates an access-after-release error
func GuardReleased(op, handle string) *Error {
	return &Error{
		Phase:     PhaseBorrow,
		Kind:      KindGuardReleased,
		Operation: op,
		Target:    handle,
		Detail:    "guard already released its borrow",
	}
}
