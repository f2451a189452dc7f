package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseBorrow,
				Kind:      KindAlreadyBorrowed,
				Operation: "RefCell.BorrowMut",
				Target:    "RefCell[string]",
				Detail:    "2 shared borrows outstanding",
			},
			contains: []string{"[borrow]", "already_borrowed", "RefCell.BorrowMut", "RefCell[string]", "2 shared borrows outstanding"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseHandle,
				Kind:  KindDoubleFree,
			},
			contains: []string{"[handle]", "double_free"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseAlloc,
				Kind:   KindExhausted,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[alloc]", "exhausted", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, want it to contain %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := UseAfterFree("Rc.Get", "Rc[int]")

	if !errors.Is(err, &Error{Phase: PhaseHandle, Kind: KindUseAfterFree}) {
		t.Error("expected match on same phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseHandle, Kind: KindDoubleFree}) {
		t.Error("expected no match on different kind")
	}
	if errors.Is(err, errors.New("use_after_free")) {
		t.Error("expected no match against plain error")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("oom")
	err := Exhausted("heap.NewSlot", 64, 8, cause)

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseBorrow, KindGuardReleased).
		Op("Ref.Value").
		Handle("RefCell[node]").
		Detail("released twice").
		Build()

	if err.Operation != "Ref.Value" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if err.Target != "RefCell[node]" {
		t.Errorf("Target = %q", err.Target)
	}

	msg := err.Error()
	for _, want := range []string{"guard_released", "Ref.Value", "RefCell[node]", "released twice"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{UseAfterMove("Box.Get", "Box[int]"), KindUseAfterMove},
		{DoubleFree("Box.Drop", "Box[int]"), KindDoubleFree},
		{CountOverflow("Arc.Clone", "Arc[int]", 1<<60), KindCountOverflow},
		{CountUnderflow("Weak.Drop", "Weak[int]", -1), KindCountUnderflow},
		{BorrowConflict("RefCell.Borrow", "RefCell[int]", "exclusive borrow outstanding"), KindAlreadyBorrowed},
		{BorrowMutConflict("RefCell.BorrowMut", "RefCell[int]", "1 shared borrow outstanding"), KindAlreadyBorrowedMut},
		{GuardReleased("RefMut.Value", "RefCell[int]"), KindGuardReleased},
	}

	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.kind)
		}
		if tt.err.Operation == "" || tt.err.Target == "" {
			t.Errorf("%s: expected operation and target to be set", tt.kind)
		}
	}
}
