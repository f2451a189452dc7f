package main

import (
	"strings"
	"testing"
)

func destroyedEvents(m *playgroundModel) int {
	n := 0
	for _, e := range m.events {
		if strings.Contains(e, "value destroyed") {
			n++
		}
	}
	return n
}

func TestPlayground_DestructionLoggedOnce(t *testing.T) {
	m := newPlaygroundModel()
	m.start("x")

	// Two weak observers, then drop the only strong handle.
	m.downgradeSelected()
	m.downgradeSelected()
	m.selected = 0
	m.dropSelected()

	if got := destroyedEvents(m); got != 1 {
		t.Fatalf("destruction logged %d times after the last strong drop, want 1", got)
	}

	// Dropping the remaining weak handles must not re-log it.
	m.selected = 0
	m.dropSelected()
	if got := destroyedEvents(m); got != 1 {
		t.Fatalf("destruction logged %d times after a weak drop, want 1", got)
	}

	m.selected = 0
	m.dropSelected()
	if got := destroyedEvents(m); got != 1 {
		t.Fatalf("destruction logged %d times after the final weak drop, want 1", got)
	}

	if m.state != stateDestroyed {
		t.Fatal("expected the playground to reach its drained state")
	}
	if m.tracked.Len() != 0 {
		t.Fatalf("outstanding allocations = %d, want 0", m.tracked.Len())
	}
}
