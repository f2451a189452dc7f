package cell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCell_GetSet(t *testing.T) {
	c := New(10)
	require.Equal(t, 10, c.Get())

	c.Set(20)
	require.Equal(t, 20, c.Get())
}

func TestCell_GetReturnsCopy(t *testing.T) {
	c := New([2]int{1, 2})

	v := c.Get()
	v[0] = 99

	require.Equal(t, [2]int{1, 2}, c.Get(), "mutating the copy must not touch the cell")
}

func TestCell_Replace(t *testing.T) {
	c := New("old")

	old := c.Replace("new")
	require.Equal(t, "old", old)
	require.Equal(t, "new", c.Get())
}
