package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/value"
)

func TestAddConstantDeduplicates(t *testing.T) {
	var c Chunk
	a := c.AddConstant(value.Str("hi"))
	b := c.AddConstant(value.Str("hi"))
	require.Equal(t, a, b)
	require.Len(t, c.Constants, 1)

	d := c.AddConstant(value.Str("bye"))
	require.NotEqual(t, a, d)
}

func TestLineTableCoalescesAndLooksUp(t *testing.T) {
	var c Chunk
	c.AddLine(1, 3)
	c.AddLine(1, 2)
	c.AddLine(2, 1)
	require.Len(t, c.Lines, 2)
	require.Equal(t, 1, c.LineAt(0))
	require.Equal(t, 1, c.LineAt(4))
	require.Equal(t, 2, c.LineAt(5))
}

func TestDisassembleRendersPushConstWithValue(t *testing.T) {
	var c Chunk
	idx := c.AddConstant(value.Str("hi"))
	c.Code = PutUvarint(append(c.Code, byte(OpPushConst)), idx)
	c.AddLine(1, len(c.Code))
	out := Disassemble(&c, "test")
	require.Contains(t, out, "push_const")
	require.Contains(t, out, "hi")
}
