package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/analyzer"
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
)

func compile(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", []byte(src))
	program, perrs := parser.New(toks, id).Parse()
	require.Empty(t, perrs)
	hirProg, aerrs := analyzer.Analyze(program)
	require.Empty(t, aerrs)
	chunk, cerr := Compile(hirProg, &srcs)
	require.Nil(t, cerr)
	return chunk
}

func TestEntryFunctionStartsAtOffsetZero(t *testing.T) {
	chunk := compile(t, `
		fn helper() { return 1; }
		fn main() { return helper(); }
	`)
	// main is the second declared function, so it is global 1.
	fn, err := chunk.Globals[1].AsFunction()
	require.Nil(t, err)
	require.Equal(t, 0, fn.CodeOffset)
}

func TestImplicitTrailingReturn(t *testing.T) {
	chunk := compile(t, `fn main() { let x = 1; }`)
	n := len(chunk.Code)
	require.Equal(t, byte(bytecode.OpPushNull), chunk.Code[n-2])
	require.Equal(t, byte(bytecode.OpRet), chunk.Code[n-1])
}

func TestJumpLocality(t *testing.T) {
	chunk := compile(t, `
		fn main() {
			let i = 0;
			while (i < 5) {
				if (i == 2) { break; }
				i = i + 1;
			}
		}
	`)
	offset := 0
	for offset < len(chunk.Code) {
		op := bytecode.Op(chunk.Code[offset])
		offset++
		switch bytecode.ImmediateKind(op) {
		case bytecode.ImmUnsigned:
			_, n, err := bytecode.Uvarint(chunk.Code[offset:])
			require.Nil(t, err)
			offset += n
		case bytecode.ImmSignedInt:
			_, n, err := bytecode.Varint(chunk.Code[offset:])
			require.Nil(t, err)
			offset += n
		case bytecode.ImmSignedJump:
			rel, n, err := bytecode.Varint(chunk.Code[offset:])
			require.Nil(t, err)
			target := offset + n + int(rel)
			require.GreaterOrEqual(t, target, 0)
			require.LessOrEqual(t, target, len(chunk.Code))
			offset += n
		}
	}
	require.Equal(t, len(chunk.Code), offset)
}

func TestIndexAssignEvaluationOrder(t *testing.T) {
	chunk := compile(t, `fn main() { let xs = [1]; xs[0] = 9; }`)
	dis := bytecode.Disassemble(chunk, "main")
	require.Contains(t, dis, "set_item")
	// list (load_1), then index (push_0), then value (push_int 9), then set_item.
	list := strings.Index(dis, "load_1")
	idx := strings.Index(dis, "push_0")
	val := strings.Index(dis, "push_int")
	set := strings.Index(dis, "set_item")
	require.True(t, list >= 0 && list < idx && idx < val && val < set)
}
