package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/ast"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/source"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", []byte(src))
	program, errs := New(toks, id).Parse()
	require.Empty(t, errs)
	return program
}

func TestParseFunctionWithParamsAndReturn(t *testing.T) {
	program := parse(t, `fn add(a, b) { return a + b; }`)
	require.Len(t, program.Decls, 1)
	fn := program.Decls[0]
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body.Stmts, 1)
	ret := fn.Body.Stmts[0].(ast.ReturnStmt)
	bin := ret.Value.(ast.Binary)
	require.Equal(t, "+", bin.Op)
}

func TestParseWhileBreakContinue(t *testing.T) {
	program := parse(t, `fn main() {
		let i = 0;
		while (i < 5) {
			if (i == 2) { break; }
			i = i + 1;
			continue;
		}
	}`)
	body := program.Decls[0].Body.Stmts
	require.Len(t, body, 2)
	ws := body[1].(ast.WhileStmt)
	require.Len(t, ws.Body.Stmts, 3)
	_ = ws.Body.Stmts[0].(ast.IfStmt)
	_ = ws.Body.Stmts[2].(ast.ContinueStmt)
}

func TestParseListAndIndexAssignment(t *testing.T) {
	program := parse(t, `fn main() {
		let xs = [1, 2, 3];
		xs[1] = 20;
		print(xs[0] + xs[1]);
	}`)
	body := program.Decls[0].Body.Stmts
	let := body[0].(ast.LetStmt)
	list := let.Init.(ast.ListLit)
	require.Len(t, list.Elements, 3)
	assign := body[1].(ast.IndexAssign)
	idx := assign.Idx.(ast.IntLit)
	require.Equal(t, int64(1), idx.Value)
}

func TestParseErrorRecoverySkipsToNextFn(t *testing.T) {
	toks, err := lexer.New("fn broken( { } fn ok() { return 1; }").Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", nil)
	program, errs := New(toks, id).Parse()
	require.NotEmpty(t, errs)
	require.Len(t, program.Decls, 1)
	require.Equal(t, "ok", program.Decls[0].Name)
}
