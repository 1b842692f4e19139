package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
)

func analyze(t *testing.T, src string) (*hir.Program, []error) {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", []byte(src))
	program, perrs := parser.New(toks, id).Parse()
	require.Empty(t, perrs)
	prog, aerrs := Analyze(program)
	out := make([]error, len(aerrs))
	for i, e := range aerrs {
		out[i] = e
	}
	return prog, out
}

func TestResolvesLocalsAndGlobals(t *testing.T) {
	prog, errs := analyze(t, `
		fn helper(x) { return x + 1; }
		fn main() { let y = helper(41); print(y); }
	`)
	require.Empty(t, errs)
	require.Len(t, prog.Functions, 2)

	mainFn := prog.Functions[prog.EntryGlobal]
	let := mainFn.Body.Stmts[0].(hir.LetStmt)
	require.Equal(t, 1, let.Slot)
	call := let.Init.(hir.Call)
	_, isGlobal := call.Callee.(hir.GlobalRef)
	require.True(t, isGlobal)

	print := mainFn.Body.Stmts[1].(hir.ExprStmt).Expr.(hir.Call)
	_, isBuiltin := print.Callee.(hir.BuiltinRef)
	require.True(t, isBuiltin)
}

func TestDuplicateLocalInSameBlockIsNameError(t *testing.T) {
	_, errs := analyze(t, `fn main() { let x = 1; let x = 2; }`)
	require.NotEmpty(t, errs)
}

func TestShadowingInNestedBlockIsAllowed(t *testing.T) {
	_, errs := analyze(t, `fn main() { let x = 1; if (true) { let x = 2; } }`)
	require.Empty(t, errs)
}

func TestUndefinedNameIsNameError(t *testing.T) {
	_, errs := analyze(t, `fn main() { print(nope); }`)
	require.NotEmpty(t, errs)
}

func TestBreakOutsideWhileIsError(t *testing.T) {
	_, errs := analyze(t, `fn main() { break; }`)
	require.NotEmpty(t, errs)
}

func TestConstantFoldingArithmetic(t *testing.T) {
	prog, errs := analyze(t, `fn main() { print(1 + 2 * 3); }`)
	require.Empty(t, errs)
	mainFn := prog.Functions[prog.EntryGlobal]
	call := mainFn.Body.Stmts[0].(hir.ExprStmt).Expr.(hir.Call)
	lit := call.Args[0].(hir.Literal)
	i, _ := lit.Value.AsInt()
	require.Equal(t, int64(7), i)
}

func TestListLiteralNeverFolded(t *testing.T) {
	prog, errs := analyze(t, `fn main() { let xs = [1, 2]; }`)
	require.Empty(t, errs)
	mainFn := prog.Functions[prog.EntryGlobal]
	let := mainFn.Body.Stmts[0].(hir.LetStmt)
	_, isListLit := let.Init.(hir.ListLit)
	require.True(t, isListLit)
}

func TestDivisionByZeroIsNotFolded(t *testing.T) {
	prog, errs := analyze(t, `fn main() { print(1 / 0); }`)
	require.Empty(t, errs)
	mainFn := prog.Functions[prog.EntryGlobal]
	call := mainFn.Body.Stmts[0].(hir.ExprStmt).Expr.(hir.Call)
	_, stillBinary := call.Args[0].(hir.Binary)
	require.True(t, stillBinary)
}
