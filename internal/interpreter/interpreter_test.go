package interpreter

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/analyzer"
	"github.com/tethal/rnatrix/internal/compiler"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/vm"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()
	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func buildHIR(t *testing.T, src string) *hir.Program {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", []byte(src))
	program, perrs := parser.New(toks, id).Parse()
	require.Empty(t, perrs)
	hirProg, aerrs := analyzer.Analyze(program)
	require.Empty(t, aerrs)
	return hirProg
}

func TestInterpreterMatchesFibonacci(t *testing.T) {
	prog := buildHIR(t, `fn fib(n) { if (n < 2) { return n; } return fib(n-1) + fib(n-2); } fn main() { print(fib(10)); }`)
	out := captureStdout(t, func() {
		_, err := New(prog).Run()
		require.Nil(t, err)
	})
	require.Equal(t, "55\n", out)
}

func TestInterpreterBreakContinue(t *testing.T) {
	prog := buildHIR(t, `
		fn main() {
			let i = 0;
			let s = "";
			while (i < 10) {
				i = i + 1;
				if (i == 3) { continue; }
				if (i == 6) { break; }
				s = s + str(i);
			}
			print(s);
		}
	`)
	out := captureStdout(t, func() {
		_, err := New(prog).Run()
		require.Nil(t, err)
	})
	require.Equal(t, "1245\n", out)
}

func TestInterpreterGlobalLookupByName(t *testing.T) {
	prog := buildHIR(t, `fn main() { print("ok"); } fn helper() { return 1; }`)
	it := New(prog)
	_, err := it.Run()
	require.Nil(t, err)

	fn, ok := it.Global("helper")
	require.True(t, ok)
	obj, aerr := fn.AsFunction()
	require.Nil(t, aerr)
	require.Equal(t, "helper", obj.Name)

	_, ok = it.Global("no_such_global")
	require.False(t, ok)
}

// TestASTVMAgreement is spec.md §8's "AST/VM agreement" property: the
// tree interpreter and the bytecode VM must produce identical stdout
// for the same program.
func TestASTVMAgreement(t *testing.T) {
	sources := []string{
		`fn main() { print(2 + 3 * 4); }`,
		`fn main() { let s = ""; let i = 0; while (i < 5) { s = s + str(i); i = i + 1; } print(s); }`,
		`fn fib(n) { if (n < 2) { return n; } return fib(n-1) + fib(n-2); } fn main() { print(fib(10)); }`,
		`fn main() { let xs = [1, 2, 3]; xs[1] = 20; print(xs[0] + xs[1] + xs[2]); print(len(xs)); }`,
		`fn main() { print("hi" + " " + "world"); print("ab" * 3); }`,
	}
	for _, src := range sources {
		toks, err := lexer.New(src).Scan()
		require.NoError(t, err)
		var srcs source.Sources
		id := srcs.Add("test.nx", []byte(src))
		program, perrs := parser.New(toks, id).Parse()
		require.Empty(t, perrs)
		hirProg, aerrs := analyzer.Analyze(program)
		require.Empty(t, aerrs)

		interpOut := captureStdout(t, func() {
			_, ierr := New(hirProg).Run()
			require.Nil(t, ierr)
		})

		hirProg2, aerrs2 := analyzer.Analyze(program)
		require.Empty(t, aerrs2)
		chunk, cerr := compiler.Compile(hirProg2, &srcs)
		require.Nil(t, cerr)
		vmOut := captureStdout(t, func() {
			_, verr := vm.New(chunk).Run(int(hirProg2.EntryGlobal))
			require.Nil(t, verr)
		})

		require.Equal(t, interpOut, vmOut, "mismatch for source: %s", src)
	}
}
