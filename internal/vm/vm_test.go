package vm

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/analyzer"
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/compiler"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
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

func buildChunk(t *testing.T, src string) (*bytecode.Chunk, int) {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	var srcs source.Sources
	id := srcs.Add("test.nx", []byte(src))
	program, perrs := parser.New(toks, id).Parse()
	require.Empty(t, perrs)
	hirProg, aerrs := analyzer.Analyze(program)
	require.Empty(t, aerrs)
	chunk, cerr := compiler.Compile(hirProg, &srcs)
	require.Nil(t, cerr)
	return chunk, int(hirProg.EntryGlobal)
}

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	chunk, entry := buildChunk(t, src)
	var runErr error
	out := captureStdout(t, func() {
		_, err := New(chunk).Run(entry)
		if err != nil {
			runErr = err
		}
	})
	return out, runErr
}

func TestScenarioArithmeticPrecedence(t *testing.T) {
	out, err := runSource(t, `fn main() { print(2 + 3 * 4); }`)
	require.NoError(t, err)
	require.Equal(t, "14\n", out)
}

func TestScenarioStringBuildingLoop(t *testing.T) {
	out, err := runSource(t, `fn main() { let s = ""; let i = 0; while (i < 5) { s = s + str(i); i = i + 1; } print(s); }`)
	require.NoError(t, err)
	require.Equal(t, "01234\n", out)
}

func TestScenarioFibonacciRecursion(t *testing.T) {
	out, err := runSource(t, `fn fib(n) { if (n < 2) { return n; } return fib(n-1) + fib(n-2); } fn main() { print(fib(10)); }`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestScenarioListMutationAndLen(t *testing.T) {
	out, err := runSource(t, `fn main() { let xs = [1, 2, 3]; xs[1] = 20; print(xs[0] + xs[1] + xs[2]); print(len(xs)); }`)
	require.NoError(t, err)
	require.Equal(t, "24\n3\n", out)
}

func TestScenarioStringConcatAndRepeat(t *testing.T) {
	out, err := runSource(t, `fn main() { print("hi" + " " + "world"); print("ab" * 3); }`)
	require.NoError(t, err)
	require.Equal(t, "hi world\nababab\n", out)
}

func TestScenarioDivisionByZeroRaisesDiagnostic(t *testing.T) {
	_, err := runSource(t, `fn main() { print(1 / 0); }`)
	require.Error(t, err)
}

func TestScenarioSieveOfEratosthenes(t *testing.T) {
	out, err := runSource(t, `
		fn main() {
			let n = 50;
			let isComposite = [0] * (n + 1);
			let p = 2;
			while (p * p <= n) {
				if (isComposite[p] == 0) {
					let m = p * p;
					while (m <= n) {
						isComposite[m] = 1;
						m = m + p;
					}
				}
				p = p + 1;
			}
			let i = 2;
			let out = "";
			while (i <= n) {
				if (isComposite[i] == 0) {
					if (out != "") { out = out + " "; }
					out = out + str(i);
				}
				i = i + 1;
			}
			print(out);
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "2 3 5 7 11 13 17 19 23 29 31 37 41 43 47\n", out)
}

func TestFrameDisciplineAfterCallReturn(t *testing.T) {
	chunk, entry := buildChunk(t, `fn add(a, b) { return a + b; } fn main() { return add(1, 2); }`)
	m := New(chunk)
	_ = captureStdout(t, func() {
		v, err := m.Run(entry)
		require.Nil(t, err)
		i, _ := v.AsInt()
		require.Equal(t, int64(3), i)
	})
	// Each call/ret replaced its callee and argument slots with a single
	// result, so only main's result is left and no frame is outstanding.
	require.Len(t, m.values, 1)
	require.Empty(t, m.frames)
}
