// Command natrix runs Natrix scripts, per spec.md §6's CLI contract:
//
//	natrix [--ast | --bc] <script.nx> [<harness.nx> ...] [-- <script-args>...]
//
// The default execution path is the bytecode VM; --ast selects the
// tree-walking reference interpreter instead. Additional script paths
// before `--` are concatenated into a single program, for harness and
// benchmark files. Flags are parsed with the standard library's flag
// package directly (not google/subcommands, which cmd/natrixtool uses
// for its informational dump subcommands) so the CLI's surface
// matches the spec's literal contract exactly, with no subcommand
// word.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tethal/rnatrix/internal/analyzer"
	"github.com/tethal/rnatrix/internal/compiler"
	"github.com/tethal/rnatrix/internal/config"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/diagcolor"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/interpreter"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/logging"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/value"
	"github.com/tethal/rnatrix/internal/vm"
)

// Exit codes are a CLI-only refinement of spec.md §6's "a single
// non-zero code for all errors is acceptable" (SPEC_FULL.md §3).
const (
	exitOK        = 0
	exitRuntime   = 1
	exitAnalysis  = 2
	exitIOFailure = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("natrix", flag.ContinueOnError)
	useAST := fs.Bool("ast", false, "run with the tree-walking reference interpreter instead of the VM")
	useBC := fs.Bool("bc", false, "run with the bytecode VM (default)")
	verbose := fs.Bool("v", false, "log call/return frame activity (debug level)")
	veryVerbose := fs.Bool("vv", false, "like -v, plus stack traces on warnings and above")
	if err := fs.Parse(args); err != nil {
		return exitAnalysis
	}

	logging.SetLogger(buildLogger(*verbose, *veryVerbose))

	cfg, _ := config.Load(".natrixrc.yaml")
	color := diagcolor.Enabled(os.Stderr)
	if cfg.Color != nil {
		color = *cfg.Color
	}

	rest := fs.Args()
	scriptPaths, scriptArgs := splitScriptArgs(rest)
	if len(scriptPaths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: natrix [--ast | --bc] <script.nx> [<harness.nx> ...] [-- <script-args>...]")
		return exitAnalysis
	}

	engine := cfg.Engine
	if *useAST {
		engine = "ast"
	} else if *useBC {
		engine = "bc"
	}

	var combined strings.Builder
	var srcs source.Sources
	for i, path := range scriptPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, diagcolor.Error("natrix: cannot read %s: %v\n", color), path, err)
			return exitIOFailure
		}
		if i > 0 {
			combined.WriteByte('\n')
		}
		combined.Write(data)
	}
	fileName := scriptPaths[len(scriptPaths)-1]
	lastID := srcs.Add(fileName, []byte(combined.String()))

	toks, lexErr := lexer.New(combined.String()).Scan()
	if lexErr != nil {
		fmt.Fprintln(os.Stderr, diagcolor.Error("natrix: "+lexErr.Error(), color))
		return exitAnalysis
	}

	program, perrs := parser.New(toks, lastID).Parse()
	if len(perrs) > 0 {
		reportAll(perrs, color)
		return exitAnalysis
	}

	argsGlobal := hir.Global{
		Name:    "__args__",
		FnIndex: -1,
		Init:    value.NewList(stringsToValues(scriptArgs)),
	}
	hirProg, aerrs := analyzer.AnalyzeWithGlobals(program, []hir.Global{argsGlobal})
	if len(aerrs) > 0 {
		reportDiags(aerrs, &srcs, color)
		return exitAnalysis
	}

	if engine == "ast" {
		result, err := interpreter.New(hirProg).Run()
		if err != nil {
			reportDiag(err, &srcs, color)
			return exitRuntime
		}
		_ = result
		return exitOK
	}

	chunk, cerr := compiler.Compile(hirProg, &srcs)
	if cerr != nil {
		reportDiag(cerr, &srcs, color)
		return exitAnalysis
	}
	result, verr := vm.New(chunk).Run(int(hirProg.EntryGlobal))
	if verr != nil {
		reportDiag(verr, &srcs, color)
		return exitRuntime
	}
	_ = result
	return exitOK
}

// buildLogger upgrades the VM's and interpreter's default no-op logger
// (internal/logging) to a real one when -v/-vv is passed, so the
// call/return frame-discipline trace documented in SPEC_FULL.md §2
// becomes human-inspectable. Both the VM and the interpreter log that
// trace at debug level, so -v already switches it on; -vv additionally
// attaches stack traces to warnings and above, for diagnosing an
// InternalError's cause.
func buildLogger(verbose, veryVerbose bool) *zap.Logger {
	if !verbose && !veryVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	var opts []zap.Option
	if veryVerbose {
		opts = append(opts, zap.AddStacktrace(zap.WarnLevel))
	}
	l, err := cfg.Build(opts...)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// splitScriptArgs separates the leading script paths from the
// arguments following a `--` separator (spec.md §6).
func splitScriptArgs(rest []string) (paths, scriptArgs []string) {
	for i, a := range rest {
		if a == "--" {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, nil
}

func stringsToValues(ss []string) []value.Value {
	out := make([]value.Value, len(ss))
	for i, s := range ss {
		out[i] = value.Str(s)
	}
	return out
}

func reportAll(errs []error, color bool) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, diagcolor.Error("natrix: "+e.Error(), color))
	}
}

func reportDiags(errs []*diag.Error, srcs *source.Sources, color bool) {
	for _, e := range errs {
		reportDiag(e, srcs, color)
	}
}

func reportDiag(e *diag.Error, srcs *source.Sources, color bool) {
	msg := e.Error()
	if e.Span != nil {
		loc := srcs.Locate(*e.Span)
		msg = fmt.Sprintf("%s:%s: %s", srcs.Name(e.Span.File), loc, msg)
	}
	fmt.Fprintln(os.Stderr, diagcolor.Error("natrix: "+msg, color))
}
