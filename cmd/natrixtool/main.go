// Command natrixtool dumps Natrix's intermediate representations for
// debugging: the parsed syntax tree, or the compiled bytecode with its
// disassembly. It keeps the teacher CLI's google/subcommands structure
// (see informatter-nilan's cmd_run.go / cmd_emit_bytecode.go) since
// these are informational subcommands, unlike cmd/natrix's single
// literal invocation contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tethal/rnatrix/internal/analyzer"
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/compiler"
	"github.com/tethal/rnatrix/internal/lexer"
	"github.com/tethal/rnatrix/internal/parser"
	"github.com/tethal/rnatrix/internal/source"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&astCmd{}, "")
	subcommands.Register(&bcCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// astCmd dumps the parsed syntax tree.
type astCmd struct{}

func (*astCmd) Name() string     { return "ast" }
func (*astCmd) Synopsis() string { return "Dump the parsed syntax tree for a source file" }
func (*astCmd) Usage() string {
	return `ast <file.nx>:
  Parse the file and dump its syntax tree.
`
}
func (*astCmd) SetFlags(f *flag.FlagSet) {}

func (*astCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}
	var srcs source.Sources
	id := srcs.Add(args[0], data)
	toks, lexErr := lexer.New(string(data)).Scan()
	if lexErr != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", lexErr)
		return subcommands.ExitFailure
	}
	program, perrs := parser.New(toks, id).Parse()
	if len(perrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Parsing error:\n")
		for _, e := range perrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", e)
		}
		return subcommands.ExitFailure
	}
	fmt.Println(parser.Dump(program))
	return subcommands.ExitSuccess
}

// bcCmd compiles a source file and dumps its disassembled bytecode.
type bcCmd struct{}

func (*bcCmd) Name() string     { return "bc" }
func (*bcCmd) Synopsis() string { return "Compile a source file and dump its disassembled bytecode" }
func (*bcCmd) Usage() string {
	return `bc <file.nx>:
  Compile the file and dump its bytecode disassembly.
`
}
func (*bcCmd) SetFlags(f *flag.FlagSet) {}

func (*bcCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}
	var srcs source.Sources
	id := srcs.Add(args[0], data)
	toks, lexErr := lexer.New(string(data)).Scan()
	if lexErr != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", lexErr)
		return subcommands.ExitFailure
	}
	program, perrs := parser.New(toks, id).Parse()
	if len(perrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Parsing error:\n")
		for _, e := range perrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", e)
		}
		return subcommands.ExitFailure
	}
	hirProg, aerrs := analyzer.Analyze(program)
	if len(aerrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 Analysis error:\n")
		for _, e := range aerrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", e)
		}
		return subcommands.ExitFailure
	}
	chunk, cerr := compiler.Compile(hirProg, &srcs)
	if cerr != nil {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", cerr)
		return subcommands.ExitFailure
	}
	fmt.Println(bytecode.Disassemble(chunk, args[0]))
	return subcommands.ExitSuccess
}
