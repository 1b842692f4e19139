package parser

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/tethal/rnatrix/internal/ast"
)

// Dump renders a program's syntax tree for human inspection. This is
// purely a debugging aid used by cmd/natrixtool; it is not part of the
// language's observable behavior (spec.md §6 treats dumps as
// informational).
func Dump(program *ast.Program) string {
	return spew.Sdump(program)
}
