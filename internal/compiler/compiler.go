// Package compiler implements spec.md §4.5: a single-pass lowering
// from HIR to the flat bytecode model in internal/bytecode. Integers
// are always emitted via push_int; floats and strings go through the
// deduplicated constant pool. Jumps are emitted in the fixed 5-byte
// SLEB128 form so a forward reference can be patched in place without
// ever resizing an already-emitted instruction (spec.md §9, "avoid
// mixing strategies").
package compiler

import (
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/value"
)

// Compiler holds the single Chunk being built across every function.
// srcs is optional; when present, statement spans are resolved into
// the Chunk's line table for diagnostics and disassembly only.
type Compiler struct {
	chunk *bytecode.Chunk
	srcs  *source.Sources
}

// Compile lowers an analyzed Program to a Chunk. The entry function
// (program.EntryGlobal) is compiled first so it lands at offset 0
// (spec.md §3, "entry function is conventionally offset 0").
func Compile(program *hir.Program, srcs *source.Sources) (*bytecode.Chunk, *diag.Error) {
	c := &Compiler{chunk: &bytecode.Chunk{}, srcs: srcs}
	c.chunk.Globals = make([]value.Value, len(program.Globals))

	order := make([]int, 0, len(program.Globals))
	order = append(order, int(program.EntryGlobal))
	for i := range program.Globals {
		if i != int(program.EntryGlobal) {
			order = append(order, i)
		}
	}

	for _, gi := range order {
		g := program.Globals[gi]
		if g.FnIndex < 0 {
			c.chunk.Globals[gi] = g.Init
			continue
		}
		fn := program.Functions[g.FnIndex]
		offset := len(c.chunk.Code)
		if err := c.compileFunction(fn); err != nil {
			return nil, err
		}
		c.chunk.Globals[gi] = value.FromFunction(&value.FunctionObject{
			Name:       fn.Name,
			Arity:      fn.Arity,
			NumLocals:  fn.NumLocals,
			CodeOffset: offset,
		})
	}

	return c.chunk, nil
}

// loopLabels tracks the two jump targets `break`/`continue` patch to
// for the innermost enclosing while loop.
type loopLabels struct {
	top int   // backward target for `continue`
	end []int // forward patch sites for `break`, resolved once the loop's end is known
}

// fnCompiler is per-function compilation state: mainly the stack of
// enclosing loops, needed to resolve break/continue.
type fnCompiler struct {
	*Compiler
	loops []*loopLabels
}

func (c *Compiler) compileFunction(fn *hir.Function) *diag.Error {
	fc := &fnCompiler{Compiler: c}
	if err := fc.compileBlock(fn.Body); err != nil {
		return err
	}
	// spec.md §4.5: if control may fall off the end, implicitly append
	// push_null; ret.
	fc.emitOp(bytecode.OpPushNull)
	fc.emitOp(bytecode.OpRet)
	return nil
}

func (c *Compiler) emitOp(op bytecode.Op) int {
	pos := len(c.chunk.Code)
	c.chunk.Code = append(c.chunk.Code, byte(op))
	return pos
}

func (c *Compiler) emitUnsigned(n uint64) {
	c.chunk.Code = bytecode.PutUvarint(c.chunk.Code, n)
}

func (c *Compiler) emitSignedInt(n int64) {
	c.chunk.Code = bytecode.PutVarint(c.chunk.Code, n)
}

// emitJump writes op followed by a fixed 5-byte placeholder and
// returns the offset of that placeholder, to be resolved later by
// patchJump.
func (c *Compiler) emitJump(op bytecode.Op) int {
	c.emitOp(op)
	pos := len(c.chunk.Code)
	c.chunk.Code = bytecode.PutVarintFixed5(c.chunk.Code, 0)
	return pos
}

// patchJump overwrites the placeholder at pos so the jump lands at
// target, relative to the byte immediately after the encoded offset
// (spec.md §4.4).
func (c *Compiler) patchJump(pos, target int) {
	rel := int64(target - (pos + jumpWidthBytes))
	encoded := bytecode.PutVarintFixed5(nil, rel)
	copy(c.chunk.Code[pos:pos+jumpWidthBytes], encoded)
}

// emitBackwardJump emits a jump whose target is already known (e.g.
// `while`'s closing jmp back to its condition), so no patch step is
// needed.
func (c *Compiler) emitBackwardJump(op bytecode.Op, target int) {
	c.emitOp(op)
	pos := len(c.chunk.Code)
	c.chunk.Code = bytecode.PutVarintFixed5(c.chunk.Code, 0)
	c.patchJump(pos, target)
}

const jumpWidthBytes = 5

func (c *Compiler) recordLine(span source.Span, count int) {
	if c.srcs == nil || count <= 0 {
		return
	}
	loc := c.srcs.Locate(span)
	c.chunk.AddLine(loc.Line, count)
}
