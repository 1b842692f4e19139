package compiler

import (
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/hir"
)

func (fc *fnCompiler) compileBlock(b hir.Block) *diag.Error {
	for _, s := range b.Stmts {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fc *fnCompiler) compileStmt(s hir.Stmt) *diag.Error {
	start := len(fc.chunk.Code)
	err := fc.compileStmtBody(s)
	fc.recordLine(s.Span(), len(fc.chunk.Code)-start)
	return err
}

func (fc *fnCompiler) compileStmtBody(s hir.Stmt) *diag.Error {
	switch n := s.(type) {
	case hir.LetStmt:
		if err := fc.compileExpr(n.Init); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpStoreLocal)
		fc.emitUnsigned(uint64(n.Slot))
		return nil

	case hir.ExprStmt:
		if err := fc.compileExpr(n.Expr); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpPop)
		return nil

	case hir.StoreLocal:
		if err := fc.compileExpr(n.Value); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpStoreLocal)
		fc.emitUnsigned(uint64(n.Slot))
		return nil

	case hir.StoreGlobal:
		if err := fc.compileExpr(n.Value); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpStoreGlobal)
		fc.emitUnsigned(uint64(n.ID))
		return nil

	case hir.IndexAssign:
		// Evaluation order per spec.md §4.5: list, then index, then value.
		if err := fc.compileExpr(n.Coll); err != nil {
			return err
		}
		if err := fc.compileExpr(n.Idx); err != nil {
			return err
		}
		if err := fc.compileExpr(n.Value); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpSetItem)
		return nil

	case hir.ReturnStmt:
		if n.Value == nil {
			fc.emitOp(bytecode.OpPushNull)
		} else if err := fc.compileExpr(n.Value); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpRet)
		return nil

	case hir.Block:
		return fc.compileBlock(n)

	case hir.IfStmt:
		return fc.compileIf(n)

	case hir.WhileStmt:
		return fc.compileWhile(n)

	case hir.BreakStmt:
		if len(fc.loops) == 0 {
			return diag.At(diag.InternalError, n.Span(), "break outside a loop reached the compiler")
		}
		loop := fc.loops[len(fc.loops)-1]
		pos := fc.emitJump(bytecode.OpJmp)
		loop.end = append(loop.end, pos)
		return nil

	case hir.ContinueStmt:
		if len(fc.loops) == 0 {
			return diag.At(diag.InternalError, n.Span(), "continue outside a loop reached the compiler")
		}
		loop := fc.loops[len(fc.loops)-1]
		fc.emitBackwardJump(bytecode.OpJmp, loop.top)
		return nil

	default:
		return diag.At(diag.InternalError, s.Span(), "compiler: unhandled statement %T", s)
	}
}

// compileIf implements spec.md §4.5's `if` lowering:
//
//	<cond>; jfalse L1; <A>; jmp L2; L1: <B>; L2:
//
// with the jmp/L2 omitted when there is no else branch.
func (fc *fnCompiler) compileIf(n hir.IfStmt) *diag.Error {
	if err := fc.compileExpr(n.Cond); err != nil {
		return err
	}
	jfalsePos := fc.emitJump(bytecode.OpJfalse)
	if err := fc.compileBlock(*n.Then); err != nil {
		return err
	}
	if n.Else == nil {
		fc.patchJump(jfalsePos, len(fc.chunk.Code))
		return nil
	}
	jmpEndPos := fc.emitJump(bytecode.OpJmp)
	fc.patchJump(jfalsePos, len(fc.chunk.Code))
	if err := fc.compileBlock(*n.Else); err != nil {
		return err
	}
	fc.patchJump(jmpEndPos, len(fc.chunk.Code))
	return nil
}

// compileWhile implements spec.md §4.5's `while` lowering:
//
//	L_top: <cond>; jfalse L_end; <body>; jmp L_top; L_end:
func (fc *fnCompiler) compileWhile(n hir.WhileStmt) *diag.Error {
	top := len(fc.chunk.Code)
	if err := fc.compileExpr(n.Cond); err != nil {
		return err
	}
	endJumpPos := fc.emitJump(bytecode.OpJfalse)

	loop := &loopLabels{top: top}
	fc.loops = append(fc.loops, loop)
	err := fc.compileBlock(n.Body)
	fc.loops = fc.loops[:len(fc.loops)-1]
	if err != nil {
		return err
	}

	fc.emitBackwardJump(bytecode.OpJmp, top)
	end := len(fc.chunk.Code)
	fc.patchJump(endJumpPos, end)
	for _, pos := range loop.end {
		fc.patchJump(pos, end)
	}
	return nil
}
