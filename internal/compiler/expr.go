package compiler

import (
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/hir"
)

var binaryOps = map[string]bytecode.Op{
	"+":  bytecode.OpAdd,
	"-":  bytecode.OpSub,
	"*":  bytecode.OpMul,
	"/":  bytecode.OpDiv,
	"%":  bytecode.OpMod,
	"==": bytecode.OpEq,
	"!=": bytecode.OpNe,
	"<":  bytecode.OpLt,
	"<=": bytecode.OpLe,
	">":  bytecode.OpGt,
	">=": bytecode.OpGe,
}

func (fc *fnCompiler) compileExpr(e hir.Expr) *diag.Error {
	switch n := e.(type) {
	case hir.Literal:
		return fc.compileLiteral(n)

	case hir.LocalRef:
		if n.Slot == 1 {
			fc.emitOp(bytecode.OpLoad1)
			return nil
		}
		fc.emitOp(bytecode.OpLoadLocal)
		fc.emitUnsigned(uint64(n.Slot))
		return nil

	case hir.GlobalRef:
		fc.emitOp(bytecode.OpLoadGlobal)
		fc.emitUnsigned(uint64(n.ID))
		return nil

	case hir.BuiltinRef:
		fc.emitOp(bytecode.OpLoadBuiltin)
		fc.emitUnsigned(uint64(n.Index))
		return nil

	case hir.ListLit:
		for _, el := range n.Elements {
			if err := fc.compileExpr(el); err != nil {
				return err
			}
		}
		fc.emitOp(bytecode.OpMakeList)
		fc.emitUnsigned(uint64(len(n.Elements)))
		return nil

	case hir.Binary:
		if err := fc.compileExpr(n.Left); err != nil {
			return err
		}
		if err := fc.compileExpr(n.Right); err != nil {
			return err
		}
		op, ok := binaryOps[n.Op]
		if !ok {
			return diag.At(diag.InternalError, n.Span(), "compiler: unknown binary operator %q", n.Op)
		}
		fc.emitOp(op)
		return nil

	case hir.Unary:
		if err := fc.compileExpr(n.Operand); err != nil {
			return err
		}
		switch n.Op {
		case "-":
			fc.emitOp(bytecode.OpNeg)
		case "!":
			fc.emitOp(bytecode.OpNot)
		default:
			return diag.At(diag.InternalError, n.Span(), "compiler: unknown unary operator %q", n.Op)
		}
		return nil

	case hir.Call:
		if err := fc.compileExpr(n.Callee); err != nil {
			return err
		}
		for _, arg := range n.Args {
			if err := fc.compileExpr(arg); err != nil {
				return err
			}
		}
		fc.emitOp(bytecode.OpCall)
		fc.emitUnsigned(uint64(len(n.Args)))
		return nil

	case hir.Index:
		if err := fc.compileExpr(n.Coll); err != nil {
			return err
		}
		if err := fc.compileExpr(n.Idx); err != nil {
			return err
		}
		fc.emitOp(bytecode.OpGetItem)
		return nil

	default:
		return diag.At(diag.InternalError, e.Span(), "compiler: unhandled expression %T", e)
	}
}

func (fc *fnCompiler) compileLiteral(lit hir.Literal) *diag.Error {
	v := lit.Value
	switch {
	case v.IsNull():
		fc.emitOp(bytecode.OpPushNull)
	case v.IsBool():
		b, _ := v.AsBool()
		if b {
			fc.emitOp(bytecode.OpPushTrue)
		} else {
			fc.emitOp(bytecode.OpPushFalse)
		}
	case v.IsInt():
		i, _ := v.AsInt()
		switch i {
		case 0:
			fc.emitOp(bytecode.OpPush0)
		case 1:
			fc.emitOp(bytecode.OpPush1)
		default:
			fc.emitOp(bytecode.OpPushInt)
			fc.emitSignedInt(i)
		}
	case v.IsFloat(), v.IsString():
		fc.emitOp(bytecode.OpPushConst)
		fc.emitUnsigned(fc.chunk.AddConstant(v))
	default:
		return diag.At(diag.InternalError, lit.Span(), "compiler: non-literal constant %s reached push", v.TypeName())
	}
	return nil
}
