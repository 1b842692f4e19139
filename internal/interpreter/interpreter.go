// Package interpreter implements spec.md §4.7: a tree-walking
// reference interpreter over HIR. Its job is to define semantics, not
// to be fast — it shares internal/value, internal/builtin, and the
// same slot-addressing scheme as internal/vm so the two engines are
// observably identical (spec.md §8, "AST/VM agreement"), even though
// this one never materializes bytecode.
package interpreter

import (
	"github.com/tethal/rnatrix/internal/builtin"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/interner"
	"github.com/tethal/rnatrix/internal/logging"
	"github.com/tethal/rnatrix/internal/value"
	"go.uber.org/zap"
)

// Interpreter holds the globals table and a pointer-identity lookup
// from a global Function value back to the HIR body it was built
// from (the interpreter has no bytecode offsets to follow).
//
// in and byName are the analyzer's own name table and name->global
// map, carried over from hir.Program (spec.md §4.2: the interner "is
// owned by the analyzer context and shared with the tree
// interpreter's environment"). The VM has no equivalent field, since
// compiled bytecode addresses globals purely by slot and never needs
// to go back from a name to one; the interpreter keeps both so
// Interpreter.Global can look up a global by name in O(1) instead of
// scanning hir.Program.Globals.
type Interpreter struct {
	globals []value.Value
	bodies  map[*value.FunctionObject]*hir.Function
	entry   hir.GlobalID
	in      *interner.Interner
	byName  map[interner.Name]hir.GlobalID
	log     *zap.Logger
}

// New builds an Interpreter for program. Each function-valued global
// gets its own FunctionObject, distinct from any the compiler builds
// for the same program — the two engines only need to agree on
// observable behavior, not on object identity.
func New(program *hir.Program) *Interpreter {
	it := &Interpreter{
		globals: make([]value.Value, len(program.Globals)),
		bodies:  make(map[*value.FunctionObject]*hir.Function),
		entry:   program.EntryGlobal,
		in:      program.Interner,
		byName:  program.GlobalIndex,
		log:     logging.Logger(),
	}
	for i, g := range program.Globals {
		if g.FnIndex < 0 {
			it.globals[i] = g.Init
			continue
		}
		fn := program.Functions[g.FnIndex]
		obj := &value.FunctionObject{Name: fn.Name, Arity: fn.Arity, NumLocals: fn.NumLocals}
		it.bodies[obj] = fn
		it.globals[i] = value.FromFunction(obj)
	}
	return it
}

// Run evaluates the program's entry function with no arguments.
func (it *Interpreter) Run() (value.Value, *diag.Error) {
	entryFn, err := it.globals[it.entry].AsFunction()
	if err != nil {
		return value.Null(), err
	}
	return it.callFunction(entryFn, nil)
}

// Global looks up a top-level global by its source name, interning
// name through the same table the analyzer used to resolve it
// originally rather than comparing strings against every hir.Global.
// Intended for embedders and tests that need to read back a value
// (e.g. a top-level function or `__args__`) after Run without re-parsing the
// program to find its slot.
func (it *Interpreter) Global(name string) (value.Value, bool) {
	n, ok := it.in.Lookup(name)
	if !ok {
		return value.Null(), false
	}
	gid, ok := it.byName[n]
	if !ok {
		return value.Null(), false
	}
	return it.globals[gid], true
}

// frame is one function activation: a slot-indexed local array
// mirroring the VM's value-stack window (slot 0 reserved for the
// callee itself, spec.md §3).
type frame struct {
	locals []value.Value
}

func (it *Interpreter) callFunction(fn *value.FunctionObject, args []value.Value) (value.Value, *diag.Error) {
	body, ok := it.bodies[fn]
	if !ok {
		return value.Null(), diag.AtOffset(diag.InternalError, -1, "interpreter: no body recorded for function %q", fn.Name)
	}
	if len(args) != fn.Arity {
		return value.Null(), diag.AtOffset(diag.ArityError, -1, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
	}
	fr := &frame{locals: make([]value.Value, 1+fn.Arity+fn.NumLocals)}
	for i, a := range args {
		fr.locals[1+i] = a
	}
	for i := 1 + fn.Arity; i < len(fr.locals); i++ {
		fr.locals[i] = value.Null()
	}

	it.log.Debug("call", zap.String("fn", fn.Name))
	sig, result, err := it.execBlock(fr, body.Body)
	it.log.Debug("ret", zap.String("fn", fn.Name))
	if err != nil {
		return value.Null(), err
	}
	if sig == sigReturn {
		return result, nil
	}
	return value.Null(), nil // fell off the end: implicit null (spec.md §4.5)
}

// signal is the interpreter's analogue of the compiler's jump
// targets: it threads break/continue/return up through nested blocks
// without using Go panics for ordinary control flow.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

func (it *Interpreter) execBlock(fr *frame, b hir.Block) (signal, value.Value, *diag.Error) {
	for _, s := range b.Stmts {
		sig, v, err := it.execStmt(fr, s)
		if err != nil {
			return sigNone, value.Null(), err
		}
		if sig != sigNone {
			return sig, v, nil
		}
	}
	return sigNone, value.Null(), nil
}

func (it *Interpreter) execStmt(fr *frame, s hir.Stmt) (signal, value.Value, *diag.Error) {
	switch n := s.(type) {
	case hir.LetStmt:
		v, err := it.evalExpr(fr, n.Init)
		if err != nil {
			return sigNone, value.Null(), err
		}
		fr.locals[n.Slot] = v
		return sigNone, value.Null(), nil

	case hir.ExprStmt:
		_, err := it.evalExpr(fr, n.Expr)
		return sigNone, value.Null(), err

	case hir.StoreLocal:
		v, err := it.evalExpr(fr, n.Value)
		if err != nil {
			return sigNone, value.Null(), err
		}
		fr.locals[n.Slot] = v
		return sigNone, value.Null(), nil

	case hir.StoreGlobal:
		v, err := it.evalExpr(fr, n.Value)
		if err != nil {
			return sigNone, value.Null(), err
		}
		it.globals[n.ID] = v
		return sigNone, value.Null(), nil

	case hir.IndexAssign:
		collV, err := it.evalExpr(fr, n.Coll)
		if err != nil {
			return sigNone, value.Null(), err
		}
		idxV, err := it.evalExpr(fr, n.Idx)
		if err != nil {
			return sigNone, value.Null(), err
		}
		val, err := it.evalExpr(fr, n.Value)
		if err != nil {
			return sigNone, value.Null(), err
		}
		if err := setItem(collV, idxV, val); err != nil {
			return sigNone, value.Null(), err
		}
		return sigNone, value.Null(), nil

	case hir.ReturnStmt:
		if n.Value == nil {
			return sigReturn, value.Null(), nil
		}
		v, err := it.evalExpr(fr, n.Value)
		if err != nil {
			return sigNone, value.Null(), err
		}
		return sigReturn, v, nil

	case hir.Block:
		return it.execBlock(fr, n)

	case hir.IfStmt:
		cond, err := it.evalExpr(fr, n.Cond)
		if err != nil {
			return sigNone, value.Null(), err
		}
		b, berr := cond.AsBool()
		if berr != nil {
			return sigNone, value.Null(), berr
		}
		if b {
			return it.execBlock(fr, *n.Then)
		}
		if n.Else != nil {
			return it.execBlock(fr, *n.Else)
		}
		return sigNone, value.Null(), nil

	case hir.WhileStmt:
		for {
			cond, err := it.evalExpr(fr, n.Cond)
			if err != nil {
				return sigNone, value.Null(), err
			}
			b, berr := cond.AsBool()
			if berr != nil {
				return sigNone, value.Null(), berr
			}
			if !b {
				return sigNone, value.Null(), nil
			}
			sig, v, err := it.execBlock(fr, n.Body)
			if err != nil {
				return sigNone, value.Null(), err
			}
			switch sig {
			case sigBreak:
				return sigNone, value.Null(), nil
			case sigReturn:
				return sigReturn, v, nil
			}
		}

	case hir.BreakStmt:
		return sigBreak, value.Null(), nil

	case hir.ContinueStmt:
		return sigContinue, value.Null(), nil

	default:
		return sigNone, value.Null(), diag.AtOffset(diag.InternalError, -1, "interpreter: unhandled statement %T", s)
	}
}

func (it *Interpreter) evalExpr(fr *frame, e hir.Expr) (value.Value, *diag.Error) {
	switch n := e.(type) {
	case hir.Literal:
		return n.Value, nil

	case hir.LocalRef:
		return fr.locals[n.Slot], nil

	case hir.GlobalRef:
		return it.globals[n.ID], nil

	case hir.BuiltinRef:
		return value.Builtin(int(n.Index)), nil

	case hir.ListLit:
		items := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := it.evalExpr(fr, el)
			if err != nil {
				return value.Null(), err
			}
			items[i] = v
		}
		return value.NewList(items), nil

	case hir.Binary:
		l, err := it.evalExpr(fr, n.Left)
		if err != nil {
			return value.Null(), err
		}
		r, err := it.evalExpr(fr, n.Right)
		if err != nil {
			return value.Null(), err
		}
		return applyBinary(n.Op, l, r)

	case hir.Unary:
		v, err := it.evalExpr(fr, n.Operand)
		if err != nil {
			return value.Null(), err
		}
		if n.Op == "-" {
			return value.Neg(v)
		}
		return value.Not(v)

	case hir.Call:
		callee, err := it.evalExpr(fr, n.Callee)
		if err != nil {
			return value.Null(), err
		}
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := it.evalExpr(fr, a)
			if err != nil {
				return value.Null(), err
			}
			args[i] = v
		}
		return it.invoke(callee, args)

	case hir.Index:
		coll, err := it.evalExpr(fr, n.Coll)
		if err != nil {
			return value.Null(), err
		}
		idx, err := it.evalExpr(fr, n.Idx)
		if err != nil {
			return value.Null(), err
		}
		return getItem(coll, idx)

	default:
		return value.Null(), diag.AtOffset(diag.InternalError, -1, "interpreter: unhandled expression %T", e)
	}
}

func (it *Interpreter) invoke(callee value.Value, args []value.Value) (value.Value, *diag.Error) {
	if bIdx, err := callee.AsBuiltin(); err == nil {
		return builtin.Registry[bIdx].Apply(args)
	}
	fn, err := callee.AsFunction()
	if err != nil {
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "value of type %s is not callable", callee.TypeName())
	}
	return it.callFunction(fn, args)
}

func applyBinary(op string, l, r value.Value) (value.Value, *diag.Error) {
	switch op {
	case "+":
		return value.Add(l, r)
	case "-":
		return value.Sub(l, r)
	case "*":
		return value.Mul(l, r)
	case "/":
		return value.Div(l, r)
	case "%":
		return value.Mod(l, r)
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	default:
		ok, err := value.Compare(op, l, r)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(ok), nil
	}
}

func getItem(coll, idx value.Value) (value.Value, *diag.Error) {
	i, err := idx.AsInt()
	if err != nil {
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "index must be an int, got %s", idx.TypeName())
	}
	switch {
	case coll.IsList():
		l, _ := coll.AsList()
		if i < 0 || i >= int64(len(l.Items)) {
			return value.Null(), diag.AtOffset(diag.IndexError, -1, "list index %d out of range (len %d)", i, len(l.Items))
		}
		return l.Items[i], nil
	case coll.IsString():
		s, _ := coll.AsString()
		if i < 0 || i >= int64(len(s)) {
			return value.Null(), diag.AtOffset(diag.IndexError, -1, "string index %d out of range (len %d)", i, len(s))
		}
		return value.Str(string(s[i])), nil
	default:
		return value.Null(), diag.AtOffset(diag.TypeError, -1, "cannot index a %s", coll.TypeName())
	}
}

func setItem(coll, idx, val value.Value) *diag.Error {
	if coll.IsString() {
		return diag.AtOffset(diag.TypeError, -1, "set_item does not support string targets")
	}
	if !coll.IsList() {
		return diag.AtOffset(diag.TypeError, -1, "cannot assign into a %s", coll.TypeName())
	}
	i, err := idx.AsInt()
	if err != nil {
		return diag.AtOffset(diag.TypeError, -1, "index must be an int, got %s", idx.TypeName())
	}
	l, _ := coll.AsList()
	if i < 0 || i >= int64(len(l.Items)) {
		return diag.AtOffset(diag.IndexError, -1, "list index %d out of range (len %d)", i, len(l.Items))
	}
	l.Items[i] = val
	return nil
}
