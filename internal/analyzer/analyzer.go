// Package analyzer implements spec.md §4.3: lowering the parser's AST
// to HIR. It resolves every name to a Local/Global/Builtin reference,
// rejects unresolved or misplaced names, desugars away Paren nodes,
// and folds constant sub-expressions (including pure builtin calls)
// bottom-up.
package analyzer

import (
	"github.com/tethal/rnatrix/internal/ast"
	"github.com/tethal/rnatrix/internal/builtin"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/hir"
	"github.com/tethal/rnatrix/internal/interner"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/value"
)

// scope is one block's local declarations: name -> slot. A new scope
// is pushed per block so that shadowing an outer block's name creates
// a fresh slot (spec.md §4.3).
type scope struct {
	names map[interner.Name]int
}

// funcCtx tracks per-function analysis state while its body is being
// lowered: the local symbol table as a stack of block scopes, the
// next free slot, and the `while` nesting depth (for validating
// break/continue).
type funcCtx struct {
	scopes    []scope
	nextSlot  int
	loopDepth int
}

func (f *funcCtx) push() { f.scopes = append(f.scopes, scope{names: map[interner.Name]int{}}) }
func (f *funcCtx) pop()  { f.scopes = f.scopes[:len(f.scopes)-1] }

func (f *funcCtx) declare(n interner.Name) (slot int, redeclared bool) {
	top := &f.scopes[len(f.scopes)-1]
	if _, ok := top.names[n]; ok {
		return 0, true
	}
	slot = f.nextSlot
	f.nextSlot++
	top.names[n] = slot
	return slot, false
}

func (f *funcCtx) resolve(n interner.Name) (slot int, ok bool) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if slot, ok := f.scopes[i].names[n]; ok {
			return slot, true
		}
	}
	return 0, false
}

// Analyzer lowers a parsed Program to HIR, accumulating diagnostics
// rather than stopping at the first error so the caller can report
// everything found in one pass, mirroring the parser's own recovery
// behavior.
type Analyzer struct {
	in      *interner.Interner
	globals map[interner.Name]hir.GlobalID
	program hir.Program
	errs    []*diag.Error
	fn      *funcCtx
}

// New creates an Analyzer with its own Interner.
func New() *Analyzer {
	return &Analyzer{in: interner.New(), globals: map[interner.Name]hir.GlobalID{}}
}

// Analyze lowers program to HIR. It always returns a (possibly
// partial) Program; callers must check len(errs) == 0 before trusting
// the result.
func Analyze(program *ast.Program) (*hir.Program, []*diag.Error) {
	return New().analyzeProgram(program, nil)
}

// AnalyzeWithGlobals is Analyze plus extra preinitialized globals
// seeded before file-scope functions are resolved (SPEC_FULL.md's
// `__args__`, carrying the CLI's passthrough script arguments). A
// top-level `fn` with the same name as a seeded global is reported as
// a duplicate, the same as two functions sharing a name.
func AnalyzeWithGlobals(program *ast.Program, extra []hir.Global) (*hir.Program, []*diag.Error) {
	return New().analyzeProgram(program, extra)
}

func (a *Analyzer) analyzeProgram(program *ast.Program, extraGlobals []hir.Global) (*hir.Program, []*diag.Error) {
	for _, g := range extraGlobals {
		name := a.in.Intern(g.Name)
		gid := hir.GlobalID(len(a.program.Globals))
		a.globals[name] = gid
		a.program.Globals = append(a.program.Globals, g)
	}

	// File-scope pre-pass: every fn becomes a global before any body is
	// resolved, so functions may call each other regardless of textual
	// order (spec.md §4.3).
	skip := make([]bool, len(program.Decls))
	for i, decl := range program.Decls {
		name := a.in.Intern(decl.Name)
		if _, dup := a.globals[name]; dup {
			a.errorAt(diag.NameError, decl.Span(), "duplicate top-level function %q", decl.Name)
			skip[i] = true
			continue
		}
		gid := hir.GlobalID(len(a.program.Globals))
		a.globals[name] = gid
		a.program.Globals = append(a.program.Globals, hir.Global{Name: decl.Name, FnIndex: len(a.program.Functions)})
		a.program.Functions = append(a.program.Functions, &hir.Function{Name: decl.Name, Arity: len(decl.Params)})
	}

	mainName := a.in.Intern("main")
	if gid, ok := a.globals[mainName]; ok {
		a.program.EntryGlobal = gid
	} else {
		a.errorAt(diag.NameError, source.Span{}, "program has no top-level function named \"main\"")
	}

	fnIdx := 0
	for i, decl := range program.Decls {
		if skip[i] {
			continue
		}
		a.analyzeFunction(fnIdx, decl)
		fnIdx++
	}

	a.program.Interner = a.in
	a.program.GlobalIndex = a.globals

	return &a.program, a.errs
}

func (a *Analyzer) analyzeFunction(index int, decl ast.FnDecl) {
	fn := a.program.Functions[index]
	f := &funcCtx{}
	f.push()
	f.nextSlot = 1 // slot 0 is reserved for the callee itself (spec.md §3)
	for _, p := range decl.Params {
		if _, redeclared := f.declare(a.in.Intern(p)); redeclared {
			a.errorAt(diag.NameError, decl.Span(), "duplicate parameter %q in function %q", p, decl.Name)
		}
	}
	localBase := f.nextSlot // first slot after parameters
	prevFn := a.fn
	a.fn = f
	fn.Body = a.analyzeBlock(decl.Body)
	fn.NumLocals = f.nextSlot - localBase
	a.fn = prevFn
}

// ---- Statements ----

func (a *Analyzer) analyzeBlock(b ast.Block) hir.Block {
	a.fn.push()
	stmts := make([]hir.Stmt, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		stmts = append(stmts, a.analyzeStmt(s))
	}
	a.fn.pop()
	return hir.Block{Stmts: stmts}
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) hir.Stmt {
	switch n := s.(type) {
	case ast.LetStmt:
		init := a.analyzeExpr(n.Init)
		slot, redeclared := a.fn.declare(a.in.Intern(n.Name))
		if redeclared {
			a.errorAt(diag.NameError, n.Span(), "%q is already declared in this block", n.Name)
		}
		return hir.LetStmt{Slot: slot, Init: init}

	case ast.ExprStmt:
		return hir.ExprStmt{Expr: a.analyzeExpr(n.Expr)}

	case ast.Assign:
		val := a.analyzeExpr(n.Value)
		name := a.in.Intern(n.Name)
		if slot, ok := a.fn.resolve(name); ok {
			return hir.StoreLocal{Slot: slot, Value: val}
		}
		if gid, ok := a.globals[name]; ok {
			return hir.StoreGlobal{ID: gid, Value: val}
		}
		a.errorAt(diag.NameError, n.Span(), "assignment to undefined name %q", n.Name)
		return hir.ExprStmt{Expr: val}

	case ast.IndexAssign:
		return hir.IndexAssign{
			Coll:  a.analyzeExpr(n.Coll),
			Idx:   a.analyzeExpr(n.Idx),
			Value: a.analyzeExpr(n.Value),
		}

	case ast.ReturnStmt:
		if a.fn == nil {
			a.errorAt(diag.NameError, n.Span(), "return outside a function")
		}
		var v hir.Expr
		if n.Value != nil {
			v = a.analyzeExpr(n.Value)
		}
		return hir.ReturnStmt{Value: v}

	case ast.Block:
		b := a.analyzeBlock(n)
		return b

	case ast.IfStmt:
		cond := a.analyzeExpr(n.Cond)
		then := a.analyzeBlock(n.Then)
		var els *hir.Block
		if n.Else != nil {
			b := a.analyzeBlock(*n.Else)
			els = &b
		}
		return hir.IfStmt{Cond: cond, Then: &then, Else: els}

	case ast.WhileStmt:
		cond := a.analyzeExpr(n.Cond)
		a.fn.loopDepth++
		body := a.analyzeBlock(n.Body)
		a.fn.loopDepth--
		return hir.WhileStmt{Cond: cond, Body: body}

	case ast.BreakStmt:
		if a.fn == nil || a.fn.loopDepth == 0 {
			a.errorAt(diag.NameError, n.Span(), "break outside a while loop")
		}
		return hir.BreakStmt{}

	case ast.ContinueStmt:
		if a.fn == nil || a.fn.loopDepth == 0 {
			a.errorAt(diag.NameError, n.Span(), "continue outside a while loop")
		}
		return hir.ContinueStmt{}

	default:
		a.errorAt(diag.InternalError, s.Span(), "analyzer: unhandled statement %T", s)
		return hir.ExprStmt{Expr: hir.Literal{Value: value.Null()}}
	}
}

// ---- Expressions ----

func (a *Analyzer) analyzeExpr(e ast.Expr) hir.Expr {
	lowered := a.lower(e)
	return a.fold(lowered)
}

func (a *Analyzer) lower(e ast.Expr) hir.Expr {
	switch n := e.(type) {
	case ast.NullLit:
		return hir.Literal{Value: value.Null()}
	case ast.BoolLit:
		return hir.Literal{Value: value.Bool(n.Value)}
	case ast.IntLit:
		return hir.Literal{Value: value.Int(n.Value)}
	case ast.FloatLit:
		return hir.Literal{Value: value.Float(n.Value)}
	case ast.StringLit:
		return hir.Literal{Value: value.Str(n.Value)}

	case ast.ListLit:
		elems := make([]hir.Expr, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = a.analyzeExpr(el)
		}
		return hir.ListLit{Elements: elems}

	case ast.Name:
		return a.resolveName(n)

	case ast.Binary:
		return hir.Binary{Op: n.Op, Left: a.analyzeExpr(n.Left), Right: a.analyzeExpr(n.Right)}

	case ast.Unary:
		return hir.Unary{Op: n.Op, Operand: a.analyzeExpr(n.Operand)}

	case ast.Call:
		args := make([]hir.Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = a.analyzeExpr(arg)
		}
		return hir.Call{Callee: a.analyzeExpr(n.Callee), Args: args}

	case ast.Index:
		return hir.Index{Coll: a.analyzeExpr(n.Coll), Idx: a.analyzeExpr(n.Idx)}

	case ast.Paren:
		// Paren carries no semantics; desugar it away (spec.md §3).
		return a.analyzeExpr(n.Inner)

	default:
		a.errorAt(diag.InternalError, e.Span(), "analyzer: unhandled expression %T", e)
		return hir.Literal{Value: value.Null()}
	}
}

func (a *Analyzer) resolveName(n ast.Name) hir.Expr {
	name := a.in.Intern(n.Ident)
	if a.fn != nil {
		if slot, ok := a.fn.resolve(name); ok {
			return hir.LocalRef{Slot: slot, Name: n.Ident}
		}
	}
	if gid, ok := a.globals[name]; ok {
		return hir.GlobalRef{ID: gid, Name: n.Ident}
	}
	if idx, ok := builtin.Lookup(n.Ident); ok {
		return hir.BuiltinRef{Index: idx}
	}
	a.errorAt(diag.NameError, n.Span(), "undefined name %q", n.Ident)
	return hir.Literal{Value: value.Null()}
}

// fold applies spec.md §4.3's constant folding bottom-up: a node is
// folded when every operand is already a Literal and evaluating it
// cannot fail, or fails in a way we can prove won't happen. List
// literals are never folded — sharing one backing array across every
// evaluation of the literal would alias mutable state, e.g. across
// loop iterations.
func (a *Analyzer) fold(e hir.Expr) hir.Expr {
	switch n := e.(type) {
	case hir.Unary:
		if lit, ok := n.Operand.(hir.Literal); ok {
			if v, err := applyUnary(n.Op, lit.Value); err == nil {
				return hir.Literal{Value: v}
			}
		}
		return n

	case hir.Binary:
		litL, okL := n.Left.(hir.Literal)
		litR, okR := n.Right.(hir.Literal)
		if okL && okR {
			if v, err := applyBinary(n.Op, litL.Value, litR.Value); err == nil {
				return hir.Literal{Value: v}
			}
		}
		return n

	case hir.Call:
		ref, ok := n.Callee.(hir.BuiltinRef)
		if !ok || !builtin.Registry[ref.Index].Pure {
			return n
		}
		args := make([]value.Value, len(n.Args))
		for i, arg := range n.Args {
			lit, ok := arg.(hir.Literal)
			if !ok {
				return n
			}
			args[i] = lit.Value
		}
		if v, err := builtin.Registry[ref.Index].Apply(args); err == nil {
			return hir.Literal{Value: v}
		}
		return n

	default:
		return n
	}
}

func (a *Analyzer) errorAt(kind diag.Kind, span source.Span, format string, args ...any) {
	a.errs = append(a.errs, diag.At(kind, span, format, args...))
}
