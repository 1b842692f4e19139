// Package hir defines the semantic tree produced by the analyzer
// (spec.md §3, "HIR"): names resolved to Local/Global/Builtin
// references, Paren nodes removed, and constant sub-expressions folded
// where safe. The compiler and the tree interpreter both consume this
// tree so they agree on name resolution by construction.
package hir

import (
	"github.com/tethal/rnatrix/internal/builtin"
	"github.com/tethal/rnatrix/internal/interner"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/value"
)

// GlobalID indexes the program's globals table.
type GlobalID int

// Expr is any resolved expression node.
type Expr interface {
	Span() source.Span
	exprNode()
}

// Stmt is any resolved statement node.
type Stmt interface {
	Span() source.Span
	stmtNode()
}

type base struct{ Pos source.Span }

func (b base) Span() source.Span { return b.Pos }

// Literal holds a pre-evaluated constant Value: either a literal from
// the AST or the result of constant folding (spec.md §4.3).
type Literal struct {
	base
	Value value.Value
}

// LocalRef addresses a slot in the current function's activation
// (spec.md §3's HIR invariants): 0 is the callee itself, 1..arity are
// parameters, the rest are locals in declaration order.
type LocalRef struct {
	base
	Slot int
	Name string // kept for diagnostics and disassembly only
}

// GlobalRef addresses a slot in the program's globals table.
type GlobalRef struct {
	base
	ID   GlobalID
	Name string
}

// BuiltinRef addresses a fixed entry in the builtin registry.
type BuiltinRef struct {
	base
	Index builtin.Index
}

// ListLit constructs a new list; never folded into a Literal (doing
// so would alias mutable state across every evaluation of the literal,
// e.g. across loop iterations).
type ListLit struct {
	base
	Elements []Expr
}

type Binary struct {
	base
	Op          string
	Left, Right Expr
}

type Unary struct {
	base
	Op      string
	Operand Expr
}

type Call struct {
	base
	Callee Expr
	Args   []Expr
}

type Index struct {
	base
	Coll, Idx Expr
}

func (Literal) exprNode()    {}
func (LocalRef) exprNode()   {}
func (GlobalRef) exprNode()  {}
func (BuiltinRef) exprNode() {}
func (ListLit) exprNode()    {}
func (Binary) exprNode()     {}
func (Unary) exprNode()      {}
func (Call) exprNode()       {}
func (Index) exprNode()      {}

// LetStmt introduces a local and initializes it; the analyzer has
// already assigned Slot during slot allocation.
type LetStmt struct {
	base
	Slot int
	Init Expr
}

type ExprStmt struct {
	base
	Expr Expr
}

// StoreLocal and StoreGlobal replace AST's single Assign node once the
// analyzer has resolved which kind of slot is being written.
type StoreLocal struct {
	base
	Slot  int
	Value Expr
}

type StoreGlobal struct {
	base
	ID    GlobalID
	Value Expr
}

type IndexAssign struct {
	base
	Coll, Idx, Value Expr
}

type ReturnStmt struct {
	base
	Value Expr // nil means bare `return;`
}

type Block struct {
	base
	Stmts []Stmt
}

type IfStmt struct {
	base
	Cond       Expr
	Then, Else *Block // Else is nil when there is no else-branch
}

type WhileStmt struct {
	base
	Cond Expr
	Body Block
}

type BreakStmt struct{ base }
type ContinueStmt struct{ base }

func (LetStmt) stmtNode()      {}
func (ExprStmt) stmtNode()     {}
func (StoreLocal) stmtNode()   {}
func (StoreGlobal) stmtNode()  {}
func (IndexAssign) stmtNode()  {}
func (ReturnStmt) stmtNode()   {}
func (Block) stmtNode()        {}
func (IfStmt) stmtNode()       {}
func (WhileStmt) stmtNode()    {}
func (BreakStmt) stmtNode()    {}
func (ContinueStmt) stmtNode() {}

// Function is a resolved function: its parameter count, the total
// number of local slots beyond the parameters, and its body.
type Function struct {
	Name      string
	Arity     int
	NumLocals int
	Body      Block
}

// Global is one entry in the program's globals table. Most globals
// are user-defined functions, referenced by their index into
// Program.Functions so the compiler can fill in FunctionObject's
// CodeOffset once function bodies have been laid out; FnIndex is -1
// for plain preinitialized globals such as the CLI's `__args__` (see
// SPEC_FULL.md), whose value is already fully known as Init.
type Global struct {
	Name    string
	FnIndex int
	Init    value.Value
}

// Program is the analyzer's output: every file-scope function plus
// the preinitialized globals table. EntryGlobal names the global slot
// holding `main`.
//
// Interner and GlobalIndex are the analyzer's own name table and
// name->global map, carried forward on the Program rather than kept
// private to the analyzer (spec.md §4.2: the interner "is owned by the
// analyzer context and shared with the tree interpreter's
// environment"). The VM and compiler never need them, since bytecode
// addresses globals purely by slot; the tree interpreter uses them to
// look up a global by name without a linear scan (see
// Interpreter.Global).
type Program struct {
	Globals     []Global
	Functions   []*Function
	EntryGlobal GlobalID
	Interner    *interner.Interner
	GlobalIndex map[interner.Name]GlobalID
}
