// Package ast defines the syntax tree the parser produces: the input
// contract the semantic analyzer consumes (spec.md §3, "AST (input
// contract)"). Every node carries a source span; names are still raw
// text, unresolved.
package ast

import "github.com/tethal/rnatrix/internal/source"

// Expr is any expression node. Every concrete type below implements it.
type Expr interface {
	Span() source.Span
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Span() source.Span
	stmtNode()
}

// ---- Expressions ----

type NullLit struct{ Pos source.Span }

type BoolLit struct {
	Pos   source.Span
	Value bool
}

type IntLit struct {
	Pos   source.Span
	Value int64
}

type FloatLit struct {
	Pos   source.Span
	Value float64
}

type StringLit struct {
	Pos   source.Span
	Value string
}

type ListLit struct {
	Pos      source.Span
	Elements []Expr
}

type Name struct {
	Pos   source.Span
	Ident string
}

type Binary struct {
	Pos         source.Span
	Op          string
	Left, Right Expr
}

type Unary struct {
	Pos     source.Span
	Op      string
	Operand Expr
}

type Call struct {
	Pos    source.Span
	Callee Expr
	Args   []Expr
}

type Index struct {
	Pos       source.Span
	Coll, Idx Expr
}

// Paren preserves source fidelity for a parenthesized expression. It
// carries no semantics of its own and is removed during lowering to
// HIR (spec.md §3, "HIR... Paren is removed").
type Paren struct {
	Pos   source.Span
	Inner Expr
}

func (n NullLit) Span() source.Span   { return n.Pos }
func (n BoolLit) Span() source.Span   { return n.Pos }
func (n IntLit) Span() source.Span    { return n.Pos }
func (n FloatLit) Span() source.Span  { return n.Pos }
func (n StringLit) Span() source.Span { return n.Pos }
func (n ListLit) Span() source.Span   { return n.Pos }
func (n Name) Span() source.Span      { return n.Pos }
func (n Binary) Span() source.Span    { return n.Pos }
func (n Unary) Span() source.Span     { return n.Pos }
func (n Call) Span() source.Span      { return n.Pos }
func (n Index) Span() source.Span     { return n.Pos }
func (n Paren) Span() source.Span     { return n.Pos }

func (NullLit) exprNode()   {}
func (BoolLit) exprNode()   {}
func (IntLit) exprNode()    {}
func (FloatLit) exprNode()  {}
func (StringLit) exprNode() {}
func (ListLit) exprNode()   {}
func (Name) exprNode()      {}
func (Binary) exprNode()    {}
func (Unary) exprNode()     {}
func (Call) exprNode()      {}
func (Index) exprNode()     {}
func (Paren) exprNode()     {}

// ---- Statements ----

type LetStmt struct {
	Pos  source.Span
	Name string
	Init Expr
}

type ExprStmt struct {
	Pos  source.Span
	Expr Expr
}

type Assign struct {
	Pos   source.Span
	Name  string
	Value Expr
}

type IndexAssign struct {
	Pos              source.Span
	Coll, Idx, Value Expr
}

type ReturnStmt struct {
	Pos   source.Span
	Value Expr // nil for a bare `return;`
}

type Block struct {
	Pos   source.Span
	Stmts []Stmt
}

type IfStmt struct {
	Pos  source.Span
	Cond Expr
	Then Block
	Else *Block // nil when there is no else branch
}

type WhileStmt struct {
	Pos  source.Span
	Cond Expr
	Body Block
}

type BreakStmt struct{ Pos source.Span }

type ContinueStmt struct{ Pos source.Span }

// FnDecl is a top-level function declaration; only these populate the
// program's global scope (spec.md §4.3).
type FnDecl struct {
	Pos    source.Span
	Name   string
	Params []string
	Body   Block
}

func (n LetStmt) Span() source.Span      { return n.Pos }
func (n ExprStmt) Span() source.Span     { return n.Pos }
func (n Assign) Span() source.Span       { return n.Pos }
func (n IndexAssign) Span() source.Span  { return n.Pos }
func (n ReturnStmt) Span() source.Span   { return n.Pos }
func (n Block) Span() source.Span        { return n.Pos }
func (n IfStmt) Span() source.Span       { return n.Pos }
func (n WhileStmt) Span() source.Span    { return n.Pos }
func (n BreakStmt) Span() source.Span    { return n.Pos }
func (n ContinueStmt) Span() source.Span { return n.Pos }
func (n FnDecl) Span() source.Span       { return n.Pos }

func (LetStmt) stmtNode()      {}
func (ExprStmt) stmtNode()     {}
func (Assign) stmtNode()       {}
func (IndexAssign) stmtNode()  {}
func (ReturnStmt) stmtNode()   {}
func (Block) stmtNode()        {}
func (IfStmt) stmtNode()       {}
func (WhileStmt) stmtNode()    {}
func (BreakStmt) stmtNode()    {}
func (ContinueStmt) stmtNode() {}
func (FnDecl) stmtNode()       {}

// Program is the parser's top-level output: a flat list of function
// declarations (spec.md has no module system, so this is the whole
// unit of compilation).
type Program struct {
	Decls []FnDecl
}
