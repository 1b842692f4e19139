// Package parser implements a recursive-descent parser producing the
// ast.Program the analyzer consumes. Lexing and parsing are an
// external collaborator to the core pipeline (spec.md §1); this
// package exists to give the rest of the repository something real to
// drive, not because its own correctness is part of the specified
// core.
package parser

import (
	"fmt"

	"github.com/tethal/rnatrix/internal/ast"
	"github.com/tethal/rnatrix/internal/source"
	"github.com/tethal/rnatrix/internal/token"
)

var comparisonTypes = []token.Type{token.LT, token.LE, token.GT, token.GE}
var equalityTypes = []token.Type{token.EQ, token.NEQ}
var termTypes = []token.Type{token.PLUS, token.MINUS}
var factorTypes = []token.Type{token.STAR, token.SLASH, token.PERCENT}

// Parser turns a token stream into an ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int
	file   source.ID
}

// New creates a Parser over tokens produced for the given source file.
func New(tokens []token.Token, file source.ID) *Parser {
	return &Parser{tokens: tokens, file: file}
}

func (p *Parser) peek() token.Token     { return p.tokens[p.pos] }
func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }
func (p *Parser) atEnd() bool           { return p.peek().Type == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(t token.Type) bool {
	return !p.atEnd() && p.peek().Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(t token.Type, context string) (token.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(p.peek(), fmt.Sprintf("expected %s %s, got %q", t, context, p.peek().Lexeme))
}

func (p *Parser) errorAt(tok token.Token, msg string) error {
	return fmt.Errorf("%d:%d: %s", tok.Line, tok.Column, msg)
}

func (p *Parser) span(start token.Token) source.Span {
	return source.Span{File: p.file, Start: start.Start, End: p.previous().End}
}

// Parse parses the whole token stream, collecting as many top-level
// errors as it can before returning.
func (p *Parser) Parse() (*ast.Program, []error) {
	var decls []ast.FnDecl
	var errs []error
	for !p.atEnd() {
		decl, err := p.fnDecl()
		if err != nil {
			errs = append(errs, err)
			p.synchronize()
			continue
		}
		decls = append(decls, decl)
	}
	return &ast.Program{Decls: decls}, errs
}

func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.peek().Type == token.FN {
			return
		}
		p.advance()
	}
}

func (p *Parser) fnDecl() (ast.FnDecl, error) {
	start, err := p.expect(token.FN, "to start a function declaration")
	if err != nil {
		return ast.FnDecl{}, err
	}
	name, err := p.expect(token.IDENT, "as the function name")
	if err != nil {
		return ast.FnDecl{}, err
	}
	if _, err := p.expect(token.LPAREN, "after function name"); err != nil {
		return ast.FnDecl{}, err
	}
	var params []string
	if !p.check(token.RPAREN) {
		for {
			param, err := p.expect(token.IDENT, "as a parameter name")
			if err != nil {
				return ast.FnDecl{}, err
			}
			params = append(params, param.Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "after parameter list"); err != nil {
		return ast.FnDecl{}, err
	}
	body, err := p.block()
	if err != nil {
		return ast.FnDecl{}, err
	}
	return ast.FnDecl{Pos: p.span(start), Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) block() (ast.Block, error) {
	start, err := p.expect(token.LBRACE, "to start a block")
	if err != nil {
		return ast.Block{}, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmt, err := p.statement()
		if err != nil {
			return ast.Block{}, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE, "to close block"); err != nil {
		return ast.Block{}, err
	}
	return ast.Block{Pos: p.span(start), Stmts: stmts}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.check(token.LET):
		return p.letStmt()
	case p.check(token.IF):
		return p.ifStmt()
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.BREAK):
		start := p.advance()
		_, err := p.expect(token.SEMI, "after 'break'")
		return ast.BreakStmt{Pos: p.span(start)}, err
	case p.check(token.CONTINUE):
		start := p.advance()
		_, err := p.expect(token.SEMI, "after 'continue'")
		return ast.ContinueStmt{Pos: p.span(start)}, err
	case p.check(token.LBRACE):
		return p.block()
	default:
		return p.simpleStmt()
	}
}

func (p *Parser) letStmt() (ast.Stmt, error) {
	start := p.advance() // 'let'
	name, err := p.expect(token.IDENT, "after 'let'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "after let name"); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "after let statement"); err != nil {
		return nil, err
	}
	return ast.LetStmt{Pos: p.span(start), Name: name.Lexeme, Init: init}, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	start := p.advance() // 'if'
	if _, err := p.expect(token.LPAREN, "after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "after if condition"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.Block
	if p.match(token.ELSE) {
		blk, err := p.block()
		if err != nil {
			return nil, err
		}
		elseBlock = &blk
	}
	return ast.IfStmt{Pos: p.span(start), Cond: cond, Then: then, Else: elseBlock}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	start := p.advance() // 'while'
	if _, err := p.expect(token.LPAREN, "after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "after while condition"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Pos: p.span(start), Cond: cond, Body: body}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	start := p.advance() // 'return'
	if p.match(token.SEMI) {
		return ast.ReturnStmt{Pos: p.span(start), Value: nil}, nil
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "after return value"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Pos: p.span(start), Value: value}, nil
}

// simpleStmt parses an assignment or bare expression statement; both
// start by parsing a full expression, then the parser decides which
// production it is in based on what follows.
func (p *Parser) simpleStmt() (ast.Stmt, error) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.match(token.ASSIGN) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI, "after assignment"); err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case ast.Name:
			return ast.Assign{Pos: p.span(start), Name: target.Ident, Value: value}, nil
		case ast.Index:
			return ast.IndexAssign{Pos: p.span(start), Coll: target.Coll, Idx: target.Idx, Value: value}, nil
		default:
			return nil, p.errorAt(start, "invalid assignment target")
		}
	}
	if _, err := p.expect(token.SEMI, "after expression statement"); err != nil {
		return nil, err
	}
	return ast.ExprStmt{Pos: p.span(start), Expr: expr}, nil
}

func (p *Parser) expression() (ast.Expr, error) {
	return p.equality()
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(equalityTypes, p.comparison)
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(comparisonTypes, p.term)
}

func (p *Parser) term() (ast.Expr, error) {
	return p.binaryLevel(termTypes, p.factor)
}

func (p *Parser) factor() (ast.Expr, error) {
	return p.binaryLevel(factorTypes, p.unary)
}

func (p *Parser) binaryLevel(types []token.Type, next func() (ast.Expr, error)) (ast.Expr, error) {
	start := p.peek()
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(types...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Pos: p.span(start), Op: string(op.Type), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expr, error) {
	if p.match(token.BANG, token.MINUS) {
		start := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Pos: p.span(start), Op: string(start.Type), Operand: operand}, nil
	}
	return p.callOrIndex()
}

func (p *Parser) callOrIndex() (ast.Expr, error) {
	start := p.peek()
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LPAREN):
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			if _, err := p.expect(token.RPAREN, "after call arguments"); err != nil {
				return nil, err
			}
			expr = ast.Call{Pos: p.span(start), Callee: expr, Args: args}
		case p.match(token.LBRACKET):
			idx, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "after index expression"); err != nil {
				return nil, err
			}
			expr = ast.Index{Pos: p.span(start), Coll: expr, Idx: idx}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) primary() (ast.Expr, error) {
	start := p.peek()
	switch {
	case p.match(token.NULL):
		return ast.NullLit{Pos: p.span(start)}, nil
	case p.match(token.TRUE):
		return ast.BoolLit{Pos: p.span(start), Value: true}, nil
	case p.match(token.FALSE):
		return ast.BoolLit{Pos: p.span(start), Value: false}, nil
	case p.match(token.INT):
		return ast.IntLit{Pos: p.span(start), Value: p.previous().Literal.(int64)}, nil
	case p.match(token.FLOAT):
		return ast.FloatLit{Pos: p.span(start), Value: p.previous().Literal.(float64)}, nil
	case p.match(token.STRING):
		return ast.StringLit{Pos: p.span(start), Value: p.previous().Literal.(string)}, nil
	case p.match(token.IDENT):
		return ast.Name{Pos: p.span(start), Ident: p.previous().Lexeme}, nil
	case p.match(token.LBRACKET):
		var elems []ast.Expr
		if !p.check(token.RBRACKET) {
			for {
				elem, err := p.expression()
				if err != nil {
					return nil, err
				}
				elems = append(elems, elem)
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		if _, err := p.expect(token.RBRACKET, "to close list literal"); err != nil {
			return nil, err
		}
		return ast.ListLit{Pos: p.span(start), Elements: elems}, nil
	case p.match(token.LPAREN):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return ast.Paren{Pos: p.span(start), Inner: inner}, nil
	default:
		return nil, p.errorAt(start, fmt.Sprintf("unexpected token %q", start.Lexeme))
	}
}
