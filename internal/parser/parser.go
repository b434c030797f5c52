// Package parser implements the recursive-descent parser described in
// spec.md §4.4: it turns a token stream into an AST, reporting the
// first error it hits at its position and stopping (§7).
package parser

import (
	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/lexer"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/token"
)

// Parser consumes tokens from a Lexer and builds an AST. NEWLINE
// tokens are insignificant whitespace here: the grammar's statement
// boundaries are marked explicitly by `;`, so newline-sensitivity
// (which the reference implementation's surface language used for a
// different, larger grammar) is not needed to satisfy spec.md §4.4.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token
}

// New creates a Parser over src.
func New(src string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	for {
		t, err := p.lex.NextToken()
		if err != nil {
			return err
		}
		if t.Type == token.NEWLINE {
			continue
		}
		p.peek = t
		break
	}
	return nil
}

func (p *Parser) posOf(t token.Token) rerr.Position {
	return rerr.Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) errf(format string, args ...any) error {
	return rerr.AtPosition(rerr.Parse, p.posOf(p.cur), format, args...)
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.cur.Type != tt {
		return token.Token{}, p.errf("expected %s, got %s %q", tt, p.cur.Type, p.cur.Lexeme)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func (p *Parser) at(tt token.Type) bool { return p.cur.Type == tt }

// ParseProgram parses an entire module body.
func ParseProgram(src string) (*ast.Program, error) {
	p, err := New(src)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.cur.Type != token.EOF {
		stmt, err := p.parseTopStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// parseStatementList parses the statement+tail sequence used inside a
// block/program body: `stat; ...; expr?`.
func (p *Parser) parseStatementList(end token.Type) ([]ast.Statement, ast.Expression, error) {
	var stmts []ast.Statement
	for p.cur.Type != end && p.cur.Type != token.EOF {
		node, desc, err := p.parseStatementOrTail()
		if err != nil {
			return nil, nil, err
		}
		if desc == descTail {
			// This must be the last production before `end`.
			if p.cur.Type != end {
				return nil, nil, p.errf("expected %s after trailing expression", end)
			}
			return stmts, node.(ast.Expression), nil
		}
		stmts = append(stmts, node.(ast.Statement))
	}
	return stmts, nil, nil
}

type tailDesc int

const (
	descStmt tailDesc = iota
	descTail
)

// parseStatementOrTail parses one element of a statement list and
// decides, via lookahead, whether it is a trailing value (no following
// `;`, followed directly by the block terminator) or an ordinary
// statement.
func (p *Parser) parseStatementOrTail() (ast.Node, tailDesc, error) {
	switch p.cur.Type {
	case token.PUBLIC:
		return p.parsePublicStatement()
	case token.RETURN:
		s, err := p.parseReturnStatement()
		return s, descStmt, err
	case token.SEMICOLON:
		// Empty statement.
		if err := p.advance(); err != nil {
			return nil, descStmt, err
		}
		return &ast.ExprStatement{}, descStmt, nil
	}

	expr, desc, err := p.parseExprOrStatExpr()
	if err != nil {
		return nil, descStmt, err
	}

	if p.cur.Type == token.SEMICOLON {
		if err := p.advance(); err != nil {
			return nil, descStmt, err
		}
		return &ast.ExprStatement{Expr: expr}, descStmt, nil
	}

	// No semicolon: if the construct can stand alone as a statement
	// (desc == DescStatExpr, i.e. if/while/for/block/function/type) and
	// we are not at the list terminator, treat it as a complete
	// statement anyway (matches spec.md's "determined by context").
	if desc == ast.DescStatExpr && p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		return &ast.ExprStatement{Expr: expr}, descStmt, nil
	}

	return expr, descTail, nil
}

func (p *Parser) parseTopStatement() (ast.Statement, error) {
	node, desc, err := p.parseStatementOrTail()
	if err != nil {
		return nil, err
	}
	if desc == descTail {
		return &ast.ExprStatement{Expr: node.(ast.Expression)}, nil
	}
	return node.(ast.Statement), nil
}

func (p *Parser) parsePublicStatement() (ast.Node, tailDesc, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, descStmt, err
	}
	inner, desc, err := p.parseStatementOrTail()
	if err != nil {
		return nil, descStmt, err
	}
	stmt, ok := inner.(ast.Statement)
	if !ok {
		return nil, descStmt, rerr.AtPosition(rerr.Parse, p.posOf(tok),
			"public may only prefix an assignment, function, or type definition")
	}
	return &ast.PublicStatement{Inner: stmt}, desc, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	ret := &ast.ReturnStatement{}
	if p.cur.Type != token.SEMICOLON {
		v, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		ret.Value = v
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ret, nil
}

// parseExprOrStatExpr parses one expression-position production and
// returns its descriptor.
func (p *Parser) parseExprOrStatExpr() (ast.Expression, ast.Descriptor, error) {
	e, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, ast.DescExpr, err
	}
	return e, descriptorOf(e), nil
}

func descriptorOf(e ast.Expression) ast.Descriptor {
	switch e.(type) {
	case *ast.IfExpr, *ast.WhileExpr, *ast.ForExpr, *ast.BlockExpr:
		return ast.DescStatExpr
	case *ast.FunctionLiteral:
		if e.(*ast.FunctionLiteral).Name != "" {
			return ast.DescStatExpr
		}
		return ast.DescExpr
	case *ast.TypeLiteral:
		return ast.DescStatExpr
	case *ast.Identifier, *ast.AttrExpr, *ast.IndexExpr:
		return ast.DescVarExpr
	default:
		return ast.DescExpr
	}
}

