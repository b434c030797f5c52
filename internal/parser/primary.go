package parser

import (
	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/token"
)

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.cur.Type {
	case token.INT, token.FLOAT:
		return p.parseNumberLiteral(false)
	case token.STRING:
		v := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: v}, nil
	case token.IDENT:
		name := p.cur.Lexeme
		if name == "this" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.ThisExpr{}, nil
		}
		if p.peek.Type == token.ARROW {
			if err := p.advance(); err != nil { // consume ident
				return nil, err
			}
			if err := p.advance(); err != nil { // consume =>
				return nil, err
			}
			body, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			return &ast.FunctionLiteral{Params: []string{name}, Body: body}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Name: name}, nil
	case token.LPAREN:
		return p.parseParenOrTupleOrLambda()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseBraceOrMap()
	case token.FUNCTION:
		return p.parseFunctionLiteral()
	case token.TYPE:
		return p.parseTypeLiteral()
	case token.IF:
		return p.parseIfExpr()
	case token.WHILE:
		return p.parseWhileExpr()
	case token.FOR:
		return p.parseForExpr()
	default:
		return nil, p.errf("unexpected token %s %q", p.cur.Type, p.cur.Lexeme)
	}
}

// parseParenOrTupleOrLambda disambiguates `(e)`, `(e, ...)` and
// `(params) => expr` (spec.md §4.4): a comma inside `(...)` is
// required for a tuple; `()` and `(e)` are never tuples.
func (p *Parser) parseParenOrTupleOrLambda() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	if p.cur.Type == token.RPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type != token.ARROW {
			return nil, p.errf("empty parentheses are not a valid expression")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionLiteral{Body: body}, nil
	}

	var elems []ast.Expression
	first, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	elems = append(elems, first)
	sawComma := false
	for p.cur.Type == token.COMMA {
		sawComma = true
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == token.RPAREN {
			break // trailing comma
		}
		e, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if p.cur.Type == token.ARROW {
		params := make([]string, len(elems))
		for i, e := range elems {
			id, ok := e.(*ast.Identifier)
			if !ok {
				return nil, p.errf("lambda parameter list must contain only identifiers")
			}
			params[i] = id.Name
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionLiteral{Params: params, Body: body}, nil
	}

	if sawComma {
		return &ast.TupleExpr{Elements: elems}, nil
	}
	return first, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var elems []ast.Expression
	for p.cur.Type != token.RBRACKET {
		e, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayExpr{Elements: elems}, nil
}

// parseBraceOrMap disambiguates `{}` / map literal from a block
// expression. A bare `{}` is an empty map. Otherwise: an identifier or
// string literal immediately followed by `:` marks a map entry; a
// `[expr]` key is detected via a bounded speculative scan (clone the
// parser, try to parse `[ expr ] :`, and fall back to treating `{` as
// a block if that fails).
func (p *Parser) parseBraceOrMap() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume '{'
		return nil, err
	}
	if p.cur.Type == token.RBRACE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.MapExpr{}, nil
	}

	isMap := false
	switch p.cur.Type {
	case token.IDENT, token.STRING:
		isMap = p.peek.Type == token.COLON
	case token.LBRACKET:
		isMap = p.looksLikeComputedMapKey()
	}

	if isMap {
		return p.parseMapBody()
	}
	return p.parseBlockBody()
}

// looksLikeComputedMapKey speculatively parses `[ expr ] :` on a
// throwaway clone of the parser, without mutating real state.
func (p *Parser) looksLikeComputedMapKey() bool {
	clone := p.clone()
	if clone.cur.Type != token.LBRACKET {
		return false
	}
	if err := clone.advance(); err != nil {
		return false
	}
	if _, err := clone.parseExpression(precLowest); err != nil {
		return false
	}
	if _, err := clone.expect(token.RBRACKET); err != nil {
		return false
	}
	return clone.cur.Type == token.COLON
}

func (p *Parser) clone() *Parser {
	lx := *p.lex
	return &Parser{lex: &lx, cur: p.cur, peek: p.peek}
}

func (p *Parser) parseMapBody() (ast.Expression, error) {
	m := &ast.MapExpr{}
	for p.cur.Type != token.RBRACE {
		entry, err := p.parseMapEntry()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, entry)
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Parser) parseMapEntry() (ast.MapEntry, error) {
	var entry ast.MapEntry
	switch p.cur.Type {
	case token.LBRACKET:
		if err := p.advance(); err != nil {
			return entry, err
		}
		key, err := p.parseExpression(precLowest)
		if err != nil {
			return entry, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return entry, err
		}
		entry.Key = key
		entry.Computed = true
	case token.IDENT, token.STRING:
		entry.Key = &ast.StringLiteral{Value: p.cur.Lexeme}
		if err := p.advance(); err != nil {
			return entry, err
		}
	default:
		return entry, p.errf("invalid map key")
	}
	if _, err := p.expect(token.COLON); err != nil {
		return entry, err
	}
	val, err := p.parseExpression(precLowest)
	if err != nil {
		return entry, err
	}
	entry.Value = val
	return entry, nil
}

// parseBlockBody parses `stat; ...; expr?` up to (and consuming) the
// closing `}`. The opening `{` must already have been consumed.
func (p *Parser) parseBlockBody() (ast.Expression, error) {
	stmts, tail, err := p.parseStatementList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Statements: stmts, Tail: tail}, nil
}

func (p *Parser) parseIfExpr() (ast.Expression, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	ifExpr := &ast.IfExpr{Cond: cond, Then: then}
	if p.cur.Type == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		els, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		ifExpr.Else = els
	}
	return ifExpr, nil
}

func (p *Parser) parseWhileExpr() (ast.Expression, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.WhileExpr{Cond: cond, Body: body}, nil
}

func (p *Parser) parseForExpr() (ast.Expression, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	iter, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.ForExpr{Var: nameTok.Lexeme, Iter: iter, Body: body}, nil
}

// parseParamList parses `( ident, ... )`.
func (p *Parser) parseParamList() ([]string, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.cur.Type != token.RPAREN {
		t, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, t.Lexeme)
		if p.cur.Type == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

// parseForcedBlock parses a `{ ... }` that must be a block (never a
// map), used for function/type/hook bodies.
func (p *Parser) parseForcedBlock() (*ast.BlockExpr, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	stmts, tail, err := p.parseStatementList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.BlockExpr{Statements: stmts, Tail: tail}, nil
}

func (p *Parser) parseFunctionLiteral() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume 'function'
		return nil, err
	}
	name := ""
	if p.cur.Type == token.IDENT {
		name = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseForcedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{Name: name, Params: params, Body: body}, nil
}
