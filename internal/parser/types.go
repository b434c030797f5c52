package parser

import (
	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/token"
)

// operatorHookName maps a binary-operator token directly following
// `function` inside a type body to the dispatch-vector slot name it
// installs (§3 Type, §4.2). Comparison derives entirely from `cmp`
// (Lt/Le/Gt/Ge have no separate slot, per §4.2/§4.6), so `<`, `>`,
// `<=`, `>=` all install the same `cmp` hook as `<=>`.
var operatorHookName = map[token.Type]string{
	token.PLUS:      "add",
	token.MINUS:     "sub",
	token.STAR:      "mul",
	token.SLASH:      "div",
	token.IDIV:      "idiv",
	token.PERCENT:   "mod",
	token.POWER:     "pow",
	token.AMP:       "band",
	token.PIPE:       "bor",
	token.CARET:      "bxor",
	token.SHL:        "shl",
	token.SHR:        "shr",
	token.SPACESHIP: "cmp",
	token.LT:         "cmp",
	token.GT:         "cmp",
	token.LE:         "cmp",
	token.GE:         "cmp",
	token.EQ:         "eq",
}

func (p *Parser) parseTypeLiteral() (ast.Expression, error) {
	if err := p.advance(); err != nil { // consume 'type'
		return nil, err
	}
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var members []ast.Statement
	for p.cur.Type != token.RBRACE && p.cur.Type != token.EOF {
		m, err := p.parseTypeMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.TypeLiteral{Name: nameTok.Lexeme, Members: members}, nil
}

// parseTypeMember parses one member of a `type { ... }` body: either
// an operator/hook declaration, an ordinary named method/function, or
// any other statement (including `public name = expr` members).
func (p *Parser) parseTypeMember() (ast.Statement, error) {
	if p.cur.Type == token.PUBLIC {
		node, _, err := p.parsePublicStatement()
		if err != nil {
			return nil, err
		}
		return node.(ast.Statement), nil
	}
	if p.cur.Type == token.FUNCTION {
		return p.parseTypeFunctionMember()
	}
	node, desc, err := p.parseStatementOrTail()
	if err != nil {
		return nil, err
	}
	if desc == descTail {
		return &ast.ExprStatement{Expr: node.(ast.Expression)}, nil
	}
	return node.(ast.Statement), nil
}

// parseTypeFunctionMember parses every `function ...` form legal
// inside a type body (spec.md §4.4): named methods, and the hook forms
// `[new]`, `[destroy]`, `[str]`, `[hash]`, `[iter]`, `[next]`, `[]`
// (get_item), `[] = ` (set_item), `()` (call), `!` (not), `~`
// (bitnot), and each overloadable binary operator token.
func (p *Parser) parseTypeFunctionMember() (ast.Statement, error) {
	if err := p.advance(); err != nil { // consume 'function'
		return nil, err
	}

	switch p.cur.Type {
	case token.LBRACKET:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == token.RBRACKET {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.Type == token.ASSIGN {
				if err := p.advance(); err != nil {
					return nil, err
				}
				return p.finishOpHook("set_item")
			}
			return p.finishOpHook("get_item")
		}
		nameTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return p.finishOpHook(nameTok.Lexeme)
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return p.finishOpHook("call")
	case token.BANG:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.finishOpHook("not")
	case token.TILDE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.finishOpHook("bitnot")
	case token.IDENT:
		name := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		body, err := p.parseForcedBlock()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Expr: &ast.FunctionLiteral{Name: name, Params: params, Body: body}}, nil
	default:
		if hook, ok := operatorHookName[p.cur.Type]; ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.finishOpHook(hook)
		}
		return nil, p.errf("invalid function member in type body: %s %q", p.cur.Type, p.cur.Lexeme)
	}
}

func (p *Parser) finishOpHook(hook string) (ast.Statement, error) {
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseForcedBlock()
	if err != nil {
		return nil, err
	}
	return &ast.OpHookStatement{Hook: hook, Params: params, Body: body}, nil
}
