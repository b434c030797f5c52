package parser

import (
	"strconv"

	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/token"
)

// Operator precedence levels, loosest to tightest (spec.md §4.4). `**`
// and unary `!`/`~` bind tighter than every entry in this table and
// are handled outside the generic climbing loop.
const (
	precLowest = iota
	precOr         // ||
	precAnd        // &&
	precEq         // == !=
	precCmp        // < > <= >=
	precSpaceship  // <=>
	precBitOr      // |
	precBitXor     // ^
	precBitAnd     // &
	precShift      // << >>
	precAdd        // + -
	precMul        // * / // %
)

var binPrec = map[token.Type]int{
	token.OR:        precOr,
	token.AND:       precAnd,
	token.EQ:        precEq,
	token.NE:        precEq,
	token.LT:        precCmp,
	token.GT:        precCmp,
	token.LE:        precCmp,
	token.GE:        precCmp,
	token.SPACESHIP: precSpaceship,
	token.PIPE:      precBitOr,
	token.CARET:     precBitXor,
	token.AMP:       precBitAnd,
	token.SHL:       precShift,
	token.SHR:       precShift,
	token.PLUS:      precAdd,
	token.MINUS:     precAdd,
	token.STAR:      precMul,
	token.SLASH:     precMul,
	token.IDIV:      precMul,
	token.PERCENT:   precMul,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := binPrec[p.cur.Type]; ok {
		return pr
	}
	return precLowest
}

// parseExpression implements precedence climbing over the binary
// operator table, with `**` (right-associative) and postfix call/
// index/attribute chains threaded through parseUnary/parsePower.
func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binPrec[p.cur.Type]
		if !ok || prec <= minPrec {
			break
		}
		op := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary handles `!`/`~` prefix operators and the literal-only
// `-` sign fold (§4.3's "optional sign" on integer/float literals):
// the dispatch vector (§4.2) has no general unary-negate slot, so `-`
// is legal only directly before a numeric literal.
func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.cur.Type {
	case token.BANG, token.TILDE:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: tok.Type, Operand: operand}, nil
	case token.MINUS:
		tok := p.cur
		if p.peek.Type != token.INT && p.peek.Type != token.FLOAT {
			return nil, rerr.AtPosition(rerr.Parse, p.posOf(tok),
				"unary '-' is only valid directly before a numeric literal")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit, err := p.parseNumberLiteral(true)
		if err != nil {
			return nil, err
		}
		return p.parsePowerTail(lit)
	default:
		return p.parsePower()
	}
}

// parsePower parses a primary/postfix chain and, if followed by `**`,
// recurses right-associatively with an operand that may itself be
// unary (`**` binds tighter than unary, per spec.md §4.4).
func (p *Parser) parsePower() (ast.Expression, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	return p.parsePowerTail(base)
}

func (p *Parser) parsePowerTail(base ast.Expression) (ast.Expression, error) {
	if p.cur.Type != token.POWER {
		return base, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: token.POWER, Left: base, Right: rhs}, nil
}

// parsePostfix parses a primary expression followed by any chain of
// `.name`, `.name(args)`, `::name(args)`, `[idx]`, `(args)` and, at the
// top, a trailing `= value` assignment.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case token.DOT:
			if err := p.advance(); err != nil {
				return nil, err
			}
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if p.cur.Type == token.LPAREN {
				args, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				expr = &ast.MethodCallExpr{Target: expr, Name: nameTok.Lexeme, Args: args}
			} else {
				expr = &ast.AttrExpr{Target: expr, Name: nameTok.Lexeme}
			}
		case token.DCOLON:
			if err := p.advance(); err != nil {
				return nil, err
			}
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.AttrCallExpr{Target: expr, Name: nameTok.Lexeme, Args: args}
		case token.LBRACKET:
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Target: expr, Index: idx}
		case token.LPAREN:
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.CallExpr{Callee: expr, Args: args}
		default:
			if p.cur.Type == token.ASSIGN {
				return p.finishAssign(expr)
			}
			return expr, nil
		}
	}
}

func (p *Parser) finishAssign(target ast.Expression) (ast.Expression, error) {
	switch target.(type) {
	case *ast.Identifier, *ast.AttrExpr, *ast.IndexExpr:
	case *ast.ThisExpr:
		return nil, p.errf("cannot assign to this")
	default:
		return nil, p.errf("invalid assignment target")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	val, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{Target: target, Value: val}, nil
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for p.cur.Type != token.RPAREN {
		a, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
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
	return args, nil
}

func (p *Parser) parseNumberLiteral(negate bool) (ast.Expression, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if tok.Type == token.FLOAT {
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, rerr.AtPosition(rerr.Parse, p.posOf(tok), "invalid float literal %q", tok.Lexeme)
		}
		if negate {
			v = -v
		}
		return &ast.FloatLiteral{Value: v}, nil
	}
	text := tok.Lexeme
	base := 10
	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		base = 16
		text = text[2:]
	}
	uv, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return nil, rerr.AtPosition(rerr.Parse, p.posOf(tok), "invalid integer literal %q", tok.Lexeme)
	}
	v := int64(uv)
	if negate {
		v = -v
	}
	return &ast.IntLiteral{Value: v}, nil
}
