package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks := allTokens(t, "function add(a, b) { return a + b; }")
	got := types(toks)
	require.Equal(t, []token.Type{
		token.FUNCTION, token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN,
		token.LBRACE, token.RETURN, token.IDENT, token.PLUS, token.IDENT, token.SEMICOLON, token.RBRACE,
		token.EOF,
	}, got)
}

func TestLexerNumbers(t *testing.T) {
	toks := allTokens(t, "1 2.5 0xFF")
	require.Equal(t, token.INT, toks[0].Type)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, token.FLOAT, toks[1].Type)
	require.Equal(t, token.INT, toks[2].Type)
}

func TestLexerString(t *testing.T) {
	toks := allTokens(t, `"hello\nworld"`)
	require.Equal(t, token.STRING, toks[0].Type)
}

func TestLexerOperatorsLongestMatchFirst(t *testing.T) {
	toks := allTokens(t, "<= <=> << >> ** // && ||")
	got := types(toks)
	require.Equal(t, []token.Type{
		token.LE, token.SPACESHIP, token.SHL, token.SHR, token.POWER, token.IDIV, token.AND, token.OR, token.EOF,
	}, got)
}

func TestLexerSkipsComments(t *testing.T) {
	// the newline right after a comment is still a significant NEWLINE
	// token (§4.3); only the comment body itself is discarded.
	toks := allTokens(t, "1 # a comment\n+ 2")
	got := types(toks)
	require.Equal(t, []token.Type{token.INT, token.NEWLINE, token.PLUS, token.INT, token.EOF}, got)
}

func TestLexerIllegalCharacter(t *testing.T) {
	l := New("@")
	_, err := l.NextToken()
	require.Error(t, err)
}
