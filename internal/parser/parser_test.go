package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/ast"
)

func TestParseProgramTrailingExpression(t *testing.T) {
	prog, err := ParseProgram(`
		x = 1;
		x + 1
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	last, ok := prog.Statements[1].(*ast.ExprStatement)
	require.True(t, ok)
	_, ok = last.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
}

func TestParseReturnRequiresSemicolon(t *testing.T) {
	_, err := ParseProgram(`
		function f() {
			return 1
		}
	`)
	require.Error(t, err, "a return statement without a trailing ; must fail to parse")
}

func TestParseIfStandsAloneWithoutSemicolon(t *testing.T) {
	prog, err := ParseProgram(`
		if (true) { 1 }
		2
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[0].(*ast.ExprStatement).Expr.(*ast.IfExpr)
	require.True(t, ok, "a standalone if with a following statement is a complete statement, not the tail")
}

func TestParseAssignmentToInvalidTargetFails(t *testing.T) {
	_, err := ParseProgram(`1 = 2;`)
	require.Error(t, err)
}

func TestParseAssignmentToThisFails(t *testing.T) {
	_, err := ParseProgram(`this = 2;`)
	require.Error(t, err)
}

func TestParseNamedFunctionStatement(t *testing.T) {
	prog, err := ParseProgram(`
		function add(a, b) {
			return a + b;
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	es, ok := prog.Statements[0].(*ast.ExprStatement)
	require.True(t, ok)
	fn, ok := es.Expr.(*ast.FunctionLiteral)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Equal(t, []string{"a", "b"}, fn.Params)
}

func TestParseTypeWithConstructorHook(t *testing.T) {
	prog, err := ParseProgram(`
		type Counter {
			function [new](start) {
				this.n = start;
			}
		}
	`)
	require.NoError(t, err)
	es := prog.Statements[0].(*ast.ExprStatement)
	ty, ok := es.Expr.(*ast.TypeLiteral)
	require.True(t, ok)
	require.Equal(t, "Counter", ty.Name)
	require.Len(t, ty.Members, 1)
	hook, ok := ty.Members[0].(*ast.OpHookStatement)
	require.True(t, ok)
	require.Equal(t, "new", hook.Hook)
}

func TestParsePublicAssignment(t *testing.T) {
	prog, err := ParseProgram(`public x = 1;`)
	require.NoError(t, err)
	pub, ok := prog.Statements[0].(*ast.PublicStatement)
	require.True(t, ok)
	es, ok := pub.Inner.(*ast.ExprStatement)
	require.True(t, ok)
	_, ok = es.Expr.(*ast.AssignExpr)
	require.True(t, ok)
}
