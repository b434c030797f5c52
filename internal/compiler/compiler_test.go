package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/parser"
	"github.com/coucya/rolscript/internal/vm"
)

func TestCompileArithmeticEmitsOpAdd(t *testing.T) {
	prog, err := parser.ParseProgram("1 + 2")
	require.NoError(t, err)
	code, err := Compile(prog)
	require.NoError(t, err)

	found := false
	for _, op := range code.Code {
		if op.Code == uint8(vm.OpAdd) {
			found = true
		}
	}
	require.True(t, found, "expected an OpAdd instruction in %v", code.Code)
	require.Equal(t, 0, code.ParamCount)
}

func TestCompileFunctionLiteralRegistersChild(t *testing.T) {
	prog, err := parser.ParseProgram(`
		function add(a, b) {
			return a + b;
		}
		add
	`)
	require.NoError(t, err)
	code, err := Compile(prog)
	require.NoError(t, err)
	require.Len(t, code.Children, 1)
	require.Equal(t, 2, code.Children[0].ParamCount)
}

func TestCompileStringConstantIsInterned(t *testing.T) {
	prog, err := parser.ParseProgram(`"hello"`)
	require.NoError(t, err)
	code, err := Compile(prog)
	require.NoError(t, err)
	require.Contains(t, code.ConstStrs, "hello")
}

func TestCompileRejectsStrayOpHook(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.OpHookStatement{Hook: "new", Params: nil, Body: &ast.NullLiteral{}},
		},
	}
	_, err := Compile(prog)
	require.Error(t, err)
}

func TestCompilePublicRequiresNamedFunction(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Statement{
			&ast.PublicStatement{
				Inner: &ast.ExprStatement{
					Expr: &ast.FunctionLiteral{Name: "", Body: &ast.NullLiteral{}},
				},
			},
		},
	}
	_, err := Compile(prog)
	require.Error(t, err)
}

func TestCompileTypeWithHookAndMethod(t *testing.T) {
	prog, err := parser.ParseProgram(`
		type Counter {
			function [new](start) {
				this.n = start;
			}
			function bump(amount) {
				this.n = this.n + amount;
				return this.n;
			}
		}
		Counter
	`)
	require.NoError(t, err)
	code, err := Compile(prog)
	require.NoError(t, err)
	require.Len(t, code.Children, 1, "the type body compiles to one child unit")
}

func TestCompilePublicInstallsModuleAttribute(t *testing.T) {
	prog, err := parser.ParseProgram(`
		public answer = 42;
	`)
	require.NoError(t, err)
	code, err := Compile(prog)
	require.NoError(t, err)

	sawSetAttr := false
	for _, op := range code.Code {
		if op.Code == uint8(vm.SetAttr) {
			sawSetAttr = true
		}
	}
	require.True(t, sawSetAttr, "public declarations must emit SetAttr against the module")
}
