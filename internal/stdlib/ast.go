package stdlib

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/parser"
)

// newAST builds the `ast` debug module (SPEC_FULL.md §11.6): a single
// dump(src) builtin that re-parses a string and recursively prints the
// tree, grounded on the teacher's internal/prettyprinter walking
// conventions (one case per node kind, indentation by recursion
// depth) adapted from re-emitting source to a debug tree dump.
func newAST(rt *object.Runtime) *object.Module {
	m := rt.NewModule("ast", nil)
	set(rt, m, "dump", func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		src, err := expectString(args, 0, "ast.dump")
		if err != nil {
			return nil, err
		}
		prog, err := parser.ParseProgram(src)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		dumpProgram(&buf, prog)
		return rt.String(buf.String()), nil
	})
	rt.MarkInitialized(m)
	return m
}

func dumpProgram(buf *bytes.Buffer, prog *ast.Program) {
	fmt.Fprintln(buf, "Program")
	for _, s := range prog.Statements {
		dumpStatement(buf, s, 1)
	}
}

func indent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat("  ", depth))
}

func dumpStatement(buf *bytes.Buffer, s ast.Statement, depth int) {
	switch n := s.(type) {
	case *ast.ExprStatement:
		indent(buf, depth)
		fmt.Fprintln(buf, "ExprStatement")
		dumpExpr(buf, n.Expr, depth+1)
	case *ast.ReturnStatement:
		indent(buf, depth)
		fmt.Fprintln(buf, "Return")
		if n.Value != nil {
			dumpExpr(buf, n.Value, depth+1)
		}
	case *ast.PublicStatement:
		indent(buf, depth)
		fmt.Fprintln(buf, "Public")
		dumpStatement(buf, n.Inner, depth+1)
	case *ast.OpHookStatement:
		indent(buf, depth)
		fmt.Fprintf(buf, "OpHook(%s)\n", n.Hook)
		dumpExpr(buf, n.Body, depth+1)
	default:
		indent(buf, depth)
		fmt.Fprintf(buf, "%T\n", s)
	}
}

func dumpBody(buf *bytes.Buffer, stmts []ast.Statement, depth int) {
	for _, s := range stmts {
		dumpStatement(buf, s, depth)
	}
}

func dumpExpr(buf *bytes.Buffer, e ast.Expression, depth int) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.IntLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "Int(%d)\n", n.Value)
	case *ast.FloatLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "Float(%g)\n", n.Value)
	case *ast.StringLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "String(%q)\n", n.Value)
	case *ast.BoolLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "Bool(%v)\n", n.Value)
	case *ast.NullLiteral:
		indent(buf, depth)
		fmt.Fprintln(buf, "Null")
	case *ast.Identifier:
		indent(buf, depth)
		fmt.Fprintf(buf, "Ident(%s)\n", n.Name)
	case *ast.ThisExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "This")
	case *ast.TupleExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Tuple")
		for _, el := range n.Elements {
			dumpExpr(buf, el, depth+1)
		}
	case *ast.ArrayExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Array")
		for _, el := range n.Elements {
			dumpExpr(buf, el, depth+1)
		}
	case *ast.MapExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Map")
		for _, entry := range n.Entries {
			indent(buf, depth+1)
			fmt.Fprintln(buf, "Entry")
			dumpExpr(buf, entry.Key, depth+2)
			dumpExpr(buf, entry.Value, depth+2)
		}
	case *ast.BlockExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Block")
		dumpBody(buf, n.Statements, depth+1)
		if n.Tail != nil {
			dumpExpr(buf, n.Tail, depth+1)
		}
	case *ast.FunctionLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "Function(%s, params=%s)\n", n.Name, strings.Join(n.Params, ", "))
		dumpExpr(buf, n.Body, depth+1)
	case *ast.TypeLiteral:
		indent(buf, depth)
		fmt.Fprintf(buf, "Type(%s)\n", n.Name)
		dumpBody(buf, n.Members, depth+1)
	case *ast.IfExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "If")
		dumpExpr(buf, n.Cond, depth+1)
		dumpExpr(buf, n.Then, depth+1)
		if n.Else != nil {
			dumpExpr(buf, n.Else, depth+1)
		}
	case *ast.WhileExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "While")
		dumpExpr(buf, n.Cond, depth+1)
		dumpExpr(buf, n.Body, depth+1)
	case *ast.ForExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "For(%s)\n", n.Var)
		dumpExpr(buf, n.Iter, depth+1)
		dumpExpr(buf, n.Body, depth+1)
	case *ast.UnaryExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "Unary(%s)\n", n.Op)
		dumpExpr(buf, n.Operand, depth+1)
	case *ast.BinaryExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "Binary(%s)\n", n.Op)
		dumpExpr(buf, n.Left, depth+1)
		dumpExpr(buf, n.Right, depth+1)
	case *ast.AssignExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Assign")
		dumpExpr(buf, n.Target, depth+1)
		dumpExpr(buf, n.Value, depth+1)
	case *ast.CallExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Call")
		dumpExpr(buf, n.Callee, depth+1)
		for _, a := range n.Args {
			dumpExpr(buf, a, depth+1)
		}
	case *ast.MethodCallExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "MethodCall(%s)\n", n.Name)
		dumpExpr(buf, n.Target, depth+1)
		for _, a := range n.Args {
			dumpExpr(buf, a, depth+1)
		}
	case *ast.AttrCallExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "AttrCall(%s)\n", n.Name)
		dumpExpr(buf, n.Target, depth+1)
		for _, a := range n.Args {
			dumpExpr(buf, a, depth+1)
		}
	case *ast.AttrExpr:
		indent(buf, depth)
		fmt.Fprintf(buf, "Attr(%s)\n", n.Name)
		dumpExpr(buf, n.Target, depth+1)
	case *ast.IndexExpr:
		indent(buf, depth)
		fmt.Fprintln(buf, "Index")
		dumpExpr(buf, n.Target, depth+1)
		dumpExpr(buf, n.Index, depth+1)
	default:
		indent(buf, depth)
		fmt.Fprintf(buf, "%T\n", e)
	}
}
