// Package ast defines the abstract syntax tree produced by the parser
// (spec.md §4.4).
package ast

import "github.com/coucya/rolscript/internal/token"

// Node is the base interface implemented by every AST node. Position
// is kept for precise error reporting (§4.4, §7).
type Node interface {
	Pos() (line, col int)
}

type base struct {
	Line, Column int
}

func (b base) Pos() (int, int) { return b.Line, b.Column }

// stmt/expr are embedded alongside base to mark a node as a Statement
// or Expression respectively, without letting every node satisfy both
// interfaces structurally.
type stmt struct{}

func (stmt) stmtNode() {}

type expr struct{}

func (expr) exprNode() {}

// Descriptor classifies the grammar production that built a node
// (§4.4): it decides whether a trailing semicolon is required and
// whether the node may be absorbed as a block/program's trailing
// value.
type Descriptor int

const (
	// DescExpr: a pure value expression (literal, binary op, call...).
	DescExpr Descriptor = iota
	// DescVarExpr: an assignable place (identifier, attribute, index).
	DescVarExpr
	// DescStatExpr: a construct usable as either statement or trailing
	// expression (if/while/for/block/function/type).
	DescStatExpr
	// DescStat: statement-only (return, public-wrapped declarations).
	// Named function and type definitions are DescStatExpr.
	DescStat
)

// Statement is anything that can appear in a statement list. Plain
// expressions used as statements are wrapped in ExprStatement.
type Statement interface {
	Node
	stmtNode()
}

// Expression is anything that yields a value.
type Expression interface {
	Node
	exprNode()
}

// ---- Program -------------------------------------------------------

// Program is the root node: a module body is just a statement list
// whose final expression statement (if any) is the module's value.
type Program struct {
	base
	Statements []Statement
}

// ---- Literals & identifiers -----------------------------------------

type IntLiteral struct {
	base
	expr
	Value int64
}

type FloatLiteral struct {
	base
	expr
	Value float64
}

type StringLiteral struct {
	base
	expr
	Value string
}

type NullLiteral struct {
	base
	expr
}

type BoolLiteral struct {
	base
	expr
	Value bool
}

type Identifier struct {
	base
	expr
	Name string
}

type ThisExpr struct {
	base
	expr
}

// ---- Aggregates -----------------------------------------------------

type TupleExpr struct {
	base
	expr
	Elements []Expression
}

type ArrayExpr struct {
	base
	expr
	Elements []Expression
}

// MapEntry is one key:value pair of a map literal. A key written as
// `[expr]` sets Computed=true; otherwise Key holds a StringLiteral
// (bare identifier or quoted string key).
type MapEntry struct {
	Key      Expression
	Value    Expression
	Computed bool
}

type MapExpr struct {
	base
	expr
	Entries []MapEntry
}

// ---- Blocks, functions, control flow ---------------------------------

// BlockExpr is `{ stat; ...; expr? }`. Tail is nil when the block ends
// in a statement rather than a trailing expression.
type BlockExpr struct {
	base
	expr
	Statements []Statement
	Tail       Expression
}

// FunctionLiteral covers lambdas (`ident => expr`, `(params) => expr`)
// and `function name(params) { body }` used as an expression.
type FunctionLiteral struct {
	base
	expr
	Name   string // empty for lambdas
	Params []string
	Body   Expression
}

// A `function name(params) { body }` occurring directly in a
// statement list (not as a block's trailing expression) is represented
// as an ExprStatement wrapping a named FunctionLiteral; the compiler
// recognises this shape and additionally binds the closure to a local
// slot named after the function (§4.5 "Function definition
// statement"). The same is true of a named TypeLiteral.

// OpHookStatement is an operator-overload declaration inside a type
// body: `function op_token(params) { body }`, `function [new](...)`,
// `function [](params)` (get_item), `function [] = (params)`
// (set_item), `function ()(params)` (call), `function !(...)` (not),
// `function ~(...)` (bitnot).
type OpHookStatement struct {
	base
	stmt
	Hook   string // one of the operator-role names in §4.2
	Params []string
	Body   Expression
}

// TypeLiteral is `type name { members }`.
type TypeLiteral struct {
	base
	expr
	Name    string
	Members []Statement
}

type IfExpr struct {
	base
	expr
	Cond Expression
	Then Expression
	Else Expression // nil when no else clause
}

type WhileExpr struct {
	base
	expr
	Cond Expression
	Body Expression
}

type ForExpr struct {
	base
	expr
	Var  string
	Iter Expression
	Body Expression
}

type ReturnStatement struct {
	base
	stmt
	Value Expression // nil for bare `return;`
}

// PublicStatement wraps an assignment, function-def, or type-def that
// carries the `public` prefix: the compiler additionally installs the
// bound name as an attribute on the enclosing module's `this`.
type PublicStatement struct {
	base
	stmt
	Inner Statement
}

type ExprStatement struct {
	base
	stmt
	Expr Expression
}

// ---- Operators, calls, access -----------------------------------------

type UnaryExpr struct {
	base
	expr
	Op      token.Type
	Operand Expression
}

type BinaryExpr struct {
	base
	expr
	Op          token.Type
	Left, Right Expression
}

// AssignExpr covers identifier, attribute and index targets; Target's
// concrete type selects the emitted instruction (§4.5 Assignment).
type AssignExpr struct {
	base
	expr
	Target Expression
	Value  Expression
}

// CallExpr is a plain call `f(a, ...)`.
type CallExpr struct {
	base
	expr
	Callee Expression
	Args   []Expression
}

// MethodCallExpr is `t.m(a, ...)`: resolves m via t's type's attribute
// map and calls with this = t.
type MethodCallExpr struct {
	base
	expr
	Target Expression
	Name   string
	Args   []Expression
}

// AttrCallExpr is `t::m(a, ...)`: fetches t.m via get_attr, then calls
// with this = t.
type AttrCallExpr struct {
	base
	expr
	Target Expression
	Name   string
	Args   []Expression
}

// AttrExpr is attribute read `t.m` (not immediately called).
type AttrExpr struct {
	base
	expr
	Target Expression
	Name   string
}

// IndexExpr is `t[i]`.
type IndexExpr struct {
	base
	expr
	Target Expression
	Index  Expression
}

// NewNode constructors are intentionally omitted: the parser populates
// struct literals directly so every field stays visible at the call
// site.
