package compiler

import (
	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/token"
	"github.com/coucya/rolscript/internal/vm"
)

// Compile lowers a whole parsed module into a top-level object.ScriptCode
// (spec.md §4.5/§4.8). The returned unit has ParamCount 0; its `this`
// is bound by the VM to the module object at run time.
func Compile(prog *ast.Program) (*object.ScriptCode, error) {
	b := newBuilder("<module>", nil)
	if err := b.compileStatements(prog.Statements, true); err != nil {
		return nil, err
	}
	b.emit(vm.Return)
	return b.finalize(0), nil
}

// compileStatements emits each statement in order. When tailIsValue is
// true, a final bare ExprStatement leaves its value on the stack
// instead of being popped (spec.md §4.4 "trailing expression").
func (b *builder) compileStatements(stmts []ast.Statement, tailIsValue bool) error {
	for i, s := range stmts {
		last := i == len(stmts)-1
		if err := b.compileStatement(s, last && tailIsValue); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) compileStatement(s ast.Statement, keepValue bool) error {
	switch n := s.(type) {
	case *ast.ExprStatement:
		if fn, ok := n.Expr.(*ast.FunctionLiteral); ok && fn.Name != "" {
			return b.compileNamedFunction(fn, keepValue, false)
		}
		if ty, ok := n.Expr.(*ast.TypeLiteral); ok && ty.Name != "" {
			return b.compileNamedType(ty, keepValue, false)
		}
		if err := b.compileExpr(n.Expr); err != nil {
			return err
		}
		if !keepValue {
			b.emit(vm.Pop)
		}
		return nil

	case *ast.ReturnStatement:
		if n.Value != nil {
			if err := b.compileExpr(n.Value); err != nil {
				return err
			}
		} else {
			b.emit(vm.LoadNull)
		}
		b.emit(vm.Return)
		return nil

	case *ast.OpHookStatement:
		return b.compileOpHook(n)

	case *ast.PublicStatement:
		return b.compilePublic(n, keepValue)

	default:
		return rerr.New(rerr.Runtime, "compiler: unsupported statement %T", s)
	}
}

// compilePublic compiles the wrapped statement, additionally installing
// the bound name as an attribute on `this` (the enclosing module, per
// spec.md §4.5 "public declarations install onto the module object").
func (b *builder) compilePublic(n *ast.PublicStatement, keepValue bool) error {
	switch inner := n.Inner.(type) {
	case *ast.ExprStatement:
		switch e := inner.Expr.(type) {
		case *ast.FunctionLiteral:
			if e.Name == "" {
				return rerr.New(rerr.Runtime, "public requires a named declaration")
			}
			if err := b.compileNamedFunction(e, true, true); err != nil {
				return err
			}
		case *ast.TypeLiteral:
			if e.Name == "" {
				return rerr.New(rerr.Runtime, "public requires a named declaration")
			}
			if err := b.compileNamedType(e, true, true); err != nil {
				return err
			}
		case *ast.AssignExpr:
			ident, ok := e.Target.(*ast.Identifier)
			if !ok {
				return rerr.New(rerr.Runtime, "public assignment target must be an identifier")
			}
			if err := b.compileExpr(e.Value); err != nil {
				return err
			}
			b.emit(vm.Dup) // one copy binds the local, one installs the attribute
			if _, ok := b.locals[ident.Name]; !ok {
				b.newLocal(ident.Name)
			}
			if err := b.resolveIdentStore(ident.Name); err != nil {
				return err
			}
			b.emitPublicInstall(ident.Name)
			if keepValue {
				b.resolveIdent(ident.Name)
			}
			return nil
		default:
			return rerr.New(rerr.Runtime, "unsupported public declaration %T", e)
		}
	default:
		return rerr.New(rerr.Runtime, "unsupported public declaration %T", inner)
	}
	if !keepValue {
		b.emit(vm.Pop)
	}
	return nil
}

// emitPublicInstall installs the value currently atop the stack as an
// attribute of the enclosing module (`this`), consuming it. SetAttr's
// result (always Null) is discarded rather than surfaced.
func (b *builder) emitPublicInstall(name string) {
	b.emit(vm.LoadThis) // [value, this]
	b.emit(vm.Rot)      // [this, value]
	b.emitA(vm.SetAttr, b.strConst(name))
	b.emit(vm.Pop) // discard SetAttr's Null result
}

// compileNamedFunction compiles `function name(params) { body }` used
// as a statement: binds the closure to a local slot named `name`
// (spec.md §4.5 "Function definition statement") and, if isPublic,
// additionally installs it as a module attribute.
func (b *builder) compileNamedFunction(fn *ast.FunctionLiteral, keepValue, isPublic bool) error {
	if err := b.compileFunctionLiteral(fn); err != nil {
		return err
	}
	b.newLocal(fn.Name)
	if isPublic {
		b.emit(vm.Dup)
	}
	if err := b.resolveIdentStore(fn.Name); err != nil {
		return err
	}
	if isPublic {
		b.emitPublicInstall(fn.Name)
	}
	if keepValue {
		b.resolveIdent(fn.Name)
	}
	return nil
}

func (b *builder) compileNamedType(ty *ast.TypeLiteral, keepValue, isPublic bool) error {
	if err := b.compileTypeLiteral(ty); err != nil {
		return err
	}
	b.newLocal(ty.Name)
	if isPublic {
		b.emit(vm.Dup)
	}
	if err := b.resolveIdentStore(ty.Name); err != nil {
		return err
	}
	if isPublic {
		b.emitPublicInstall(ty.Name)
	}
	if keepValue {
		b.resolveIdent(ty.Name)
	}
	return nil
}

// compileOpHook is only legal directly inside a type body; compileTypeLiteral
// handles OpHookStatement members itself (it needs access to the type's own
// builder state), so this path only triggers for a stray hook elsewhere.
func (b *builder) compileOpHook(n *ast.OpHookStatement) error {
	return rerr.New(rerr.Runtime, "operator hook %q outside a type body", n.Hook)
}

// ---- Expressions -----------------------------------------------------

func (b *builder) compileExpr(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.IntLiteral:
		if int64(int32(n.Value)) == n.Value {
			b.emitA(vm.LoadInt, int32(n.Value))
		} else {
			b.emitA(vm.LoadConstNum, b.numConst(float64(n.Value)))
		}
		return nil
	case *ast.FloatLiteral:
		b.emitA(vm.LoadConstNum, b.numConst(n.Value))
		return nil
	case *ast.StringLiteral:
		b.emitA(vm.LoadConstStr, b.strConst(n.Value))
		return nil
	case *ast.NullLiteral:
		b.emit(vm.LoadNull)
		return nil
	case *ast.BoolLiteral:
		if n.Value {
			b.emit(vm.LoadTrue)
		} else {
			b.emit(vm.LoadFalse)
		}
		return nil
	case *ast.Identifier:
		b.resolveIdent(n.Name)
		return nil
	case *ast.ThisExpr:
		b.emit(vm.LoadThis)
		return nil

	case *ast.TupleExpr:
		return b.compileExprList(n.Elements, vm.NewTuple)
	case *ast.ArrayExpr:
		return b.compileExprList(n.Elements, vm.NewArray)
	case *ast.MapExpr:
		return b.compileMapExpr(n)

	case *ast.BlockExpr:
		return b.compileBlockExpr(n)
	case *ast.FunctionLiteral:
		return b.compileFunctionLiteral(n)
	case *ast.TypeLiteral:
		return b.compileTypeLiteral(n)
	case *ast.IfExpr:
		return b.compileIfExpr(n)
	case *ast.WhileExpr:
		return b.compileWhileExpr(n)
	case *ast.ForExpr:
		return b.compileForExpr(n)

	case *ast.UnaryExpr:
		return b.compileUnaryExpr(n)
	case *ast.BinaryExpr:
		return b.compileBinaryExpr(n)
	case *ast.AssignExpr:
		return b.compileAssignExpr(n, true)

	case *ast.CallExpr:
		return b.compileCallExpr(n)
	case *ast.MethodCallExpr:
		return b.compileMethodCallExpr(n)
	case *ast.AttrCallExpr:
		return b.compileAttrCallExpr(n)
	case *ast.AttrExpr:
		if err := b.compileExpr(n.Target); err != nil {
			return err
		}
		b.emitA(vm.GetAttr, b.strConst(n.Name))
		return nil
	case *ast.IndexExpr:
		if err := b.compileExpr(n.Target); err != nil {
			return err
		}
		if err := b.compileExpr(n.Index); err != nil {
			return err
		}
		b.emit(vm.GetItem)
		return nil

	default:
		return rerr.New(rerr.Runtime, "compiler: unsupported expression %T", e)
	}
}

func (b *builder) compileExprList(elems []ast.Expression, code vm.Opcode) error {
	for _, e := range elems {
		if err := b.compileExpr(e); err != nil {
			return err
		}
	}
	b.emitA(code, int32(len(elems)))
	return nil
}

func (b *builder) compileMapExpr(n *ast.MapExpr) error {
	for _, ent := range n.Entries {
		if ent.Computed {
			if err := b.compileExpr(ent.Key); err != nil {
				return err
			}
		} else {
			lit, ok := ent.Key.(*ast.StringLiteral)
			if !ok {
				return rerr.New(rerr.Runtime, "map key must be a string literal")
			}
			b.emitA(vm.LoadConstStr, b.strConst(lit.Value))
		}
		if err := b.compileExpr(ent.Value); err != nil {
			return err
		}
	}
	b.emitA(vm.NewMap, int32(len(n.Entries)))
	return nil
}

// compileBlockExpr opens no new scope of its own: rolscript blocks
// share their enclosing function's local slots (spec.md §4.4 blocks
// are expression sequences, not separate lexical scopes).
func (b *builder) compileBlockExpr(n *ast.BlockExpr) error {
	if err := b.compileStatements(n.Statements, false); err != nil {
		return err
	}
	if n.Tail != nil {
		return b.compileExpr(n.Tail)
	}
	b.emit(vm.LoadNull)
	return nil
}

func (b *builder) compileIfExpr(n *ast.IfExpr) error {
	if err := b.compileExpr(n.Cond); err != nil {
		return err
	}
	elseLabel := b.newLabel()
	b.emitJump(vm.IfFalse, elseLabel)
	if err := b.compileExpr(n.Then); err != nil {
		return err
	}
	endLabel := b.newLabel()
	b.emitJump(vm.Jmp, endLabel)
	b.markLabel(elseLabel)
	if n.Else != nil {
		if err := b.compileExpr(n.Else); err != nil {
			return err
		}
	} else {
		b.emit(vm.LoadNull)
	}
	b.markLabel(endLabel)
	return nil
}

func (b *builder) compileWhileExpr(n *ast.WhileExpr) error {
	topLabel := b.newLabel()
	endLabel := b.newLabel()
	b.markLabel(topLabel)
	if err := b.compileExpr(n.Cond); err != nil {
		return err
	}
	b.emitJump(vm.IfFalse, endLabel)
	if err := b.compileExpr(n.Body); err != nil {
		return err
	}
	b.emit(vm.Pop)
	b.emitJump(vm.Jmp, topLabel)
	b.markLabel(endLabel)
	b.emit(vm.LoadNull)
	return nil
}

// compileForExpr compiles `for (x : iter) body` using the
// Iter/IterNext/Option protocol (spec.md §4.5 "For").
func (b *builder) compileForExpr(n *ast.ForExpr) error {
	if err := b.compileExpr(n.Iter); err != nil {
		return err
	}
	b.emit(vm.Iter)
	varSlot := b.newLocal(n.Var)

	topLabel := b.newLabel()
	endLabel := b.newLabel()
	b.markLabel(topLabel)
	b.emit(vm.IterNext) // leaves [iter, option]
	b.emitA(vm.GetAttrDup, b.strConst("has_value")) // [iter, option, has_value_fn]
	b.emitAB(vm.Call, 0, 0)                         // [iter, option, bool]
	b.emitJump(vm.IfFalse, endLabel)                // consumes bool -> [iter, option]
	b.emitA(vm.GetAttrDup, b.strConst("unwrap"))    // [iter, option, unwrap_fn]
	b.emitAB(vm.Call, 0, 0)                         // [iter, option, value]
	b.emitA(vm.SetLocal, varSlot)                   // consumes value -> [iter, option]
	b.emit(vm.Pop)                                  // drop this round's option -> [iter]

	if err := b.compileExpr(n.Body); err != nil {
		return err
	}
	b.emit(vm.Pop)
	b.emitJump(vm.Jmp, topLabel)

	b.markLabel(endLabel)
	// stack here: [iter, option] — discard both, loop value is null
	b.emit(vm.Pop)
	b.emit(vm.Pop)
	b.emit(vm.LoadNull)
	return nil
}

func (b *builder) compileUnaryExpr(n *ast.UnaryExpr) error {
	// unary minus is only legal directly before a numeric literal
	// (§4.3 lexical rule): fold it at compile time instead of emitting
	// a dedicated negate opcode, since the dispatch vector has none.
	if n.Op == token.MINUS {
		switch lit := n.Operand.(type) {
		case *ast.IntLiteral:
			neg := -lit.Value
			if int64(int32(neg)) == neg {
				b.emitA(vm.LoadInt, int32(neg))
			} else {
				b.emitA(vm.LoadConstNum, b.numConst(float64(neg)))
			}
			return nil
		case *ast.FloatLiteral:
			b.emitA(vm.LoadConstNum, b.numConst(-lit.Value))
			return nil
		default:
			return rerr.New(rerr.Runtime, "unary '-' is only legal directly before a numeric literal")
		}
	}
	if err := b.compileExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case token.BANG:
		b.emit(vm.OpNot)
	case token.TILDE:
		b.emit(vm.OpBitNot)
	default:
		return rerr.New(rerr.Runtime, "unsupported unary operator %s", n.Op)
	}
	return nil
}

func (b *builder) compileBinaryExpr(n *ast.BinaryExpr) error {
	// && and || short-circuit (§4.5); every other operator evaluates
	// both sides and emits a single dispatch opcode.
	switch n.Op {
	case token.AND:
		if err := b.compileExpr(n.Left); err != nil {
			return err
		}
		falseLabel := b.newLabel()
		endLabel := b.newLabel()
		b.emit(vm.Dup)
		b.emitJump(vm.IfFalse, falseLabel)
		b.emit(vm.Pop)
		if err := b.compileExpr(n.Right); err != nil {
			return err
		}
		b.emitJump(vm.Jmp, endLabel)
		b.markLabel(falseLabel)
		b.markLabel(endLabel)
		return nil
	case token.OR:
		if err := b.compileExpr(n.Left); err != nil {
			return err
		}
		trueLabel := b.newLabel()
		endLabel := b.newLabel()
		b.emit(vm.Dup)
		notFalseLabel := b.newLabel()
		b.emitJump(vm.IfFalse, notFalseLabel)
		b.emitJump(vm.Jmp, trueLabel)
		b.markLabel(notFalseLabel)
		b.emit(vm.Pop)
		if err := b.compileExpr(n.Right); err != nil {
			return err
		}
		b.emitJump(vm.Jmp, endLabel)
		b.markLabel(trueLabel)
		b.markLabel(endLabel)
		return nil
	}

	if err := b.compileExpr(n.Left); err != nil {
		return err
	}
	if err := b.compileExpr(n.Right); err != nil {
		return err
	}
	op, err := binOpcode(n.Op)
	if err != nil {
		return err
	}
	b.emit(op)
	return nil
}

// binOpcode maps every non-short-circuiting binary token to its
// dispatch opcode; <, >, <=, >= all derive from the single Cmp slot
// (spec.md §4.2 comparison operators share one dispatch hook).
func binOpcode(t token.Type) (vm.Opcode, error) {
	switch t {
	case token.PLUS:
		return vm.OpAdd, nil
	case token.MINUS:
		return vm.OpSub, nil
	case token.STAR:
		return vm.OpMul, nil
	case token.SLASH:
		return vm.OpDiv, nil
	case token.IDIV:
		return vm.OpIDiv, nil
	case token.PERCENT:
		return vm.OpMod, nil
	case token.POWER:
		return vm.OpPow, nil
	case token.AMP:
		return vm.OpBAnd, nil
	case token.PIPE:
		return vm.OpBOr, nil
	case token.CARET:
		return vm.OpBXor, nil
	case token.SHL:
		return vm.OpShl, nil
	case token.SHR:
		return vm.OpShr, nil
	case token.SPACESHIP:
		return vm.OpCmp, nil
	case token.EQ:
		return vm.OpEq, nil
	case token.NE:
		return vm.OpNe, nil
	case token.LT:
		return vm.OpLt, nil
	case token.LE:
		return vm.OpLe, nil
	case token.GT:
		return vm.OpGt, nil
	case token.GE:
		return vm.OpGe, nil
	default:
		return 0, rerr.New(rerr.Runtime, "unsupported binary operator %s", t)
	}
}

// compileAssignExpr compiles `target = value`. SetAttr/SetItem always
// push a Null result (spec.md §4.6), which is discarded here in favor
// of the already-held value copy when the assignment's own result is
// needed (§4.5 assignment is itself an expression).
func (b *builder) compileAssignExpr(n *ast.AssignExpr, keepValue bool) error {
	if err := b.compileExpr(n.Value); err != nil {
		return err
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if keepValue {
			b.emit(vm.Dup)
		}
		if _, ok := b.locals[target.Name]; !ok {
			if _, ok := b.resolveCapture(target.Name); !ok {
				b.newLocal(target.Name)
			}
		}
		return b.resolveIdentStore(target.Name)

	case *ast.AttrExpr:
		if keepValue {
			b.emit(vm.Dup) // [..V.., V, V]
		}
		if err := b.compileExpr(target.Target); err != nil { // [.., self]
			return err
		}
		b.emit(vm.Rot) // swap top two: [.., self, val] -> SetAttr order
		b.emitA(vm.SetAttr, b.strConst(target.Name))
		b.emit(vm.Pop) // discard SetAttr's Null
		return nil

	case *ast.IndexExpr:
		if keepValue {
			b.emit(vm.Dup)
		}
		if err := b.compileExpr(target.Target); err != nil {
			return err
		}
		if err := b.compileExpr(target.Index); err != nil {
			return err
		}
		// top three bottom->top: [val, self, index]; Rot3 rotates the
		// third-from-top (val) to the top, giving [self, index, val].
		b.emit(vm.Rot3)
		b.emit(vm.SetItem)
		b.emit(vm.Pop) // discard SetItem's Null
		return nil

	default:
		return rerr.New(rerr.Runtime, "invalid assignment target %T", n.Target)
	}
}

func (b *builder) compileCallExpr(n *ast.CallExpr) error {
	if err := b.compileExpr(n.Callee); err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := b.compileExpr(a); err != nil {
			return err
		}
	}
	b.emitA(vm.Call, int32(len(n.Args)))
	return nil
}

func (b *builder) compileMethodCallExpr(n *ast.MethodCallExpr) error {
	if err := b.compileExpr(n.Target); err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := b.compileExpr(a); err != nil {
			return err
		}
	}
	b.emitAB(vm.CallMethod, b.strConst(n.Name), int32(len(n.Args)))
	return nil
}

func (b *builder) compileAttrCallExpr(n *ast.AttrCallExpr) error {
	if err := b.compileExpr(n.Target); err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := b.compileExpr(a); err != nil {
			return err
		}
	}
	b.emitAB(vm.CallAttr, b.strConst(n.Name), int32(len(n.Args)))
	return nil
}

// compileFunctionLiteral compiles a closure body in a fresh child
// builder, then emits the parent-side capture array followed by
// NewClosure (spec.md §4.5 capture-bundling convention).
func (b *builder) compileFunctionLiteral(fn *ast.FunctionLiteral) error {
	name := fn.Name
	if name == "" {
		name = "<lambda>"
	}
	child := newBuilder(name, b)
	for _, p := range fn.Params {
		child.newLocal(p)
	}
	if err := child.compileExpr(fn.Body); err != nil {
		return err
	}
	child.emit(vm.Return)
	code := child.finalize(len(fn.Params))

	childIdx := int32(len(b.children))
	b.children = append(b.children, code)

	b.emitCaptureArray(child)
	b.emitA(vm.NewClosure, childIdx)
	return nil
}

// compileTypeLiteral compiles a type body in a fresh child builder:
// OpHookStatement members become SetOverload calls against `this`
// (the freshly allocated Type, per the NewType opcode's inline-run
// convention); ordinary statements run as the type's static
// initializer.
func (b *builder) compileTypeLiteral(ty *ast.TypeLiteral) error {
	child := newBuilder(ty.Name, b)
	for _, m := range ty.Members {
		if err := child.compileTypeMember(m); err != nil {
			return err
		}
	}
	child.emit(vm.LoadNull)
	child.emit(vm.Return)
	code := child.finalize(0)

	childIdx := int32(len(b.children))
	b.children = append(b.children, code)

	b.emitCaptureArray(child)
	b.emitA(vm.NewType, childIdx)
	return nil
}

func (b *builder) compileTypeMember(m ast.Statement) error {
	switch n := m.(type) {
	case *ast.OpHookStatement:
		fn := &ast.FunctionLiteral{Params: n.Params, Body: n.Body}
		if err := b.compileFunctionLiteral(fn); err != nil {
			return err
		}
		b.emit(vm.LoadThis)
		b.emitA(vm.SetOverload, b.strConst(n.Hook))
		b.emit(vm.Pop)
		return nil
	case *ast.ExprStatement:
		if fn, ok := n.Expr.(*ast.FunctionLiteral); ok && fn.Name != "" {
			if err := b.compileFunctionLiteral(fn); err != nil {
				return err
			}
			b.emit(vm.LoadThis)
			b.emit(vm.Rot)
			b.emitA(vm.SetAttr, b.strConst(fn.Name))
			b.emit(vm.Pop)
			return nil
		}
		return b.compileStatement(m, false)
	default:
		return b.compileStatement(m, false)
	}
}
