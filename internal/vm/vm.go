package vm

import (
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// VM owns the process-wide Runtime and the native call-stack depth
// counter used for spec.md §4.7's recursion guard. It is the concrete
// implementation behind object.Runtime.Invoke.
type VM struct {
	RT    *object.Runtime
	depth int
}

// New builds a VM over rt and wires rt.Invoke back to it, so that
// native code (dynamic-type dispatch shims, Function.Call) can invoke
// script closures without the object package depending on vm.
func New(rt *object.Runtime) *VM {
	v := &VM{RT: rt}
	rt.Invoke = v.Invoke
	return v
}

// Invoke is object.Invoker's concrete implementation: it runs fn
// (whichever of Function's three shapes) with the given this/args and
// returns its single result value (spec.md §4.7 call protocol).
func (v *VM) Invoke(rt *object.Runtime, fn object.Value, this object.Value, args []object.Value) (object.Value, error) {
	f, ok := fn.(*object.Function)
	if !ok {
		return nil, rerr.New(rerr.Type, "value is not callable")
	}
	switch {
	case f.Native != nil:
		return f.Native(rt, args)
	case f.Callable != nil:
		return f.Callable.Invoke(rt, args)
	case f.Code != nil:
		return v.runClosure(f, this, args)
	default:
		return nil, rerr.New(rerr.Type, "function has no body")
	}
}

func (v *VM) runClosure(f *object.Function, this object.Value, args []object.Value) (object.Value, error) {
	if err := checkDepth(v.depth + 1); err != nil {
		return nil, err
	}
	v.depth++
	defer func() { v.depth-- }()

	fr := newFrame(f.Code, this, args, f.Captured)
	return v.run(fr)
}

// RunProgram executes code as the top-level module body (spec.md
// §4.8): `this` is the module object whose attributes `public`
// bindings install into.
func (v *VM) RunProgram(code *object.ScriptCode, this object.Value) (object.Value, error) {
	fr := newFrame(code, this, nil, nil)
	return v.run(fr)
}

// run is the main fetch-decode-execute loop over one frame (spec.md
// §4.6/§4.7). It returns the frame's single Return value.
func (v *VM) run(fr *frame) (object.Value, error) {
	rt := v.RT
	for {
		if fr.ip >= len(fr.code.Code) {
			return rt.Null(), nil
		}
		op := fr.code.Code[fr.ip]
		fr.ip++

		switch op.Code {
		case uint8(Nop):

		case uint8(LoadNull):
			fr.push(rt.Null())
		case uint8(LoadTrue):
			fr.push(rt.Bool(true))
		case uint8(LoadFalse):
			fr.push(rt.Bool(false))
		case uint8(LoadInt):
			fr.push(rt.Int(int64(op.A)))
		case uint8(LoadConstNum):
			fr.push(rt.Float(fr.code.ConstNums[op.A]))
		case uint8(LoadConstStr):
			fr.push(rt.String(fr.code.ConstStrs[op.A]))
		case uint8(LoadThis):
			fr.push(fr.this)

		case uint8(NewTuple):
			fr.push(rt.Tuple(fr.popN(int(op.A))))
		case uint8(NewArray):
			fr.push(rt.Array(fr.popN(int(op.A))))
		case uint8(NewMap):
			pairs := fr.popN(int(op.A) * 2)
			m := rt.Map()
			for i := 0; i+1 < len(pairs); i += 2 {
				if err := object.SetItem(rt, m, pairs[i], pairs[i+1]); err != nil {
					return nil, err
				}
			}
			fr.push(m)
		case uint8(NewClosure):
			child := fr.code.Children[op.A]
			captured := fr.pop().(*object.Array).Elements
			fr.push(rt.NewClosure(child, captured))
		case uint8(NewType):
			child := fr.code.Children[op.A]
			captured := fr.pop().(*object.Array).Elements
			t := rt.NewDynamicType(child.Name)
			if _, err := v.run(newFrame(child, t, nil, captured)); err != nil {
				return nil, err
			}
			fr.push(t)

		case uint8(SetOverload):
			typV := fr.pop()
			closure := fr.pop()
			hook := fr.code.ConstStrs[op.A]
			t, ok := typV.(*object.Type)
			if !ok {
				return nil, rerr.New(rerr.Type, "SetOverload target is not a type")
			}
			if err := t.SetOverload(rt, hook, closure); err != nil {
				return nil, err
			}
			fr.push(rt.Null())

		case uint8(GetCapture):
			fr.push(fr.captured[op.A])
		case uint8(SetCapture):
			fr.captured[op.A] = fr.pop()
		case uint8(GetLocal):
			lv := fr.locals[op.A]
			if lv == nil {
				lv = rt.Null()
			}
			fr.push(lv)
		case uint8(SetLocal):
			fr.locals[op.A] = fr.pop()
		case uint8(GetGlobal):
			name := fr.code.ConstStrs[op.A]
			g, ok := rt.Globals[name]
			if !ok {
				return nil, rerr.New(rerr.Runtime, "undefined global %q", name)
			}
			fr.push(g)

		case uint8(GetAttr):
			self := fr.pop()
			val, err := object.GetAttr(rt, self, fr.code.ConstStrs[op.A])
			if err != nil {
				return nil, err
			}
			fr.push(val)
		case uint8(GetAttrDup):
			self := fr.top()
			val, err := object.GetAttr(rt, self, fr.code.ConstStrs[op.A])
			if err != nil {
				return nil, err
			}
			fr.push(val)
		case uint8(SetAttr):
			val := fr.pop()
			self := fr.pop()
			if err := object.SetAttr(rt, self, fr.code.ConstStrs[op.A], val); err != nil {
				return nil, err
			}
			fr.push(rt.Null())
		case uint8(GetItem):
			idx := fr.pop()
			self := fr.pop()
			val, err := object.GetItem(rt, self, idx)
			if err != nil {
				return nil, err
			}
			fr.push(val)
		case uint8(SetItem):
			val := fr.pop()
			idx := fr.pop()
			self := fr.pop()
			if err := object.SetItem(rt, self, idx, val); err != nil {
				return nil, err
			}
			fr.push(rt.Null())

		case uint8(OpAdd), uint8(OpSub), uint8(OpMul), uint8(OpDiv), uint8(OpIDiv), uint8(OpMod), uint8(OpPow),
			uint8(OpBAnd), uint8(OpBOr), uint8(OpBXor), uint8(OpShl), uint8(OpShr):
			b := fr.pop()
			a := fr.pop()
			res, err := dispatchArith(rt, Opcode(op.Code), a, b)
			if err != nil {
				return nil, err
			}
			fr.push(res)

		case uint8(OpCmp):
			b := fr.pop()
			a := fr.pop()
			c, err := object.Cmp(rt, a, b)
			if err != nil {
				return nil, err
			}
			fr.push(rt.Int(int64(c)))
		case uint8(OpEq), uint8(OpNe):
			b := fr.pop()
			a := fr.pop()
			eq, err := object.Eq(rt, a, b)
			if err != nil {
				return nil, err
			}
			if op.Code == uint8(OpNe) {
				eq = !eq
			}
			fr.push(rt.Bool(eq))
		case uint8(OpLt), uint8(OpLe), uint8(OpGt), uint8(OpGe):
			b := fr.pop()
			a := fr.pop()
			c, err := object.Cmp(rt, a, b)
			if err != nil {
				return nil, err
			}
			var res bool
			switch Opcode(op.Code) {
			case OpLt:
				res = c < 0
			case OpLe:
				res = c <= 0
			case OpGt:
				res = c > 0
			case OpGe:
				res = c >= 0
			}
			fr.push(rt.Bool(res))

		case uint8(OpNot):
			val := fr.pop()
			r, err := object.Not(rt, val)
			if err != nil {
				return nil, err
			}
			fr.push(r)
		case uint8(OpBitNot):
			val := fr.pop()
			r, err := object.BitNot(rt, val)
			if err != nil {
				return nil, err
			}
			fr.push(r)

		case uint8(Iter):
			self := fr.pop()
			t := object.TypeOf(self)
			if t.Iter == nil {
				return nil, rerr.New(rerr.Type, "%q is not iterable", t.Name)
			}
			it, err := t.Iter(rt, self)
			if err != nil {
				return nil, err
			}
			fr.push(it)
		case uint8(IterNext):
			self := fr.top()
			t := object.TypeOf(self)
			if t.Next == nil {
				return nil, rerr.New(rerr.Type, "%q is not an iterator", t.Name)
			}
			opt, err := t.Next(rt, self)
			if err != nil {
				return nil, err
			}
			fr.push(opt)

		case uint8(IfFalse):
			cond := fr.pop()
			if !object.Truthy(cond) {
				fr.ip += int(op.A)
			}
		case uint8(Jmp):
			fr.ip += int(op.A)

		case uint8(Call):
			args := fr.popN(int(op.A))
			callee := fr.pop()
			res, err := object.Call(rt, callee, args)
			if err != nil {
				return nil, err
			}
			fr.push(res)
		case uint8(CallMethod):
			args := fr.popN(int(op.B))
			recv := fr.pop()
			name := fr.code.ConstStrs[op.A]
			fn, err := object.GetAttr(rt, recv, name)
			if err != nil {
				return nil, err
			}
			res, err := rt.Invoke(rt, fn, recv, args)
			if err != nil {
				return nil, err
			}
			fr.push(res)
		case uint8(CallAttr):
			args := fr.popN(int(op.B))
			recv := fr.pop()
			name := fr.code.ConstStrs[op.A]
			fn, err := object.GetAttr(rt, recv, name)
			if err != nil {
				return nil, err
			}
			res, err := rt.Invoke(rt, fn, recv, args)
			if err != nil {
				return nil, err
			}
			fr.push(res)
		case uint8(Return):
			if len(fr.stack) == 0 {
				return rt.Null(), nil
			}
			return fr.pop(), nil

		case uint8(Pop):
			fr.pop()
		case uint8(Dup):
			fr.dup()
		case uint8(Rot):
			fr.rot2()
		case uint8(Rot3):
			fr.rot3()
		case uint8(Rot4):
			fr.rot4()

		default:
			return nil, rerr.New(rerr.Runtime, "invalid opcode %d", op.Code)
		}
	}
}

func dispatchArith(rt *object.Runtime, op Opcode, a, b object.Value) (object.Value, error) {
	switch op {
	case OpAdd:
		return object.Add(rt, a, b)
	case OpSub:
		return object.Sub(rt, a, b)
	case OpMul:
		return object.Mul(rt, a, b)
	case OpDiv:
		return object.Div(rt, a, b)
	case OpIDiv:
		return object.IDiv(rt, a, b)
	case OpMod:
		return object.Mod(rt, a, b)
	case OpPow:
		return object.Pow(rt, a, b)
	case OpBAnd:
		return object.BAnd(rt, a, b)
	case OpBOr:
		return object.BOr(rt, a, b)
	case OpBXor:
		return object.BXor(rt, a, b)
	case OpShl:
		return object.Shl(rt, a, b)
	case OpShr:
		return object.Shr(rt, a, b)
	default:
		return nil, rerr.New(rerr.Runtime, "invalid arithmetic opcode %d", op)
	}
}
