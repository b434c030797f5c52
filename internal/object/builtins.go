package object

import (
	"math"

	"github.com/coucya/rolscript/internal/rerr"
)

// installBuiltinTypes allocates every built-in Type object and wires
// its dispatch vector (spec.md §3/§4.2). It runs once, at the start of
// NewRuntime, before any value is constructed.
func (rt *Runtime) installBuiltinTypes() {
	// The meta-type: every Type object's own header.Type() points here,
	// including Type itself (spec.md §3: "A Type is a heap value like
	// any other").
	meta := &Type{Name: "Type", Attrs: map[string]Value{}}
	rt.Heap.Register(meta, meta, 64) // the type of Type is Type itself
	rt.types.Type = meta

	mk := func(name string) *Type { return rt.newNativeType(name, meta) }

	rt.types.Null = mk("Null")
	rt.types.Bool = mk("Bool")
	rt.types.Int = mk("Int")
	rt.types.Float = mk("Float")
	rt.types.String = mk("String")
	rt.types.Tuple = mk("Tuple")
	rt.types.Array = mk("Array")
	rt.types.Map = mk("Map")
	rt.types.Option = mk("Option")
	rt.types.Function = mk("Function")
	rt.types.ScriptCode = mk("ScriptCode")
	rt.types.Module = mk("Module")
	rt.types.ArrayIter = mk("Iterator")
	rt.types.Ast = mk("Ast")

	// installBuiltinTypes runs before any instance exists, so every
	// built-in Type is permanently retained here — otherwise a GC cycle
	// triggered while zero instances of some type are briefly live
	// would condemn the Type object itself.
	for _, t := range []*Type{
		meta, rt.types.Null, rt.types.Bool, rt.types.Int, rt.types.Float, rt.types.String,
		rt.types.Tuple, rt.types.Array, rt.types.Map, rt.types.Option, rt.types.Function,
		rt.types.ScriptCode, rt.types.Module, rt.types.ArrayIter, rt.types.Ast,
	} {
		rt.Heap.IncRef(t)
	}

	// Members a type body sets on `this` land in the Type's Attrs;
	// calling a Type value constructs an instance through its New slot.
	meta.SetAttr = func(rt *Runtime, self Value, name string, val Value) error {
		ty := self.(*Type)
		if old, ok := ty.Attrs[name]; ok && old != nil {
			rt.Release(old)
		}
		ty.Attrs[name] = rt.Retain(val)
		return nil
	}
	meta.Call = func(rt *Runtime, self Value, args []Value) (Value, error) {
		ty := self.(*Type)
		if ty.New == nil {
			return nil, rerr.Unsupported("()", ty.Name)
		}
		return rt.NewInstance(ty, args)
	}

	rt.types.Null.Eq = nullEq
	rt.types.Null.Str = nullStr
	rt.types.Null.Hash = nullHash

	rt.types.Bool.Eq = boolEq
	rt.types.Bool.Str = boolStr
	rt.types.Bool.Hash = boolHash
	rt.types.Bool.Not = boolNot

	t := rt.types.Int
	t.Eq, t.Cmp, t.Str, t.Hash = intEq, intCmp, intStr, intHash
	t.Add = intArith("+", sum, func(a, b float64) float64 { return a + b })
	t.Sub = intArith("-", diff, func(a, b float64) float64 { return a - b })
	t.Mul = intArith("*", prod, func(a, b float64) float64 { return a * b })
	t.Div = intDiv
	t.IDiv = intArith("//", intIDivFn, func(a, b float64) float64 { return math.Floor(a / b) })
	t.Mod = intArith("%", intModFn, func(a, b float64) float64 { return a - math.Abs(b)*math.Floor(a/math.Abs(b)) })
	t.Pow = intPow
	t.BAnd = intBit("&", func(a, b int64) int64 { return a & b })
	t.BOr = intBit("|", func(a, b int64) int64 { return a | b })
	t.BXor = intBit("^", func(a, b int64) int64 { return a ^ b })
	t.Shl = intShift("<<", func(a, b int64) int64 { return a << uint(b) })
	t.Shr = intShift(">>", func(a, b int64) int64 { return a >> uint(b) })
	t.BitNot = intBitNot

	tf := rt.types.Float
	tf.Eq, tf.Cmp, tf.Str, tf.Hash = floatEq, floatCmp, floatStr, floatHash
	tf.Add = floatArith("+", func(a, b float64) (float64, error) { return a + b, nil })
	tf.Sub = floatArith("-", func(a, b float64) (float64, error) { return a - b, nil })
	tf.Mul = floatArith("*", func(a, b float64) (float64, error) { return a * b, nil })
	tf.Div = floatArith("/", func(a, b float64) (float64, error) { return a / b, nil })
	tf.IDiv = floatArith("//", func(a, b float64) (float64, error) { return math.Floor(a / b), nil })
	tf.Mod = floatArith("%", func(a, b float64) (float64, error) { return a - math.Abs(b)*math.Floor(a/math.Abs(b)), nil })
	tf.Pow = floatArith("**", func(a, b float64) (float64, error) { return math.Pow(a, b), nil })

	ts := rt.types.String
	ts.Eq, ts.Cmp, ts.Str, ts.Hash = stringEq, stringCmp, stringStr, stringHash
	ts.Add = stringAdd
	ts.GetItem = stringGetItem

	tt := rt.types.Tuple
	tt.Eq, tt.Str, tt.GetItem, tt.Iter = tupleEq, tupleStr, tupleGetItem, tupleIter

	ta := rt.types.Array
	ta.Eq, ta.Str, ta.GetItem, ta.SetItem, ta.Iter = arrayEq, arrayStr, arrayGetItem, arraySetItem, arrayIter
	ta.GetAttr = arrayGetAttr

	tm := rt.types.Map
	tm.Str, tm.GetItem, tm.SetItem = mapStr, mapGetItem, mapSetItem
	tm.GetAttr = mapGetAttr

	to := rt.types.Option
	to.Str, to.Eq = optionStr, optionEq
	to.GetAttr = optionGetAttr

	tfn := rt.types.Function
	tfn.Str, tfn.Call = functionStr, functionCall

	rt.types.ArrayIter.Next = seqIterNext

	rt.types.Module.GetAttr = moduleGetAttr
	rt.types.Module.SetAttr = moduleSetAttr
	rt.types.Module.Str = moduleStr

	rt.types.Ast.Str = astStr
}

func sum(a, b int64) (int64, error)  { return a + b, nil }
func diff(a, b int64) (int64, error) { return a - b, nil }
func prod(a, b int64) (int64, error) { return a * b, nil }
