package object

import (
	"fmt"

	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/rerr"
)

// Type is itself a heap value (spec.md §3: "A Type is a heap value
// like any other"). Its dispatch vector is the single place every
// operation on an instance of that type is resolved — native built-in
// types populate the vector with Go closures directly; dynamic
// (script-defined) types populate it with generic shims that forward
// into Overrides, a map of script closures installed by SetOverload.
// Either way the VM calls through the same fields (spec.md §4.2 Design
// Notes: "An implementation may unify these... without changing
// semantics").
type Type struct {
	heap.Header

	Name  string
	IsDyn bool

	// Attrs holds named members: plain functions defined in a type
	// body (installed via SetAttr on `this`), and get_attr's fallback
	// lookup surface for built-ins that expose methods this way.
	Attrs map[string]Value

	// Overrides holds the operator-hook closures a dynamic type body
	// installed via SetOverload (spec.md §4.6 SetOverload). Unused by
	// native built-in types.
	Overrides map[string]Value

	New         func(rt *Runtime, self *Type, args []Value) (Value, error)
	InstDestroy func(rt *Runtime, self Value) error

	GetAttr func(rt *Runtime, self Value, name string) (Value, error)
	SetAttr func(rt *Runtime, self Value, name string, val Value) error
	GetItem func(rt *Runtime, self Value, idx Value) (Value, error)
	SetItem func(rt *Runtime, self Value, idx Value, val Value) error
	Call    func(rt *Runtime, self Value, args []Value) (Value, error)

	Eq  func(rt *Runtime, a, b Value) (bool, error)
	Cmp func(rt *Runtime, a, b Value) (int, error)

	Str  func(rt *Runtime, self Value) (string, error)
	Hash func(rt *Runtime, self Value) (uint64, error)

	Iter func(rt *Runtime, self Value) (Value, error)
	Next func(rt *Runtime, self Value) (Value, error) // returns an Option

	Add, Sub, Mul, Div, IDiv, Mod, Pow      func(rt *Runtime, a, b Value) (Value, error)
	BAnd, BOr, BXor, Shl, Shr               func(rt *Runtime, a, b Value) (Value, error)
	Not, BitNot                             func(rt *Runtime, self Value) (Value, error)
}

func (t *Type) GcHeader() *heap.Header { return &t.Header }

func (t *Type) VisitRefs(visit func(heap.Object)) {
	for _, v := range t.Attrs {
		if v != nil {
			visit(v)
		}
	}
	for _, v := range t.Overrides {
		if v != nil {
			visit(v)
		}
	}
}

// Destroy satisfies heap.Object. A Type holds no non-GC resources of
// its own; its Attrs/Overrides values are released by the collector
// via VisitRefs like any other reference.
func (t *Type) Destroy() error { return nil }

// TypeOf returns v's runtime Type.
func TypeOf(v Value) *Type {
	return v.GcHeader().Type().(*Type)
}

// newNativeType allocates and registers a Type object for a built-in,
// non-script-visible kind (Null, Bool, Int, ...). metaType is the
// "type of types" Type object every Type's own header points at.
func (rt *Runtime) newNativeType(name string, metaType *Type) *Type {
	t := &Type{Name: name, Attrs: map[string]Value{}}
	var typPtr heap.Object
	if metaType != nil {
		typPtr = metaType
	}
	rt.Heap.Register(t, typPtr, 64)
	return t
}

// NewDynamicType implements the `NewType` opcode (spec.md §4.6): it
// allocates a fresh Type object, marks it dynamic, and wires its
// dispatch vector to the generic shims that forward to Overrides.
func (rt *Runtime) NewDynamicType(name string) *Type {
	t := &Type{
		Name:      name,
		IsDyn:     true,
		Attrs:     map[string]Value{},
		Overrides: map[string]Value{},
	}
	rt.Heap.Register(t, rt.types.Type, 64)
	installDynamicDispatch(t)
	return t
}

// SetOverload installs fn (a script closure Value) into the dispatch
// slot named by hook (spec.md §4.6 SetOverload), retaining it in
// Overrides. The vector fields are not touched here: NewDynamicType
// already wired every one of them to a shim that looks the hook up in
// Overrides at call time.
func (t *Type) SetOverload(rt *Runtime, hook string, fn Value) error {
	if !t.IsDyn {
		return rerr.New(rerr.Type, "cannot install overload on native type %q", t.Name)
	}
	if old, ok := t.Overrides[hook]; ok && old != nil {
		rt.Release(old)
	}
	t.Overrides[hook] = rt.Retain(fn)
	return nil
}

func installDynamicDispatch(t *Type) {
	call := func(rt *Runtime, hook string, self Value, args ...Value) (Value, bool, error) {
		fn, ok := t.Overrides[hook]
		if !ok || fn == nil {
			return nil, false, nil
		}
		v, err := rt.Invoke(rt, fn, self, args)
		return v, true, err
	}

	t.New = func(rt *Runtime, self *Type, args []Value) (Value, error) {
		inst := rt.newDynamicInstance(self)
		fn, ok := self.Overrides["new"]
		if !ok || fn == nil {
			return nil, rerr.New(rerr.Type, "type %q has no constructor", self.Name)
		}
		if _, err := rt.Invoke(rt, fn, inst, args); err != nil {
			return nil, err
		}
		return inst, nil
	}
	t.InstDestroy = func(rt *Runtime, self Value) error {
		_, _, err := call(rt, "destroy", self)
		return err
	}
	t.GetAttr = func(rt *Runtime, self Value, name string) (Value, error) {
		inst := self.(*DynamicInstance)
		if v, ok := inst.Attrs[name]; ok {
			return v, nil
		}
		if v, ok := t.Attrs[name]; ok {
			return v, nil
		}
		return nil, rerr.Runtimef("no attribute %q on %q", name, t.Name)
	}
	t.SetAttr = func(rt *Runtime, self Value, name string, val Value) error {
		inst := self.(*DynamicInstance)
		if old, ok := inst.Attrs[name]; ok && old != nil {
			rt.Release(old)
		}
		inst.Attrs[name] = rt.Retain(val)
		return nil
	}
	t.GetItem = func(rt *Runtime, self Value, idx Value) (Value, error) {
		v, ok, err := call(rt, "get_item", self, idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, rerr.Unsupported("[]", t.Name)
		}
		return v, nil
	}
	t.SetItem = func(rt *Runtime, self Value, idx, val Value) error {
		_, ok, err := call(rt, "set_item", self, idx, val)
		if err != nil {
			return err
		}
		if !ok {
			return rerr.Unsupported("[]=", t.Name)
		}
		return nil
	}
	t.Call = func(rt *Runtime, self Value, args []Value) (Value, error) {
		v, ok, err := call(rt, "call", self, args...)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, rerr.Unsupported("()", t.Name)
		}
		return v, nil
	}
	t.Eq = func(rt *Runtime, a, b Value) (bool, error) {
		v, ok, err := call(rt, "eq", a, b)
		if err != nil {
			return false, err
		}
		if !ok {
			return a == b, nil
		}
		return Truthy(v), nil
	}
	t.Cmp = func(rt *Runtime, a, b Value) (int, error) {
		v, ok, err := call(rt, "cmp", a, b)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, rerr.Unsupported("<=>", t.Name, TypeOf(b).Name)
		}
		i, ok := v.(*Int)
		if !ok {
			return 0, rerr.New(rerr.Type, "cmp hook for %q must return an int", t.Name)
		}
		switch {
		case i.Value < 0:
			return -1, nil
		case i.Value > 0:
			return 1, nil
		default:
			return 0, nil
		}
	}
	t.Str = func(rt *Runtime, self Value) (string, error) {
		v, ok, err := call(rt, "str", self)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("<%s instance>", t.Name), nil
		}
		s, ok := v.(*String)
		if !ok {
			return "", rerr.New(rerr.Type, "str hook for %q must return a string", t.Name)
		}
		return s.Value, nil
	}
	t.Hash = func(rt *Runtime, self Value) (uint64, error) {
		v, ok, err := call(rt, "hash", self)
		if err != nil {
			return 0, err
		}
		if !ok {
			return defaultIdentityHash(self), nil
		}
		i, ok := v.(*Int)
		if !ok {
			return 0, rerr.New(rerr.Type, "hash hook for %q must return an int", t.Name)
		}
		return uint64(i.Value), nil
	}
	t.Iter = func(rt *Runtime, self Value) (Value, error) {
		v, ok, err := call(rt, "iter", self)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, rerr.Unsupported("iter", t.Name)
		}
		return v, nil
	}
	t.Next = func(rt *Runtime, self Value) (Value, error) {
		v, ok, err := call(rt, "next", self)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, rerr.Unsupported("next", t.Name)
		}
		return v, nil
	}

	arith := func(hook string) func(rt *Runtime, a, b Value) (Value, error) {
		return func(rt *Runtime, a, b Value) (Value, error) {
			v, ok, err := call(rt, hook, a, b)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, rerr.Unsupported(hook, t.Name, TypeOf(b).Name)
			}
			return v, nil
		}
	}
	t.Add, t.Sub, t.Mul = arith("add"), arith("sub"), arith("mul")
	t.Div, t.IDiv, t.Mod, t.Pow = arith("div"), arith("idiv"), arith("mod"), arith("pow")
	t.BAnd, t.BOr, t.BXor = arith("band"), arith("bor"), arith("bxor")
	t.Shl, t.Shr = arith("shl"), arith("shr")

	unary := func(hook string) func(rt *Runtime, self Value) (Value, error) {
		return func(rt *Runtime, self Value) (Value, error) {
			v, ok, err := call(rt, hook, self)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, rerr.Unsupported(hook, t.Name)
			}
			return v, nil
		}
	}
	t.Not, t.BitNot = unary("not"), unary("bitnot")
}
