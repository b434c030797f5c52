package object

import (
	"reflect"

	"github.com/coucya/rolscript/internal/rerr"
)

// Truthy implements spec.md §4.3's truthiness rule: null and false are
// falsy, every other value (including 0, 0.0 and "") is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case *Null:
		return false
	case *Bool:
		return t.Value
	default:
		return true
	}
}

// defaultIdentityHash backs the fallback hash rule (spec.md §4.2: "the
// default is a pointer/identity-derived hash") for any value whose
// type installs no custom Hash.
func defaultIdentityHash(v Value) uint64 {
	return uint64(reflect.ValueOf(v).Pointer())
}

// Eq dispatches through a's type, the default fallback being identity
// equality (spec.md §4.2).
func Eq(rt *Runtime, a, b Value) (bool, error) {
	ta := TypeOf(a)
	if ta.Eq != nil {
		return ta.Eq(rt, a, b)
	}
	return a == b, nil
}

// Cmp dispatches through a's type; there is no default — two values of
// a type with no cmp hook cannot be ordered (spec.md §4.2).
func Cmp(rt *Runtime, a, b Value) (int, error) {
	ta := TypeOf(a)
	if ta.Cmp == nil {
		return 0, rerr.Unsupported("<=>", ta.Name, TypeOf(b).Name)
	}
	return ta.Cmp(rt, a, b)
}

// Hash dispatches through v's type, falling back to identity hashing.
func Hash(rt *Runtime, v Value) (uint64, error) {
	t := TypeOf(v)
	if t.Hash != nil {
		return t.Hash(rt, v)
	}
	return defaultIdentityHash(v), nil
}

// Str dispatches through v's type, falling back to a generic
// "<TypeName instance>" rendering (spec.md §4.2's default str fallback).
func Str(rt *Runtime, v Value) (string, error) {
	t := TypeOf(v)
	if t.Str != nil {
		return t.Str(rt, v)
	}
	return "<" + t.Name + " instance>", nil
}

func binOp(rt *Runtime, op string, sel func(*Type) func(*Runtime, Value, Value) (Value, error), a, b Value) (Value, error) {
	ta := TypeOf(a)
	fn := sel(ta)
	if fn == nil {
		return nil, rerr.Unsupported(op, ta.Name, TypeOf(b).Name)
	}
	return fn(rt, a, b)
}

func Add(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "+", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Add }, a, b)
}
func Sub(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "-", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Sub }, a, b)
}
func Mul(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "*", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Mul }, a, b)
}
func Div(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "/", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Div }, a, b)
}
func IDiv(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "//", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.IDiv }, a, b)
}
func Mod(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "%", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Mod }, a, b)
}
func Pow(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "**", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Pow }, a, b)
}
func BAnd(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "&", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.BAnd }, a, b)
}
func BOr(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "|", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.BOr }, a, b)
}
func BXor(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "^", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.BXor }, a, b)
}
func Shl(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, "<<", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Shl }, a, b)
}
func Shr(rt *Runtime, a, b Value) (Value, error) {
	return binOp(rt, ">>", func(t *Type) func(*Runtime, Value, Value) (Value, error) { return t.Shr }, a, b)
}

func Not(rt *Runtime, v Value) (Value, error) {
	t := TypeOf(v)
	if t.Not == nil {
		return nil, rerr.Unsupported("!", t.Name)
	}
	return t.Not(rt, v)
}

func BitNot(rt *Runtime, v Value) (Value, error) {
	t := TypeOf(v)
	if t.BitNot == nil {
		return nil, rerr.Unsupported("~", t.Name)
	}
	return t.BitNot(rt, v)
}

// GetAttr/SetAttr/GetItem/SetItem/Call dispatch uniformly through the
// receiver's type (spec.md §4.2); every built-in and dynamic type
// installs these the same way.

func GetAttr(rt *Runtime, self Value, name string) (Value, error) {
	t := TypeOf(self)
	if t.GetAttr == nil {
		return nil, rerr.Runtimef("no attribute %q on %q", name, t.Name)
	}
	return t.GetAttr(rt, self, name)
}

func SetAttr(rt *Runtime, self Value, name string, val Value) error {
	t := TypeOf(self)
	if t.SetAttr == nil {
		return rerr.Runtimef("cannot set attribute %q on %q", name, t.Name)
	}
	return t.SetAttr(rt, self, name, val)
}

func GetItem(rt *Runtime, self, idx Value) (Value, error) {
	t := TypeOf(self)
	if t.GetItem == nil {
		return nil, rerr.Unsupported("[]", t.Name)
	}
	return t.GetItem(rt, self, idx)
}

func SetItem(rt *Runtime, self, idx, val Value) error {
	t := TypeOf(self)
	if t.SetItem == nil {
		return rerr.Unsupported("[]=", t.Name)
	}
	return t.SetItem(rt, self, idx, val)
}

func Call(rt *Runtime, self Value, args []Value) (Value, error) {
	t := TypeOf(self)
	if t.Call == nil {
		return nil, rerr.Unsupported("()", t.Name)
	}
	return t.Call(rt, self, args)
}
