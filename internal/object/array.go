package object

import (
	"strings"

	"github.com/coucya/rolscript/internal/heap"
)

// Array is a growable, mutable sequence (spec.md §3).
type Array struct {
	heap.Header
	Elements []Value
}

func (a *Array) GcHeader() *heap.Header { return &a.Header }
func (a *Array) VisitRefs(visit func(heap.Object)) {
	for _, e := range a.Elements {
		visit(e)
	}
}
func (a *Array) Destroy() error { return nil }

// Array allocates a new array owning elems.
func (rt *Runtime) Array(elems []Value) Value {
	a := &Array{Elements: elems}
	rt.Heap.Register(a, rt.types.Array, 24+8*len(elems))
	return a
}

func arrayEq(rt *Runtime, a, b Value) (bool, error) {
	ba, ok := b.(*Array)
	aa := a.(*Array)
	if !ok || len(aa.Elements) != len(ba.Elements) {
		return false, nil
	}
	for i := range aa.Elements {
		eq, err := Eq(rt, aa.Elements[i], ba.Elements[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func arrayStr(rt *Runtime, self Value) (string, error) {
	a := self.(*Array)
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		s, err := Str(rt, e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func arrayGetItem(rt *Runtime, self, idx Value) (Value, error) {
	a := self.(*Array)
	i, ok := idx.(*Int)
	if !ok {
		return nil, unsupportedIndex(self)
	}
	n := int64(len(a.Elements))
	k := i.Value
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return nil, indexOutOfRange(k, n)
	}
	return a.Elements[k], nil
}

func arraySetItem(rt *Runtime, self, idx, val Value) error {
	a := self.(*Array)
	i, ok := idx.(*Int)
	if !ok {
		return unsupportedIndex(self)
	}
	n := int64(len(a.Elements))
	k := i.Value
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return indexOutOfRange(k, n)
	}
	if old := a.Elements[k]; old != nil {
		rt.Release(old)
	}
	a.Elements[k] = rt.Retain(val)
	return nil
}

func arrayIter(rt *Runtime, self Value) (Value, error) {
	return rt.newSeqIterator(self.(*Array).Elements), nil
}

// push appends val to a, used by the `push` built-in method installed
// on Array's attribute map (builtins.go).
func (a *Array) push(rt *Runtime, val Value) {
	a.Elements = append(a.Elements, rt.Retain(val))
}

// pop removes and returns the last element, or an Option none.
func (a *Array) pop(rt *Runtime) Value {
	if len(a.Elements) == 0 {
		return rt.None()
	}
	last := a.Elements[len(a.Elements)-1]
	a.Elements = a.Elements[:len(a.Elements)-1]
	rt.Release(last)
	return rt.Some(last)
}

func (a *Array) length(rt *Runtime) Value {
	return rt.Int(int64(len(a.Elements)))
}

// arrayGetAttr exposes push/pop/length as bound native methods
// (spec.md §3 Array's component table calls out these as the
// type's attribute-resolved operations).
func arrayGetAttr(rt *Runtime, self Value, name string) (Value, error) {
	a := self.(*Array)
	switch name {
	case "push":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			for _, v := range args {
				a.push(rt, v)
			}
			return rt.Null(), nil
		}), nil
	case "pop":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			return a.pop(rt), nil
		}), nil
	case "length":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			return a.length(rt), nil
		}), nil
	default:
		return nil, rerrNoAttr("Array", name)
	}
}
