package object

import (
	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/rerr"
)

// Option is the some/none wrapper used by Next (spec.md §3) and by
// Array.pop/Map lookups to signal absence without a sentinel value.
type Option struct {
	heap.Header
	HasValue bool
	Inner    Value
}

func (o *Option) GcHeader() *heap.Header { return &o.Header }
func (o *Option) VisitRefs(visit func(heap.Object)) {
	if o.HasValue && o.Inner != nil {
		visit(o.Inner)
	}
}
func (o *Option) Destroy() error { return nil }

func (rt *Runtime) newOption(inner Value, has bool) *Option {
	o := &Option{HasValue: has, Inner: inner}
	rt.Heap.Register(o, rt.types.Option, 16)
	return o
}

// None returns the shared "no value" Option singleton.
func (rt *Runtime) None() Value { return rt.noneVal }

// Some wraps val in a fresh "has value" Option.
func (rt *Runtime) Some(val Value) Value {
	return rt.newOption(rt.Retain(val), true)
}

func optionStr(rt *Runtime, self Value) (string, error) {
	o := self.(*Option)
	if !o.HasValue {
		return "none", nil
	}
	s, err := Str(rt, o.Inner)
	if err != nil {
		return "", err
	}
	return "some(" + s + ")", nil
}

// optionGetAttr exposes has_value/unwrap as bound native methods.
func optionGetAttr(rt *Runtime, self Value, name string) (Value, error) {
	o := self.(*Option)
	switch name {
	case "has_value":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			return rt.Bool(o.HasValue), nil
		}), nil
	case "unwrap":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			if !o.HasValue {
				return nil, rerr.Runtimef("unwrap called on none")
			}
			return o.Inner, nil
		}), nil
	default:
		return nil, rerrNoAttr("Option", name)
	}
}

func optionEq(rt *Runtime, a, b Value) (bool, error) {
	bo, ok := b.(*Option)
	ao := a.(*Option)
	if !ok || ao.HasValue != bo.HasValue {
		return false, nil
	}
	if !ao.HasValue {
		return true, nil
	}
	return Eq(rt, ao.Inner, bo.Inner)
}
