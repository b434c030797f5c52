package object

import "github.com/coucya/rolscript/internal/heap"

// Bool is one of the two shared Bool singletons (spec.md §3: "two
// shared Bool instances").
type Bool struct {
	heap.Header
	Value bool
}

func (b *Bool) GcHeader() *heap.Header     { return &b.Header }
func (b *Bool) VisitRefs(func(heap.Object)) {}
func (b *Bool) Destroy() error              { return nil }

func (rt *Runtime) newBool(v bool) *Bool {
	b := &Bool{Value: v}
	rt.Heap.Register(b, rt.types.Bool, 8)
	return b
}

// Bool returns the shared True or False singleton for v.
func (rt *Runtime) Bool(v bool) Value {
	if v {
		return rt.trueVal
	}
	return rt.falseVal
}

func boolEq(rt *Runtime, a, b Value) (bool, error) {
	ab, ok := b.(*Bool)
	if !ok {
		return false, nil
	}
	return a.(*Bool).Value == ab.Value, nil
}

func boolStr(rt *Runtime, self Value) (string, error) {
	if self.(*Bool).Value {
		return "true", nil
	}
	return "false", nil
}

func boolHash(rt *Runtime, self Value) (uint64, error) {
	if self.(*Bool).Value {
		return 1, nil
	}
	return 0, nil
}

func boolNot(rt *Runtime, self Value) (Value, error) {
	return rt.Bool(!self.(*Bool).Value), nil
}
