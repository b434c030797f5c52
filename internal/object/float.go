package object

import (
	"math"
	"strconv"

	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/rerr"
)

// Float is a boxed IEEE-754 double. Unlike Int there is no pool: every
// Float literal or arithmetic result allocates (spec.md §3 lists only
// Int as pooled).
type Float struct {
	heap.Header
	Value float64
}

func (f *Float) GcHeader() *heap.Header     { return &f.Header }
func (f *Float) VisitRefs(func(heap.Object)) {}
func (f *Float) Destroy() error              { return nil }

// Float allocates a fresh boxed float.
func (rt *Runtime) Float(v float64) Value {
	f := &Float{Value: v}
	rt.Heap.Register(f, rt.types.Float, 16)
	return f
}

func floatEq(rt *Runtime, a, b Value) (bool, error) {
	av := a.(*Float).Value
	switch bv := b.(type) {
	case *Float:
		return av == bv.Value, nil
	case *Int:
		return av == float64(bv.Value), nil
	default:
		return false, nil
	}
}

func floatCmp(rt *Runtime, a, b Value) (int, error) {
	av := a.(*Float).Value
	var bv float64
	switch t := b.(type) {
	case *Float:
		bv = t.Value
	case *Int:
		bv = float64(t.Value)
	default:
		return 0, rerr.Unsupported("<=>", "Float", TypeOf(b).Name)
	}
	switch {
	case av < bv:
		return -1, nil
	case av > bv:
		return 1, nil
	default:
		return 0, nil
	}
}

func floatStr(rt *Runtime, self Value) (string, error) {
	return strconv.FormatFloat(self.(*Float).Value, 'g', -1, 64), nil
}

func floatHash(rt *Runtime, self Value) (uint64, error) {
	return math.Float64bits(self.(*Float).Value), nil
}

func floatArith(name string, fn func(a, b float64) (float64, error)) func(rt *Runtime, a, b Value) (Value, error) {
	return func(rt *Runtime, a, b Value) (Value, error) {
		av := a.(*Float).Value
		var bv float64
		switch t := b.(type) {
		case *Float:
			bv = t.Value
		case *Int:
			bv = float64(t.Value)
		default:
			return nil, rerr.Unsupported(name, "Float", TypeOf(b).Name)
		}
		r, err := fn(av, bv)
		if err != nil {
			return nil, err
		}
		return rt.Float(r), nil
	}
}
