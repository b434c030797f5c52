package object

import (
	"math"
	"strconv"

	"github.com/coucya/rolscript/internal/config"
	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/rerr"
)

// Int is a boxed 64-bit integer. Values within [IntPoolLow, IntPoolHigh)
// are canonicalised to a single shared instance (spec.md §3 "small
// integers ... share canonical identity"), so two pooled ints with the
// same value are `==` at the Go level too.
type Int struct {
	heap.Header
	Value int64
}

func (i *Int) GcHeader() *heap.Header     { return &i.Header }
func (i *Int) VisitRefs(func(heap.Object)) {}
func (i *Int) Destroy() error              { return nil }

func (rt *Runtime) allocInt(v int64) *Int {
	n := &Int{Value: v}
	rt.Heap.Register(n, rt.types.Int, 16)
	return n
}

// Int returns the canonical boxed Int for v, pulling from the
// small-integer pool when in range.
func (rt *Runtime) Int(v int64) Value {
	if v >= int64(config.IntPoolLow) && v < int64(config.IntPoolHigh) {
		return rt.intPool[v-int64(config.IntPoolLow)]
	}
	return rt.allocInt(v)
}

func intEq(rt *Runtime, a, b Value) (bool, error) {
	switch bv := b.(type) {
	case *Int:
		return a.(*Int).Value == bv.Value, nil
	case *Float:
		return float64(a.(*Int).Value) == bv.Value, nil
	default:
		return false, nil
	}
}

func intCmp(rt *Runtime, a, b Value) (int, error) {
	av := a.(*Int).Value
	var bv float64
	switch t := b.(type) {
	case *Int:
		bv = float64(t.Value)
	case *Float:
		bv = t.Value
	default:
		return 0, rerr.Unsupported("<=>", "Int", TypeOf(b).Name)
	}
	afv := float64(av)
	switch {
	case afv < bv:
		return -1, nil
	case afv > bv:
		return 1, nil
	default:
		return 0, nil
	}
}

func intStr(rt *Runtime, self Value) (string, error) {
	return strconv.FormatInt(self.(*Int).Value, 10), nil
}

func intHash(rt *Runtime, self Value) (uint64, error) {
	return uint64(self.(*Int).Value), nil
}

// intDiv implements Int `/`: an exact quotient stays Int, otherwise the
// result promotes to Float (spec.md §6 "numeric `/` returns int when
// exact, else float"); dividing by zero is a Runtime error rather than
// silently producing an infinite float.
func intDiv(rt *Runtime, a, b Value) (Value, error) {
	ai := a.(*Int)
	switch bv := b.(type) {
	case *Int:
		if bv.Value == 0 {
			return nil, rerr.Runtimef("integer division by zero")
		}
		if ai.Value%bv.Value == 0 {
			return rt.Int(ai.Value / bv.Value), nil
		}
		return rt.Float(float64(ai.Value) / float64(bv.Value)), nil
	case *Float:
		return rt.Float(float64(ai.Value) / bv.Value), nil
	default:
		return nil, rerr.Unsupported("/", "Int", TypeOf(b).Name)
	}
}

// intPow implements Int `**`: a non-negative integer exponent stays
// Int (repeated squaring), otherwise the result promotes to Float
// (spec.md §6 "`**` with a non-negative integer exponent stays
// integer, otherwise promotes to float").
func intPow(rt *Runtime, a, b Value) (Value, error) {
	ai := a.(*Int)
	switch bv := b.(type) {
	case *Int:
		if bv.Value >= 0 {
			return rt.Int(intPowUint(ai.Value, uint64(bv.Value))), nil
		}
		return rt.Float(math.Pow(float64(ai.Value), float64(bv.Value))), nil
	case *Float:
		return rt.Float(math.Pow(float64(ai.Value), bv.Value)), nil
	default:
		return nil, rerr.Unsupported("**", "Int", TypeOf(b).Name)
	}
}

func intPowUint(base int64, exp uint64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func intArith(name string, intFn func(a, b int64) (int64, error), floatFn func(a, b float64) float64) func(rt *Runtime, a, b Value) (Value, error) {
	return func(rt *Runtime, a, b Value) (Value, error) {
		ai := a.(*Int)
		switch bv := b.(type) {
		case *Int:
			if intFn == nil {
				return rt.Float(floatFn(float64(ai.Value), float64(bv.Value))), nil
			}
			r, err := intFn(ai.Value, bv.Value)
			if err != nil {
				return nil, err
			}
			return rt.Int(r), nil
		case *Float:
			return rt.Float(floatFn(float64(ai.Value), bv.Value)), nil
		default:
			return nil, rerr.Unsupported(name, "Int", TypeOf(b).Name)
		}
	}
}

func intBit(name string, fn func(a, b int64) int64) func(rt *Runtime, a, b Value) (Value, error) {
	return func(rt *Runtime, a, b Value) (Value, error) {
		ai := a.(*Int)
		bi, ok := b.(*Int)
		if !ok {
			return nil, rerr.Unsupported(name, "Int", TypeOf(b).Name)
		}
		return rt.Int(fn(ai.Value, bi.Value)), nil
	}
}

func intBitNot(rt *Runtime, self Value) (Value, error) {
	return rt.Int(^self.(*Int).Value), nil
}

// intShift wraps a shift's Go implementation with the negative-RHS
// check spec.md §6/§8 require ("shifts require a non-negative RHS is
// raised"); left unguarded, `uint(b)` for a negative b wraps to a huge
// shift count and Go silently yields 0.
func intShift(name string, fn func(a, b int64) int64) func(rt *Runtime, a, b Value) (Value, error) {
	return func(rt *Runtime, a, b Value) (Value, error) {
		ai := a.(*Int)
		bi, ok := b.(*Int)
		if !ok {
			return nil, rerr.Unsupported(name, "Int", TypeOf(b).Name)
		}
		if bi.Value < 0 {
			return nil, rerr.Runtimef("negative shift count")
		}
		return rt.Int(fn(ai.Value, bi.Value)), nil
	}
}

func intIDivFn(a, b int64) (int64, error) {
	if b == 0 {
		return 0, rerr.Runtimef("integer division by zero")
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q-- // floor division, matching spec.md §4.3's "// floors toward negative infinity"
	}
	return q, nil
}

func intModFn(a, b int64) (int64, error) {
	if b == 0 {
		return 0, rerr.Runtimef("integer modulo by zero")
	}
	m := a % b
	if m < 0 { // Euclidean: the remainder is never negative
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m, nil
}

