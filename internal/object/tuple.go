package object

import (
	"strings"

	"github.com/coucya/rolscript/internal/heap"
)

// Tuple is an immutable fixed-size sequence (spec.md §3).
type Tuple struct {
	heap.Header
	Elements []Value
}

func (t *Tuple) GcHeader() *heap.Header { return &t.Header }
func (t *Tuple) VisitRefs(visit func(heap.Object)) {
	for _, e := range t.Elements {
		visit(e)
	}
}
func (t *Tuple) Destroy() error { return nil }

// Tuple allocates a new tuple owning elems (elems is retained by the
// caller already transferring ownership, matching NewTuple's
// stack-consuming contract — spec.md §4.6).
func (rt *Runtime) Tuple(elems []Value) Value {
	t := &Tuple{Elements: elems}
	rt.Heap.Register(t, rt.types.Tuple, 24+8*len(elems))
	return t
}

func tupleEq(rt *Runtime, a, b Value) (bool, error) {
	bt, ok := b.(*Tuple)
	at := a.(*Tuple)
	if !ok || len(at.Elements) != len(bt.Elements) {
		return false, nil
	}
	for i := range at.Elements {
		eq, err := Eq(rt, at.Elements[i], bt.Elements[i])
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func tupleStr(rt *Runtime, self Value) (string, error) {
	t := self.(*Tuple)
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		s, err := Str(rt, e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

func tupleGetItem(rt *Runtime, self, idx Value) (Value, error) {
	t := self.(*Tuple)
	i, ok := idx.(*Int)
	if !ok {
		return nil, unsupportedIndex(self)
	}
	n := int64(len(t.Elements))
	k := i.Value
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return nil, indexOutOfRange(k, n)
	}
	return t.Elements[k], nil
}

func tupleIter(rt *Runtime, self Value) (Value, error) {
	return rt.newSeqIterator(self.(*Tuple).Elements), nil
}
