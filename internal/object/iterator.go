package object

import "github.com/coucya/rolscript/internal/heap"

// seqIterator backs both Array.iter and Tuple.iter: a simple index
// cursor over a captured, borrowed element slice (spec.md §3 "tuple
// and array iterator types").
type seqIterator struct {
	heap.Header
	elems []Value
	pos   int
}

func (s *seqIterator) GcHeader() *heap.Header { return &s.Header }
func (s *seqIterator) VisitRefs(visit func(heap.Object)) {
	for _, e := range s.elems {
		visit(e)
	}
}
func (s *seqIterator) Destroy() error { return nil }

func (rt *Runtime) newSeqIterator(elems []Value) Value {
	it := &seqIterator{elems: elems}
	rt.Heap.Register(it, rt.types.ArrayIter, 24)
	return it
}

func seqIterNext(rt *Runtime, self Value) (Value, error) {
	it := self.(*seqIterator)
	if it.pos >= len(it.elems) {
		return rt.None(), nil
	}
	v := it.elems[it.pos]
	it.pos++
	return rt.Some(v), nil
}
