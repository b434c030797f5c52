package object

import "github.com/coucya/rolscript/internal/heap"

// Null is the single shared null value (spec.md §3: "one Null").
type Null struct {
	heap.Header
}

func (n *Null) GcHeader() *heap.Header     { return &n.Header }
func (n *Null) VisitRefs(func(heap.Object)) {}
func (n *Null) Destroy() error              { return nil }

func (rt *Runtime) newNull() *Null {
	n := &Null{}
	rt.Heap.Register(n, rt.types.Null, 8)
	return n
}

// Null returns the shared Null singleton.
func (rt *Runtime) Null() Value { return rt.nullVal }

func nullEq(rt *Runtime, a, b Value) (bool, error) {
	_, ok := b.(*Null)
	return ok, nil
}

func nullStr(rt *Runtime, self Value) (string, error) { return "null", nil }

func nullHash(rt *Runtime, self Value) (uint64, error) { return 0, nil }
