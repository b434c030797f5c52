package object

import (
	"hash/fnv"
	"strings"

	"github.com/coucya/rolscript/internal/heap"
)

// String is an interned value: two String constructions with the same
// Go string content return the same *String, giving identity equality
// (spec.md §3 "strings are interned"); hashing is FNV over the content.
type String struct {
	heap.Header
	Value string
}

func (s *String) GcHeader() *heap.Header     { return &s.Header }
func (s *String) VisitRefs(func(heap.Object)) {}
func (s *String) Destroy() error {
	return nil
}

// String returns the canonical interned *String for v, allocating and
// caching it on first use.
func (rt *Runtime) String(v string) Value {
	if s, ok := rt.strings[v]; ok {
		return s
	}
	s := &String{Value: v}
	rt.Heap.Register(s, rt.types.String, 16+len(v))
	// The intern table itself holds a permanent reference: once
	// interned, a string's canonical identity must stay valid for the
	// rest of the process (spec.md §3), so it is never handed back to
	// the collector.
	rt.Heap.IncRef(s)
	rt.strings[v] = s
	return s
}

func stringEq(rt *Runtime, a, b Value) (bool, error) {
	bs, ok := b.(*String)
	return ok && a.(*String) == bs, nil
}

func stringCmp(rt *Runtime, a, b Value) (int, error) {
	bs, ok := b.(*String)
	if !ok {
		return 0, nil
	}
	return strings.Compare(a.(*String).Value, bs.Value), nil
}

func stringStr(rt *Runtime, self Value) (string, error) {
	return self.(*String).Value, nil
}

func stringHash(rt *Runtime, self Value) (uint64, error) {
	h := fnv.New64a()
	h.Write([]byte(self.(*String).Value))
	return h.Sum64(), nil
}

func stringAdd(rt *Runtime, a, b Value) (Value, error) {
	bs, ok := b.(*String)
	if !ok {
		return nil, unsupportedConcat(a, b)
	}
	return rt.String(a.(*String).Value + bs.Value), nil
}

func stringGetItem(rt *Runtime, self, idx Value) (Value, error) {
	s := self.(*String).Value
	i, ok := idx.(*Int)
	if !ok {
		return nil, unsupportedIndex(self)
	}
	runes := []rune(s)
	n := int64(len(runes))
	k := i.Value
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return nil, indexOutOfRange(k, n)
	}
	return rt.String(string(runes[k])), nil
}
