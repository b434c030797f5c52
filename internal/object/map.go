package object

import (
	"strings"

	"github.com/coucya/rolscript/internal/heap"
)

// mapEntry is one bucket slot: Go maps can't key on arbitrary Values
// (hash/eq are dynamic, per-type dispatch), so Map buckets by the raw
// hash and resolves collisions with a linear scan calling Eq.
type mapEntry struct {
	key, val Value
}

// Map is a hash table keyed by Value using the key's type's hash/eq
// dispatch (spec.md §3 "Map (hash table keyed by value, using the
// key's type's hash/eq)").
type Map struct {
	heap.Header
	buckets map[uint64][]mapEntry
	size    int
}

func (m *Map) GcHeader() *heap.Header { return &m.Header }
func (m *Map) VisitRefs(visit func(heap.Object)) {
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			visit(e.key)
			visit(e.val)
		}
	}
}
func (m *Map) Destroy() error { return nil }

// Map allocates an empty map.
func (rt *Runtime) Map() Value {
	m := &Map{buckets: map[uint64][]mapEntry{}}
	rt.Heap.Register(m, rt.types.Map, 32)
	return m
}

func (rt *Runtime) mapGet(m *Map, key Value) (Value, bool, error) {
	h, err := Hash(rt, key)
	if err != nil {
		return nil, false, err
	}
	for _, e := range m.buckets[h] {
		eq, err := Eq(rt, e.key, key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return e.val, true, nil
		}
	}
	return nil, false, nil
}

func (rt *Runtime) mapSet(m *Map, key, val Value) error {
	h, err := Hash(rt, key)
	if err != nil {
		return err
	}
	bucket := m.buckets[h]
	for i, e := range bucket {
		eq, err := Eq(rt, e.key, key)
		if err != nil {
			return err
		}
		if eq {
			rt.Release(bucket[i].val)
			bucket[i].val = rt.Retain(val)
			return nil
		}
	}
	m.buckets[h] = append(bucket, mapEntry{key: rt.Retain(key), val: rt.Retain(val)})
	m.size++
	return nil
}

func (m *Map) del(rt *Runtime, key Value) (bool, error) {
	h, err := Hash(rt, key)
	if err != nil {
		return false, err
	}
	bucket := m.buckets[h]
	for i, e := range bucket {
		eq, err := Eq(rt, e.key, key)
		if err != nil {
			return false, err
		}
		if eq {
			rt.Release(e.key)
			rt.Release(e.val)
			m.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			m.size--
			return true, nil
		}
	}
	return false, nil
}

// Each calls fn once per entry, in unspecified order, stopping at the
// first error (used by host-facing marshalling code in internal/stdlib
// that needs to walk every key/value pair).
func (m *Map) Each(fn func(k, v Value) error) error {
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			if err := fn(e.key, e.val); err != nil {
				return err
			}
		}
	}
	return nil
}

func mapGetItem(rt *Runtime, self, idx Value) (Value, error) {
	v, ok, err := rt.mapGet(self.(*Map), idx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rerrKeyError(idx)
	}
	return v, nil
}

func mapSetItem(rt *Runtime, self, idx, val Value) error {
	return rt.mapSet(self.(*Map), idx, val)
}

// mapGetAttr exposes get/set/delete/length as bound native
// methods, the same pattern as arrayGetAttr.
func mapGetAttr(rt *Runtime, self Value, name string) (Value, error) {
	m := self.(*Map)
	switch name {
	case "get":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			if len(args) < 1 {
				return nil, rerrArgCount("get", 1, len(args))
			}
			v, ok, err := rt.mapGet(m, args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				return rt.None(), nil
			}
			return rt.Some(v), nil
		}), nil
	case "set":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			if len(args) < 2 {
				return nil, rerrArgCount("set", 2, len(args))
			}
			return rt.Null(), rt.mapSet(m, args[0], args[1])
		}), nil
	case "delete":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			if len(args) < 1 {
				return nil, rerrArgCount("delete", 1, len(args))
			}
			ok, err := m.del(rt, args[0])
			return rt.Bool(ok), err
		}), nil
	case "length":
		return rt.NewNativeFunction(func(rt *Runtime, args []Value) (Value, error) {
			return rt.Int(int64(m.size)), nil
		}), nil
	default:
		return nil, rerrNoAttr("Map", name)
	}
}

func mapStr(rt *Runtime, self Value) (string, error) {
	m := self.(*Map)
	var parts []string
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			ks, err := Str(rt, e.key)
			if err != nil {
				return "", err
			}
			vs, err := Str(rt, e.val)
			if err != nil {
				return "", err
			}
			parts = append(parts, ks+": "+vs)
		}
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}
