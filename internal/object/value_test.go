package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/heap"
)

func newTestRuntime() *Runtime {
	return NewRuntime(heap.DefaultAllocator{})
}

func TestIntPoolCanonicalIdentity(t *testing.T) {
	rt := newTestRuntime()
	a := rt.Int(5)
	b := rt.Int(5)
	require.Same(t, a, b, "pooled ints must share identity")

	big1 := rt.Int(100000)
	big2 := rt.Int(100000)
	require.NotSame(t, big1, big2, "out-of-range ints are not pooled")
}

func TestStringInterning(t *testing.T) {
	rt := newTestRuntime()
	a := rt.String("hello")
	b := rt.String("hello")
	require.Same(t, a, b, "equal string content must intern to one instance")
}

func TestSingletons(t *testing.T) {
	rt := newTestRuntime()
	require.Same(t, rt.Bool(true), rt.Bool(true))
	require.Same(t, rt.Null(), rt.Null())
}

func TestArraySetItemAndGetItem(t *testing.T) {
	rt := newTestRuntime()
	arr := rt.Array([]Value{rt.Int(1), rt.Int(2), rt.Int(3)})
	err := SetItem(rt, arr, rt.Int(1), rt.Int(99))
	require.NoError(t, err)

	v, err := GetItem(rt, arr, rt.Int(1))
	require.NoError(t, err)
	i, ok := v.(*Int)
	require.True(t, ok)
	require.Equal(t, int64(99), i.Value)
}

func TestMapSetGetAndEach(t *testing.T) {
	rt := newTestRuntime()
	m := rt.Map()
	require.NoError(t, SetItem(rt, m, rt.String("a"), rt.Int(1)))
	require.NoError(t, SetItem(rt, m, rt.String("b"), rt.Int(2)))

	v, err := GetItem(rt, m, rt.String("a"))
	require.NoError(t, err)
	require.Equal(t, int64(1), v.(*Int).Value)

	seen := map[string]int64{}
	err = m.(*Map).Each(func(k, val Value) error {
		seen[k.(*String).Value] = val.(*Int).Value
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"a": 1, "b": 2}, seen)
}

func TestModuleAttrRoundtrip(t *testing.T) {
	rt := newTestRuntime()
	m := rt.NewModule("test/mod", nil)
	require.NoError(t, SetAttr(rt, m, "answer", rt.Int(42)))

	v, err := GetAttr(rt, m, "answer")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.(*Int).Value)

	require.Same(t, m, rt.Modules["test/mod"], "NewModule registers into the module cache")
}
