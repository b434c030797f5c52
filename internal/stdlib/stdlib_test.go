package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/vm"
)

func newTestRuntime() *object.Runtime {
	rt := object.NewRuntime(heap.DefaultAllocator{})
	vm.New(rt) // wires rt.Invoke, which Function's Call slot delegates to
	return rt
}

func callAttr(t *testing.T, rt *object.Runtime, m *object.Module, name string, args ...object.Value) object.Value {
	t.Helper()
	fn, err := object.GetAttr(rt, m, name)
	require.NoError(t, err)
	v, err := object.Call(rt, fn, args)
	require.NoError(t, err)
	return v
}

func TestIOYAMLRoundtrip(t *testing.T) {
	rt := newTestRuntime()
	io := newIO(rt)

	encoded := callAttr(t, rt, io, "yaml_encode", rt.String("hello"))
	s, ok := encoded.(*object.String)
	require.True(t, ok)

	decoded := callAttr(t, rt, io, "yaml_decode", s)
	ds, ok := decoded.(*object.String)
	require.True(t, ok)
	require.Equal(t, "hello", ds.Value)
}

func TestIOCSVRoundtrip(t *testing.T) {
	rt := newTestRuntime()
	io := newIO(rt)

	written := callAttr(t, rt, io, "csv_write", rt.Array([]object.Value{
		rt.Array([]object.Value{rt.String("a"), rt.String("b")}),
		rt.Array([]object.Value{rt.String("1"), rt.String("2")}),
	}))
	s, ok := written.(*object.String)
	require.True(t, ok)

	parsed := callAttr(t, rt, io, "csv_parse", s)
	rows, ok := parsed.(*object.Array)
	require.True(t, ok)
	require.Len(t, rows.Elements, 2)
}

func TestASTDump(t *testing.T) {
	rt := newTestRuntime()
	a := newAST(rt)

	out := callAttr(t, rt, a, "dump", rt.String("1 + 2"))
	s, ok := out.(*object.String)
	require.True(t, ok)
	require.Contains(t, s.Value, "Binary")
	require.Contains(t, s.Value, "Int(1)")
}

func TestTermWidth(t *testing.T) {
	rt := newTestRuntime()
	term := newTerm(rt)

	out := callAttr(t, rt, term, "width", rt.String("ab"))
	i, ok := out.(*object.Int)
	require.True(t, ok)
	require.Equal(t, int64(2), i.Value)
}
