package ext

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

func TestParseManifest(t *testing.T) {
	cfg, err := ParseManifest([]byte(DefaultManifest))
	require.NoError(t, err)
	require.Len(t, cfg.Deps, 2)
	require.Equal(t, "github.com/google/uuid", cfg.Deps[0].Pkg)
	require.Equal(t, "uuid", cfg.Deps[0].As)
	require.Len(t, cfg.Deps[0].Bind, 2)
	require.Equal(t, "New", cfg.Deps[0].Bind[0].Func)
	require.Equal(t, "new", cfg.Deps[0].Bind[0].As)
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	_, err := ParseManifest([]byte("deps: [this is not a dep list"))
	require.Error(t, err)
}

func TestInstallBindsUUIDAndHumanize(t *testing.T) {
	rt := newTestRuntime()
	cfg, err := ParseManifest([]byte(DefaultManifest))
	require.NoError(t, err)
	require.NoError(t, Install(rt, cfg))

	uuidMod, ok := rt.Globals["uuid"].(*object.Module)
	require.True(t, ok, "uuid global must be a Module")
	newFn, err := object.GetAttr(rt, uuidMod, "new")
	require.NoError(t, err)
	v, err := object.Call(rt, newFn, nil)
	require.NoError(t, err)
	s, ok := v.(*object.String)
	require.True(t, ok)
	require.Len(t, s.Value, 36)

	parseFn, err := object.GetAttr(rt, uuidMod, "parse")
	require.NoError(t, err)
	roundtripped, err := object.Call(rt, parseFn, []object.Value{s})
	require.NoError(t, err)
	require.Equal(t, s.Value, roundtripped.(*object.String).Value)

	fmtMod, ok := rt.Globals["fmt"].(*object.Module)
	require.True(t, ok, "fmt global must be a Module")
	bytesFn, err := object.GetAttr(rt, fmtMod, "bytes")
	require.NoError(t, err)
	bv, err := object.Call(rt, bytesFn, []object.Value{rt.Int(2048)})
	require.NoError(t, err)
	require.Equal(t, "2.0 kB", bv.(*object.String).Value)

	commaFn, err := object.GetAttr(rt, fmtMod, "comma")
	require.NoError(t, err)
	cv, err := object.Call(rt, commaFn, []object.Value{rt.Int(1000000)})
	require.NoError(t, err)
	require.Equal(t, "1,000,000", cv.(*object.String).Value)
}

func TestInstallUnknownPackage(t *testing.T) {
	rt := newTestRuntime()
	cfg := &Config{Deps: []Dep{{Pkg: "github.com/nobody/nothing", As: "nope"}}}
	err := Install(rt, cfg)
	require.Error(t, err)
}

func TestInstallUnknownFunc(t *testing.T) {
	rt := newTestRuntime()
	cfg := &Config{Deps: []Dep{{
		Pkg: "github.com/google/uuid",
		As:  "uuid",
		Bind: []BindSpec{
			{Func: "NoSuchFunc", As: "nope"},
		},
	}}}
	err := Install(rt, cfg)
	require.Error(t, err)
}
