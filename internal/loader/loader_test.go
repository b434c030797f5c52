package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/object"
)

func writeModule(t *testing.T, dir, relPath, src string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
}

func TestNormalizeAbsoluteName(t *testing.T) {
	f := NewFS("/does/not/matter")
	got, err := f.Normalize("main", "pkg/util")
	require.NoError(t, err)
	require.Equal(t, "pkg/util", got)
}

func TestNormalizeRelativeName(t *testing.T) {
	f := NewFS("/does/not/matter")
	got, err := f.Normalize("pkg/main.rol", "./sibling")
	require.NoError(t, err)
	require.Equal(t, "pkg/sibling", got)
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	f := NewFS("/does/not/matter")
	_, err := f.Normalize("main", "")
	require.Error(t, err)
}

func TestLoadCompilesSourceFile(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "greet.rol", `public value = 1 + 2;`)

	f := NewFS(dir)
	rt := object.NewRuntime(heap.DefaultAllocator{})
	closure, err := f.Load(rt, "greet")
	require.NoError(t, err)
	require.NotNil(t, closure)
}

func TestLoadProbesSecondaryExtension(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "other.rols", `public value = 1;`)

	f := NewFS(dir)
	rt := object.NewRuntime(heap.DefaultAllocator{})
	_, err := f.Load(rt, "other")
	require.NoError(t, err)
}

func TestLoadMissingModule(t *testing.T) {
	dir := t.TempDir()
	f := NewFS(dir)
	rt := object.NewRuntime(heap.DefaultAllocator{})
	_, err := f.Load(rt, "nowhere")
	require.Error(t, err)
}
