// Package runtime wires the object model, compiler, module loader and
// VM into the single process-wide context described in spec.md §5,
// exposing the Initialize/Finalize entry points the embedding host and
// cmd/rolscript use, grounded on the teacher's top-level run/evaluate
// glue in cmd/funxy/main.go and pkg/embed/vm.go.
package runtime

import (
	"fmt"

	"github.com/coucya/rolscript/internal/compiler"
	"github.com/coucya/rolscript/internal/ext"
	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/parser"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/stdlib"
	"github.com/coucya/rolscript/internal/vm"
)

// Runtime bundles the object-model Runtime and the VM that executes
// it, plus a host-side trace hook (spec.md §10 "SetTrace").
type Runtime struct {
	RT    *object.Runtime
	VM    *vm.VM
	trace func(string)
}

// Initialize constructs a fresh Runtime over alloc (nil selects
// heap.DefaultAllocator) and loader (nil disables `import`), and
// installs the small set of always-available globals (spec.md §4.8,
// §1 "built-in library functions... are adapters").
func Initialize(alloc heap.Allocator, loader object.Loader) *Runtime {
	rt := object.NewRuntime(alloc)
	rt.Loader = loader
	r := &Runtime{RT: rt, VM: vm.New(rt)}
	r.installGlobals()
	if err := r.installExtensions(); err != nil {
		panic(err)
	}
	stdlib.Install(rt)
	return r
}

// installExtensions loads the shipped host-extension manifest
// (SPEC_FULL.md §11.1) so `uuid` and `fmt` are available as globals
// without any explicit import.
func (r *Runtime) installExtensions() error {
	cfg, err := ext.ParseManifest([]byte(ext.DefaultManifest))
	if err != nil {
		return err
	}
	return ext.Install(r.RT, cfg)
}

// Finalize runs a final collection cycle (spec.md §4.1/§5 teardown).
// Values the object runtime pins for the whole process (built-in types,
// singletons, the small-int pool, interned strings, cached modules)
// keep their permanent reference and are not reclaimed by it.
func (r *Runtime) Finalize() error {
	return r.RT.Heap.Collect()
}

// SetTrace installs a diagnostics callback (spec.md §10), mirroring
// the teacher's single-callback debugger hook in internal/vm/debugger.go.
func (r *Runtime) SetTrace(fn func(string)) { r.trace = fn }

func (r *Runtime) logf(format string, args ...any) {
	if r.trace != nil {
		r.trace(fmt.Sprintf(format, args...))
	}
}

// CompileSource parses and compiles src into a runnable top-level unit.
func CompileSource(src string) (*object.ScriptCode, error) {
	prog, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(prog)
}

// RunSource compiles and executes src as an anonymous top-level
// module, returning the trailing expression value (spec.md §4.8's
// "first-use execution" applied to a one-off script rather than a
// cached import).
func (r *Runtime) RunSource(canonicalName, src string) (object.Value, error) {
	code, err := CompileSource(src)
	if err != nil {
		return nil, err
	}
	m := r.RT.NewModule(canonicalName, nil)
	r.logf("running %s", canonicalName)
	val, err := r.VM.RunProgram(code, m)
	if err != nil {
		return nil, err
	}
	r.RT.MarkInitialized(m)
	if err := r.RT.MaybeCollectGC(); err != nil {
		return nil, err
	}
	return val, nil
}

// Import implements spec.md §4.8's `import` operation: normalise,
// check the process-wide module cache, and on miss load + run the
// module's init closure exactly once before returning its Module.
func (r *Runtime) Import(requesterCanonicalName, name string) (*object.Module, error) {
	if r.RT.Loader == nil {
		return nil, rerr.New(rerr.Runtime, "no module loader configured")
	}
	canonical, err := r.RT.Loader.Normalize(requesterCanonicalName, name)
	if err != nil {
		return nil, err
	}
	if m, ok := r.RT.Modules[canonical]; ok {
		return m, nil
	}
	init, err := r.RT.Loader.Load(r.RT, canonical)
	if err != nil {
		return nil, err
	}
	m := r.RT.NewModule(canonical, init)
	r.logf("loading module %s", canonical)
	if _, err := r.VM.Invoke(r.RT, m.Init, m, nil); err != nil {
		return nil, err
	}
	r.RT.MarkInitialized(m)
	return m, nil
}

// installGlobals wires the handful of names every script sees without
// an explicit import: print (spec.md §1 adapter) and import itself.
func (r *Runtime) installGlobals() {
	rt := r.RT
	rt.Globals["print"] = rt.NewNativeFunction(func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			s, err := object.Str(rt, a)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		out := ""
		for i, p := range parts {
			if i > 0 {
				out += " "
			}
			out += p
		}
		fmt.Println(out)
		return rt.Null(), nil
	})

	rt.Globals["import"] = rt.NewNativeFunction(func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, rerr.New(rerr.Type, "import expects 1 argument, got %d", len(args))
		}
		str, ok := args[0].(*object.String)
		if !ok {
			return nil, rerr.New(rerr.Type, "import expects a string module name")
		}
		m, err := r.Import("", str.Value)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}
