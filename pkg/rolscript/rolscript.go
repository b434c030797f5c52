// Package rolscript is the high-level embedding API over the
// interpreter core (spec.md §1 "the embedding host... is not
// specified here" — this package is that host-facing adapter),
// grounded on the teacher's pkg/embed package: a thin VM wrapper plus
// a reflect-based Marshaller for converting between script Values and
// Go values.
package rolscript

import (
	"reflect"

	"github.com/coucya/rolscript/internal/heap"
	"github.com/coucya/rolscript/internal/loader"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/runtime"
)

// VM is the embedding handle: one process-wide interpreter instance.
type VM struct {
	rt         *runtime.Runtime
	marshaller *Marshaller
	bindings   map[string]Binding
}

// Binding records a Go value bound into script globals via Bind.
type Binding struct {
	Value any
	Name  string
}

// New creates a VM rooted at sourceDir for relative imports (empty
// disables the default filesystem loader).
func New(sourceDir string) *VM {
	var l object.Loader
	if sourceDir != "" {
		l = loader.NewFS(sourceDir)
	}
	v := &VM{
		rt:         runtime.Initialize(heap.DefaultAllocator{}, l),
		marshaller: NewMarshaller(),
		bindings:   make(map[string]Binding),
	}
	return v
}

// SetTrace installs a diagnostics callback (spec.md §10).
func (v *VM) SetTrace(fn func(string)) { v.rt.SetTrace(fn) }

// Close runs a final collection cycle; values the runtime pins for the
// whole process (such as interned strings and cached modules) are not
// reclaimed by it.
func (v *VM) Close() error { return v.rt.Finalize() }

// Eval compiles and runs src as an anonymous module, returning its
// trailing value converted to a Go value.
func (v *VM) Eval(src string) (any, error) {
	return v.EvalNamed("<eval>", src)
}

// EvalNamed is Eval with an explicit canonical module name, used when
// the script's own relative imports need a stable identity.
func (v *VM) EvalNamed(name, src string) (any, error) {
	val, err := v.rt.RunSource(name, src)
	if err != nil {
		return nil, err
	}
	return v.marshaller.FromValue(val)
}

// Bind registers a Go function or value under name, reachable from
// script globals (spec.md §11.1's host extension bindings, generalised
// to ad hoc host-supplied bindings).
func (v *VM) Bind(name string, val any) error {
	v.bindings[name] = Binding{Value: val, Name: name}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Func {
		v.rt.RT.Globals[name] = v.rt.RT.NewNativeFunction(v.nativeWrap(rv))
		return nil
	}
	sv, err := v.marshaller.ToValue(v.rt.RT, val)
	if err != nil {
		return err
	}
	v.rt.RT.Globals[name] = sv
	return nil
}

// nativeWrap adapts a Go func value to object.NativeFunc via reflect,
// mirroring the teacher's hostCallHandler argument/result marshalling.
func (v *VM) nativeWrap(fn reflect.Value) object.NativeFunc {
	return func(rt *object.Runtime, args []object.Value) (object.Value, error) {
		ft := fn.Type()
		numIn := ft.NumIn()
		if !ft.IsVariadic() && len(args) != numIn {
			return nil, rerr.New(rerr.Type, "expected %d arguments, got %d", numIn, len(args))
		}
		goArgs := make([]reflect.Value, len(args))
		for i, a := range args {
			var target reflect.Type
			if ft.IsVariadic() && i >= numIn-1 {
				target = ft.In(numIn - 1).Elem()
			} else {
				target = ft.In(i)
			}
			goVal, err := v.marshaller.FromValueAs(a, target)
			if err != nil {
				return nil, rerr.Wrap(rerr.Type, err, "argument %d", i)
			}
			goArgs[i] = reflect.ValueOf(goVal)
		}
		results := fn.Call(goArgs)
		if len(results) == 0 {
			return rt.Null(), nil
		}
		if len(results) == 1 {
			return v.marshaller.ToValue(rt, results[0].Interface())
		}
		elems := make([]object.Value, len(results))
		for i, r := range results {
			sv, err := v.marshaller.ToValue(rt, r.Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return rt.Tuple(elems), nil
	}
}

// RT exposes the underlying object.Runtime for advanced embedders
// (stdlib modules, internal/ext) that need direct Heap/Globals access.
func (v *VM) RT() *object.Runtime { return v.rt.RT }
