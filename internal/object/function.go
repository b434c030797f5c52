package object

import "github.com/coucya/rolscript/internal/heap"

// NativeFunc is a host function exposed to scripts directly (the
// simplest of Function's three shapes: "native fn pointer").
type NativeFunc func(rt *Runtime, args []Value) (Value, error)

// NativeCallable is the richer native shape ("native callable w/
// invoke+drop vtable"): a closure-carrying host object, used by
// embedding bindings that need per-instance state and cleanup
// (spec.md §6 embedding API).
type NativeCallable interface {
	Invoke(rt *Runtime, args []Value) (Value, error)
	Drop()
}

// Function is the tagged union backing every callable script value
// (spec.md §3 Function: "native fn pointer, native callable w/
// invoke+drop vtable, or script closure w/ ScriptCode and captured
// Array"). Exactly one of Native/Callable/Code is set.
type Function struct {
	heap.Header

	Native   NativeFunc
	Callable NativeCallable

	Code      *ScriptCode
	Captured  []Value // upvalue cells, in ascending capture-index order
	BoundThis Value   // this passed by Function's Call slot; no constructor in this repository sets it
}

func (f *Function) GcHeader() *heap.Header { return &f.Header }

func (f *Function) VisitRefs(visit func(heap.Object)) {
	if f.Code != nil {
		visit(f.Code)
	}
	for _, c := range f.Captured {
		if c != nil {
			visit(c)
		}
	}
	if f.BoundThis != nil {
		visit(f.BoundThis)
	}
}

func (f *Function) Destroy() error {
	if f.Callable != nil {
		f.Callable.Drop()
	}
	return nil
}

// NewNativeFunction wraps a Go function as a callable script Value.
func (rt *Runtime) NewNativeFunction(fn NativeFunc) Value {
	f := &Function{Native: fn}
	rt.Heap.Register(f, rt.types.Function, 32)
	return f
}

// NewNativeCallable wraps a NativeCallable as a callable script Value.
func (rt *Runtime) NewNativeCallable(c NativeCallable) Value {
	f := &Function{Callable: c}
	rt.Heap.Register(f, rt.types.Function, 32)
	return f
}

// NewClosure wraps compiled code and its captured upvalues as a
// callable script Value (the `NewClosure` opcode, spec.md §4.6).
func (rt *Runtime) NewClosure(code *ScriptCode, captured []Value) Value {
	f := &Function{Code: code, Captured: captured}
	rt.Heap.Register(f, rt.types.Function, 32+8*len(captured))
	return f
}

func functionStr(rt *Runtime, self Value) (string, error) {
	f := self.(*Function)
	switch {
	case f.Native != nil, f.Callable != nil:
		return "<native function>", nil
	case f.Code != nil && f.Code.Name != "":
		return "<function " + f.Code.Name + ">", nil
	default:
		return "<function>", nil
	}
}

// functionCall is installed as Function's Call dispatch slot. It
// always delegates to rt.Invoke (wired by the vm package at startup),
// which is the single place that knows how to run all three Function
// shapes — native func, native callable, or a pushed VM frame.
func functionCall(rt *Runtime, self Value, args []Value) (Value, error) {
	f := self.(*Function)
	return rt.Invoke(rt, f, f.BoundThis, args)
}
