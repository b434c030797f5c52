// Package object implements the data model of spec.md §3: the Value
// header, the per-type dispatch vector, and the built-in and
// user-defined type machinery. It owns the single process-wide
// Runtime context described in §5.
package object

import (
	"github.com/coucya/rolscript/internal/config"
	"github.com/coucya/rolscript/internal/heap"
)

// Value is any heap-allocated script value. Every concrete type in
// this package (and every dynamic-type instance) implements it via
// heap.Object.
type Value = heap.Object

// Loader is the injected module-loading capability (spec.md §4.8): it
// normalises a possibly-relative module name against a requester, and
// produces the compiled init closure for a canonical name.
type Loader interface {
	Normalize(requesterCanonicalName, name string) (string, error)
	Load(rt *Runtime, canonicalName string) (Value, error)
}

// Invoker is supplied by the VM so that native code (dynamic-type
// dispatch shims, trait-like operator overloads, module init) can call
// back into script closures without the object package depending on
// the vm package.
type Invoker func(rt *Runtime, fn Value, this Value, args []Value) (Value, error)

// Runtime is the single process-wide context holding the heap, string
// pool, small-integer pool, module cache and globals (spec.md §5).
type Runtime struct {
	Heap *heap.Heap

	strings map[string]*String
	intPool []*Int

	Globals map[string]Value
	Modules map[string]*Module

	Invoke Invoker
	Loader Loader

	// Singleton instances shared across the runtime (§3 Built-in
	// types): one Null, two Bools and the none Option.
	nullVal  *Null
	trueVal  *Bool
	falseVal *Bool
	noneVal  *Option

	types builtinTypes
}

type builtinTypes struct {
	Null, Bool, Int, Float, String, Tuple, Array, Map, Option, Function, ScriptCode, Module, Type *Type
	ArrayIter *Type // shared by Array.iter and Tuple.iter
	Ast       *Type
}

// NewRuntime builds a fresh Runtime with every built-in type installed
// and the small-int pool pre-populated (spec.md §3 invariants).
func NewRuntime(alloc heap.Allocator) *Runtime {
	rt := &Runtime{
		Heap:    heap.New(alloc),
		strings: make(map[string]*String),
		Globals: make(map[string]Value),
		Modules: make(map[string]*Module),
	}
	rt.installBuiltinTypes()
	rt.nullVal = rt.newNull()
	rt.trueVal = rt.newBool(true)
	rt.falseVal = rt.newBool(false)
	rt.noneVal = rt.newOption(nil, false)
	for _, v := range []Value{rt.nullVal, rt.trueVal, rt.falseVal, rt.noneVal} {
		rt.Heap.IncRef(v) // process-lifetime singletons, never collected
	}

	rt.intPool = make([]*Int, config.IntPoolHigh-config.IntPoolLow)
	for i := range rt.intPool {
		n := rt.allocInt(int64(config.IntPoolLow + i))
		rt.Heap.IncRef(n) // pool entries are permanent, like interned strings
		rt.intPool[i] = n
	}
	return rt
}

// MaybeCollectGC runs a cycle-collection pass if the configured
// thresholds are exceeded (spec.md §4.1).
func (rt *Runtime) MaybeCollectGC() error {
	return rt.Heap.MaybeCollect(config.GCSeedThreshold, config.GCGrowthFactor)
}

// Retain/Release are thin wrappers over the heap's ref-count ops, used
// throughout the VM and object constructors whenever a Value is
// stored into a new owning slot or dropped from one.
func (rt *Runtime) Retain(v Value) Value {
	rt.Heap.IncRef(v)
	return v
}

func (rt *Runtime) Release(v Value) {
	rt.Heap.DecRef(v)
}
