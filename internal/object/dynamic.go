package object

import "github.com/coucya/rolscript/internal/heap"

// DynamicInstance is the single concrete Go type backing every
// instance of every script-defined type (spec.md §3 "dynamic
// (script-defined) types"). Its behaviour comes entirely from its
// Type's Overrides map — installDynamicDispatch (type.go) wires every
// dispatch-vector slot to look there, so this struct itself carries no
// type-specific logic.
type DynamicInstance struct {
	heap.Header
	Attrs map[string]Value
}

func (d *DynamicInstance) GcHeader() *heap.Header { return &d.Header }

func (d *DynamicInstance) VisitRefs(visit func(heap.Object)) {
	for _, v := range d.Attrs {
		if v != nil {
			visit(v)
		}
	}
}

func (d *DynamicInstance) Destroy() error {
	return nil
}

func (rt *Runtime) newDynamicInstance(t *Type) *DynamicInstance {
	inst := &DynamicInstance{Attrs: map[string]Value{}}
	rt.Heap.Register(inst, t, 32)
	return inst
}

// NewInstance implements the `NewType`-produced type's `new` dispatch
// from the VM's Call opcode: it is the entry point used when script
// code calls a dynamic type value (spec.md §4.6 Call on a Type acts as
// its constructor).
func (rt *Runtime) NewInstance(t *Type, args []Value) (Value, error) {
	return t.New(rt, t, args)
}
