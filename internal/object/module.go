package object

import "github.com/coucya/rolscript/internal/heap"

// Module is a loaded module's namespace (spec.md §3/§4.8): its
// canonical name, the init closure the loader produced (run at most
// once, before first use), and the attribute map init populates.
type Module struct {
	heap.Header

	CanonicalName string
	Init          Value // the loader's init function, or nil once run
	Initialized   bool

	Attrs map[string]Value
}

func (m *Module) GcHeader() *heap.Header { return &m.Header }

func (m *Module) VisitRefs(visit func(heap.Object)) {
	if m.Init != nil {
		visit(m.Init)
	}
	for _, v := range m.Attrs {
		if v != nil {
			visit(v)
		}
	}
}

func (m *Module) Destroy() error { return nil }

// NewModule registers canonicalName in the process-wide module cache
// BEFORE init runs (spec.md §4.8: "module registered in cache before
// init runs"), so a cyclic require sees the in-progress module instead
// of recursing forever. Modules live for the process's duration once
// cached (re-importing a canonical name always returns the same
// object), so both the Module and its init closure are retained
// permanently here rather than left to float at refcount zero.
func (rt *Runtime) NewModule(canonicalName string, init Value) *Module {
	m := &Module{CanonicalName: canonicalName, Attrs: map[string]Value{}}
	rt.Heap.Register(m, rt.types.Module, 48)
	if init != nil {
		m.Init = rt.Retain(init)
	}
	rt.Heap.IncRef(m)
	rt.Modules[canonicalName] = m
	return m
}

// MarkInitialized clears the (now-spent) init closure once the
// module's body has run (spec.md §3 Module: "Init... nil once run").
func (rt *Runtime) MarkInitialized(m *Module) {
	if m.Init != nil {
		rt.Release(m.Init)
		m.Init = nil
	}
	m.Initialized = true
}

func moduleGetAttr(rt *Runtime, self Value, name string) (Value, error) {
	m := self.(*Module)
	if v, ok := m.Attrs[name]; ok {
		return v, nil
	}
	return nil, rerrNoAttr(m.CanonicalName, name)
}

func moduleSetAttr(rt *Runtime, self Value, name string, val Value) error {
	m := self.(*Module)
	if old, ok := m.Attrs[name]; ok && old != nil {
		rt.Release(old)
	}
	m.Attrs[name] = rt.Retain(val)
	return nil
}

func moduleStr(rt *Runtime, self Value) (string, error) {
	return "<module " + self.(*Module).CanonicalName + ">", nil
}
