package object

import (
	"github.com/coucya/rolscript/internal/ast"
	"github.com/coucya/rolscript/internal/heap"
)

// Ast wraps a parsed ast.Node as a script value, used by the ast-dump
// debug module (SPEC_FULL.md §11.6) to expose parse trees to scripts
// without the compiler ever needing to.
type Ast struct {
	heap.Header
	Node ast.Node
}

func (a *Ast) GcHeader() *heap.Header      { return &a.Header }
func (a *Ast) VisitRefs(func(heap.Object)) {}
func (a *Ast) Destroy() error               { return nil }

func (rt *Runtime) NewAst(node ast.Node) Value {
	a := &Ast{Node: node}
	rt.Heap.Register(a, rt.types.Ast, 24)
	return a
}

func astStr(rt *Runtime, self Value) (string, error) {
	return "<ast>", nil
}
