package object

import "github.com/coucya/rolscript/internal/heap"

// Op is a single bytecode instruction: an opcode plus up to two
// operands, laid out the way the compiler's builder emits them
// (spec.md §4.5/§4.6). The vm package interprets Op.Code; operand
// meaning is opcode-specific (jump target, constant index, local
// slot, capture slot, argument count...).
type Op struct {
	Code uint8
	A, B int32
}

// ScriptCode is one compiled closure body (spec.md §3 ScriptCode): its
// parameter count, its instruction stream, its constant pools, its
// nested child units (one per literal nested closure/type), and the
// name tables the compiler used to resolve locals and captures. The
// compiler resolves captures by walking its own builder chain; it does
// not set Parent, which only NewScriptCode fills in.
type ScriptCode struct {
	heap.Header

	Name       string
	ParamCount int
	LocalCount int // includes params; locals beyond params start null

	Code []Op

	ConstStrs []string
	ConstNums []float64

	Children []*ScriptCode

	// CaptureNames records, in capture-index order, the names this
	// unit's closures close over from an enclosing scope. NewClosure
	// takes the cells from the Array on the stack rather than from
	// this list.
	CaptureNames []string

	Parent *ScriptCode
}

func (c *ScriptCode) GcHeader() *heap.Header { return &c.Header }

func (c *ScriptCode) VisitRefs(visit func(heap.Object)) {
	for _, ch := range c.Children {
		if ch != nil {
			visit(ch)
		}
	}
}

func (c *ScriptCode) Destroy() error { return nil }

// NewScriptCode allocates and registers a fresh, empty ScriptCode for
// the compiler's builder to fill in.
func (rt *Runtime) NewScriptCode(name string, parent *ScriptCode) *ScriptCode {
	c := &ScriptCode{Name: name, Parent: parent}
	rt.Heap.Register(c, rt.types.ScriptCode, 64)
	return c
}
