package vm

import (
	"github.com/coucya/rolscript/internal/config"
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
)

// frame is one activation record (spec.md §4.7): a local-variable
// array sized to the code's declared local count, the closure's
// captured-upvalue cells, the bound `this`, and a private operand
// stack sized to param_count+local_count+overhead.
type frame struct {
	code     *object.ScriptCode
	this     object.Value
	locals   []object.Value
	captured []object.Value
	ip       int
	stack    []object.Value
}

const frameStackOverhead = 16

func newFrame(code *object.ScriptCode, this object.Value, args []object.Value, captured []object.Value) *frame {
	locals := make([]object.Value, code.LocalCount)
	n := code.ParamCount
	if n > len(args) {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		locals[i] = args[i]
	}
	// Missing trailing params (and every non-param local) start nil,
	// which GetLocal reads back as Null.
	return &frame{
		code:     code,
		this:     this,
		locals:   locals,
		captured: captured,
		stack:    make([]object.Value, 0, code.ParamCount+code.LocalCount+frameStackOverhead),
	}
}

func (f *frame) push(v object.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() object.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *frame) popN(n int) []object.Value {
	out := make([]object.Value, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

func (f *frame) top() object.Value { return f.stack[len(f.stack)-1] }

func (f *frame) dup() { f.push(f.top()) }

func (f *frame) rot2() {
	n := len(f.stack)
	f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]
}

func (f *frame) rot3() {
	n := len(f.stack)
	f.stack[n-1], f.stack[n-2], f.stack[n-3] = f.stack[n-3], f.stack[n-1], f.stack[n-2]
}

func (f *frame) rot4() {
	n := len(f.stack)
	f.stack[n-1], f.stack[n-2], f.stack[n-3], f.stack[n-4] = f.stack[n-4], f.stack[n-1], f.stack[n-2], f.stack[n-3]
}

// checkDepth enforces spec.md §4.7's recursion guard.
func checkDepth(depth int) error {
	if depth > config.MaxFrameDepth {
		return rerr.New(rerr.Runtime, "maximum call depth (%d) exceeded", config.MaxFrameDepth)
	}
	return nil
}
