// Package compiler lowers the parser's AST into object.ScriptCode
// bytecode units (spec.md §4.5). One builder exists per closure/type
// body; nested literals recurse into a fresh child builder linked to
// its parent for capture-chain resolution.
package compiler

import (
	"github.com/coucya/rolscript/internal/object"
	"github.com/coucya/rolscript/internal/rerr"
	"github.com/coucya/rolscript/internal/vm"
)

type captureSource struct {
	fromLocal bool // true: parent local slot; false: parent's own capture slot
	slot      int
}

// builder accumulates one ScriptCode's instructions, constant pools,
// and name tables while walking its AST. Label/patch bookkeeping
// resolves every forward or backward jump to a signed relative offset
// once the unit is finished (spec.md §4.5 "label table").
type builder struct {
	parent *builder
	name   string

	ops       []object.Op
	constStrs []string
	strIndex  map[string]int
	constNums []float64

	locals    map[string]int
	nextLocal int

	captures       map[string]int
	captureNames   []string
	captureSources []captureSource

	children []*object.ScriptCode

	labelPos []int
	patches  []patch
}

type patch struct {
	pos   int
	label int
}

func newBuilder(name string, parent *builder) *builder {
	return &builder{
		parent:   parent,
		name:     name,
		strIndex: map[string]int{},
		locals:   map[string]int{},
		captures: map[string]int{},
	}
}

func (b *builder) emit(code vm.Opcode) int {
	b.ops = append(b.ops, object.Op{Code: uint8(code)})
	return len(b.ops) - 1
}

func (b *builder) emitA(code vm.Opcode, a int32) int {
	b.ops = append(b.ops, object.Op{Code: uint8(code), A: a})
	return len(b.ops) - 1
}

func (b *builder) emitAB(code vm.Opcode, a, bb int32) int {
	b.ops = append(b.ops, object.Op{Code: uint8(code), A: a, B: bb})
	return len(b.ops) - 1
}

func (b *builder) strConst(s string) int32 {
	if i, ok := b.strIndex[s]; ok {
		return int32(i)
	}
	i := len(b.constStrs)
	b.constStrs = append(b.constStrs, s)
	b.strIndex[s] = i
	return int32(i)
}

func (b *builder) numConst(f float64) int32 {
	i := len(b.constNums)
	b.constNums = append(b.constNums, f)
	return int32(i)
}

func (b *builder) newLocal(name string) int32 {
	slot := b.nextLocal
	b.nextLocal++
	b.locals[name] = slot
	return int32(slot)
}

func (b *builder) newLabel() int {
	b.labelPos = append(b.labelPos, -1)
	return len(b.labelPos) - 1
}

func (b *builder) markLabel(label int) {
	b.labelPos[label] = len(b.ops)
}

// emitJump appends a jump instruction with a placeholder operand,
// recording it for patching once label's position is known.
func (b *builder) emitJump(code vm.Opcode, label int) {
	pos := b.emit(code)
	b.patches = append(b.patches, patch{pos: pos, label: label})
}

func (b *builder) finalize(paramCount int) *object.ScriptCode {
	for _, p := range b.patches {
		target := b.labelPos[p.label]
		b.ops[p.pos].A = int32(target - (p.pos + 1))
	}
	return &object.ScriptCode{
		Name:         b.name,
		ParamCount:   paramCount,
		LocalCount:   b.nextLocal,
		Code:         b.ops,
		ConstStrs:    b.constStrs,
		ConstNums:    b.constNums,
		Children:     b.children,
		CaptureNames: b.captureNames,
	}
}

// resolveIdent decides how to load `name` (spec.md §4.5 scope
// resolution: this/local/capture/ancestor-capture-chain/global) and
// emits the corresponding load instruction.
func (b *builder) resolveIdent(name string) {
	if slot, ok := b.locals[name]; ok {
		b.emitA(vm.GetLocal, int32(slot))
		return
	}
	if slot, ok := b.resolveCapture(name); ok {
		b.emitA(vm.GetCapture, int32(slot))
		return
	}
	b.emitA(vm.GetGlobal, b.strConst(name))
}

// resolveIdentStore is resolveIdent's write-side counterpart, used by
// assignment compilation.
func (b *builder) resolveIdentStore(name string) error {
	if slot, ok := b.locals[name]; ok {
		b.emitA(vm.SetLocal, int32(slot))
		return nil
	}
	if slot, ok := b.resolveCapture(name); ok {
		b.emitA(vm.SetCapture, int32(slot))
		return nil
	}
	return rerr.New(rerr.Runtime, "cannot assign to undeclared name %q", name)
}

func (b *builder) resolveCapture(name string) (int, bool) {
	if slot, ok := b.captures[name]; ok {
		return slot, true
	}
	if b.parent == nil {
		return 0, false
	}
	if pslot, ok := b.parent.locals[name]; ok {
		return b.addCapture(name, captureSource{fromLocal: true, slot: pslot}), true
	}
	if pslot, ok := b.parent.resolveCapture(name); ok {
		return b.addCapture(name, captureSource{fromLocal: false, slot: pslot}), true
	}
	return 0, false
}

func (b *builder) addCapture(name string, src captureSource) int {
	idx := len(b.captureNames)
	b.captureNames = append(b.captureNames, name)
	b.captureSources = append(b.captureSources, src)
	b.captures[name] = idx
	return idx
}

// emitCaptureArray builds, in the PARENT builder, the Array of upvalue
// cells a freshly compiled child unit needs, in ascending capture
// index order (spec.md §4.5 "load captures in ascending index order").
func (parent *builder) emitCaptureArray(child *builder) {
	for _, src := range child.captureSources {
		if src.fromLocal {
			parent.emitA(vm.GetLocal, int32(src.slot))
		} else {
			parent.emitA(vm.GetCapture, int32(src.slot))
		}
	}
	parent.emitA(vm.NewArray, int32(len(child.captureSources)))
}
