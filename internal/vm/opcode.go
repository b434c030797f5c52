// Package vm implements the stack-machine execution engine described
// in spec.md §4.6/§4.7: the opcode set, per-activation operand stacks,
// and the call/return protocol that lets native and script code
// re-enter each other.
package vm

// Opcode enumerates every instruction the compiler emits (spec.md
// §4.6). Operand meaning is documented per constant.
type Opcode uint8

const (
	Nop Opcode = iota

	LoadNull
	LoadTrue
	LoadFalse
	LoadInt      // A: inlined i32 value
	LoadConstNum // A: index into ConstNums
	LoadConstStr // A: index into ConstStrs
	LoadThis

	NewTuple // A: element count, consumes top A stack values
	NewArray // A: element count, consumes top A stack values
	NewMap   // A: entry count, consumes top 2*A stack values (key,val pairs)
	// NewClosure/NewType: A is a child ScriptCode index. Both consume a
	// single Array already built on the stack (via NewArray) holding
	// the unit's captured upvalue cells in ascending index order.
	// NewType additionally runs the child unit synchronously with
	// `this` bound to the freshly allocated Type before pushing it.
	NewClosure
	NewType

	SetOverload // A: index into ConstStrs naming the hook; consumes closure, type

	GetCapture // A: capture slot index
	SetCapture // A: capture slot index
	GetLocal   // A: local slot index
	SetLocal   // A: local slot index
	GetGlobal  // A: index into ConstStrs naming the global

	GetAttr    // A: index into ConstStrs naming the attribute
	GetAttrDup // like GetAttr but keeps the receiver on the stack beneath the result (method-call prep)
	SetAttr    // A: index into ConstStrs naming the attribute
	GetItem
	SetItem

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpPow
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr

	OpCmp // pushes a signed Int: -1/0/1
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpNot
	OpBitNot

	Iter
	IterNext // pushes the Option from Next; IfFalse on its has_value drives loop exit (compiled pattern, §4.5 For)

	IfFalse // A: relative jump offset, consumes condition
	Jmp     // A: relative jump offset

	Call       // A: argument count
	CallMethod // A: index into ConstStrs naming the method, B: argument count; binds this=receiver
	CallAttr   // A: index into ConstStrs naming the attribute, B: argument count; fetches via get_attr, binds this=receiver
	Return

	Pop
	Dup
	Rot  // swap top two
	Rot3 // rotate top three, third-from-top becomes top
	Rot4 // rotate top four
)
