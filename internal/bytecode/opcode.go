// Package bytecode implements spec.md §4.4: the flat instruction set,
// the constant/globals pool, and the LEB128 immediate encoding shared
// by the compiler and the VM.
package bytecode

// Op is a single-byte opcode (spec.md §4.4, "one byte per opcode
// followed by 0+ LEB128 immediates").
type Op byte

const (
	OpPushConst Op = iota
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPush0
	OpPush1
	OpPushInt // sint immediate, SLEB128

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpNeg
	OpNot

	OpLoadLocal // uint immediate
	OpLoad1     // fast path for slot 1, no immediate
	OpStoreLocal
	OpLoadGlobal
	OpStoreGlobal
	OpLoadBuiltin

	OpMakeList // uint immediate: element count
	OpGetItem
	OpSetItem

	OpJmp    // sint immediate, relative
	OpJtrue  // sint immediate, relative
	OpJfalse // sint immediate, relative

	OpCall // uint immediate: argument count
	OpRet

	OpPop
)

// names mirrors the canonical opcode names from spec.md §4.4, used by
// the disassembler.
var names = [...]string{
	OpPushConst:   "push_const",
	OpPushNull:    "push_null",
	OpPushTrue:    "push_true",
	OpPushFalse:   "push_false",
	OpPush0:       "push_0",
	OpPush1:       "push_1",
	OpPushInt:     "push_int",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpMod:         "mod",
	OpEq:          "eq",
	OpNe:          "ne",
	OpLt:          "lt",
	OpLe:          "le",
	OpGt:          "gt",
	OpGe:          "ge",
	OpNeg:         "neg",
	OpNot:         "not",
	OpLoadLocal:   "load_local",
	OpLoad1:       "load_1",
	OpStoreLocal:  "store_local",
	OpLoadGlobal:  "load_global",
	OpStoreGlobal: "store_global",
	OpLoadBuiltin: "load_builtin",
	OpMakeList:    "make_list",
	OpGetItem:     "get_item",
	OpSetItem:     "set_item",
	OpJmp:         "jmp",
	OpJtrue:       "jtrue",
	OpJfalse:      "jfalse",
	OpCall:        "call",
	OpRet:         "ret",
	OpPop:         "pop",
}

func (op Op) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "<invalid opcode>"
}

// Immediate classifies what, if anything, follows an opcode byte in
// the code stream, so the VM's fetch/decode loop and the disassembler
// can share one table instead of duplicating a switch each.
type Immediate int

const (
	ImmNone Immediate = iota
	ImmUnsigned
	ImmSignedJump // always encoded in the compiler's fixed 5-byte jump form
	ImmSignedInt  // canonical shortest-form SLEB128
)

var immediateKinds = [...]Immediate{
	OpPushConst:   ImmUnsigned,
	OpPushInt:     ImmSignedInt,
	OpLoadLocal:   ImmUnsigned,
	OpStoreLocal:  ImmUnsigned,
	OpLoadGlobal:  ImmUnsigned,
	OpStoreGlobal: ImmUnsigned,
	OpLoadBuiltin: ImmUnsigned,
	OpMakeList:    ImmUnsigned,
	OpJmp:         ImmSignedJump,
	OpJtrue:       ImmSignedJump,
	OpJfalse:      ImmSignedJump,
	OpCall:        ImmUnsigned,
}

// ImmediateKind reports what immediate (if any) follows op in the
// code stream.
func ImmediateKind(op Op) Immediate {
	if int(op) < len(immediateKinds) {
		return immediateKinds[op]
	}
	return ImmNone
}
