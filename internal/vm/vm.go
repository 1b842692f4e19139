// Package vm implements spec.md §4.6: a stack-based virtual machine
// over the flat bytecode model in internal/bytecode. It maintains a
// value stack and a separate call-frame stack under the frame-pointer
// calling convention described there, and routes every operator and
// builtin call through internal/value and internal/builtin so its
// observable behavior matches internal/interpreter exactly (spec.md
// §8, "AST/VM agreement").
package vm

import (
	"github.com/tethal/rnatrix/internal/builtin"
	"github.com/tethal/rnatrix/internal/bytecode"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/logging"
	"github.com/tethal/rnatrix/internal/value"
	"go.uber.org/zap"
)

// callFrame is spec.md §3's CallFrame: where to resume the caller and
// which frame pointer to restore, kept on a stack separate from
// values.
type callFrame struct {
	returnIP int
	prevFP   int
}

// VM holds all execution state for one run of a Chunk. A VM is not
// safe for concurrent use (spec.md §5, "single-threaded assumption"),
// and is not meant to be reused across runs.
type VM struct {
	chunk  *bytecode.Chunk
	values []value.Value
	frames []callFrame
	ip     int
	fp     int
	log    *zap.Logger
}

// New creates a VM ready to execute chunk starting at its entry
// function (spec.md §3, "entry function is conventionally offset 0").
func New(chunk *bytecode.Chunk) *VM {
	return &VM{chunk: chunk, log: logging.Logger()}
}

// Run executes the chunk to completion and returns the entry
// function's result, or the first runtime diagnostic raised.
func (vm *VM) Run(entryGlobal int) (value.Value, *diag.Error) {
	entryFn, derr := vm.chunk.Globals[entryGlobal].AsFunction()
	if derr != nil {
		return value.Null(), derr
	}
	vm.values = append(vm.values, vm.chunk.Globals[entryGlobal])
	for i := 0; i < entryFn.NumLocals; i++ {
		vm.values = append(vm.values, value.Null())
	}
	vm.fp = 0
	vm.ip = entryFn.CodeOffset

	for {
		result, halted, err := vm.step()
		if err != nil {
			return value.Null(), err
		}
		if halted {
			return result, nil
		}
	}
}

func (vm *VM) push(v value.Value) { vm.values = append(vm.values, v) }

func (vm *VM) pop() (value.Value, *diag.Error) {
	n := len(vm.values)
	if n == 0 {
		return value.Null(), diag.AtOffset(diag.InternalError, vm.ip, "stack underflow")
	}
	v := vm.values[n-1]
	vm.values = vm.values[:n-1]
	return v, nil
}

func (vm *VM) readOpcode() bytecode.Op {
	op := bytecode.Op(vm.chunk.Code[vm.ip])
	vm.ip++
	return op
}

func (vm *VM) readUnsigned() (uint64, *diag.Error) {
	n, width, err := bytecode.Uvarint(vm.chunk.Code[vm.ip:])
	if err != nil {
		return 0, reoffset(err, vm.ip)
	}
	vm.ip += width
	return n, nil
}

func (vm *VM) readSigned() (int64, *diag.Error) {
	n, width, err := bytecode.Varint(vm.chunk.Code[vm.ip:])
	if err != nil {
		return 0, reoffset(err, vm.ip)
	}
	vm.ip += width
	return n, nil
}

func reoffset(err *diag.Error, ip int) *diag.Error {
	return diag.AtOffset(err.Kind, ip, "%s", err.Message)
}

// step executes exactly one instruction. It returns (result, true,
// nil) when execution halts (spec.md §4.6, "when ret is executed
// while F is empty, the VM halts").
func (vm *VM) step() (value.Value, bool, *diag.Error) {
	startIP := vm.ip
	op := vm.readOpcode()

	switch op {
	case bytecode.OpPushConst:
		idx, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		if int(idx) >= len(vm.chunk.Constants) {
			return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "constant index %d out of range", idx)
		}
		vm.push(vm.chunk.Constants[idx])

	case bytecode.OpPushNull:
		vm.push(value.Null())
	case bytecode.OpPushTrue:
		vm.push(value.Bool(true))
	case bytecode.OpPushFalse:
		vm.push(value.Bool(false))
	case bytecode.OpPush0:
		vm.push(value.Int(0))
	case bytecode.OpPush1:
		vm.push(value.Int(1))

	case bytecode.OpPushInt:
		n, err := vm.readSigned()
		if err != nil {
			return value.Null(), false, err
		}
		vm.push(value.Int(n))

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		if err := vm.binaryArith(op, startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		if err := vm.binaryCompare(op, startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpNeg, bytecode.OpNot:
		if err := vm.unary(op, startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpLoadLocal:
		slot, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		v, err2 := vm.localAt(int(slot), startIP)
		if err2 != nil {
			return value.Null(), false, err2
		}
		vm.push(v)

	case bytecode.OpLoad1:
		v, err := vm.localAt(1, startIP)
		if err != nil {
			return value.Null(), false, err
		}
		vm.push(v)

	case bytecode.OpStoreLocal:
		slot, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		v, err2 := vm.pop()
		if err2 != nil {
			return value.Null(), false, err2
		}
		idx := vm.fp + int(slot)
		if idx < 0 || idx >= len(vm.values) {
			return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "local slot %d out of range", slot)
		}
		vm.values[idx] = v

	case bytecode.OpLoadGlobal:
		idx, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		if int(idx) >= len(vm.chunk.Globals) {
			return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "global index %d out of range", idx)
		}
		vm.push(vm.chunk.Globals[idx])

	case bytecode.OpStoreGlobal:
		idx, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		v, err2 := vm.pop()
		if err2 != nil {
			return value.Null(), false, err2
		}
		if int(idx) >= len(vm.chunk.Globals) {
			return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "global index %d out of range", idx)
		}
		vm.chunk.Globals[idx] = v

	case bytecode.OpLoadBuiltin:
		idx, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		vm.push(value.Builtin(int(idx)))

	case bytecode.OpMakeList:
		n, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		if int(n) > len(vm.values) {
			return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "stack underflow building list")
		}
		items := make([]value.Value, n)
		copy(items, vm.values[len(vm.values)-int(n):])
		vm.values = vm.values[:len(vm.values)-int(n)]
		vm.push(value.NewList(items))

	case bytecode.OpGetItem:
		if err := vm.getItem(startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpSetItem:
		if err := vm.setItem(startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpJmp:
		rel, err := vm.readSigned()
		if err != nil {
			return value.Null(), false, err
		}
		vm.ip += int(rel)

	case bytecode.OpJtrue, bytecode.OpJfalse:
		rel, err := vm.readSigned()
		if err != nil {
			return value.Null(), false, err
		}
		cond, err2 := vm.pop()
		if err2 != nil {
			return value.Null(), false, err2
		}
		b, err3 := cond.AsBool()
		if err3 != nil {
			return value.Null(), false, diag.AtOffset(diag.TypeError, startIP, "%s", err3.Message)
		}
		if (op == bytecode.OpJtrue) == b {
			vm.ip += int(rel)
		}

	case bytecode.OpCall:
		n, err := vm.readUnsigned()
		if err != nil {
			return value.Null(), false, err
		}
		if err := vm.call(int(n), startIP); err != nil {
			return value.Null(), false, err
		}

	case bytecode.OpRet:
		return vm.doReturn(startIP)

	case bytecode.OpPop:
		if _, err := vm.pop(); err != nil {
			return value.Null(), false, err
		}

	default:
		return value.Null(), false, diag.AtOffset(diag.InternalError, startIP, "invalid opcode %d", op)
	}

	return value.Null(), false, nil
}

func (vm *VM) localAt(slot, ip int) (value.Value, *diag.Error) {
	idx := vm.fp + slot
	if idx < 0 || idx >= len(vm.values) {
		return value.Null(), diag.AtOffset(diag.InternalError, ip, "local slot %d out of range", slot)
	}
	return vm.values[idx], nil
}

func (vm *VM) binaryArith(op bytecode.Op, ip int) *diag.Error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	var res value.Value
	var derr *diag.Error
	switch op {
	case bytecode.OpAdd:
		res, derr = value.Add(l, r)
	case bytecode.OpSub:
		res, derr = value.Sub(l, r)
	case bytecode.OpMul:
		res, derr = value.Mul(l, r)
	case bytecode.OpDiv:
		res, derr = value.Div(l, r)
	case bytecode.OpMod:
		res, derr = value.Mod(l, r)
	}
	if derr != nil {
		return reoffset(derr, ip)
	}
	vm.push(res)
	return nil
}

func (vm *VM) binaryCompare(op bytecode.Op, ip int) *diag.Error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}
	if op == bytecode.OpEq || op == bytecode.OpNe {
		eq := value.Equal(l, r)
		vm.push(value.Bool(eq == (op == bytecode.OpEq)))
		return nil
	}
	sym := map[bytecode.Op]string{bytecode.OpLt: "<", bytecode.OpLe: "<=", bytecode.OpGt: ">", bytecode.OpGe: ">="}[op]
	ok, derr := value.Compare(sym, l, r)
	if derr != nil {
		return reoffset(derr, ip)
	}
	vm.push(value.Bool(ok))
	return nil
}

func (vm *VM) unary(op bytecode.Op, ip int) *diag.Error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	var res value.Value
	var derr *diag.Error
	if op == bytecode.OpNeg {
		res, derr = value.Neg(v)
	} else {
		res, derr = value.Not(v)
	}
	if derr != nil {
		return reoffset(derr, ip)
	}
	vm.push(res)
	return nil
}

func (vm *VM) getItem(ip int) *diag.Error {
	idxV, err := vm.pop()
	if err != nil {
		return err
	}
	collV, err := vm.pop()
	if err != nil {
		return err
	}
	idx, derr := idxV.AsInt()
	if derr != nil {
		return diag.AtOffset(diag.TypeError, ip, "index must be an int, got %s", idxV.TypeName())
	}
	switch {
	case collV.IsList():
		l, _ := collV.AsList()
		if idx < 0 || idx >= int64(len(l.Items)) {
			return diag.AtOffset(diag.IndexError, ip, "list index %d out of range (len %d)", idx, len(l.Items))
		}
		vm.push(l.Items[idx])
		return nil
	case collV.IsString():
		s, _ := collV.AsString()
		if idx < 0 || idx >= int64(len(s)) {
			return diag.AtOffset(diag.IndexError, ip, "string index %d out of range (len %d)", idx, len(s))
		}
		vm.push(value.Str(string(s[idx])))
		return nil
	default:
		return diag.AtOffset(diag.TypeError, ip, "cannot index a %s", collV.TypeName())
	}
}

func (vm *VM) setItem(ip int) *diag.Error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	idxV, err := vm.pop()
	if err != nil {
		return err
	}
	collV, err := vm.pop()
	if err != nil {
		return err
	}
	if collV.IsString() {
		return diag.AtOffset(diag.TypeError, ip, "set_item does not support string targets")
	}
	if !collV.IsList() {
		return diag.AtOffset(diag.TypeError, ip, "cannot assign into a %s", collV.TypeName())
	}
	idx, derr := idxV.AsInt()
	if derr != nil {
		return diag.AtOffset(diag.TypeError, ip, "index must be an int, got %s", idxV.TypeName())
	}
	l, _ := collV.AsList()
	if idx < 0 || idx >= int64(len(l.Items)) {
		return diag.AtOffset(diag.IndexError, ip, "list index %d out of range (len %d)", idx, len(l.Items))
	}
	l.Items[idx] = val
	vm.push(val)
	return nil
}

// call implements spec.md §4.6's call sequence for `call N`.
func (vm *VM) call(n, ip int) *diag.Error {
	calleeIdx := len(vm.values) - n - 1
	if calleeIdx < 0 {
		return diag.AtOffset(diag.InternalError, ip, "stack underflow at call")
	}
	callee := vm.values[calleeIdx]

	if bIdx, derr := callee.AsBuiltin(); derr == nil {
		args := make([]value.Value, n)
		copy(args, vm.values[calleeIdx+1:])
		result, berr := builtin.Registry[bIdx].Apply(args)
		if berr != nil {
			return reoffset(berr, ip)
		}
		vm.values = vm.values[:calleeIdx]
		vm.push(result)
		return nil
	}

	fn, derr := callee.AsFunction()
	if derr != nil {
		return diag.AtOffset(diag.TypeError, ip, "value of type %s is not callable", callee.TypeName())
	}
	if fn.Arity != n {
		return diag.AtOffset(diag.ArityError, ip, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, n)
	}

	vm.log.Debug("call", zap.String("fn", fn.Name), zap.Int("ip", ip), zap.Int("fp", vm.fp))
	vm.frames = append(vm.frames, callFrame{returnIP: vm.ip, prevFP: vm.fp})
	vm.fp = calleeIdx
	for i := 0; i < fn.NumLocals; i++ {
		vm.push(value.Null())
	}
	vm.ip = fn.CodeOffset
	return nil
}

// doReturn implements spec.md §4.6's `ret` behavior.
func (vm *VM) doReturn(ip int) (value.Value, bool, *diag.Error) {
	r, err := vm.pop()
	if err != nil {
		return value.Null(), false, err
	}
	vm.values = vm.values[:vm.fp]
	vm.push(r)

	if len(vm.frames) == 0 {
		return r, true, nil
	}
	top := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.log.Debug("ret", zap.Int("ip", ip), zap.Int("fp", vm.fp))
	vm.ip = top.returnIP
	vm.fp = top.prevFP
	return value.Null(), false, nil
}
