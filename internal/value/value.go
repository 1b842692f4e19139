// Package value implements the opaque Value type from spec.md §3/§4.1:
// the single sum type shared by the analyzer (for constant folding),
// the compiler (for constant emission), the VM and the tree
// interpreter. The tag and representation are private; callers only
// see constructors, type tests, and consuming accessors.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tethal/rnatrix/internal/diag"
)

// Kind is the private discriminant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindFunction
	KindBuiltin
)

// List is a shared-ownership, interior-mutable ordered sequence of
// Values (spec.md §3). Go's garbage collector owns the memory once
// the last reference drops; see DESIGN.md for why Natrix does not
// hand-roll reference counting the way the source language does.
type List struct {
	Items []Value
}

// FunctionObject is the shared, immutable representation of a
// compiled function value: its arity, its local-slot budget, and
// where its code begins in the bytecode stream.
type FunctionObject struct {
	Name       string
	Arity      int
	NumLocals  int
	CodeOffset int
}

// Value is the tagged union described by spec.md §3. It is always
// passed by value; List and FunctionObject are themselves pointers,
// which is what gives them shared-ownership semantics.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list *List
	fn   *FunctionObject
}

func Null() Value                  { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Str(s string) Value           { return Value{kind: KindString, s: s} }
func FromList(l *List) Value       { return Value{kind: KindList, list: l} }
func NewList(items []Value) Value  { return Value{kind: KindList, list: &List{Items: items}} }
func FromFunction(fn *FunctionObject) Value { return Value{kind: KindFunction, fn: fn} }
func Builtin(index int) Value      { return Value{kind: KindBuiltin, i: int64(index)} }

func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) IsBool() bool     { return v.kind == KindBool }
func (v Value) IsInt() bool      { return v.kind == KindInt }
func (v Value) IsFloat() bool    { return v.kind == KindFloat }
func (v Value) IsString() bool   { return v.kind == KindString }
func (v Value) IsList() bool     { return v.kind == KindList }
func (v Value) IsFunction() bool { return v.kind == KindFunction }
func (v Value) IsBuiltin() bool  { return v.kind == KindBuiltin }
func (v Value) IsNumber() bool   { return v.kind == KindInt || v.kind == KindFloat }

// TypeName returns the user-facing type name used in diagnostics.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

func typeErr(op string, v Value) *diag.Error {
	return diag.AtOffset(diag.TypeError, -1, "%s requires a %s, got %s", op, op, v.TypeName())
}

// AsBool consumes v as a bool, failing with a TypeError diagnostic if
// v is not a Bool (spec.md §4.1, "consuming extraction").
func (v Value) AsBool() (bool, *diag.Error) {
	if v.kind != KindBool {
		return false, diag.AtOffset(diag.TypeError, -1, "expected bool, got %s", v.TypeName())
	}
	return v.b, nil
}

func (v Value) AsInt() (int64, *diag.Error) {
	if v.kind != KindInt {
		return 0, diag.AtOffset(diag.TypeError, -1, "expected int, got %s", v.TypeName())
	}
	return v.i, nil
}

func (v Value) AsFloat() (float64, *diag.Error) {
	if v.kind != KindFloat {
		return 0, diag.AtOffset(diag.TypeError, -1, "expected float, got %s", v.TypeName())
	}
	return v.f, nil
}

func (v Value) AsString() (string, *diag.Error) {
	if v.kind != KindString {
		return "", diag.AtOffset(diag.TypeError, -1, "expected string, got %s", v.TypeName())
	}
	return v.s, nil
}

func (v Value) AsList() (*List, *diag.Error) {
	if v.kind != KindList {
		return nil, diag.AtOffset(diag.TypeError, -1, "expected list, got %s", v.TypeName())
	}
	return v.list, nil
}

func (v Value) AsFunction() (*FunctionObject, *diag.Error) {
	if v.kind != KindFunction {
		return nil, diag.AtOffset(diag.TypeError, -1, "expected function, got %s", v.TypeName())
	}
	return v.fn, nil
}

func (v Value) AsBuiltin() (int, *diag.Error) {
	if v.kind != KindBuiltin {
		return 0, diag.AtOffset(diag.TypeError, -1, "expected builtin, got %s", v.TypeName())
	}
	return int(v.i), nil
}

// AsNumber returns v's numeric value as a float64 regardless of
// whether it is stored as Int or Float, for callers (like the mixed
// int/float arithmetic and equality in ops.go) that want int widened
// to float.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Display formats v per spec.md §4.1: null/true-false/bare integers/
// round-trippable floats/raw strings/recursively displayed lists.
func Display(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list.Items))
		for i, item := range v.list.Items {
			parts[i] = Display(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindFunction:
		return fmt.Sprintf("<function %s>", v.fn.Name)
	case KindBuiltin:
		return fmt.Sprintf("<builtin #%d>", v.i)
	default:
		return "<?>"
	}
}
