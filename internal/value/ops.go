package value

import (
	"math"
	"strings"

	"github.com/tethal/rnatrix/internal/diag"
)

func bothNumeric(l, r Value) bool { return l.IsNumber() && r.IsNumber() }

// widen promotes an (int, int) or mixed (int, float) pair to the
// common representation spec.md §3 describes: int op int stays int,
// anything touching a float becomes float.
func widen(l, r Value) (li, ri int64, lf, rf float64, bothInt bool) {
	if l.kind == KindInt && r.kind == KindInt {
		return l.i, r.i, 0, 0, true
	}
	lv, _ := l.AsNumber()
	rv, _ := r.AsNumber()
	return 0, 0, lv, rv, false
}

// Add implements `+`: numeric addition, string concatenation, list
// concatenation (spec.md §3).
func Add(l, r Value) (Value, *diag.Error) {
	switch {
	case bothNumeric(l, r):
		li, ri, lf, rf, bothInt := widen(l, r)
		if bothInt {
			return Int(li + ri), nil
		}
		return Float(lf + rf), nil
	case l.kind == KindString && r.kind == KindString:
		return Str(l.s + r.s), nil
	case l.kind == KindList && r.kind == KindList:
		items := make([]Value, 0, len(l.list.Items)+len(r.list.Items))
		items = append(items, l.list.Items...)
		items = append(items, r.list.Items...)
		return NewList(items), nil
	default:
		return Null(), binaryTypeError("+", l, r)
	}
}

func Sub(l, r Value) (Value, *diag.Error) {
	if !bothNumeric(l, r) {
		return Null(), binaryTypeError("-", l, r)
	}
	li, ri, lf, rf, bothInt := widen(l, r)
	if bothInt {
		return Int(li - ri), nil
	}
	return Float(lf - rf), nil
}

func Mul(l, r Value) (Value, *diag.Error) {
	switch {
	case bothNumeric(l, r):
		li, ri, lf, rf, bothInt := widen(l, r)
		if bothInt {
			return Int(li * ri), nil
		}
		return Float(lf * rf), nil
	case l.kind == KindString && r.kind == KindInt:
		return repeatString(l.s, r.i)
	case l.kind == KindInt && r.kind == KindString:
		return repeatString(r.s, l.i)
	case l.kind == KindList && r.kind == KindInt:
		return repeatList(l.list, r.i)
	case l.kind == KindInt && r.kind == KindList:
		return repeatList(r.list, l.i)
	default:
		return Null(), binaryTypeError("*", l, r)
	}
}

func repeatString(s string, n int64) (Value, *diag.Error) {
	if n < 0 {
		return Null(), diag.AtOffset(diag.TypeError, -1, "string repeat count must be non-negative, got %d", n)
	}
	return Str(strings.Repeat(s, int(n))), nil
}

func repeatList(l *List, n int64) (Value, *diag.Error) {
	if n < 0 {
		return Null(), diag.AtOffset(diag.TypeError, -1, "list repeat count must be non-negative, got %d", n)
	}
	items := make([]Value, 0, len(l.Items)*int(n))
	for i := int64(0); i < n; i++ {
		items = append(items, l.Items...)
	}
	return NewList(items), nil
}

func Div(l, r Value) (Value, *diag.Error) {
	if !bothNumeric(l, r) {
		return Null(), binaryTypeError("/", l, r)
	}
	li, ri, lf, rf, bothInt := widen(l, r)
	if bothInt {
		if ri == 0 {
			return Null(), diag.AtOffset(diag.DivisionByZero, -1, "integer division by zero")
		}
		return Int(li / ri), nil
	}
	return Float(lf / rf), nil // IEEE semantics: div by 0.0 yields Inf/NaN, not an error
}

func Mod(l, r Value) (Value, *diag.Error) {
	if !bothNumeric(l, r) {
		return Null(), binaryTypeError("%", l, r)
	}
	li, ri, lf, rf, bothInt := widen(l, r)
	if bothInt {
		if ri == 0 {
			return Null(), diag.AtOffset(diag.DivisionByZero, -1, "integer modulo by zero")
		}
		return Int(li % ri), nil
	}
	return Float(math.Mod(lf, rf)), nil
}

// Neg implements unary `-`. Integer negation wraps in two's complement
// (spec.md §9, pinning the open question on math.MinInt64); Go's
// integer semantics already guarantee this.
func Neg(v Value) (Value, *diag.Error) {
	switch v.kind {
	case KindInt:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	default:
		return Null(), diag.AtOffset(diag.TypeError, -1, "unary - requires a number, got %s", v.TypeName())
	}
}

// Not implements unary `!`: booleans only (spec.md §3).
func Not(v Value) (Value, *diag.Error) {
	if v.kind != KindBool {
		return Null(), diag.AtOffset(diag.TypeError, -1, "unary ! requires a bool, got %s", v.TypeName())
	}
	return Bool(!v.b), nil
}

// Equal implements `==`/`!=`'s shared relation: total, never errors
// (spec.md §8, "Equality totality").
func Equal(l, r Value) bool {
	if l.kind != r.kind {
		if bothNumeric(l, r) {
			lf, _ := l.AsNumber()
			rf, _ := r.AsNumber()
			return lf == rf
		}
		return false
	}
	switch l.kind {
	case KindNull:
		return true
	case KindBool:
		return l.b == r.b
	case KindInt:
		return l.i == r.i
	case KindFloat:
		return l.f == r.f
	case KindString:
		return l.s == r.s
	case KindList:
		if len(l.list.Items) != len(r.list.Items) {
			return false
		}
		for i := range l.list.Items {
			if !Equal(l.list.Items[i], r.list.Items[i]) {
				return false
			}
		}
		return true
	case KindFunction:
		return l.fn == r.fn
	case KindBuiltin:
		return l.i == r.i
	default:
		return false
	}
}

// Compare implements the four ordering comparisons. Only numeric and
// same-type string operands are ordered; everything else is a
// TypeError (spec.md §3).
func Compare(op string, l, r Value) (bool, *diag.Error) {
	switch {
	case bothNumeric(l, r):
		li, ri, lf, rf, bothInt := widen(l, r)
		if bothInt {
			return compareOrdered(op, li, ri), nil
		}
		return compareOrdered(op, lf, rf), nil
	case l.kind == KindString && r.kind == KindString:
		return compareOrdered(op, l.s, r.s), nil
	default:
		return false, binaryTypeError(op, l, r)
	}
}

type ordered interface {
	~int64 | ~float64 | ~string
}

func compareOrdered[T ordered](op string, l, r T) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

func binaryTypeError(op string, l, r Value) *diag.Error {
	return diag.AtOffset(diag.TypeError, -1, "%s not supported between %s and %s", op, l.TypeName(), r.TypeName())
}
