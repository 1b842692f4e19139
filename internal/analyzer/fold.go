package analyzer

import (
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/value"
)

// applyUnary and applyBinary route constant folding through the same
// value library the VM and interpreter use (spec.md §4.1, "the single
// source of truth for operator semantics"), so a folded result is by
// construction identical to what execution would have produced.
func applyUnary(op string, v value.Value) (value.Value, *diag.Error) {
	switch op {
	case "-":
		return value.Neg(v)
	case "!":
		return value.Not(v)
	default:
		return value.Null(), diag.AtOffset(diag.InternalError, -1, "unknown unary operator %q", op)
	}
}

func applyBinary(op string, l, r value.Value) (value.Value, *diag.Error) {
	switch op {
	case "+":
		return value.Add(l, r)
	case "-":
		return value.Sub(l, r)
	case "*":
		return value.Mul(l, r)
	case "/":
		return value.Div(l, r)
	case "%":
		return value.Mod(l, r)
	case "==":
		return value.Bool(value.Equal(l, r)), nil
	case "!=":
		return value.Bool(!value.Equal(l, r)), nil
	case "<", "<=", ">", ">=":
		ok, err := value.Compare(op, l, r)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(ok), nil
	default:
		return value.Null(), diag.AtOffset(diag.InternalError, -1, "unknown binary operator %q", op)
	}
}
