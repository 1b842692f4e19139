package value

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/diag"
)

func TestDisplay(t *testing.T) {
	require.Equal(t, "null", Display(Null()))
	require.Equal(t, "true", Display(Bool(true)))
	require.Equal(t, "false", Display(Bool(false)))
	require.Equal(t, "42", Display(Int(42)))
	require.Equal(t, "-3", Display(Int(-3)))
	require.Equal(t, "3.5", Display(Float(3.5)))
	require.Equal(t, "hi", Display(Str("hi")))
	require.Equal(t, "[1, 2, 3]", Display(NewList([]Value{Int(1), Int(2), Int(3)})))
	require.Equal(t, "[1, [2, 3]]", Display(NewList([]Value{Int(1), NewList([]Value{Int(2), Int(3)})})))
}

func TestAccessorsTypeErrorOnMismatch(t *testing.T) {
	_, err := Int(1).AsString()
	require.Error(t, err)
	require.Equal(t, diag.TypeError, err.Kind)
}

func TestArithmeticIntAndFloat(t *testing.T) {
	v, err := Add(Int(2), Int(3))
	require.Nil(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(5), i)

	v, err = Add(Int(2), Float(0.5))
	require.Nil(t, err)
	f, _ := v.AsFloat()
	require.Equal(t, 2.5, f)
}

func TestDivisionByZero(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	require.Error(t, err)
	require.Equal(t, diag.DivisionByZero, err.Kind)

	v, err := Div(Float(1), Float(0))
	require.Nil(t, err)
	f, _ := v.AsFloat()
	require.True(t, f > 0 && f > 1e300) // +Inf
}

func TestStringAndListRepeat(t *testing.T) {
	v, err := Mul(Str("ab"), Int(3))
	require.Nil(t, err)
	s, _ := v.AsString()
	require.Equal(t, "ababab", s)

	v, err = Mul(NewList([]Value{Int(1)}), Int(2))
	require.Nil(t, err)
	l, _ := v.AsList()
	require.Len(t, l.Items, 2)
}

func TestNegWraps(t *testing.T) {
	v, err := Neg(Int(-9223372036854775808))
	require.Nil(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(-9223372036854775808), i)
}

func TestEqualityIsTotalAndCrossTypeFalse(t *testing.T) {
	require.True(t, Equal(Int(1), Int(1)))
	require.True(t, Equal(Int(1), Float(1.0)))
	require.False(t, Equal(Int(1), Str("1")))
	require.False(t, Equal(Null(), Bool(false)))
	require.True(t, Equal(Null(), Null()))
}

func TestCompareStringsLexicographic(t *testing.T) {
	lt, err := Compare("<", Str("abc"), Str("abd"))
	require.Nil(t, err)
	require.True(t, lt)

	_, err = Compare("<", Str("a"), Int(1))
	require.Error(t, err)
	require.Equal(t, diag.TypeError, err.Kind)
}
