package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tethal/rnatrix/internal/diag"
	"github.com/tethal/rnatrix/internal/value"
)

func TestLookupKnownNames(t *testing.T) {
	idx, ok := Lookup("print")
	require.True(t, ok)
	require.Equal(t, Print, idx)
	require.False(t, Registry[idx].Pure)

	idx, ok = Lookup("len")
	require.True(t, ok)
	require.True(t, Registry[idx].Pure)

	_, ok = Lookup("nope")
	require.False(t, ok)
}

func TestIntConversions(t *testing.T) {
	v, err := Registry[Int].Apply([]value.Value{value.Float(3.9)})
	require.Nil(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(3), i)

	v, err = Registry[Int].Apply([]value.Value{value.Str("42")})
	require.Nil(t, err)
	i, _ = v.AsInt()
	require.Equal(t, int64(42), i)

	_, err = Registry[Int].Apply([]value.Value{value.Str("oops")})
	require.Error(t, err)
	require.Equal(t, diag.ValueError, err.Kind)
}

func TestFloatToIntSaturatesAndHandlesNaN(t *testing.T) {
	require.Equal(t, int64(0), floatToIntSaturating(nan()))
	require.Equal(t, int64(9223372036854775807), floatToIntSaturating(1e300))
	require.Equal(t, int64(-9223372036854775808), floatToIntSaturating(-1e300))
}

func nan() float64 {
	var z float64
	return z / z
}

func TestLenOnStringAndList(t *testing.T) {
	v, err := Registry[Len].Apply([]value.Value{value.Str("abc")})
	require.Nil(t, err)
	i, _ := v.AsInt()
	require.Equal(t, int64(3), i)

	v, err = Registry[Len].Apply([]value.Value{value.NewList([]value.Value{value.Int(1), value.Int(2)})})
	require.Nil(t, err)
	i, _ = v.AsInt()
	require.Equal(t, int64(2), i)

	_, err = Registry[Len].Apply([]value.Value{value.Int(1)})
	require.Error(t, err)
	require.Equal(t, diag.TypeError, err.Kind)
}
