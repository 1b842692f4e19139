package interner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIsStable(t *testing.T) {
	in := New()
	a := in.Intern("foo")
	b := in.Intern("bar")
	c := in.Intern("foo")
	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
	require.NotEqual(t, Name(0), a)
}

func TestTextRoundTrips(t *testing.T) {
	in := New()
	n := in.Intern("hello")
	require.Equal(t, "hello", in.Text(n))
}

func TestLookupMissing(t *testing.T) {
	in := New()
	_, ok := in.Lookup("nope")
	require.False(t, ok)
	in.Intern("nope")
	n, ok := in.Lookup("nope")
	require.True(t, ok)
	require.Equal(t, "nope", in.Text(n))
}
