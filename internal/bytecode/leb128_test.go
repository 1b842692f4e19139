package bytecode

import (
	"math"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTripIsShortest(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, math.MaxUint32, math.MaxUint64}
	for _, x := range cases {
		buf := PutUvarint(nil, x)
		got, n, err := Uvarint(buf)
		require.Nil(t, err)
		require.Equal(t, x, got)
		require.Equal(t, len(buf), n)
		shortest := 1
		if x > 0 {
			shortest = (bits.Len64(x) + 6) / 7
		}
		require.Equal(t, shortest, len(buf))
	}
}

func TestVarintRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 63, -64, 64, -65, math.MaxInt64, math.MinInt64}
	for _, x := range cases {
		buf := PutVarint(nil, x)
		got, n, err := Varint(buf)
		require.Nil(t, err)
		require.Equal(t, x, got)
		require.Equal(t, len(buf), n)
	}
}

func TestVarintFixed5RoundTrips(t *testing.T) {
	cases := []int64{0, 1, -1, 1000, -1000, 1 << 20, -(1 << 20)}
	for _, x := range cases {
		buf := PutVarintFixed5(nil, x)
		require.Len(t, buf, 5)
		got, n, err := Varint(buf)
		require.Nil(t, err)
		require.Equal(t, x, got)
		require.Equal(t, 5, n)
	}
}

func TestDecoderAcceptsNonCanonicalLength(t *testing.T) {
	// 0 encoded with an extra, non-canonical continuation byte.
	padded := []byte{0x80, 0x00}
	got, n, err := Uvarint(padded)
	require.Nil(t, err)
	require.Equal(t, uint64(0), got)
	require.Equal(t, 2, n)
}
