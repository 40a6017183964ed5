package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40, ^uint64(0)}
	for _, v := range cases {
		enc := Varint(v)
		got, n, err := ReadVarint(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, v, got)
	}
}

func TestReadVarintTruncated(t *testing.T) {
	_, _, err := ReadVarint([]byte{0x80, 0x80})
	require.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	enc := PutString(nil, "SAL1")
	got, n, err := ReadString(enc)
	require.NoError(t, err)
	require.Equal(t, "SAL1", got)
	require.Equal(t, len(enc), n)
}
