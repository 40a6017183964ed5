package kernel

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScReduce32ProducesCanonicalScalar(t *testing.T) {
	var wide [32]byte
	rand.Read(wide[:])
	// Force the top bits high so the raw value, read as an integer, very
	// likely exceeds L.
	wide[31] = 0xff

	s, err := ScReduce32(wide[:])
	require.NoError(t, err)
	require.True(t, ScCheck(s.Bytes()))
}

func TestScalarFromCanonicalBytesRejectsOutOfRange(t *testing.T) {
	var tooBig [32]byte
	for i := range tooBig {
		tooBig[i] = 0xff
	}
	_, err := ScalarFromCanonicalBytes(tooBig[:])
	require.Error(t, err)
}

func TestScalarArithmeticIdentities(t *testing.T) {
	a := ScalarFromUint64(7)
	b := ScalarFromUint64(5)

	require.True(t, ScAdd(a, b).Equal(ScalarFromUint64(12)))
	require.True(t, ScSub(a, b).Equal(ScalarFromUint64(2)))
	require.True(t, ScMul(a, b).Equal(ScalarFromUint64(35)))

	sum := ScMulAdd(a, b, ScalarFromUint64(1))
	require.True(t, sum.Equal(ScalarFromUint64(36)))

	diff := ScMulSub(a, b, ScalarFromUint64(36))
	require.True(t, diff.Equal(ScalarFromUint64(1)))

	inv := ScInvert(a)
	require.True(t, ScMul(a, inv).Equal(ScalarFromUint64(1)))

	neg := ScNegate(a)
	require.True(t, ScAdd(a, neg).IsZero())
}

func TestScalarBytesRoundTrip(t *testing.T) {
	a := ScalarFromUint64(424242)
	b, err := ScalarFromCanonicalBytes(a.Bytes())
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.True(t, bytes.Equal(a.Bytes(), b.Bytes()))
}

func TestRandomScalarIsReduced(t *testing.T) {
	var entropy [64]byte
	rand.Read(entropy[:])
	s, err := RandomScalar(entropy[:])
	require.NoError(t, err)
	require.True(t, ScCheck(s.Bytes()))
}
