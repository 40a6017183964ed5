package kernel

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestX25519NonStandardClampingOnlyClearsTopBit(t *testing.T) {
	var scalar [32]byte
	rand.Read(scalar[:])
	scalar[31] |= 0x80 // set the bit that must be cleared
	scalar[0] &^= 0x07 // clear the low bits; clamping leaves them alone

	out := X25519(scalar, X25519BasePoint)
	require.NotEqual(t, [32]byte{}, out)

	// Re-deriving with bit 255 pre-cleared must give the same result,
	// since X25519 only ever touches that one bit during clamping.
	cleared := scalar
	cleared[31] &= 0x7f
	out2 := X25519(cleared, X25519BasePoint)
	require.Equal(t, out, out2)

	// Bit 0 survives clamping, so setting it changes the result.
	lowSet := cleared
	lowSet[0] |= 0x01
	require.NotEqual(t, out, X25519(lowSet, X25519BasePoint))
}

func TestX25519BaseScalarMultDeterministic(t *testing.T) {
	var scalar [32]byte
	rand.Read(scalar[:])

	a := X25519BaseScalarMult(scalar)
	b := X25519BaseScalarMult(scalar)
	require.Equal(t, a, b)
}

func TestX25519DifferentScalarsDifferentOutputs(t *testing.T) {
	var s1, s2 [32]byte
	rand.Read(s1[:])
	rand.Read(s2[:])
	s1[31] &= 0x7f
	s2[31] &= 0x7f
	if s1 == s2 {
		s2[0] ^= 1
	}

	require.NotEqual(t, X25519BaseScalarMult(s1), X25519BaseScalarMult(s2))
}
