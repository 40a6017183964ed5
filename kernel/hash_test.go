package kernel

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeccak256EmptyInput(t *testing.T) {
	// CryptoNote's Keccak-256 of the empty string, single-byte 0x01 padding
	// (not NIST SHA-3's 0x06). This is the standard "Keccak-256" test vector
	// published alongside the original Keccak submission, not SHA3-256's.
	digest := Keccak256()
	got := hex.EncodeToString(digest[:])
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	require.Equal(t, want, got)
}

func TestKeccak256ThirtyTwoZeroBytes(t *testing.T) {
	digest := Keccak256(make([]byte, 32))
	got := hex.EncodeToString(digest[:])
	require.True(t, len(got) == 64)
	require.Equal(t, "eed73a", got[:6])
}

func TestBlake2bLongShortDelegatesToBlake2b(t *testing.T) {
	short, err := Blake2bLong(32, []byte("carrot"))
	require.NoError(t, err)
	require.Len(t, short, 32)

	direct, err := Blake2b(32, nil, leUint32(32), []byte("carrot"))
	require.NoError(t, err)
	require.Equal(t, direct, short)
}

func leUint32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func TestBlake2bLongOverflowLength(t *testing.T) {
	out, err := Blake2bLong(1024, []byte("seed material"))
	require.NoError(t, err)
	require.Len(t, out, 1024)

	// Deterministic: same input, same output.
	again, err := Blake2bLong(1024, []byte("seed material"))
	require.NoError(t, err)
	require.Equal(t, out, again)

	// Different input data changes the output.
	other, err := Blake2bLong(1024, []byte("seed materia"))
	require.NoError(t, err)
	require.NotEqual(t, out, other)
}

func TestHashToScalarIsReducedAndDeterministic(t *testing.T) {
	s1 := HashToScalar([]byte("domain"), []byte("input"))
	s2 := HashToScalar([]byte("domain"), []byte("input"))
	require.True(t, s1.Equal(s2))
	require.True(t, ScCheck(s1.Bytes()))
}

func TestHashToPointIsOnCurveAndCofactorCleared(t *testing.T) {
	p := HashToPoint([]byte("test input"))
	// Round-trips through compressed encoding (validates curve membership).
	decoded, err := PointFromBytes(p.Bytes())
	require.NoError(t, err)
	require.True(t, p.Equal(decoded))

	// Cofactor-cleared points lie in the prime-order subgroup: multiplying
	// by L-1 and adding the point back must return the identity, since
	// L*p == 0 for any subgroup point.
	lMinus1, err := ScalarFromCanonicalBytes(groupOrderMinusOneBytes())
	require.NoError(t, err)
	require.True(t, PointAdd(ScalarMultPoint(lMinus1, p), p).Equal(IdentityPoint()))
}

func TestHashToPointDeterministic(t *testing.T) {
	a := HashToPoint([]byte("same input"))
	b := HashToPoint([]byte("same input"))
	require.True(t, a.Equal(b))

	c := HashToPoint([]byte("different input"))
	require.False(t, a.Equal(c))
}

// groupOrderMinusOneBytes returns L-1, little-endian encoded, where
// L = 2^252 + 27742317777372353535851937790883648493 is the order of the
// edwards25519 prime-order subgroup. L itself is not a canonical scalar
// encoding (it is not strictly less than L), so tests use L-1 and add the
// point back in.
func groupOrderMinusOneBytes() []byte {
	b, err := hex.DecodeString("ecd3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	if err != nil {
		panic(err)
	}
	return b
}
