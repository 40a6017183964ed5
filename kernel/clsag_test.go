package kernel

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randScalar(t *testing.T) *Scalar {
	t.Helper()
	var e [64]byte
	rand.Read(e[:])
	s, err := RandomScalar(e[:])
	require.NoError(t, err)
	return s
}

// buildCLSAGRing constructs a ring of size n where index realIndex is owned
// by secret x with commitment mask realMask; the rest of the ring is filled
// with random decoy output/commitment keys. pseudoOut is a commitment to the
// same amount as the real output's commitment, under a different mask, so
// that z = realMask - pseudoMask is the signer's commitment-mask secret.
func buildCLSAGRing(t *testing.T, n, realIndex int, amount uint64) (CLSAGRing, *Scalar, *Scalar, *Point) {
	t.Helper()
	ring := CLSAGRing{OutputKeys: make([]*Point, n), CommitmentKeys: make([]*Point, n)}

	var x, realMask *Scalar
	for i := 0; i < n; i++ {
		if i == realIndex {
			x = randScalar(t)
			realMask = randScalar(t)
			ring.OutputKeys[i] = ScalarMultBase(x)
			ring.CommitmentKeys[i] = PedersenCommit(amount, realMask)
			continue
		}
		ring.OutputKeys[i] = ScalarMultBase(randScalar(t))
		ring.CommitmentKeys[i] = PedersenCommit(uint64(i+1)*12345, randScalar(t))
	}

	pseudoMask := randScalar(t)
	pseudoOut := PedersenCommit(amount, pseudoMask)
	z := ScSub(realMask, pseudoMask)
	return ring, x, z, pseudoOut
}

func TestCLSAGSignVerifyRoundTrip(t *testing.T) {
	const n = 5
	const realIndex = 2
	ring, x, z, pseudoOut := buildCLSAGRing(t, n, realIndex, 1_000_000)

	var message [32]byte
	rand.Read(message[:])

	nonce := randScalar(t)
	decoys := make([]*Scalar, n-1)
	for i := range decoys {
		decoys[i] = randScalar(t)
	}

	sig, err := CLSAGSign(message, ring, realIndex, x, z, pseudoOut, nonce, decoys)
	require.NoError(t, err)
	require.True(t, CLSAGVerify(message, ring, pseudoOut, sig))
}

func TestCLSAGVerifyRejectsTamperedResponse(t *testing.T) {
	const n = 4
	const realIndex = 0
	ring, x, z, pseudoOut := buildCLSAGRing(t, n, realIndex, 500)

	var message [32]byte
	rand.Read(message[:])
	nonce := randScalar(t)
	decoys := make([]*Scalar, n-1)
	for i := range decoys {
		decoys[i] = randScalar(t)
	}

	sig, err := CLSAGSign(message, ring, realIndex, x, z, pseudoOut, nonce, decoys)
	require.NoError(t, err)

	sig.S[1] = ScAdd(sig.S[1], ScalarFromUint64(1))
	require.False(t, CLSAGVerify(message, ring, pseudoOut, sig))
}

func TestCLSAGVerifyRejectsWrongMessage(t *testing.T) {
	const n = 3
	const realIndex = 1
	ring, x, z, pseudoOut := buildCLSAGRing(t, n, realIndex, 7)

	var message [32]byte
	rand.Read(message[:])
	nonce := randScalar(t)
	decoys := make([]*Scalar, n-1)
	for i := range decoys {
		decoys[i] = randScalar(t)
	}
	sig, err := CLSAGSign(message, ring, realIndex, x, z, pseudoOut, nonce, decoys)
	require.NoError(t, err)

	var otherMessage [32]byte
	rand.Read(otherMessage[:])
	require.False(t, CLSAGVerify(otherMessage, ring, pseudoOut, sig))
}

func TestCLSAGSignRejectsMalformedInput(t *testing.T) {
	ring, x, z, pseudoOut := buildCLSAGRing(t, 3, 0, 1)
	var message [32]byte

	_, err := CLSAGSign(message, ring, 5, x, z, pseudoOut, randScalar(t), []*Scalar{randScalar(t), randScalar(t)})
	require.Error(t, err)

	_, err = CLSAGSign(message, ring, 0, x, z, pseudoOut, randScalar(t), []*Scalar{randScalar(t)})
	require.Error(t, err)
}
