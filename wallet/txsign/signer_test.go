package txsign

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/salvium/walletcore/kernel"
)

func randScalar(t *testing.T) *kernel.Scalar {
	t.Helper()
	var e [64]byte
	rand.Read(e[:])
	s, err := kernel.RandomScalar(e[:])
	require.NoError(t, err)
	return s
}

func randPoint(t *testing.T) *kernel.Point {
	t.Helper()
	return kernel.ScalarMultBase(randScalar(t))
}

func TestSignCLSAGRoundTrip(t *testing.T) {
	const n = 5
	const realIndex = 2
	const amount = 1_000_000

	spendSecret := randScalar(t)
	d := randPoint(t)
	outputIndex := 7
	scalarI := cnPerOutputScalar(d, outputIndex)
	x := kernel.ScAdd(spendSecret, scalarI)

	ring := kernel.CLSAGRing{OutputKeys: make([]*kernel.Point, n), CommitmentKeys: make([]*kernel.Point, n)}
	realMask := randScalar(t)
	for i := 0; i < n; i++ {
		if i == realIndex {
			ring.OutputKeys[i] = kernel.ScalarMultBase(x)
			ring.CommitmentKeys[i] = kernel.PedersenCommit(amount, realMask)
			continue
		}
		ring.OutputKeys[i] = randPoint(t)
		ring.CommitmentKeys[i] = kernel.PedersenCommit(uint64(i+1)*555, randScalar(t))
	}
	pseudoMask := randScalar(t)
	pseudoOut := kernel.PedersenCommit(amount, pseudoMask)

	var message [32]byte
	rand.Read(message[:])
	decoys := make([]*kernel.Scalar, n-1)
	for i := range decoys {
		decoys[i] = randScalar(t)
	}

	desc := &CNInputDescriptor{
		Ring:           ring,
		RealIndex:      realIndex,
		SpendSecret:    spendSecret,
		SharedSecretD:  d,
		OutputIndex:    outputIndex,
		MaskReal:       realMask,
		MaskPseudo:     pseudoMask,
		PseudoOut:      pseudoOut,
		Message:        message,
		Nonce:          randScalar(t),
		DecoyResponses: decoys,
	}
	sig, err := SignCLSAG(desc)
	require.NoError(t, err)
	require.True(t, kernel.CLSAGVerify(message, ring, pseudoOut, sig))
}

func TestSignCLSAGViewOnlyFails(t *testing.T) {
	desc := &CNInputDescriptor{}
	_, err := SignCLSAG(desc)
	require.ErrorIs(t, err, ErrViewOnly)
}

func TestSignTCLSAGRoundTrip(t *testing.T) {
	const n = 6
	const realIndex = 3
	const amount = 2_500_000

	kGen := randScalar(t)
	kProve := randScalar(t)
	var shared [32]byte
	rand.Read(shared[:])
	var ephemeral [32]byte
	rand.Read(ephemeral[:])
	outputIndex := 1

	extG, err := carrotOnetimeExtensionG(shared, outputIndex, ephemeral)
	require.NoError(t, err)
	extT, err := carrotOnetimeExtensionT(shared, outputIndex, ephemeral)
	require.NoError(t, err)
	x := kernel.ScAdd(kGen, extG)
	y := kernel.ScAdd(kProve, extT)

	ring := kernel.CLSAGRing{OutputKeys: make([]*kernel.Point, n), CommitmentKeys: make([]*kernel.Point, n)}
	realMask := randScalar(t)
	for i := 0; i < n; i++ {
		if i == realIndex {
			ring.OutputKeys[i] = kernel.PointAdd(kernel.ScalarMultBase(x), kernel.ScalarMultPoint(y, kernel.GeneratorT()))
			ring.CommitmentKeys[i] = kernel.PedersenCommit(amount, realMask)
			continue
		}
		ring.OutputKeys[i] = kernel.PointAdd(randPoint(t), kernel.ScalarMultPoint(randScalar(t), kernel.GeneratorT()))
		ring.CommitmentKeys[i] = kernel.PedersenCommit(uint64(i+1)*321, randScalar(t))
	}
	pseudoMask := randScalar(t)
	pseudoOut := kernel.PedersenCommit(amount, pseudoMask)

	var message [32]byte
	rand.Read(message[:])
	decoyX := make([]*kernel.Scalar, n-1)
	decoyY := make([]*kernel.Scalar, n-1)
	for i := range decoyX {
		decoyX[i] = randScalar(t)
		decoyY[i] = randScalar(t)
	}

	desc := &CarrotInputDescriptor{
		Ring:            ring,
		RealIndex:       realIndex,
		KGenerateImage:  kGen,
		KProveSpend:     kProve,
		SharedSecret:    shared,
		EphemeralPubkey: ephemeral,
		OutputIndex:     outputIndex,
		MaskReal:        realMask,
		MaskPseudo:      pseudoMask,
		PseudoOut:       pseudoOut,
		Message:         message,
		NonceX:          randScalar(t),
		NonceY:          randScalar(t),
		DecoyX:          decoyX,
		DecoyY:          decoyY,
	}
	sig, err := SignTCLSAG(desc)
	require.NoError(t, err)
	require.True(t, kernel.TCLSAGVerify(message, ring, pseudoOut, sig))
}
