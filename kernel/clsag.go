package kernel

import "fmt"

// CLSAGRing is the public ring input to CLSAG: parallel arrays of output
// public keys and their commitment public keys. Ring size is len(OutputKeys).
type CLSAGRing struct {
	OutputKeys     []*Point
	CommitmentKeys []*Point
}

// CLSAGSignature is a Concise Linkable Spontaneous Anonymous Group signature:
// one challenge anchor, one response scalar per ring member, the key image,
// and the commitment-to-zero key image.
type CLSAGSignature struct {
	C1 *Scalar
	S  []*Scalar
	I  *Point
	D  *Point
}

func clsagAggregationCoefficients(ring CLSAGRing, I, D, pseudoOut *Point) (muP, muC *Scalar) {
	var buf [][]byte
	buf = append(buf, []byte("CLSAG_agg_0"))
	for _, p := range ring.OutputKeys {
		buf = append(buf, p.Bytes())
	}
	for _, c := range ring.CommitmentKeys {
		buf = append(buf, c.Bytes())
	}
	buf = append(buf, I.Bytes(), D.Bytes(), pseudoOut.Bytes())
	muP = HashToScalar(buf...)
	buf[0] = []byte("CLSAG_agg_1")
	muC = HashToScalar(buf...)
	return muP, muC
}

func clsagAggregateKeys(ring CLSAGRing, pseudoOut *Point, muP, muC *Scalar) []*Point {
	n := len(ring.OutputKeys)
	w := make([]*Point, n)
	for i := 0; i < n; i++ {
		adjCommit := PointSub(ring.CommitmentKeys[i], pseudoOut)
		w[i] = PointAdd(ScalarMultPoint(muP, ring.OutputKeys[i]), ScalarMultPoint(muC, adjCommit))
	}
	return w
}

func clsagChallenge(message [32]byte, L, R *Point) *Scalar {
	return HashToScalar([]byte("CLSAG_round"), message[:], L.Bytes(), R.Bytes())
}

// CLSAGSign produces a ring signature proving knowledge of x (the spend
// scalar for ring.OutputKeys[realIndex]) and z (the commitment-mask
// difference mask_real - mask_pseudo), without revealing realIndex. message
// is the 32-byte RingCT message hash. nonce is the opening nonce a, and
// decoyResponses holds the n-1 decoy response scalars in ring order,
// starting just after realIndex and wrapping around; callers should draw
// these from a CSPRNG.
func CLSAGSign(message [32]byte, ring CLSAGRing, realIndex int, x, z *Scalar,
	pseudoOut *Point, nonce *Scalar, decoyResponses []*Scalar) (*CLSAGSignature, error) {

	n := len(ring.OutputKeys)
	if n == 0 || len(ring.CommitmentKeys) != n {
		return nil, malformed("clsag: ring size mismatch")
	}
	if realIndex < 0 || realIndex >= n {
		return nil, malformed("clsag: real index %d out of range", realIndex)
	}
	if len(decoyResponses) != n-1 {
		return nil, malformed("clsag: need %d decoy responses, got %d", n-1, len(decoyResponses))
	}

	hp := HashToPoint(ring.OutputKeys[realIndex].Bytes())
	I := ScalarMultPoint(x, hp)
	D := ScalarMultPoint(z, hp)

	muP, muC := clsagAggregationCoefficients(ring, I, D, pseudoOut)
	w := clsagAggregateKeys(ring, pseudoOut, muP, muC)
	Iagg := PointAdd(ScalarMultPoint(muP, I), ScalarMultPoint(muC, D))
	wReal := ScMulAdd(muP, x, ScMul(muC, z))

	s := make([]*Scalar, n)
	c := make([]*Scalar, n)

	L := ScalarMultBase(nonce)
	R := ScalarMultPoint(nonce, hp)
	nextIdx := (realIndex + 1) % n
	c[nextIdx] = clsagChallenge(message, L, R)

	decoyPos := 0
	for i := nextIdx; i != realIndex; i = (i + 1) % n {
		s[i] = decoyResponses[decoyPos]
		decoyPos++

		L := PointAdd(ScalarMultBase(s[i]), ScalarMultPoint(c[i], w[i]))
		hpi := HashToPoint(ring.OutputKeys[i].Bytes())
		R := PointAdd(ScalarMultPoint(s[i], hpi), ScalarMultPoint(c[i], Iagg))
		next := (i + 1) % n
		c[next] = clsagChallenge(message, L, R)
	}

	s[realIndex] = ScSub(nonce, ScMul(c[realIndex], wReal))

	return &CLSAGSignature{C1: c[0], S: s, I: I, D: D}, nil
}

// CLSAGVerify checks a CLSAG signature. Verification time depends only on
// public values (ring contents, message, signature), never on which index
// was real, so it is independent of the original signer's secret index by
// construction.
func CLSAGVerify(message [32]byte, ring CLSAGRing, pseudoOut *Point, sig *CLSAGSignature) bool {
	n := len(ring.OutputKeys)
	if n == 0 || len(ring.CommitmentKeys) != n || len(sig.S) != n {
		return false
	}

	muP, muC := clsagAggregationCoefficients(ring, sig.I, sig.D, pseudoOut)
	w := clsagAggregateKeys(ring, pseudoOut, muP, muC)
	Iagg := PointAdd(ScalarMultPoint(muP, sig.I), ScalarMultPoint(muC, sig.D))

	c := sig.C1
	for i := 0; i < n; i++ {
		hp := HashToPoint(ring.OutputKeys[i].Bytes())
		L := PointAdd(ScalarMultBase(sig.S[i]), ScalarMultPoint(c, w[i]))
		R := PointAdd(ScalarMultPoint(sig.S[i], hp), ScalarMultPoint(c, Iagg))
		c = clsagChallenge(message, L, R)
	}

	return c.Equal(sig.C1)
}

func (sig *CLSAGSignature) String() string {
	return fmt.Sprintf("CLSAG{ring=%d, I=%x}", len(sig.S), sig.I.Bytes())
}
