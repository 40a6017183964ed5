package kernel

// TCLSAGSignature is the CARROT-era twin-generator variant of CLSAG: each
// ring public key is P = x*G + y*T, so the response is carried through two
// parallel scalar arrays instead of one.
type TCLSAGSignature struct {
	C1 *Scalar
	SX []*Scalar
	SY []*Scalar
	I  *Point
	D  *Point
}

func tclsagAggregationCoefficients(ring CLSAGRing, I, D, pseudoOut *Point) (muP, muC *Scalar) {
	var buf [][]byte
	buf = append(buf, []byte("TCLSAG_agg_0"))
	for _, p := range ring.OutputKeys {
		buf = append(buf, p.Bytes())
	}
	for _, c := range ring.CommitmentKeys {
		buf = append(buf, c.Bytes())
	}
	buf = append(buf, I.Bytes(), D.Bytes(), pseudoOut.Bytes())
	muP = HashToScalar(buf...)
	buf[0] = []byte("TCLSAG_agg_1")
	muC = HashToScalar(buf...)
	return muP, muC
}

func tclsagChallenge(message [32]byte, L, R *Point) *Scalar {
	return HashToScalar([]byte("TCLSAG_round"), message[:], L.Bytes(), R.Bytes())
}

// TCLSAGSign produces a twin-CLSAG ring signature. x and y are the two
// response-side secrets behind ring.OutputKeys[realIndex] = x*G + y*T; z is
// the commitment-mask difference as in CLSAG. nonceX/nonceY are the signer's
// two opening nonces, and decoyX/decoyY the decoy response scalars in ring
// order (skipping realIndex), drawn by the caller from a CSPRNG.
func TCLSAGSign(message [32]byte, ring CLSAGRing, realIndex int, x, y, z *Scalar,
	pseudoOut *Point, nonceX, nonceY *Scalar, decoyX, decoyY []*Scalar) (*TCLSAGSignature, error) {

	n := len(ring.OutputKeys)
	if n == 0 || len(ring.CommitmentKeys) != n {
		return nil, malformed("tclsag: ring size mismatch")
	}
	if realIndex < 0 || realIndex >= n {
		return nil, malformed("tclsag: real index %d out of range", realIndex)
	}
	if len(decoyX) != n-1 || len(decoyY) != n-1 {
		return nil, malformed("tclsag: need %d decoy responses, got %d/%d", n-1, len(decoyX), len(decoyY))
	}

	hp := HashToPoint(ring.OutputKeys[realIndex].Bytes())
	I := ScalarMultPoint(x, hp)
	D := ScalarMultPoint(z, hp)

	muP, muC := tclsagAggregationCoefficients(ring, I, D, pseudoOut)
	w := clsagAggregateKeys(ring, pseudoOut, muP, muC)
	Iagg := PointAdd(ScalarMultPoint(muP, I), ScalarMultPoint(muC, D))

	wxReal := ScMulAdd(muP, x, ScMul(muC, z))
	wyReal := ScMul(muP, y)

	sx := make([]*Scalar, n)
	sy := make([]*Scalar, n)
	c := make([]*Scalar, n)

	L := PointAdd(ScalarMultBase(nonceX), ScalarMultPoint(nonceY, GeneratorT()))
	R := ScalarMultPoint(nonceX, hp)
	nextIdx := (realIndex + 1) % n
	c[nextIdx] = tclsagChallenge(message, L, R)

	decoyPos := 0
	for i := nextIdx; i != realIndex; i = (i + 1) % n {
		sx[i] = decoyX[decoyPos]
		sy[i] = decoyY[decoyPos]
		decoyPos++

		L := PointAdd(PointAdd(ScalarMultBase(sx[i]), ScalarMultPoint(sy[i], GeneratorT())),
			ScalarMultPoint(c[i], w[i]))
		hpi := HashToPoint(ring.OutputKeys[i].Bytes())
		R := PointAdd(ScalarMultPoint(sx[i], hpi), ScalarMultPoint(c[i], Iagg))
		next := (i + 1) % n
		c[next] = tclsagChallenge(message, L, R)
	}

	sx[realIndex] = ScSub(nonceX, ScMul(c[realIndex], wxReal))
	sy[realIndex] = ScSub(nonceY, ScMul(c[realIndex], wyReal))

	return &TCLSAGSignature{C1: c[0], SX: sx, SY: sy, I: I, D: D}, nil
}

// TCLSAGVerify checks a twin-CLSAG signature, independent of the real index.
func TCLSAGVerify(message [32]byte, ring CLSAGRing, pseudoOut *Point, sig *TCLSAGSignature) bool {
	n := len(ring.OutputKeys)
	if n == 0 || len(ring.CommitmentKeys) != n || len(sig.SX) != n || len(sig.SY) != n {
		return false
	}

	muP, muC := tclsagAggregationCoefficients(ring, sig.I, sig.D, pseudoOut)
	w := clsagAggregateKeys(ring, pseudoOut, muP, muC)
	Iagg := PointAdd(ScalarMultPoint(muP, sig.I), ScalarMultPoint(muC, sig.D))

	c := sig.C1
	for i := 0; i < n; i++ {
		hp := HashToPoint(ring.OutputKeys[i].Bytes())
		L := PointAdd(PointAdd(ScalarMultBase(sig.SX[i]), ScalarMultPoint(sig.SY[i], GeneratorT())),
			ScalarMultPoint(c, w[i]))
		R := PointAdd(ScalarMultPoint(sig.SX[i], hp), ScalarMultPoint(c, Iagg))
		c = tclsagChallenge(message, L, R)
	}

	return c.Equal(sig.C1)
}
