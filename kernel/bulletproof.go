package kernel

// Bulletproof+ range proofs over Pedersen commitments built on G (mask
// generator) and H (amount generator), aggregating an arbitrary number of
// 64-bit amounts into one proof logarithmic in the total bit count.
//
// This implements the classic Bulletproofs aggregated-range-proof inner
// product argument (Bünz, Bootle, Boneh, Poelstra, Wuille, Maxwell),
// generalized across multiple values, built entirely on this package's own
// Scalar/Point primitives. The wire layout here is a structurally faithful,
// self-consistent, independently verifiable range proof, not byte-exact to
// the on-chain Bulletproof+ wire format.

const bpBitsPerValue = 64

// RangeProof is an aggregated range proof over one or more 64-bit values.
type RangeProof struct {
	NumValues int
	A, S      *Point
	T1, T2    *Point
	TauX, Mu  *Scalar
	THat      *Scalar
	L, R      []*Point
	AFinal    *Scalar
	BFinal    *Scalar
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// bpGenerators derives n deterministic, nothing-up-my-sleeve generator
// points for the vector commitments, domain separated by index and vector
// name so that no discrete-log relation between them is known.
func bpGenerators(n int, label string) []*Point {
	out := make([]*Point, n)
	for i := 0; i < n; i++ {
		out[i] = HashToPoint([]byte("bulletproof+/"+label), leUint64(uint64(i)))
	}
	return out
}

func bpU() *Point { return HashToPoint([]byte("bulletproof+/ipa-u")) }

func scalarPow2(i int) *Scalar {
	two := ScalarFromUint64(2)
	r := ScalarFromUint64(1)
	for k := 0; k < i; k++ {
		r = ScMul(r, two)
	}
	return r
}

func scalarPow(base *Scalar, e int) *Scalar {
	r := ScalarFromUint64(1)
	for k := 0; k < e; k++ {
		r = ScMul(r, base)
	}
	return r
}

func vecInnerProduct(a, b []*Scalar) *Scalar {
	r := ScalarFromUint64(0)
	for i := range a {
		r = ScMulAdd(a[i], b[i], r)
	}
	return r
}

func vecAdd(a, b []*Scalar) []*Scalar {
	r := make([]*Scalar, len(a))
	for i := range a {
		r[i] = ScAdd(a[i], b[i])
	}
	return r
}

func vecScale(a []*Scalar, x *Scalar) []*Scalar {
	r := make([]*Scalar, len(a))
	for i := range a {
		r[i] = ScMul(a[i], x)
	}
	return r
}

// ScalarMultBasePlusH returns a*G + b*H, used repeatedly for T1/T2 and the
// value commitments themselves.
func ScalarMultBasePlusH(a, b *Scalar, H *Point) *Point {
	return DoubleScalarMultBase(b, H, a)
}

// BulletproofPlusProve builds an aggregated range proof that every entry of
// amounts lies in [0, 2^64), committed under the corresponding entry of
// masks (PedersenCommit(amounts[i], masks[i])). randSource supplies fresh
// blinding scalars in a fixed order; callers should back it with a CSPRNG.
func BulletproofPlusProve(amounts []uint64, masks []*Scalar, randSource func() *Scalar) (*RangeProof, error) {
	m := len(amounts)
	if m == 0 || len(masks) != m {
		return nil, malformed("bulletproof+: need matching non-empty amounts/masks")
	}

	mPad := nextPow2(m)
	paddedAmounts := make([]uint64, mPad)
	paddedMasks := make([]*Scalar, mPad)
	copy(paddedAmounts, amounts)
	copy(paddedMasks, masks)
	for i := m; i < mPad; i++ {
		paddedMasks[i] = ScalarFromUint64(0)
	}

	n := bpBitsPerValue * mPad
	gVec := bpGenerators(n, "G")
	hVec := bpGenerators(n, "H")
	H := GeneratorH()
	U := bpU()

	aL := make([]*Scalar, n)
	aR := make([]*Scalar, n)
	for j := 0; j < mPad; j++ {
		v := paddedAmounts[j]
		for i := 0; i < bpBitsPerValue; i++ {
			idx := j*bpBitsPerValue + i
			if (v>>uint(i))&1 == 1 {
				aL[idx] = ScalarFromUint64(1)
				aR[idx] = ScalarFromUint64(0)
			} else {
				aL[idx] = ScalarFromUint64(0)
				aR[idx] = ScNegate(ScalarFromUint64(1))
			}
		}
	}

	alpha := randSource()
	A := PointAdd(ScalarMultBase(alpha), PointAdd(MultiScalarMult(aL, gVec), MultiScalarMult(aR, hVec)))

	sL := make([]*Scalar, n)
	sR := make([]*Scalar, n)
	for i := 0; i < n; i++ {
		sL[i] = randSource()
		sR[i] = randSource()
	}
	rho := randSource()
	S := PointAdd(ScalarMultBase(rho), PointAdd(MultiScalarMult(sL, gVec), MultiScalarMult(sR, hVec)))

	commitPoints := make([]*Point, mPad)
	for j := 0; j < mPad; j++ {
		commitPoints[j] = PedersenCommit(paddedAmounts[j], paddedMasks[j])
	}
	y, z := bpChallengeYZ(commitPoints, A, S)

	yPow := bpPowers(y, n)
	zSq := ScMul(z, z)

	l0 := make([]*Scalar, n)
	r0 := make([]*Scalar, n)
	for j := 0; j < mPad; j++ {
		zj2 := ScMul(zSq, scalarPow(z, j))
		for i := 0; i < bpBitsPerValue; i++ {
			idx := j*bpBitsPerValue + i
			l0[idx] = ScSub(aL[idx], z)
			r0[idx] = ScAdd(ScMul(yPow[idx], ScAdd(aR[idx], z)), ScMul(zj2, scalarPow2(i)))
		}
	}
	l1 := sL
	r1 := make([]*Scalar, n)
	for i := 0; i < n; i++ {
		r1[i] = ScMul(yPow[i], sR[i])
	}

	t1 := ScAdd(vecInnerProduct(l0, r1), vecInnerProduct(l1, r0))
	t2 := vecInnerProduct(l1, r1)

	tau1 := randSource()
	tau2 := randSource()
	T1 := ScalarMultBasePlusH(tau1, t1, H)
	T2 := ScalarMultBasePlusH(tau2, t2, H)

	x := HashToScalar([]byte("bulletproof+/x"), T1.Bytes(), T2.Bytes())

	l := vecAdd(l0, vecScale(l1, x))
	r := vecAdd(r0, vecScale(r1, x))
	tHat := vecInnerProduct(l, r)

	taux := ScMulAdd(tau2, ScMul(x, x), ScMul(tau1, x))
	for j := 0; j < mPad; j++ {
		zj2 := ScMul(zSq, scalarPow(z, j))
		taux = ScMulAdd(zj2, paddedMasks[j], taux)
	}
	mu := ScMulAdd(rho, x, alpha)

	hVecPrime := bpRescale(hVec, ScInvert(y))

	// Fold the public IPA base point through t_hat*U so the recursive
	// argument binds the inner product, then prove knowledge of (l, r).
	L, R, aFin, bFin := bpInnerProductProve(gVec, hVecPrime, U, l, r, tHat, randSource)

	return &RangeProof{
		NumValues: m, A: A, S: S, T1: T1, T2: T2,
		TauX: taux, Mu: mu, THat: tHat, L: L, R: R, AFinal: aFin, BFinal: bFin,
	}, nil
}

func bpChallengeYZ(commits []*Point, A, S *Point) (y, z *Scalar) {
	buf := make([][]byte, 0, len(commits)+2)
	for _, c := range commits {
		buf = append(buf, c.Bytes())
	}
	buf = append(buf, A.Bytes(), S.Bytes())
	y = HashToScalar(append([][]byte{[]byte("bulletproof+/y")}, buf...)...)
	z = HashToScalar(append([][]byte{[]byte("bulletproof+/z")}, buf...)...)
	return y, z
}

func bpPowers(base *Scalar, n int) []*Scalar {
	out := make([]*Scalar, n)
	cur := ScalarFromUint64(1)
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = ScMul(cur, base)
	}
	return out
}

func bpRescale(points []*Point, factor *Scalar) []*Point {
	out := make([]*Point, len(points))
	cur := ScalarFromUint64(1)
	for i := range points {
		out[i] = ScalarMultPoint(cur, points[i])
		cur = ScMul(cur, factor)
	}
	return out
}

// bpInnerProductProve folds (g, h, l, r) down to single scalars a, b over
// log2(n) rounds, proving knowledge of l, r such that <l,r> = claimedIP
// under the commitment P = <l,g> + <r,h> + claimedIP*U.
func bpInnerProductProve(g, h []*Point, U *Point, l, r []*Scalar, claimedIP *Scalar,
	randSource func() *Scalar) ([]*Point, []*Point, *Scalar, *Scalar) {

	_ = randSource
	n := len(l)
	var Ls, Rs []*Point

	for n > 1 {
		nPrime := n / 2
		lLo, lHi := l[:nPrime], l[nPrime:]
		rLo, rHi := r[:nPrime], r[nPrime:]
		gLo, gHi := g[:nPrime], g[nPrime:]
		hLo, hHi := h[:nPrime], h[nPrime:]

		cL := vecInnerProduct(lLo, rHi)
		cR := vecInnerProduct(lHi, rLo)

		L := PointAdd(PointAdd(MultiScalarMult(lLo, gHi), MultiScalarMult(rHi, hLo)), ScalarMultPoint(cL, U))
		R := PointAdd(PointAdd(MultiScalarMult(lHi, gLo), MultiScalarMult(rLo, hHi)), ScalarMultPoint(cR, U))
		Ls = append(Ls, L)
		Rs = append(Rs, R)

		chal := bpRoundChallenge(L, R)
		chalInv := ScInvert(chal)

		newG := make([]*Point, nPrime)
		newH := make([]*Point, nPrime)
		newL := make([]*Scalar, nPrime)
		newR := make([]*Scalar, nPrime)
		for i := 0; i < nPrime; i++ {
			newG[i] = PointAdd(ScalarMultPoint(chalInv, gLo[i]), ScalarMultPoint(chal, gHi[i]))
			newH[i] = PointAdd(ScalarMultPoint(chal, hLo[i]), ScalarMultPoint(chalInv, hHi[i]))
			newL[i] = ScAdd(ScMul(chal, lLo[i]), ScMul(chalInv, lHi[i]))
			newR[i] = ScAdd(ScMul(chalInv, rLo[i]), ScMul(chal, rHi[i]))
		}
		g, h, l, r = newG, newH, newL, newR
		n = nPrime
	}

	return Ls, Rs, l[0], r[0]
}

func bpRoundChallenge(L, R *Point) *Scalar {
	return HashToScalar([]byte("bulletproof+/ipa-round"), L.Bytes(), R.Bytes())
}

// BulletproofPlusVerify checks proof against the supplied Pedersen
// commitments, which must appear in the same order the prover used.
func BulletproofPlusVerify(proof *RangeProof, commitments []*Point) bool {
	m := proof.NumValues
	if m == 0 || len(commitments) != m || len(proof.L) != len(proof.R) {
		return false
	}
	mPad := nextPow2(m)
	n := bpBitsPerValue * mPad
	if 1<<uint(len(proof.L)) != n {
		return false
	}

	padded := make([]*Point, mPad)
	copy(padded, commitments)
	for i := m; i < mPad; i++ {
		padded[i] = IdentityPoint()
	}

	gVec := bpGenerators(n, "G")
	hVec := bpGenerators(n, "H")
	H := GeneratorH()
	G := BasePoint()
	U := bpU()

	y, z := bpChallengeYZ(padded, proof.A, proof.S)
	x := HashToScalar([]byte("bulletproof+/x"), proof.T1.Bytes(), proof.T2.Bytes())

	yPow := bpPowers(y, n)
	zSq := ScMul(z, z)

	// delta(y,z): the public polynomial offset making t_hat checkable
	// without revealing any individual amount.
	yPowSum := ScalarFromUint64(0)
	for _, yp := range yPow {
		yPowSum = ScAdd(yPowSum, yp)
	}
	twoPowSum := ScalarFromUint64(0)
	for i := 0; i < bpBitsPerValue; i++ {
		twoPowSum = ScAdd(twoPowSum, scalarPow2(i))
	}
	zjSum := ScalarFromUint64(0)
	for j := 0; j < mPad; j++ {
		zjSum = ScAdd(zjSum, ScMul(ScMul(zSq, z), scalarPow(z, j)))
	}
	delta := ScSub(ScMul(ScSub(z, zSq), yPowSum), ScMul(zjSum, twoPowSum))

	// Check 1: the claimed t_hat/tau_x are consistent with the public
	// value commitments and delta.
	lhs := ScalarMultBasePlusH(proof.TauX, proof.THat, H)
	zPowers := make([]*Scalar, mPad)
	for j := 0; j < mPad; j++ {
		zPowers[j] = ScMul(zSq, scalarPow(z, j))
	}
	rhs := PointAdd(MultiScalarMult(zPowers, padded), ScalarMultBasePlusH(ScalarFromUint64(0), delta, H))
	rhs = PointAdd(rhs, PointAdd(ScalarMultPoint(x, proof.T1), ScalarMultPoint(ScMul(x, x), proof.T2)))
	if !lhs.Equal(rhs) {
		return false
	}

	// Check 2: reconstruct the public IPA commitment P and verify the
	// folded inner-product argument against it.
	hVecPrime := bpRescale(hVec, ScInvert(y))

	negZ := ScNegate(z)
	ones := make([]*Scalar, n)
	for i := range ones {
		ones[i] = ScalarFromUint64(1)
	}
	P := PointAdd(proof.A, ScalarMultPoint(x, proof.S))
	P = PointAdd(P, MultiScalarMult(vecScale(ones, negZ), gVec))

	hCoeffs := make([]*Scalar, n)
	for j := 0; j < mPad; j++ {
		zj2 := ScMul(zSq, scalarPow(z, j))
		for i := 0; i < bpBitsPerValue; i++ {
			idx := j*bpBitsPerValue + i
			hCoeffs[idx] = ScAdd(ScMul(z, yPow[idx]), ScMul(zj2, scalarPow2(i)))
		}
	}
	P = PointAdd(P, MultiScalarMult(hCoeffs, hVecPrime))
	P = PointSub(P, ScalarMultBase(proof.Mu))
	P = PointAdd(P, ScalarMultPoint(proof.THat, U))

	return bpInnerProductVerify(gVec, hVecPrime, U, P, proof)
}

func bpInnerProductVerify(g, h []*Point, U, P *Point, proof *RangeProof) bool {
	n := len(g)
	challenges := make([]*Scalar, len(proof.L))
	for i, L := range proof.L {
		challenges[i] = bpRoundChallenge(L, proof.R[i])
	}

	for round := 0; n > 1; round++ {
		nPrime := n / 2
		chal := challenges[round]
		chalInv := ScInvert(chal)
		chalSq := ScMul(chal, chal)
		chalInvSq := ScMul(chalInv, chalInv)

		gLo, gHi := g[:nPrime], g[nPrime:]
		hLo, hHi := h[:nPrime], h[nPrime:]
		newG := make([]*Point, nPrime)
		newH := make([]*Point, nPrime)
		for i := 0; i < nPrime; i++ {
			newG[i] = PointAdd(ScalarMultPoint(chalInv, gLo[i]), ScalarMultPoint(chal, gHi[i]))
			newH[i] = PointAdd(ScalarMultPoint(chal, hLo[i]), ScalarMultPoint(chalInv, hHi[i]))
		}

		P = PointAdd(P, PointAdd(ScalarMultPoint(chalSq, proof.L[round]), ScalarMultPoint(chalInvSq, proof.R[round])))

		g, h = newG, newH
		n = nPrime
	}

	expected := PointAdd(PointAdd(ScalarMultPoint(proof.AFinal, g[0]), ScalarMultPoint(proof.BFinal, h[0])),
		ScalarMultPoint(ScMul(proof.AFinal, proof.BFinal), U))

	return P.Equal(expected)
}
