package kernel

import "math/big"

// This file implements the field arithmetic needed for hash_to_point's
// Elligator2 map. filippo.io/edwards25519 deliberately does not expose field
// square roots (Ed25519 point decompression keeps that internal), so this
// one function is built directly on math/big. The reference CryptoNote
// implementation of the equivalent routine (ge_fromfe_frombytes_vartime) is
// itself variable-time, so non-constant-time big.Int arithmetic here matches
// the established regime rather than being a shortcut.

var (
	fieldP = mustBig("57896044618658097711785492504343953926634992332820282019728792003956564819949") // 2^255-19
	fieldA = big.NewInt(486662) // Curve25519 Montgomery A
	fieldTwo = big.NewInt(2)
	fieldOne = big.NewInt(1)
	sqrtExponent = mustBig("7237005577332262213973186563042994240829374041602535252466099000494570602494") // (p+3)/8
	eulerExponent = mustBig("28948022309329048855892746252171976963317496166410141009864396001978282409974") // (p-1)/2
	sqrtMinus1 = mustBig("19681161376707505956807079304988542015446066515923890162744021073123829784752") // 2^((p-1)/4) mod p
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("kernel: bad constant " + s)
	}
	return n
}

func feAdd(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Add(a, b), fieldP) }
func feSub(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Sub(a, b), fieldP) }
func feMul(a, b *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Mul(a, b), fieldP) }
func feNeg(a *big.Int) *big.Int { return new(big.Int).Mod(new(big.Int).Neg(a), fieldP) }
func fePow(a, e *big.Int) *big.Int { return new(big.Int).Exp(a, e, fieldP) }

func feInvert(a *big.Int) *big.Int {
	exp := new(big.Int).Sub(fieldP, fieldTwo)
	return fePow(a, exp)
}

// feIsSquare reports whether a is a nonzero quadratic residue, treating zero
// as a residue (its "square root" is itself).
func feIsSquare(a *big.Int) bool {
	if a.Sign() == 0 {
		return true
	}
	return fePow(a, eulerExponent).Cmp(fieldOne) == 0
}

// feSqrt returns a square root of a, assuming a is a quadratic residue mod p
// where p ≡ 5 (mod 8). The caller chooses which of the two roots it wants by
// negating the result if needed; this function makes no sign guarantee.
func feSqrt(a *big.Int) *big.Int {
	if a.Sign() == 0 {
		return big.NewInt(0)
	}
	r := fePow(a, sqrtExponent)
	r2 := feMul(r, r)
	if r2.Cmp(new(big.Int).Mod(a, fieldP)) == 0 {
		return r
	}
	return feMul(r, sqrtMinus1)
}

// elligator2 implements the Bernstein-Hamburg-Krasnova-Lange Elligator 2 map
// from a field element to a point on the birationally-equivalent Montgomery
// curve v^2 = u^3 + A u^2 + u, A = 486662, using non-square constant 2. It
// returns the (u, v) affine Montgomery coordinates.
func elligator2(r *big.Int) (u, v *big.Int) {
	r2 := feMul(r, r)
	ur2 := feMul(fieldTwo, r2)
	denom := feAdd(fieldOne, ur2)
	if denom.Sign() == 0 {
		// 2r^2 == -1 (mod p): astronomically unlikely for a keccak
		// output: fall back to denom=1 so the map stays total.
		denom = big.NewInt(1)
	}

	vCand := feNeg(feMul(fieldA, feInvert(denom)))
	v3 := feMul(feMul(vCand, vCand), vCand)
	av2 := feMul(fieldA, feMul(vCand, vCand))
	rhs := feAdd(feAdd(v3, av2), vCand)

	if feIsSquare(rhs) {
		u = vCand
		v = feNeg(feSqrt(rhs))
		return u, v
	}

	u = feSub(feNeg(vCand), fieldA)
	u3 := feMul(feMul(u, u), u)
	au2 := feMul(fieldA, feMul(u, u))
	rhs2 := feAdd(feAdd(u3, au2), u)
	v = feSqrt(rhs2)
	return u, v
}

// montgomeryToEdwardsY converts the Montgomery u-coordinate of a point to
// the y-coordinate of its birationally equivalent Edwards25519 point:
// y = (u-1)/(u+1).
func montgomeryToEdwardsY(u *big.Int) *big.Int {
	num := feSub(u, fieldOne)
	den := feAdd(u, fieldOne)
	if den.Sign() == 0 {
		// u == -1 maps to the identity's y=1 by convention.
		return big.NewInt(1)
	}
	return feMul(num, feInvert(den))
}

// edXFromY recovers a candidate Edwards x-coordinate (one of the two square
// roots) satisfying x^2 = (y^2-1)/(d*y^2+1), d = -121665/121666.
func edXFromY(y *big.Int) *big.Int {
	d := feMul(feNeg(mustBig("121665")), feInvert(mustBig("121666")))

	y2 := feMul(y, y)
	num := feSub(y2, fieldOne)
	den := feAdd(feMul(d, y2), fieldOne)
	x2 := feMul(num, feInvert(den))
	return feSqrt(x2)
}

func feToBytesLE(a *big.Int) [32]byte {
	var out [32]byte
	b := new(big.Int).Mod(a, fieldP).Bytes() // big-endian
	for i := 0; i < len(b) && i < 32; i++ {
		out[i] = b[len(b)-1-i]
	}
	return out
}

func feFromBytesLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	n := new(big.Int).SetBytes(be)
	n.Mod(n, fieldP)
	return n
}
