package kernel

import "math/big"

// X25519BasePoint is the standard Curve25519 Montgomery base point u=9,
// little-endian encoded.
var X25519BasePoint = [32]byte{9}

// X25519 performs a Curve25519 Montgomery-ladder scalar multiplication using
// CARROT's non-standard clamping: only bit 255 of the scalar (byte 31, bit 7)
// is cleared. Bits 0-2 are left as given and bit 254 is not forced to 1. This
// is a deliberate deviation from RFC 7748 §5 required for CARROT
// interoperability and must not be "fixed" to match RFC 7748.
//
// The ladder itself follows the constant-structure shape of RFC 7748's
// reference pseudocode (same sequence of field operations regardless of key
// bits); its use of math/big for the field means it is not hardware
// constant-time.
func X25519(scalar, point [32]byte) [32]byte {
	clamped := scalar
	clamped[31] &= 0x7f

	k := feFromBytesLE(clamped[:])

	uIn := point
	uIn[31] &= 0x7f // RFC 7748 also masks the top bit of the u-coordinate.
	u := feFromBytesLE(uIn[:])

	x1 := u
	x2 := big.NewInt(1)
	z2 := big.NewInt(0)
	x3 := new(big.Int).Set(u)
	z3 := big.NewInt(1)
	swap := 0

	a24 := big.NewInt(121665)

	for t := 254; t >= 0; t-- {
		kt := k.Bit(t)
		swap ^= int(kt)
		if swap == 1 {
			x2, x3 = x3, x2
			z2, z3 = z3, z2
		}
		swap = int(kt)

		A := feAdd(x2, z2)
		AA := feMul(A, A)
		B := feSub(x2, z2)
		BB := feMul(B, B)
		E := feSub(AA, BB)
		C := feAdd(x3, z3)
		D := feSub(x3, z3)
		DA := feMul(D, A)
		CB := feMul(C, B)

		x3 = feMul(feAdd(DA, CB), feAdd(DA, CB))
		z3 = feMul(x1, feMul(feSub(DA, CB), feSub(DA, CB)))
		x2 = feMul(AA, BB)
		z2 = feMul(E, feAdd(AA, feMul(a24, E)))
	}
	if swap == 1 {
		x2, x3 = x3, x2
		z2, z3 = z3, z2
	}

	result := feMul(x2, feInvert(z2))
	return feToBytesLE(result)
}

// X25519BaseScalarMult returns scalar * basePoint under the same
// non-standard clamping as X25519.
func X25519BaseScalarMult(scalar [32]byte) [32]byte {
	return X25519(scalar, X25519BasePoint)
}
