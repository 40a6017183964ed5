package kernel

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Keccak256 computes the CryptoNote flavor of Keccak-256: the original
// Keccak sponge with single-byte 0x01 domain padding, not the NIST SHA-3
// padding (0x06). golang.org/x/crypto/sha3's "legacy" constructor is exactly
// this variant.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2b computes a Blake2b digest of the requested length (1-64 bytes),
// optionally keyed, per RFC 7693. For lengths beyond 64 use Blake2bLong.
func Blake2b(outLen int, key []byte, data ...[]byte) ([]byte, error) {
	if outLen < 1 || outLen > 64 {
		return nil, malformed("blake2b: outLen %d out of [1,64]", outLen)
	}
	h, err := blake2b.New(outLen, key)
	if err != nil {
		return nil, malformed("blake2b: %v", err)
	}
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil), nil
}

// Blake2bLong implements the CryptoNote "blake2b_long" variable-length hash
// used by RandomX's Argon2d seed stretching: a 4-byte little-endian outLen is
// prepended to the message, and for outLen>64 the digest is produced by
// chaining 64-byte Blake2b outputs, keeping the first 32 bytes of every block
// but the last (this is RFC 9106's H' construction).
func Blake2bLong(outLen int, data []byte) ([]byte, error) {
	if outLen < 1 {
		return nil, malformed("blake2b_long: outLen %d must be positive", outLen)
	}

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(outLen))

	if outLen <= 64 {
		return Blake2b(outLen, nil, lenPrefix[:], data)
	}

	out := make([]byte, 0, outLen)
	prev, err := Blake2b(64, nil, lenPrefix[:], data)
	if err != nil {
		return nil, err
	}

	for len(out)+64 < outLen {
		out = append(out, prev[:32]...)
		next := outLen - len(out)
		if next > 64 {
			next = 64
		}
		prev, err = Blake2b(next, nil, prev)
		if err != nil {
			return nil, err
		}
	}
	out = append(out, prev[:outLen-len(out)]...)
	return out, nil
}

// SHA256 computes a standard SHA-256 digest.
func SHA256(data ...[]byte) [32]byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashToScalar returns sc_reduce32(keccak256(data)).
func HashToScalar(data ...[]byte) *Scalar {
	digest := Keccak256(data...)
	s, err := ScReduce32(digest[:])
	if err != nil {
		// Keccak256 always returns exactly 32 bytes; ScReduce32 cannot
		// fail on a correctly sized input.
		panic(err)
	}
	return s
}

// HashToPoint maps arbitrary data to a group element via
// cofactor*Elligator2(keccak256(data)), matching CryptoNote's
// ge_fromfe_frombytes_vartime. See fe.go for the field arithmetic; no
// reference test vectors were available to confirm bit-exactness against
// that implementation.
func HashToPoint(data ...[]byte) *Point {
	digest := Keccak256(data...)
	r := feFromBytesLE(digest[:])

	u, _ := elligator2(r)
	y := montgomeryToEdwardsY(u)
	x := edXFromY(y)

	yBytes := feToBytesLE(y)
	// Parity of x picked deterministically (low bit of the canonical
	// root returned by feSqrt) rather than matching a particular
	// external sign convention.
	if x.Bit(0) == 1 {
		yBytes[31] |= 0x80
	}

	p, err := PointFromBytes(yBytes[:])
	if err != nil {
		// feSqrt/elligator2 always produce a point satisfying the
		// curve equation by construction.
		panic(err)
	}

	eight, err := ScReduce32(leUint64(8))
	if err != nil {
		panic(err)
	}
	return ScalarMultPoint(eight, p)
}

func leUint64(v uint64) []byte {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], v)
	return b[:]
}
