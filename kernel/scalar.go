package kernel

import (
	"filippo.io/edwards25519"
)

// ScalarSize is the length in bytes of a canonical, reduced scalar.
const ScalarSize = 32

// Scalar is a 32-byte little-endian integer in [0, L), where
// L = 2^252 + 27742317777372353535851937790883648493 is the order of the
// edwards25519 prime-order subgroup. All arithmetic is performed by
// filippo.io/edwards25519, which is constant time in the scalar value for
// every operation used here.
type Scalar struct {
	s edwards25519.Scalar
}

// NewScalar returns the zero scalar.
func NewScalar() *Scalar {
	return &Scalar{}
}

// ScalarFromCanonicalBytes decodes 32 canonical (already-reduced) bytes into
// a Scalar. It returns ErrMalformedInput if the bytes do not represent a value
// strictly less than L.
func ScalarFromCanonicalBytes(b []byte) (*Scalar, error) {
	if len(b) != ScalarSize {
		return nil, malformed("scalar: want %d bytes, got %d", ScalarSize, len(b))
	}
	s := &Scalar{}
	if _, err := s.s.SetCanonicalBytes(b); err != nil {
		return nil, malformed("scalar: non-canonical encoding: %v", err)
	}
	return s, nil
}

// Bytes returns the 32-byte canonical little-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	return s.s.Bytes()
}

// ScReduce32 reduces an arbitrary 32-byte little-endian integer (such as a
// hash digest) modulo L. Unlike ScalarFromCanonicalBytes, the input need not
// already be less than L.
func ScReduce32(b []byte) (*Scalar, error) {
	if len(b) != 32 {
		return nil, malformed("sc_reduce32: want 32 bytes, got %d", len(b))
	}
	wide := make([]byte, 64)
	copy(wide, b)
	s := &Scalar{}
	if _, err := s.s.SetUniformBytes(wide); err != nil {
		// SetUniformBytes only fails on wrong length, which we've
		// already checked.
		return nil, malformed("sc_reduce32: %v", err)
	}
	return s, nil
}

// ScReduce64 reduces a 64-byte little-endian integer modulo L. This is the
// usual way to turn a wide hash digest into a uniformly distributed scalar.
func ScReduce64(b []byte) (*Scalar, error) {
	if len(b) != 64 {
		return nil, malformed("sc_reduce64: want 64 bytes, got %d", len(b))
	}
	s := &Scalar{}
	if _, err := s.s.SetUniformBytes(b); err != nil {
		return nil, malformed("sc_reduce64: %v", err)
	}
	return s, nil
}

// ScCheck reports whether b is the canonical encoding of a scalar strictly
// less than L, i.e. whether it could have been produced by ScReduce32/64.
func ScCheck(b []byte) bool {
	if len(b) != ScalarSize {
		return false
	}
	var s edwards25519.Scalar
	_, err := s.SetCanonicalBytes(b)
	return err == nil
}

// IsZero reports whether s is the additive identity.
func (s *Scalar) IsZero() bool {
	var zero edwards25519.Scalar
	return s.s.Equal(&zero) == 1
}

// Equal reports whether s and t represent the same residue mod L.
func (s *Scalar) Equal(t *Scalar) bool {
	return s.s.Equal(&t.s) == 1
}

// ScAdd returns a + b mod L.
func ScAdd(a, b *Scalar) *Scalar {
	r := &Scalar{}
	r.s.Add(&a.s, &b.s)
	return r
}

// ScSub returns a - b mod L.
func ScSub(a, b *Scalar) *Scalar {
	r := &Scalar{}
	r.s.Subtract(&a.s, &b.s)
	return r
}

// ScNegate returns -a mod L.
func ScNegate(a *Scalar) *Scalar {
	r := &Scalar{}
	r.s.Negate(&a.s)
	return r
}

// ScMul returns a * b mod L.
func ScMul(a, b *Scalar) *Scalar {
	r := &Scalar{}
	r.s.Multiply(&a.s, &b.s)
	return r
}

// ScMulAdd returns a*b + c mod L.
func ScMulAdd(a, b, c *Scalar) *Scalar {
	r := &Scalar{}
	r.s.MultiplyAdd(&a.s, &b.s, &c.s)
	return r
}

// ScMulSub returns c - a*b mod L.
func ScMulSub(a, b, c *Scalar) *Scalar {
	neg := &Scalar{}
	neg.s.Negate(&a.s)
	r := &Scalar{}
	r.s.MultiplyAdd(&neg.s, &b.s, &c.s)
	return r
}

// ScInvert returns the multiplicative inverse of a mod L. a must be nonzero.
func ScInvert(a *Scalar) *Scalar {
	r := &Scalar{}
	r.s.Invert(&a.s)
	return r
}

// RandomScalar returns a uniformly random scalar read from the given 64
// bytes of entropy (e.g. crypto/rand output), reduced mod L.
func RandomScalar(entropy64 []byte) (*Scalar, error) {
	return ScReduce64(entropy64)
}

// inner exposes the wrapped edwards25519.Scalar for use within the package
// (point multiplication, CLSAG/TCLSAG, Bulletproof+) without re-exporting the
// dependency in this package's public API.
func (s *Scalar) inner() *edwards25519.Scalar { return &s.s }
