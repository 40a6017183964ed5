package kernel

import (
	"filippo.io/edwards25519"
)

// PointSize is the length in bytes of a compressed Edwards25519 point.
const PointSize = 32

// Point is a 32-byte compressed Edwards25519 point. HashToPoint's results are
// cofactor-cleared; PointFromBytes accepts any canonical curve point,
// including one with a small-order component, and the arithmetic functions
// do not clear the cofactor of their results.
type Point struct {
	p edwards25519.Point
}

// BasePoint returns the Edwards25519 base point G.
func BasePoint() *Point {
	p := &Point{}
	p.p.Set(edwards25519.NewGeneratorPoint())
	return p
}

// IdentityPoint returns the group identity (point at infinity).
func IdentityPoint() *Point {
	p := &Point{}
	p.p.Set(edwards25519.NewIdentityPoint())
	return p
}

// PointFromBytes decodes a compressed point, validating that it lies on the
// curve and is canonically encoded. It returns ErrMalformedInput otherwise.
func PointFromBytes(b []byte) (*Point, error) {
	if len(b) != PointSize {
		return nil, malformed("point: want %d bytes, got %d", PointSize, len(b))
	}
	p := &Point{}
	if _, err := p.p.SetBytes(b); err != nil {
		return nil, malformed("point: not a valid curve point: %v", err)
	}
	return p, nil
}

// Bytes returns the 32-byte compressed encoding of p.
func (p *Point) Bytes() []byte {
	return p.p.Bytes()
}

// ScalarMultBase returns s*G.
func ScalarMultBase(s *Scalar) *Point {
	r := &Point{}
	r.p.ScalarBaseMult(s.inner())
	return r
}

// ScalarMultPoint returns s*P.
func ScalarMultPoint(s *Scalar, p *Point) *Point {
	r := &Point{}
	r.p.ScalarMult(s.inner(), &p.p)
	return r
}

// PointAdd returns p+q.
func PointAdd(p, q *Point) *Point {
	r := &Point{}
	r.p.Add(&p.p, &q.p)
	return r
}

// PointSub returns p-q.
func PointSub(p, q *Point) *Point {
	r := &Point{}
	r.p.Subtract(&p.p, &q.p)
	return r
}

// PointNegate returns -p.
func PointNegate(p *Point) *Point {
	r := &Point{}
	r.p.Negate(&p.p)
	return r
}

// Equal reports whether p and q encode the same point.
func (p *Point) Equal(q *Point) bool {
	return p.p.Equal(&q.p) == 1
}

// DoubleScalarMultBase returns a*P + b*G in variable time. PedersenCommit
// (commitment.go) and ScalarMultBasePlusH (bulletproof.go) call it with
// secret masks and blinding scalars.
func DoubleScalarMultBase(a *Scalar, p *Point, b *Scalar) *Point {
	r := &Point{}
	r.p.VarTimeDoubleScalarBaseMult(a.inner(), &p.p, b.inner())
	return r
}

// MultiScalarMult returns sum(scalars[i] * points[i]). Used by the
// Bulletproof+ verifier to collapse a linear combination of many points into
// one check.
func MultiScalarMult(scalars []*Scalar, points []*Point) *Point {
	ss := make([]*edwards25519.Scalar, len(scalars))
	ps := make([]*edwards25519.Point, len(points))
	for i, s := range scalars {
		ss[i] = s.inner()
	}
	for i, p := range points {
		ps[i] = &p.p
	}
	r := &Point{}
	r.p.VarTimeMultiScalarMult(ss, ps)
	return r
}

func (p *Point) inner() *edwards25519.Point { return &p.p }
