package kernel

import "encoding/binary"

// generatorH is the CryptoNote second Pedersen generator,
// H = hash_to_point(G_bytes), computed once and cached.
var generatorH = HashToPoint(BasePoint().Bytes())

// GeneratorH returns the second Pedersen generator H used for amount
// commitments.
func GeneratorH() *Point {
	p := &Point{}
	p.p.Set(&generatorH.p)
	return p
}

// generatorT is TCLSAG's third generator, derived by a fixed
// domain-separated hash to point distinct from H.
var generatorT = HashToPoint([]byte("TCLSAG generator T"))

// GeneratorT returns the TCLSAG third generator T.
func GeneratorT() *Point {
	p := &Point{}
	p.p.Set(&generatorT.p)
	return p
}

// ScalarFromUint64 encodes v as a 32-byte little-endian scalar.
func ScalarFromUint64(v uint64) *Scalar {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], v)
	s, err := ScReduce32(b[:])
	if err != nil {
		panic(err)
	}
	return s
}

// PedersenCommit returns mask*G + amount*H.
func PedersenCommit(amount uint64, mask *Scalar) *Point {
	return DoubleScalarMultBase(ScalarFromUint64(amount), GeneratorH(), mask)
}

// ZeroCommit returns 1*G + amount*H, the fixed-mask commitment used for
// coinbase-like outputs that carry no explicit mask.
func ZeroCommit(amount uint64) *Point {
	one := ScalarFromUint64(1)
	return PedersenCommit(amount, one)
}
