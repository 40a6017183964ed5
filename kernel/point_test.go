package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointFromBytesRoundTrip(t *testing.T) {
	g := BasePoint()
	decoded, err := PointFromBytes(g.Bytes())
	require.NoError(t, err)
	require.True(t, g.Equal(decoded))
}

func TestPointFromBytesRejectsGarbage(t *testing.T) {
	garbage := make([]byte, 32)
	for i := range garbage {
		garbage[i] = 0xff
	}
	_, err := PointFromBytes(garbage)
	require.Error(t, err)
}

func TestScalarMultBaseAgreesWithRepeatedAddition(t *testing.T) {
	five := ScalarFromUint64(5)
	byMult := ScalarMultBase(five)

	g := BasePoint()
	sum := IdentityPoint()
	for i := 0; i < 5; i++ {
		sum = PointAdd(sum, g)
	}
	require.True(t, byMult.Equal(sum))
}

func TestPointAddSubInverse(t *testing.T) {
	a := ScalarMultBase(ScalarFromUint64(11))
	b := ScalarMultBase(ScalarFromUint64(4))
	sum := PointAdd(a, b)
	back := PointSub(sum, b)
	require.True(t, back.Equal(a))
}

func TestPointNegate(t *testing.T) {
	a := ScalarMultBase(ScalarFromUint64(9))
	require.True(t, PointAdd(a, PointNegate(a)).Equal(IdentityPoint()))
}

func TestDoubleScalarMultBase(t *testing.T) {
	a := ScalarFromUint64(3)
	b := ScalarFromUint64(4)
	H := GeneratorH()

	got := DoubleScalarMultBase(a, H, b)
	want := PointAdd(ScalarMultPoint(a, H), ScalarMultBase(b))
	require.True(t, got.Equal(want))
}

func TestMultiScalarMult(t *testing.T) {
	scalars := []*Scalar{ScalarFromUint64(2), ScalarFromUint64(3), ScalarFromUint64(5)}
	points := []*Point{BasePoint(), GeneratorH(), GeneratorT()}

	got := MultiScalarMult(scalars, points)

	want := IdentityPoint()
	for i := range scalars {
		want = PointAdd(want, ScalarMultPoint(scalars[i], points[i]))
	}
	require.True(t, got.Equal(want))
}
