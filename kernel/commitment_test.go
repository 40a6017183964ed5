package kernel

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomMask(t *testing.T) *Scalar {
	t.Helper()
	var e [64]byte
	rand.Read(e[:])
	s, err := RandomScalar(e[:])
	require.NoError(t, err)
	return s
}

func TestPedersenCommitBindsAmountAndMask(t *testing.T) {
	mask := randomMask(t)
	c1 := PedersenCommit(1000, mask)
	c2 := PedersenCommit(1000, mask)
	require.True(t, c1.Equal(c2))

	otherMask := randomMask(t)
	c3 := PedersenCommit(1000, otherMask)
	require.False(t, c1.Equal(c3))

	c4 := PedersenCommit(1001, mask)
	require.False(t, c1.Equal(c4))
}

func TestPedersenCommitIsAdditivelyHomomorphic(t *testing.T) {
	m1, m2 := randomMask(t), randomMask(t)
	c1 := PedersenCommit(100, m1)
	c2 := PedersenCommit(250, m2)

	sum := PointAdd(c1, c2)
	combined := PedersenCommit(350, ScAdd(m1, m2))
	require.True(t, sum.Equal(combined))
}

func TestZeroCommitUsesFixedMask(t *testing.T) {
	c := ZeroCommit(42)
	want := PedersenCommit(42, ScalarFromUint64(1))
	require.True(t, c.Equal(want))
}

func TestGeneratorsAreDistinctAndStable(t *testing.T) {
	h1 := GeneratorH()
	h2 := GeneratorH()
	require.True(t, h1.Equal(h2))

	tGen := GeneratorT()
	require.False(t, h1.Equal(tGen))
	require.False(t, h1.Equal(BasePoint()))
	require.False(t, tGen.Equal(BasePoint()))
}
