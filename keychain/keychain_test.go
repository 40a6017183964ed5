package keychain

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/salvium/walletcore/kernel"
)

func randomSeed(t *testing.T) [32]byte {
	t.Helper()
	var s [32]byte
	_, err := rand.Read(s[:])
	require.NoError(t, err)
	return s
}

func TestDeriveLegacyKeysDeterministic(t *testing.T) {
	seed := randomSeed(t)
	a, err := DeriveLegacyKeys(seed)
	require.NoError(t, err)
	b, err := DeriveLegacyKeys(seed)
	require.NoError(t, err)

	require.True(t, a.SpendSecret.Equal(b.SpendSecret))
	require.True(t, a.ViewSecret.Equal(b.ViewSecret))
	require.True(t, a.SpendPub.Equal(kernel.ScalarMultBase(a.SpendSecret)))
	require.True(t, a.ViewPub.Equal(kernel.ScalarMultBase(a.ViewSecret)))
}

func TestSubaddressZeroZeroIsPrimary(t *testing.T) {
	seed := randomSeed(t)
	keys, err := DeriveLegacyKeys(seed)
	require.NoError(t, err)

	m := SubaddressSecretCN(keys.ViewSecret, 0, 0)
	d := SubaddressSpendPubCN(keys.SpendPub, 0, 0, m)
	require.True(t, d.Equal(keys.SpendPub))
}

func TestSubaddressDiffersFromPrimary(t *testing.T) {
	seed := randomSeed(t)
	keys, err := DeriveLegacyKeys(seed)
	require.NoError(t, err)

	m01 := SubaddressSecretCN(keys.ViewSecret, 0, 1)
	d01 := SubaddressSpendPubCN(keys.SpendPub, 0, 1, m01)
	require.False(t, d01.Equal(keys.SpendPub))
}

func TestBuildSubaddressMapCNFindsPrimaryAndDerived(t *testing.T) {
	seed := randomSeed(t)
	keys, err := DeriveLegacyKeys(seed)
	require.NoError(t, err)

	subs := BuildSubaddressMapCN(keys, 1, 2)
	require.Equal(t, (2)*(3), subs.Len())

	idx, ok := subs.Lookup(keys.SpendPub.Bytes())
	require.True(t, ok)
	require.Equal(t, SubaddressIndex{Major: 0, Minor: 0}, idx)

	m := SubaddressSecretCN(keys.ViewSecret, 1, 2)
	d := SubaddressSpendPubCN(keys.SpendPub, 1, 2, m)
	idx2, ok := subs.Lookup(d.Bytes())
	require.True(t, ok)
	require.Equal(t, SubaddressIndex{Major: 1, Minor: 2}, idx2)
}

func TestDeriveCarrotKeysDeterministicAndStructured(t *testing.T) {
	sMaster := randomSeed(t)
	keys, err := DeriveCarrotKeys(sMaster)
	require.NoError(t, err)

	again, err := DeriveCarrotKeys(sMaster)
	require.NoError(t, err)
	require.True(t, keys.KViewIncoming.Equal(again.KViewIncoming))
	require.True(t, keys.KSpend.Equal(again.KSpend))

	wantKSpend := kernel.PointAdd(
		kernel.ScalarMultBase(keys.KGenerateImage),
		kernel.ScalarMultPoint(keys.KProveSpend, kernel.GeneratorT()),
	)
	require.True(t, keys.KSpend.Equal(wantKSpend))
	require.True(t, keys.PrimaryViewPub.Equal(kernel.ScalarMultBase(keys.KViewIncoming)))
	require.True(t, keys.AccountViewPub.Equal(kernel.ScalarMultPoint(keys.KViewIncoming, keys.KSpend)))
	require.False(t, keys.IsViewOnly())
}

func TestCarrotSubaddressScalarDiffersPerIndex(t *testing.T) {
	sMaster := randomSeed(t)
	keys, err := DeriveCarrotKeys(sMaster)
	require.NoError(t, err)

	k01, err := CarrotSubaddressScalar(*keys.SGenerateAddress, keys.KSpend, 0, 1)
	require.NoError(t, err)
	k02, err := CarrotSubaddressScalar(*keys.SGenerateAddress, keys.KSpend, 0, 2)
	require.NoError(t, err)
	require.False(t, k01.Equal(k02))

	spendPub, viewPub := CarrotSubaddressKeys(k01, keys.KSpend, keys.AccountViewPub)
	require.False(t, spendPub.Equal(keys.KSpend))
	require.False(t, viewPub.Equal(keys.AccountViewPub))
}

func TestBuildSubaddressMapCarrotPrimaryIsKSpend(t *testing.T) {
	sMaster := randomSeed(t)
	keys, err := DeriveCarrotKeys(sMaster)
	require.NoError(t, err)

	subs, err := BuildSubaddressMapCarrot(keys, 1, 1)
	require.NoError(t, err)

	idx, ok := subs.Lookup(keys.KSpend.Bytes())
	require.True(t, ok)
	require.Equal(t, SubaddressIndex{Major: 0, Minor: 0}, idx)
}

func TestNewManagerBuildsBothFamilies(t *testing.T) {
	seed := randomSeed(t)
	sMaster := randomSeed(t)

	mgr, err := NewManager(seed, sMaster, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, mgr.Legacy)
	require.NotNil(t, mgr.Carrot)
	require.Equal(t, 4, mgr.LegacySubaddresses.Len())
	require.Equal(t, 4, mgr.CarrotSubaddresses.Len())
}

func TestViewOnlyCarrotKeysOmitSpendSecret(t *testing.T) {
	sMaster := randomSeed(t)
	full, err := DeriveCarrotKeys(sMaster)
	require.NoError(t, err)

	viewOnly := NewViewOnlyCarrotKeys(*full.SViewBalance, full.KViewIncoming, full.KGenerateImage,
		*full.SGenerateAddress, full.KSpend)
	require.True(t, viewOnly.IsViewOnly())
	require.Nil(t, viewOnly.KProveSpend)
	require.Nil(t, viewOnly.SMaster)
}
