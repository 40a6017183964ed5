package keychain

import (
	"encoding/binary"

	"github.com/salvium/walletcore/kernel"
)

// DeriveLegacyKeys derives the legacy CryptoNote view/spend keypair from a
// 32-byte seed: spendSecret = sc_reduce32(keccak256("spend_key" || seed)),
// viewSecret = sc_reduce32(keccak256(spendSecret)).
func DeriveLegacyKeys(seed [32]byte) (*WalletKeys, error) {
	digest := kernel.Keccak256([]byte("spend_key"), seed[:])
	spendSecret, err := kernel.ScReduce32(digest[:])
	if err != nil {
		return nil, err
	}

	viewDigest := kernel.Keccak256(spendSecret.Bytes())
	viewSecret, err := kernel.ScReduce32(viewDigest[:])
	if err != nil {
		return nil, err
	}

	return &WalletKeys{
		ViewSecret:  viewSecret,
		SpendSecret: spendSecret,
		ViewPub:     kernel.ScalarMultBase(viewSecret),
		SpendPub:    kernel.ScalarMultBase(spendSecret),
	}, nil
}

// SubaddressSecretCN computes m = hash_to_scalar("SubAddr\0" || viewSecret ||
// major_LE32 || minor_LE32), the legacy CN subaddress secret.
func SubaddressSecretCN(viewSecret *kernel.Scalar, major, minor uint32) *kernel.Scalar {
	var majorLE, minorLE [4]byte
	binary.LittleEndian.PutUint32(majorLE[:], major)
	binary.LittleEndian.PutUint32(minorLE[:], minor)

	return kernel.HashToScalar([]byte("SubAddr\x00"), viewSecret.Bytes(), majorLE[:], minorLE[:])
}

// SubaddressSpendPubCN computes D = spendPub + m·G, except that (0,0) is
// always spendPub itself (the primary address).
func SubaddressSpendPubCN(spendPub *kernel.Point, major, minor uint32, m *kernel.Scalar) *kernel.Point {
	if major == 0 && minor == 0 {
		return spendPub
	}
	return kernel.PointAdd(spendPub, kernel.ScalarMultBase(m))
}

// SubaddressViewPubCN computes C = viewSecret · D for a subaddress spend
// public key D.
func SubaddressViewPubCN(viewSecret *kernel.Scalar, d *kernel.Point) *kernel.Point {
	return kernel.ScalarMultPoint(viewSecret, d)
}

// BuildSubaddressMapCN populates a SubaddressMap for the legacy CN protocol
// over the lookahead window [0,lookaheadMajor] x [0,lookaheadMinor].
// (0,0) is always inserted, even when the window is otherwise empty.
func BuildSubaddressMapCN(keys *WalletKeys, lookaheadMajor, lookaheadMinor uint32) *SubaddressMap {
	m := NewSubaddressMap()
	for major := uint32(0); major <= lookaheadMajor; major++ {
		for minor := uint32(0); minor <= lookaheadMinor; minor++ {
			secret := SubaddressSecretCN(keys.ViewSecret, major, minor)
			d := SubaddressSpendPubCN(keys.SpendPub, major, minor, secret)
			m.Insert(d, SubaddressIndex{Major: major, Minor: minor})
		}
	}
	kcLog.Debugf("built legacy CN subaddress map: %d entries", m.Len())
	return m
}
