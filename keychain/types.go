package keychain

import "github.com/salvium/walletcore/kernel"

// WalletKeys is the legacy CryptoNote key bundle: a view/spend keypair
// derived from a single seed.
type WalletKeys struct {
	ViewSecret *kernel.Scalar
	SpendSecret *kernel.Scalar
	ViewPub *kernel.Point
	SpendPub *kernel.Point
}

// CARROTKeys is the post-hard-fork nine-component key bundle. KProveSpend
// and SMaster are nil on a view-only bundle.
type CARROTKeys struct {
	SMaster *[32]byte
	SViewBalance *[32]byte
	KViewIncoming *kernel.Scalar
	KGenerateImage *kernel.Scalar
	KProveSpend *kernel.Scalar
	SGenerateAddress *[32]byte
	KSpend *kernel.Point
	PrimaryViewPub *kernel.Point
	AccountViewPub *kernel.Point
}

// IsViewOnly reports whether this bundle omits the spend-capable secrets.
func (k *CARROTKeys) IsViewOnly() bool {
	return k.SMaster == nil || k.KProveSpend == nil
}

// SubaddressIndex identifies a subaddress by its (major, minor) account
// indices. (0,0) is always the primary address.
type SubaddressIndex struct {
	Major uint32
	Minor uint32
}

// SubaddressMap is a hot lookup table from a spend public key's compressed
// bytes to the (major, minor) index that produced it, built eagerly for a
// lookahead window at wallet unlock.
type SubaddressMap struct {
	byKey map[[32]byte]SubaddressIndex
}

// NewSubaddressMap returns an empty map ready for Insert.
func NewSubaddressMap() *SubaddressMap {
	return &SubaddressMap{byKey: make(map[[32]byte]SubaddressIndex)}
}

// Insert registers spendPub as belonging to index idx.
func (m *SubaddressMap) Insert(spendPub *kernel.Point, idx SubaddressIndex) {
	var key [32]byte
	copy(key[:], spendPub.Bytes())
	m.byKey[key] = idx
}

// Lookup reports whether spendPubBytes is a known subaddress spend key, and
// if so which (major, minor) index produced it. This map is a flat hash
// lookup; no binary-equality fast path for the primary key is needed since
// it is inserted like any other entry.
func (m *SubaddressMap) Lookup(spendPubBytes []byte) (SubaddressIndex, bool) {
	var key [32]byte
	copy(key[:], spendPubBytes)
	idx, ok := m.byKey[key]
	return idx, ok
}

// Len returns the number of entries currently indexed.
func (m *SubaddressMap) Len() int { return len(m.byKey) }
