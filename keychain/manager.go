package keychain

// Default lookahead window sizes: ~10k entries per protocol.
const (
	DefaultLookaheadMajor = 50
	DefaultLookaheadMinor = 200
)

// Manager bundles a wallet's full key material (legacy CN and CARROT) and
// their eagerly-built subaddress lookup maps, constructed once at wallet
// unlock and handed to the Scanner and Builder thereafter.
type Manager struct {
	Legacy *WalletKeys
	Carrot *CARROTKeys

	LegacySubaddresses *SubaddressMap
	CarrotSubaddresses *SubaddressMap
}

// NewManager derives both key families from seed (legacy CN) and sMaster
// (CARROT), then builds both subaddress maps over the given lookahead
// window. Passing lookaheadMajor/Minor as 0 still yields the primary (0,0)
// entry in each map.
func NewManager(seed [32]byte, sMaster [32]byte, lookaheadMajor, lookaheadMinor uint32) (*Manager, error) {
	legacy, err := DeriveLegacyKeys(seed)
	if err != nil {
		return nil, err
	}
	carrot, err := DeriveCarrotKeys(sMaster)
	if err != nil {
		return nil, err
	}

	legacySubs := BuildSubaddressMapCN(legacy, lookaheadMajor, lookaheadMinor)
	carrotSubs, err := BuildSubaddressMapCarrot(carrot, lookaheadMajor, lookaheadMinor)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Legacy: legacy,
		Carrot: carrot,
		LegacySubaddresses: legacySubs,
		CarrotSubaddresses: carrotSubs,
	}, nil
}

// NewViewOnlyManager builds a Manager from a view-only CARROT bundle plus
// the legacy view keypair, omitting any spend-capable secret. Builder
// operations that require signing will fail against a view-only Manager.
func NewViewOnlyManager(legacy *WalletKeys, carrot *CARROTKeys, lookaheadMajor, lookaheadMinor uint32) (*Manager, error) {
	legacySubs := BuildSubaddressMapCN(legacy, lookaheadMajor, lookaheadMinor)
	carrotSubs, err := BuildSubaddressMapCarrot(carrot, lookaheadMajor, lookaheadMinor)
	if err != nil {
		return nil, err
	}
	return &Manager{
		Legacy: legacy,
		Carrot: carrot,
		LegacySubaddresses: legacySubs,
		CarrotSubaddresses: carrotSubs,
	}, nil
}
