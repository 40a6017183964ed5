// Package network holds the per-chain constant sets the wallet core needs
// to pick consistent defaults (ring sizes, unlock windows, the CARROT
// hard-fork height) without hardcoding a single network: callers select a
// mainnet/testnet/stagenet parameter set by name.
package network

// Name identifies one of the supported chain parameter sets.
type Name string

const (
	MainNet  Name = "mainnet"
	TestNet  Name = "testnet"
	StageNet Name = "stagenet"
)

// Params is the set of chain-level constants the wallet core needs at
// runtime: where CARROT activates, how big a decoy ring to request under
// each protocol, how deep the subaddress lookahead window reaches, and how
// many confirmations an output needs before it is spendable.
type Params struct {
	Name Name

	// CarrotActivationHeight is the first height at which outputs and
	// transactions use the CARROT wire format; heights below it are
	// legacy CN/RingCT.
	CarrotActivationHeight uint64

	CNRingSize     int
	CarrotRingSize int

	LookaheadMajor uint32
	LookaheadMinor uint32

	// UnlockWindow is the number of confirmations an ordinary output
	// needs before IsSpendable returns true.
	UnlockWindow uint64
	// CoinbaseUnlockWindow is the longer window miner-reward outputs
	// need.
	CoinbaseUnlockWindow uint64
}

// MainNetParams are the production chain's constants.
var MainNetParams = Params{
	Name:                   MainNet,
	CarrotActivationHeight: 3_000_000,
	CNRingSize:             11,
	CarrotRingSize:         16,
	LookaheadMajor:         50,
	LookaheadMinor:         200,
	UnlockWindow:           10,
	CoinbaseUnlockWindow:   60,
}

// TestNetParams mirror MainNetParams but activate CARROT much earlier so
// the new protocol path gets exercised quickly.
var TestNetParams = Params{
	Name:                   TestNet,
	CarrotActivationHeight: 10_000,
	CNRingSize:             11,
	CarrotRingSize:         16,
	LookaheadMajor:         50,
	LookaheadMinor:         200,
	UnlockWindow:           10,
	CoinbaseUnlockWindow:   60,
}

// StageNetParams activate CARROT from genesis, for end-to-end testing of
// the post-hard-fork path in isolation.
var StageNetParams = Params{
	Name:                   StageNet,
	CarrotActivationHeight: 0,
	CNRingSize:             11,
	CarrotRingSize:         16,
	LookaheadMajor:         50,
	LookaheadMinor:         200,
	UnlockWindow:           10,
	CoinbaseUnlockWindow:   60,
}

// ByName resolves one of the three built-in parameter sets by name.
func ByName(n Name) (Params, bool) {
	switch n {
	case MainNet:
		return MainNetParams, true
	case TestNet:
		return TestNetParams, true
	case StageNet:
		return StageNetParams, true
	default:
		return Params{}, false
	}
}

// IsCarrotActive reports whether height falls under the CARROT protocol
// for this parameter set.
func (p Params) IsCarrotActive(height uint64) bool {
	return height >= p.CarrotActivationHeight
}

// RingSize returns the decoy ring size for the protocol active at height.
func (p Params) RingSize(height uint64) int {
	if p.IsCarrotActive(height) {
		return p.CarrotRingSize
	}
	return p.CNRingSize
}
