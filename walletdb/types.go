package walletdb

import "github.com/salvium/walletcore/keychain"

// TxType is the semantic kind of a wallet transaction.
type TxType uint8

const (
	TxTypeUnknown TxType = 0
	TxTypeMiner TxType = 1
	TxTypeProtocol TxType = 2
	TxTypeTransfer TxType = 3
	TxTypeBurn TxType = 4
	TxTypeConvert TxType = 5
	TxTypeStake TxType = 6
	TxTypeReturn TxType = 7
)

// ValidTransition reports whether moving from t to next is an allowed
// TxType transition. Only STAKE -> RETURN is a non-terminal transition; all
// other states are terminal.
func (t TxType) ValidTransition(next TxType) bool {
	if t == next {
		return true
	}
	return t == TxTypeStake && next == TxTypeReturn
}

// OwnedOutput is an on-chain output the wallet has determined belongs to it.
type OwnedOutput struct {
	KeyImage *[32]byte
	PublicKey [32]byte
	TxHash [32]byte
	OutputIndex uint32
	GlobalIndex *uint64
	BlockHeight uint64
	Amount uint64
	Commitment *[32]byte
	Mask *[32]byte
	SubaddressIndex keychain.SubaddressIndex
	UnlockTime uint64
	TxType TxType
	TxPubKey *[32]byte
	IsCarrot bool
	CarrotEphemeralPubkey *[32]byte
	CarrotSharedSecret *[32]byte
	CarrotEnoteType *uint8
	AssetType string
	IsSpent bool
	SpentInTx *[32]byte
	SpentAtHeight *uint64
}

// IsSpendable reports whether o may be used as a transaction input at
// currentHeight: not already spent, not frozen, and past its unlock window.
func (o *OwnedOutput) IsSpendable(currentHeight, unlockWindow uint64, frozen bool) bool {
	if o.IsSpent || frozen {
		return false
	}
	return o.BlockHeight+unlockWindow <= currentHeight
}

// TransferLine is one destination/amount line item of a WalletTransaction.
type TransferLine struct {
	Address string
	Amount uint64
}

// WalletTransaction is the aggregated per-transaction record the SyncEngine
// maintains: sums of incoming/outgoing amounts, fee, and confirmation state.
type WalletTransaction struct {
	TxHash [32]byte
	BlockHeight uint64
	Confirmed bool
	AmountIn uint64
	AmountOut uint64
	Fee uint64
	UnlockTime uint64
	TxType TxType
	TransferLines []TransferLine
}

// SyncState is the SyncEngine's persisted progress marker.
type SyncState struct {
	SyncHeight uint64
	LastMsPerBlock float64
	BatchSize int
}

// OutputFilter narrows a getOutputs query; nil fields are not filtered on.
type OutputFilter struct {
	IsSpent *bool
	IsFrozen *bool
	AssetType *string
}
