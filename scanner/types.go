package scanner

import "github.com/salvium/walletcore/walletdb"

// EnoteType distinguishes CARROT PAYMENT outputs from CHANGE outputs
// (GLOSSARY: "Enote type").
type EnoteType uint8

const (
	EnoteTypePayment EnoteType = 0
	EnoteTypeChange EnoteType = 1
)

// Output is one transaction output as seen by the scanner, already parsed
// out of the wire format by the sync layer. Exactly one of EncryptedAmount
// or ClearAmount is populated.
type Output struct {
	Key [32]byte
	ViewTag []byte // 1 byte for CN, 3 bytes for CARROT; nil if absent
	EncryptedAmount *[8]byte
	ClearAmount *uint64
	OutPk *[32]byte // commitment public key, nil for CARROT coinbase
	IsCarrot bool
	CarrotEphemeral *[32]byte // per-output D_e when CARROT uses per-output ephemeral keys
}

// ParsedTransaction is the scanner's view of a transaction: enough of its
// parsed wire form to run detection, independent of how it reached this
// package (regular, miner, or protocol transaction).
type ParsedTransaction struct {
	TxHash [32]byte
	TxPubKey *[32]byte // R (CN) or D_e (CARROT)
	AdditionalPubKeys [][32]byte
	Outputs []Output
	BlockHeight uint64
	UnlockTime uint64
	TxType walletdb.TxType
	AssetType string
	// HasInputKeyImages is false for coinbase/protocol transactions, which
	// carry no txin_to_key inputs and therefore no first key image to
	// derive a "not a protocol tx" signal from.
	HasInputKeyImages bool
	// InputKeyImages lists every spent input's key image, in wire order.
	// Empty for coinbase/protocol transactions. The sync engine walks this
	// to detect spends of the wallet's own outputs.
	InputKeyImages [][32]byte
}

// Stats counts per-batch scan outcomes, used by the sync engine's adaptive
// batching and exposed to operators. Never includes amounts (scnLog logs
// only at Trace level for the same reason).
type Stats struct {
	OutputsScanned int
	OutputsOwned int
	ViewTagRejected int
	MalformedSkipped int
	SelfSendDetected int
	ReturnOutputsMatched int
}
