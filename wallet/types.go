package wallet

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/walletdb"
)

// enoteType mirrors the scanner's CARROT enote-type byte: a destination's
// amount/mask transcript is keyed on whether it is an external payment or
// the sender's own change, so the builder must tag each output the same way
// the scanner will later try to recover it.
type enoteType uint8

const (
	EnoteTypePayment enoteType = 0
	EnoteTypeChange  enoteType = 1
)

// Priority selects a fee tier. See EstimateFee.
type Priority int

const (
	PrioritySlow Priority = iota
	PriorityDefault
	PriorityFast
	PriorityPriority
)

// Destination is one output the Builder should create. SpendPub/ViewPub
// identify the recipient (standard, subaddress, or integrated address);
// address text codecs live outside this package, so callers resolve an
// address string to these raw keys before building.
type Destination struct {
	SpendPub      *kernel.Point
	ViewPub       *kernel.Point
	IsSubaddress  bool
	IsCarrot      bool
	Amount        uint64
	AssetType     string
	PaymentID8    *[8]byte // legacy encrypted short payment ID, CN only
}

// RingMember is one decoy (or the real spend) candidate output fetched from
// the daemon for a ring signature.
type RingMember struct {
	GlobalIndex uint64
	OutputKey   *kernel.Point
	Commitment  *kernel.Point
}

// RingProvider resolves decoy rings for a set of real outputs. Builder
// depends only on this narrow interface so it is testable without a live
// daemon connection; chainrpc.Client satisfies it in production.
// decoyCount is the number of decoys to return, excluding the real output
// at realGlobalIndex.
type RingProvider interface {
	FetchRing(assetType string, realGlobalIndex uint64, decoyCount int) ([]RingMember, error)
}

// BuildRequest describes a transaction the Builder should assemble.
type BuildRequest struct {
	Destinations         []Destination
	Candidates           []*walletdb.OwnedOutput
	CurrentHeight        uint64
	UnlockWindow         uint64
	FrozenKeyImages      map[[32]byte]bool
	Priority             Priority
	MedianBlockWeight    uint64
	SubtractFeeFromFirst bool
	TxType               walletdb.TxType
	PreviousTxType       walletdb.TxType // TxTypeUnknown unless this tx transitions an existing one (STAKE->RETURN)
	AmountBurnt          uint64
	SourceAssetType      string
	DestinationAssetType string
	SlippageLimit        uint64
	ReturnAddress        *Destination // set when this tx must carry a return-address field (e.g. a STAKE)
}

// BuiltTransaction is the Builder's output: the serialized wire bytes ready
// for broadcast, plus bookkeeping the caller needs to update wallet state
// once the transaction confirms.
type BuiltTransaction struct {
	Raw           []byte
	TxHash        [32]byte
	Fee           uint64
	Change        uint64
	SpentOutputs  []*walletdb.OwnedOutput
	TxType        walletdb.TxType
}
