package sync

import (
	"github.com/salvium/walletcore/scanner"
)

// State is the SyncEngine's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSyncing
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSyncing:
		return "SYNCING"
	case StateComplete:
		return "COMPLETE"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// EventKind names one of the progress/ownership notifications the engine
// emits through its listener registry.
type EventKind string

const (
	EventSyncStart     EventKind = "syncStart"
	EventSyncProgress  EventKind = "syncProgress"
	EventNewBlock      EventKind = "newBlock"
	EventOutputFound   EventKind = "outputFound"
	EventOutputSpent   EventKind = "outputSpent"
	EventReorg         EventKind = "reorg"
	EventBatchComplete EventKind = "batchComplete"
	EventSyncComplete  EventKind = "syncComplete"
	EventSyncStopped   EventKind = "syncStopped"
	EventSyncError     EventKind = "syncError"
)

// Event is one notification dispatched to every registered Listener.
type Event struct {
	Kind           EventKind
	Height         uint64
	BlockHash      [32]byte
	CommonAncestor uint64
	BatchSize      int
	MsPerBlock     float64
	Output         *OutputEvent
	Err            error
}

// OutputEvent carries the output identity for outputFound/outputSpent
// events without requiring the listener to depend on walletdb directly.
type OutputEvent struct {
	TxHash      [32]byte
	OutputIndex uint32
	Amount      uint64
}

// Listener receives synchronous Event dispatch. OnEvent must not block for
// long or panic; panics are recovered and logged, not propagated.
type Listener interface {
	OnEvent(Event)
}

// BlockHeader is one entry of a getBlockHeadersRange response.
type BlockHeader struct {
	Height   uint64
	Hash     [32]byte
	PrevHash [32]byte
}

// ParsedBlock is one block's worth of dispatchable transactions: the miner
// (coinbase) transaction, the protocol transaction (stake returns, yield),
// and the ordinary transactions in inclusion order.
type ParsedBlock struct {
	Height       uint64
	Hash         [32]byte
	MinerTx      *scanner.ParsedTransaction
	ProtocolTx   *scanner.ParsedTransaction
	Transactions []*scanner.ParsedTransaction
}

// AllTransactions returns every dispatchable transaction in a block in the
// fixed order the scanner expects: miner, protocol, then regular.
func (b *ParsedBlock) AllTransactions() []*scanner.ParsedTransaction {
	var out []*scanner.ParsedTransaction
	if b.MinerTx != nil {
		out = append(out, b.MinerTx)
	}
	if b.ProtocolTx != nil {
		out = append(out, b.ProtocolTx)
	}
	return append(out, b.Transactions...)
}

// ChainSource is the daemon RPC surface the SyncEngine depends on. chainrpc
// implements it against a live daemon; tests and simulations can supply a
// fake.
type ChainSource interface {
	GetTipHeight() (uint64, error)
	GetBlockHeadersRange(startHeight, endHeight uint64) ([]BlockHeader, error)
	// GetBlocksByHeight returns parsed blocks for the given heights using
	// the bulk binary endpoint. ok is false when the daemon does not
	// support the bulk endpoint, signaling the caller to fall back to
	// GetBlock per height.
	GetBlocksByHeight(heights []uint64) (blocks []ParsedBlock, ok bool, err error)
	GetBlock(height uint64) (ParsedBlock, error)
	GetMempool() ([]*scanner.ParsedTransaction, error)
}
