package sync

import (
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/scanner"
	"github.com/salvium/walletcore/walletdb"
)

// fakeSource is an in-memory ChainSource fixture: blocks are preloaded by
// height and GetBlocksByHeight always serves the bulk path.
type fakeSource struct {
	mtx    sync.Mutex
	blocks map[uint64]ParsedBlock
	tip    uint64
}

func newFakeSource() *fakeSource {
	return &fakeSource{blocks: make(map[uint64]ParsedBlock)}
}

func (f *fakeSource) addBlock(b ParsedBlock) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.blocks[b.Height] = b
	if b.Height > f.tip {
		f.tip = b.Height
	}
}

func (f *fakeSource) GetTipHeight() (uint64, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.tip, nil
}

func (f *fakeSource) GetBlockHeadersRange(start, end uint64) ([]BlockHeader, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	var out []BlockHeader
	for h := start; h <= end; h++ {
		b, ok := f.blocks[h]
		if !ok {
			continue
		}
		out = append(out, BlockHeader{Height: h, Hash: b.Hash})
	}
	return out, nil
}

func (f *fakeSource) GetBlocksByHeight(heights []uint64) ([]ParsedBlock, bool, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	out := make([]ParsedBlock, 0, len(heights))
	for _, h := range heights {
		b, ok := f.blocks[h]
		if !ok {
			return nil, false, nil
		}
		out = append(out, b)
	}
	return out, true, nil
}

func (f *fakeSource) GetBlock(height uint64) (ParsedBlock, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.blocks[height], nil
}

func (f *fakeSource) GetMempool() ([]*scanner.ParsedTransaction, error) {
	return nil, nil
}

type recordingListener struct {
	mtx    sync.Mutex
	events []Event
}

func (l *recordingListener) OnEvent(ev Event) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.events = append(l.events, ev)
}

func (l *recordingListener) count(kind EventKind) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, source *fakeSource) (*Engine, walletdb.Storage) {
	t.Helper()
	var seed, sMaster [32]byte
	rand.Read(seed[:])
	rand.Read(sMaster[:])
	keys, err := keychain.NewManager(seed, sMaster, 0, 0)
	require.NoError(t, err)

	storage := walletdb.NewMemStorage()
	engine := NewEngine(EngineConfig{
		Storage:        storage,
		Scanner:        scanner.New(keys),
		Source:         source,
		StartBatchSize: 4,
	})
	return engine, storage
}

func plainBlock(height uint64) ParsedBlock {
	var hash [32]byte
	rand.Read(hash[:])
	return ParsedBlock{
		Height: height,
		Hash:   hash,
		MinerTx: &scanner.ParsedTransaction{
			TxHash:      hash,
			BlockHeight: height,
			TxType:      walletdb.TxTypeMiner,
			AssetType:   "SAL",
		},
	}
}

func waitForState(t *testing.T, e *Engine, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine never reached state %s, stuck at %s", want, e.State())
}

func TestEngineSyncsToTip(t *testing.T) {
	source := newFakeSource()
	for h := uint64(0); h <= 9; h++ {
		source.addBlock(plainBlock(h))
	}

	engine, storage := newTestEngine(t, source)
	listener := &recordingListener{}
	engine.AddListener(listener)

	zero := uint64(0)
	require.NoError(t, engine.Start(&zero))
	waitForState(t, engine, StateComplete)

	height, err := storage.GetSyncHeight()
	require.NoError(t, err)
	require.Equal(t, uint64(10), height)
	require.Equal(t, 1, listener.count(EventSyncComplete))
	require.Greater(t, listener.count(EventNewBlock), 0)
}

func TestEngineRejectsConcurrentStart(t *testing.T) {
	source := newFakeSource()
	for h := uint64(0); h <= 50; h++ {
		source.addBlock(plainBlock(h))
	}

	engine, _ := newTestEngine(t, source)
	zero := uint64(0)
	require.NoError(t, engine.Start(&zero))
	err := engine.Start(&zero)
	require.ErrorIs(t, err, ErrAlreadySyncing)
	engine.Stop()
}

func TestEngineStopCancelsPass(t *testing.T) {
	source := newFakeSource()
	for h := uint64(0); h <= 200; h++ {
		source.addBlock(plainBlock(h))
	}

	engine, _ := newTestEngine(t, source)
	zero := uint64(0)
	require.NoError(t, engine.Start(&zero))
	engine.Stop()

	// Stop blocks until the pass has exited one way or another; a second
	// Start must then be accepted rather than returning ErrAlreadySyncing.
	require.NotEqual(t, StateSyncing, engine.State())
	require.NoError(t, engine.Start(&zero))
	engine.Stop()
}

func TestEngineDetectsReorg(t *testing.T) {
	source := newFakeSource()
	for h := uint64(0); h <= 9; h++ {
		source.addBlock(plainBlock(h))
	}

	engine, storage := newTestEngine(t, source)
	listener := &recordingListener{}
	engine.AddListener(listener)

	zero := uint64(0)
	require.NoError(t, engine.Start(&zero))
	waitForState(t, engine, StateComplete)

	// Replace every block from height 3 through the tip with a different
	// chain; height 2 and below stay untouched, so it is the common
	// ancestor the walk-back must land on.
	for h := uint64(3); h <= 9; h++ {
		source.addBlock(plainBlock(h))
	}

	require.NoError(t, engine.Start(nil))
	waitForState(t, engine, StateComplete)

	height, err := storage.GetSyncHeight()
	require.NoError(t, err)
	require.Equal(t, uint64(10), height)
	require.Greater(t, listener.count(EventReorg), 0)
}

func TestNextBatchSizeAdaptsToLatency(t *testing.T) {
	require.Equal(t, 50, nextBatchSize(100, 250, 100))
	require.Equal(t, 200, nextBatchSize(100, 40, 100))
	require.Equal(t, MinBatchSize, nextBatchSize(2, 300, 50))
	require.Equal(t, MaxBatchSize, nextBatchSize(400, 10, 100))
}
