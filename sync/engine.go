package sync

import (
	"context"
	stdsync "sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/salvium/walletcore/scanner"
	"github.com/salvium/walletcore/walletdb"
)

// maxReorgDepth bounds how far back the reorg walk-back will search before
// giving up with ErrNoCommonAncestor; it is also the minimum window of
// block hashes a Storage implementation needs to retain.
const maxReorgDepth = 1000

// maxBatchRetries bounds the exponential backoff applied to a batch's RPCs
// before the engine gives up and transitions to StateError.
const maxBatchRetries = 5

// yieldEveryBlocks is how often, while applying a batch, the engine checks
// for cancellation so Stop does not have to wait for a whole batch to
// drain.
const yieldEveryBlocks = 5

// EngineConfig wires a SyncEngine to its collaborators.
type EngineConfig struct {
	Storage walletdb.Storage
	Scanner *scanner.Scanner
	Source  ChainSource

	// StartBatchSize seeds the adaptive batch sizer; zero uses
	// DefaultBatchSize.
	StartBatchSize int
}

// Engine drives repeated batches of block fetch, scan, and persist against
// a ChainSource until it catches up with the tip, detecting and unwinding
// reorgs as it goes, and fans out progress through a Listener registry.
//
// One Engine runs one sync pass at a time; Start spawns the pass on its own
// goroutine and returns immediately, leaving callers to wait for shutdown
// separately via Stop or WaitForShutdown.
type Engine struct {
	cfg EngineConfig

	mtx   stdsync.Mutex
	state State

	batchSize      int
	lastMsPerBlock float64

	returnOutputMap     map[[32]byte]*scanner.ReturnOutputEntry
	returnOutputHeights map[[32]byte]uint64

	listeners []Listener

	cancel context.CancelFunc
	wg     stdsync.WaitGroup
}

// NewEngine returns an Engine ready to Start.
func NewEngine(cfg EngineConfig) *Engine {
	batchSize := cfg.StartBatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Engine{
		cfg:                 cfg,
		state:               StateIdle,
		batchSize:           batchSize,
		returnOutputMap:     make(map[[32]byte]*scanner.ReturnOutputEntry),
		returnOutputHeights: make(map[[32]byte]uint64),
	}
}

// AddListener registers l to receive every Event the engine emits from now
// on. Not safe to call concurrently with an in-progress dispatch.
func (e *Engine) AddListener(l Listener) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.listeners = append(e.listeners, l)
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mtx.Lock()
	e.state = s
	e.mtx.Unlock()
}

// Start begins a sync pass on a background goroutine, resuming from the
// stored sync height unless startHeight overrides it. It returns
// ErrAlreadySyncing if a pass is already running.
func (e *Engine) Start(startHeight *uint64) error {
	e.mtx.Lock()
	if e.state == StateSyncing {
		e.mtx.Unlock()
		return ErrAlreadySyncing
	}
	e.state = StateSyncing
	e.mtx.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runSyncPass(ctx, startHeight)
	}()
	return nil
}

// Stop cancels any in-progress sync pass and blocks until it exits.
func (e *Engine) Stop() {
	e.mtx.Lock()
	cancel := e.cancel
	e.mtx.Unlock()
	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// WaitForShutdown blocks until a running sync pass exits, without
// requesting cancellation.
func (e *Engine) WaitForShutdown() {
	e.wg.Wait()
}

func (e *Engine) emit(ev Event) {
	e.mtx.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mtx.Unlock()

	for _, l := range listeners {
		e.dispatchOne(l, ev)
	}
}

func (e *Engine) dispatchOne(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			syncLog.Errorf("listener panicked handling %s event: %v", ev.Kind, r)
		}
	}()
	l.OnEvent(ev)
}

func (e *Engine) runSyncPass(ctx context.Context, startHeight *uint64) {
	e.emit(Event{Kind: EventSyncStart})

	height, err := e.resolveStartHeight(startHeight)
	if err != nil {
		e.fail(err)
		return
	}

	if height > 0 {
		common, reorged, err := e.detectReorg(ctx, height)
		if err != nil {
			e.fail(err)
			return
		}
		if reorged {
			if err := e.unwindTo(common); err != nil {
				e.fail(err)
				return
			}
			height = common + 1
			e.emit(Event{Kind: EventReorg, CommonAncestor: common})
		}
	}

	for {
		select {
		case <-ctx.Done():
			e.setState(StateIdle)
			e.emit(Event{Kind: EventSyncStopped, Height: height})
			return
		default:
		}

		tip, err := e.tipWithRetry(ctx)
		if err != nil {
			e.fail(err)
			return
		}
		if height > tip {
			break
		}

		batchEnd := height + uint64(e.batchSize) - 1
		if batchEnd > tip {
			batchEnd = tip
		}

		heights := make([]uint64, 0, batchEnd-height+1)
		for h := height; h <= batchEnd; h++ {
			heights = append(heights, h)
		}

		started := time.Now()
		blocks, err := e.fetchBatchWithRetry(ctx, heights)
		if err != nil {
			e.fail(err)
			return
		}
		elapsed := time.Since(started)

		if err := e.applyBatch(ctx, blocks); err != nil {
			e.fail(err)
			return
		}

		height = batchEnd + 1

		msPerBlock := float64(elapsed.Milliseconds()) / float64(len(heights))
		next := nextBatchSize(e.batchSize, msPerBlock, e.lastMsPerBlock)
		e.mtx.Lock()
		e.batchSize = next
		e.lastMsPerBlock = msPerBlock
		e.mtx.Unlock()

		e.emit(Event{Kind: EventBatchComplete, Height: height - 1, BatchSize: next, MsPerBlock: msPerBlock})
	}

	e.scanMempool()

	e.setState(StateComplete)
	e.emit(Event{Kind: EventSyncComplete, Height: height})
}

func (e *Engine) resolveStartHeight(override *uint64) (uint64, error) {
	if override != nil {
		return *override, nil
	}
	return e.cfg.Storage.GetSyncHeight()
}

func (e *Engine) fail(err error) {
	syncLog.Errorf("sync pass aborted: %v", err)
	e.setState(StateError)
	e.emit(Event{Kind: EventSyncError, Err: err})
}

// detectReorg compares the stored hash one below height against the
// daemon's current view, walking back linearly through the stored window
// until agreement is found. A linear walk rather than a binary search: the
// Storage interface has no "oldest stored height" primitive to bound a
// binary search against, and the stored window is small enough in practice
// (maxReorgDepth) that the difference is not observable.
func (e *Engine) detectReorg(ctx context.Context, height uint64) (common uint64, reorged bool, err error) {
	checkHeight := height - 1
	storedHash, ok, err := e.cfg.Storage.GetBlockHash(checkHeight)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	headers, err := e.cfg.Source.GetBlockHeadersRange(checkHeight, checkHeight)
	if err != nil || len(headers) == 0 {
		return 0, false, err
	}
	if headers[0].Hash == storedHash {
		return 0, false, nil
	}

	for depth := uint64(1); depth <= maxReorgDepth && depth <= checkHeight; depth++ {
		h := checkHeight - depth
		stored, ok, err := e.cfg.Storage.GetBlockHash(h)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			break
		}
		remote, err := e.cfg.Source.GetBlockHeadersRange(h, h)
		if err != nil || len(remote) == 0 {
			return 0, false, err
		}
		if remote[0].Hash == stored {
			return h, true, nil
		}
	}
	return 0, false, ErrNoCommonAncestor
}

// unwindTo discards every output, transaction, and block hash recorded
// above common (Storage's "Above" methods are exclusive of the height
// given) and repositions the sync height to resume one block after it.
func (e *Engine) unwindTo(common uint64) error {
	if err := e.cfg.Storage.UnspendOutputsAbove(common); err != nil {
		return err
	}
	if err := e.cfg.Storage.DeleteOutputsAbove(common); err != nil {
		return err
	}
	if err := e.cfg.Storage.DeleteTransactionsAbove(common); err != nil {
		return err
	}
	if err := e.cfg.Storage.DeleteBlockHashesAbove(common); err != nil {
		return err
	}
	if err := e.cfg.Storage.SetSyncHeight(common + 1); err != nil {
		return err
	}

	e.mtx.Lock()
	for key, h := range e.returnOutputHeights {
		if h > common {
			delete(e.returnOutputHeights, key)
			delete(e.returnOutputMap, key)
		}
	}
	e.mtx.Unlock()
	return nil
}

func (e *Engine) tipWithRetry(ctx context.Context) (uint64, error) {
	var lastErr error
	for attempt := 0; attempt < maxBatchRetries; attempt++ {
		if attempt > 0 {
			if err := backoffSleep(ctx, attempt); err != nil {
				return 0, err
			}
		}
		tip, err := e.cfg.Source.GetTipHeight()
		if err == nil {
			return tip, nil
		}
		lastErr = err
	}
	syncLog.Warnf("getTipHeight exhausted retries: %v", lastErr)
	return 0, ErrNetworkTimeout
}

func (e *Engine) fetchBatchWithRetry(ctx context.Context, heights []uint64) ([]ParsedBlock, error) {
	var lastErr error
	for attempt := 0; attempt < maxBatchRetries; attempt++ {
		if attempt > 0 {
			if err := backoffSleep(ctx, attempt); err != nil {
				return nil, err
			}
		}

		blocks, ok, err := e.cfg.Source.GetBlocksByHeight(heights)
		if err == nil && ok {
			return blocks, nil
		}
		if err == nil && !ok {
			blocks, err = e.fetchPerHeight(ctx, heights)
			if err == nil {
				return blocks, nil
			}
		}
		lastErr = err
	}
	syncLog.Warnf("batch fetch exhausted retries: %v", lastErr)
	return nil, ErrNetworkTimeout
}

// fetchPerHeight fills in for a daemon without the bulk endpoint, bounded
// to DefaultFetchConcurrency in-flight requests at a time. Unlike a
// channel-based semaphore, Acquire respects ctx: a cancelled sync pass
// stops handing out new fetches instead of leaking blocked goroutines.
func (e *Engine) fetchPerHeight(ctx context.Context, heights []uint64) ([]ParsedBlock, error) {
	results := make([]ParsedBlock, len(heights))
	errs := make([]error, len(heights))

	sem := semaphore.NewWeighted(int64(DefaultFetchConcurrency))
	var wg stdsync.WaitGroup
	for i, h := range heights {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, h uint64) {
			defer wg.Done()
			defer sem.Release(1)
			results[i], errs[i] = e.cfg.Source.GetBlock(h)
		}(i, h)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Engine) applyBatch(ctx context.Context, blocks []ParsedBlock) error {
	for i, block := range blocks {
		if err := e.applyBlock(block); err != nil {
			return err
		}
		if (i+1)%yieldEveryBlocks == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	return nil
}

func (e *Engine) applyBlock(block ParsedBlock) error {
	stats := &scanner.Stats{}

	for _, tx := range block.AllTransactions() {
		e.detectSpends(tx)

		owned := e.cfg.Scanner.ScanTransaction(tx, e.returnOutputMap, stats)
		for key := range e.returnOutputMap {
			if _, tagged := e.returnOutputHeights[key]; !tagged {
				e.returnOutputHeights[key] = block.Height
			}
		}

		for _, o := range owned {
			if err := e.cfg.Storage.PutOutput(o); err != nil {
				return err
			}
			e.emit(Event{
				Kind:   EventOutputFound,
				Height: block.Height,
				Output: &OutputEvent{TxHash: o.TxHash, OutputIndex: o.OutputIndex, Amount: o.Amount},
			})
		}
	}

	if err := e.cfg.Storage.PutBlockHash(block.Height, block.Hash); err != nil {
		return err
	}
	if err := e.cfg.Storage.SetSyncHeight(block.Height + 1); err != nil {
		return err
	}
	e.emit(Event{Kind: EventNewBlock, Height: block.Height, BlockHash: block.Hash})
	return nil
}

func (e *Engine) detectSpends(tx *scanner.ParsedTransaction) {
	for _, ki := range tx.InputKeyImages {
		owned, err := e.cfg.Storage.GetOutput(ki)
		if err != nil || owned == nil {
			continue
		}
		if owned.IsSpent {
			continue
		}
		if err := e.cfg.Storage.MarkOutputSpent(ki, tx.TxHash, tx.BlockHeight); err != nil {
			syncLog.Errorf("failed to mark output spent: %v", err)
			continue
		}
		e.emit(Event{
			Kind:   EventOutputSpent,
			Height: tx.BlockHeight,
			Output: &OutputEvent{TxHash: owned.TxHash, OutputIndex: owned.OutputIndex, Amount: owned.Amount},
		})
	}
}

func (e *Engine) scanMempool() {
	txs, err := e.cfg.Source.GetMempool()
	if err != nil {
		syncLog.Warnf("mempool scan skipped: %v", err)
		return
	}
	stats := &scanner.Stats{}
	for _, tx := range txs {
		e.detectSpends(tx)
		owned := e.cfg.Scanner.ScanTransaction(tx, e.returnOutputMap, stats)
		for _, o := range owned {
			e.emit(Event{
				Kind:   EventOutputFound,
				Height: 0,
				Output: &OutputEvent{TxHash: o.TxHash, OutputIndex: o.OutputIndex, Amount: o.Amount},
			})
		}
	}
}

// backoffSleep waits an exponentially increasing delay before the next
// retry attempt, returning early with ctx.Err() if canceled first.
func backoffSleep(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt-1)) * time.Second
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
