package walletdb

import "sync"

// MemStorage is an in-memory Storage implementation used by this package's
// own tests and by the sync/scanner/wallet packages' test suites. It is not
// a specified on-disk format, only a reference collaborator.
type MemStorage struct {
	mtx sync.Mutex

	outputsByKeyImage map[[32]byte]*OwnedOutput
	outputsByTxOut map[txOutKey]*OwnedOutput

	transactions map[[32]byte]*WalletTransaction
	blockHashes map[uint64][32]byte

	syncHeight uint64
}

type txOutKey struct {
	txHash [32]byte
	index uint32
}

// NewMemStorage returns an empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		outputsByKeyImage: make(map[[32]byte]*OwnedOutput),
		outputsByTxOut: make(map[txOutKey]*OwnedOutput),
		transactions: make(map[[32]byte]*WalletTransaction),
		blockHashes: make(map[uint64][32]byte),
	}
}

func matchesFilter(o *OwnedOutput, f OutputFilter) bool {
	if f.IsSpent != nil && o.IsSpent != *f.IsSpent {
		return false
	}
	if f.AssetType != nil && o.AssetType != *f.AssetType {
		return false
	}
	return true
}

func (m *MemStorage) GetOutputs(filter OutputFilter) ([]*OwnedOutput, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	out := make([]*OwnedOutput, 0, len(m.outputsByTxOut))
	for _, o := range m.outputsByTxOut {
		if matchesFilter(o, filter) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemStorage) GetOutput(keyImage [32]byte) (*OwnedOutput, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	o, ok := m.outputsByKeyImage[keyImage]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

// PutOutput inserts or updates o, keyed by (txHash, outputIndex). If o
// carries a key image that already belongs to a different output, the
// wallet-wide key-image uniqueness invariant is violated and
// ErrDuplicateKeyImage is returned.
func (m *MemStorage) PutOutput(o *OwnedOutput) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if o.KeyImage != nil {
		if existing, ok := m.outputsByKeyImage[*o.KeyImage]; ok {
			if existing.TxHash != o.TxHash || existing.OutputIndex != o.OutputIndex {
				return ErrDuplicateKeyImage
			}
		}
	}

	key := txOutKey{txHash: o.TxHash, index: o.OutputIndex}
	m.outputsByTxOut[key] = o
	if o.KeyImage != nil {
		m.outputsByKeyImage[*o.KeyImage] = o
	}
	return nil
}

func (m *MemStorage) MarkOutputSpent(keyImage [32]byte, txHash [32]byte, height uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	o, ok := m.outputsByKeyImage[keyImage]
	if !ok {
		return ErrNotFound
	}
	o.IsSpent = true
	o.SpentInTx = &txHash
	o.SpentAtHeight = &height
	return nil
}

func (m *MemStorage) DeleteOutputsAbove(height uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for key, o := range m.outputsByTxOut {
		if o.BlockHeight > height {
			delete(m.outputsByTxOut, key)
			if o.KeyImage != nil {
				delete(m.outputsByKeyImage, *o.KeyImage)
			}
		}
	}
	return nil
}

func (m *MemStorage) UnspendOutputsAbove(height uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for _, o := range m.outputsByTxOut {
		if o.SpentAtHeight != nil && *o.SpentAtHeight > height {
			o.IsSpent = false
			o.SpentInTx = nil
			o.SpentAtHeight = nil
		}
	}
	return nil
}

func (m *MemStorage) GetTransaction(hash [32]byte) (*WalletTransaction, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	tx, ok := m.transactions[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

func (m *MemStorage) PutTransaction(tx *WalletTransaction) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.transactions[tx.TxHash] = tx
	return nil
}

func (m *MemStorage) DeleteTransactionsAbove(height uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for hash, tx := range m.transactions {
		if tx.BlockHeight > height {
			delete(m.transactions, hash)
		}
	}
	return nil
}

func (m *MemStorage) GetSyncHeight() (uint64, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.syncHeight, nil
}

func (m *MemStorage) SetSyncHeight(h uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.syncHeight = h
	return nil
}

func (m *MemStorage) PutBlockHash(height uint64, hash [32]byte) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.blockHashes[height] = hash
	return nil
}

func (m *MemStorage) GetBlockHash(height uint64) ([32]byte, bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	hash, ok := m.blockHashes[height]
	return hash, ok, nil
}

func (m *MemStorage) DeleteBlockHashesAbove(height uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for h := range m.blockHashes {
		if h > height {
			delete(m.blockHashes, h)
		}
	}
	return nil
}

func (m *MemStorage) Clear() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.outputsByKeyImage = make(map[[32]byte]*OwnedOutput)
	m.outputsByTxOut = make(map[txOutKey]*OwnedOutput)
	m.transactions = make(map[[32]byte]*WalletTransaction)
	m.blockHashes = make(map[uint64][32]byte)
	m.syncHeight = 0
	return nil
}

var _ Storage = (*MemStorage)(nil)
