package walletdb_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/salvium/walletcore/walletdb"
)

type storageHarness struct {
	t  *testing.T
	db walletdb.Storage
}

func newStorageHarness(t *testing.T) *storageHarness {
	return &storageHarness{t: t, db: walletdb.NewMemStorage()}
}

func (h *storageHarness) putOutput(o *walletdb.OwnedOutput) {
	h.t.Helper()
	require.NoError(h.t, h.db.PutOutput(o))
}

func sampleOutput(txHash [32]byte, index uint32, height uint64, keyImage *[32]byte) *walletdb.OwnedOutput {
	return &walletdb.OwnedOutput{
		TxHash:      txHash,
		OutputIndex: index,
		BlockHeight: height,
		Amount:      1000,
		KeyImage:    keyImage,
		AssetType:   "SAL",
	}
}

func TestMemStorageGetPutOutput(t *testing.T) {
	h := newStorageHarness(t)
	var txHash [32]byte
	txHash[0] = 1
	var ki [32]byte
	ki[0] = 9

	h.putOutput(sampleOutput(txHash, 0, 100, &ki))

	got, err := h.db.GetOutput(ki)
	require.NoError(t, err)
	require.Equal(t, uint64(100), got.BlockHeight)

	_, err = h.db.GetOutput([32]byte{0xff})
	require.ErrorIs(t, err, walletdb.ErrNotFound)
}

func TestMemStorageDuplicateKeyImageRejected(t *testing.T) {
	h := newStorageHarness(t)
	var ki [32]byte
	ki[0] = 7

	var tx1, tx2 [32]byte
	tx1[0], tx2[0] = 1, 2

	h.putOutput(sampleOutput(tx1, 0, 10, &ki))
	err := h.db.PutOutput(sampleOutput(tx2, 0, 11, &ki))
	require.ErrorIs(t, err, walletdb.ErrDuplicateKeyImage)
}

func TestMemStorageMarkSpentAndUnspendAbove(t *testing.T) {
	h := newStorageHarness(t)
	var ki [32]byte
	ki[0] = 3
	var txHash [32]byte
	txHash[0] = 1
	h.putOutput(sampleOutput(txHash, 0, 10, &ki))

	var spendTx [32]byte
	spendTx[0] = 2
	require.NoError(t, h.db.MarkOutputSpent(ki, spendTx, 50))

	got, err := h.db.GetOutput(ki)
	require.NoError(t, err)
	require.True(t, got.IsSpent)
	require.Equal(t, uint64(50), *got.SpentAtHeight)

	require.NoError(t, h.db.UnspendOutputsAbove(40))
	got, err = h.db.GetOutput(ki)
	require.NoError(t, err)
	require.False(t, got.IsSpent)
}

func TestMemStorageDeleteOutputsAbove(t *testing.T) {
	h := newStorageHarness(t)
	var ki1, ki2 [32]byte
	ki1[0], ki2[0] = 1, 2
	var tx1, tx2 [32]byte
	tx1[0], tx2[0] = 10, 20

	h.putOutput(sampleOutput(tx1, 0, 100, &ki1))
	h.putOutput(sampleOutput(tx2, 0, 200, &ki2))

	require.NoError(t, h.db.DeleteOutputsAbove(150))

	_, err := h.db.GetOutput(ki1)
	require.NoError(t, err)
	_, err = h.db.GetOutput(ki2)
	require.ErrorIs(t, err, walletdb.ErrNotFound)
}

func TestMemStorageSyncHeightAndBlockHashes(t *testing.T) {
	h := newStorageHarness(t)
	require.NoError(t, h.db.SetSyncHeight(500))
	height, err := h.db.GetSyncHeight()
	require.NoError(t, err)
	require.Equal(t, uint64(500), height)

	var hash [32]byte
	hash[0] = 0xaa
	require.NoError(t, h.db.PutBlockHash(500, hash))
	got, ok, err := h.db.GetBlockHash(500)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hash, got)

	require.NoError(t, h.db.DeleteBlockHashesAbove(499))
	_, ok, err = h.db.GetBlockHash(500)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTxTypeValidTransition(t *testing.T) {
	require.True(t, walletdb.TxTypeStake.ValidTransition(walletdb.TxTypeReturn))
	require.False(t, walletdb.TxTypeTransfer.ValidTransition(walletdb.TxTypeReturn))
	require.True(t, walletdb.TxTypeTransfer.ValidTransition(walletdb.TxTypeTransfer))
}

func TestOwnedOutputIsSpendable(t *testing.T) {
	o := &walletdb.OwnedOutput{BlockHeight: 100}
	require.True(t, o.IsSpendable(200, 60, false))
	require.False(t, o.IsSpendable(150, 60, false))
	require.False(t, o.IsSpendable(200, 60, true))

	o.IsSpent = true
	require.False(t, o.IsSpendable(1000, 0, false))
}
