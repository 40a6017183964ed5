package scanner

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/walletdb"
)

func randScalar(t *testing.T) *kernel.Scalar {
	t.Helper()
	var e [64]byte
	rand.Read(e[:])
	s, err := kernel.RandomScalar(e[:])
	require.NoError(t, err)
	return s
}

func newTestManager(t *testing.T) *keychain.Manager {
	t.Helper()
	var seed, sMaster [32]byte
	rand.Read(seed[:])
	rand.Read(sMaster[:])
	m, err := keychain.NewManager(seed, sMaster, 1, 2)
	require.NoError(t, err)
	return m
}

func TestScanTransactionCNPathFindsPrimaryOutput(t *testing.T) {
	keys := newTestManager(t)
	scanner := New(keys)

	r := randScalar(t)
	rPoint := kernel.ScalarMultBase(r)
	shared := kernel.ScalarMultPoint(keys.Legacy.ViewSecret, rPoint)
	d := kernel.ScalarMultPoint(kernel.ScalarFromUint64(8), shared)

	scalar0 := cnPerOutputScalar(d, 0)
	outputPoint := kernel.PointAdd(kernel.ScalarMultBase(scalar0), keys.Legacy.SpendPub)
	var outKey [32]byte
	copy(outKey[:], outputPoint.Bytes())

	mask := cnCommitmentMask(d)
	commit := kernel.PedersenCommit(42, mask)
	var outPk [32]byte
	copy(outPk[:], commit.Bytes())

	var enc [8]byte
	amountMask := kernel.Keccak256([]byte("amount"), d.Bytes())
	for i := range enc {
		enc[i] = byte(42>>(8*i)) ^ amountMask[i]
	}

	var rBytes [32]byte
	copy(rBytes[:], rPoint.Bytes())

	tx := &ParsedTransaction{
		TxHash: [32]byte{1},
		TxPubKey: &rBytes,
		BlockHeight: 100,
		TxType: walletdb.TxTypeTransfer,
		Outputs: []Output{{
			Key: outKey,
			EncryptedAmount: &enc,
			OutPk: &outPk,
		}},
		HasInputKeyImages: true,
	}

	returnMap := map[[32]byte]*ReturnOutputEntry{}
	stats := &Stats{}
	owned := scanner.ScanTransaction(tx, returnMap, stats)

	require.Len(t, owned, 1)
	require.Equal(t, uint64(42), owned[0].Amount)
	require.Equal(t, keychain.SubaddressIndex{Major: 0, Minor: 0}, owned[0].SubaddressIndex)
	require.NotNil(t, owned[0].KeyImage)
	require.Equal(t, 1, stats.OutputsOwned)
}

func TestScanTransactionCNPathRejectsForeignOutput(t *testing.T) {
	keys := newTestManager(t)
	other := newTestManager(t)
	scanner := New(keys)

	r := randScalar(t)
	rPoint := kernel.ScalarMultBase(r)
	shared := kernel.ScalarMultPoint(other.Legacy.ViewSecret, rPoint)
	d := kernel.ScalarMultPoint(kernel.ScalarFromUint64(8), shared)

	scalar0 := cnPerOutputScalar(d, 0)
	outputPoint := kernel.PointAdd(kernel.ScalarMultBase(scalar0), other.Legacy.SpendPub)
	var outKey [32]byte
	copy(outKey[:], outputPoint.Bytes())

	var rBytes [32]byte
	copy(rBytes[:], rPoint.Bytes())

	tx := &ParsedTransaction{
		TxHash: [32]byte{2},
		TxPubKey: &rBytes,
		Outputs: []Output{{Key: outKey}},
		HasInputKeyImages: true,
	}

	owned := scanner.ScanTransaction(tx, map[[32]byte]*ReturnOutputEntry{}, &Stats{})
	require.Empty(t, owned)
}

func TestScanTransactionCarrotPathFindsPrimaryOutput(t *testing.T) {
	keys := newTestManager(t)
	scanner := New(keys)

	var dE [32]byte
	rand.Read(dE[:])
	shared := carrotSharedSecret(keys.Carrot.KViewIncoming, dE)

	extG, err := carrotOnetimeExtension(shared, 0, dE)
	require.NoError(t, err)
	outputPoint := kernel.PointAdd(kernel.ScalarMultBase(extG), keys.Carrot.KSpend)
	var outKey [32]byte
	copy(outKey[:], outputPoint.Bytes())

	tag, err := carrotViewTag(shared, 0, dE)
	require.NoError(t, err)

	tx := &ParsedTransaction{
		TxHash: [32]byte{3},
		TxPubKey: &dE,
		BlockHeight: 200,
		TxType: walletdb.TxTypeTransfer,
		Outputs: []Output{{
			Key: outKey,
			ViewTag: tag[:],
			ClearAmount: nil,
			IsCarrot: true,
		}},
		HasInputKeyImages: true,
	}

	owned := scanner.ScanTransaction(tx, map[[32]byte]*ReturnOutputEntry{}, &Stats{})
	require.Len(t, owned, 1)
	require.True(t, owned[0].IsCarrot)
	require.NotNil(t, owned[0].KeyImage)
}

func TestScanTransactionCarrotViewTagMismatchRejects(t *testing.T) {
	keys := newTestManager(t)
	scanner := New(keys)

	var dE [32]byte
	rand.Read(dE[:])
	shared := carrotSharedSecret(keys.Carrot.KViewIncoming, dE)
	extG, err := carrotOnetimeExtension(shared, 0, dE)
	require.NoError(t, err)
	outputPoint := kernel.PointAdd(kernel.ScalarMultBase(extG), keys.Carrot.KSpend)
	var outKey [32]byte
	copy(outKey[:], outputPoint.Bytes())

	tx := &ParsedTransaction{
		TxHash: [32]byte{4},
		TxPubKey: &dE,
		Outputs: []Output{{
			Key: outKey,
			ViewTag: []byte{0xde, 0xad, 0xbe},
			IsCarrot: true,
		}},
		HasInputKeyImages: true,
	}

	stats := &Stats{}
	owned := scanner.ScanTransaction(tx, map[[32]byte]*ReturnOutputEntry{}, stats)
	require.Empty(t, owned)
	require.Equal(t, 1, stats.ViewTagRejected)
}

// TestSelfSendThenReturnRoundTrip covers a self-send: a stake change output
// is detected using s_view_balance, its expected return address is
// recorded, and a later protocol transaction paying exactly that address is
// recognized via the fast path with no further crypto.
func TestSelfSendThenReturnRoundTrip(t *testing.T) {
	keys := newTestManager(t)
	scanner := New(keys)

	var dE [32]byte
	rand.Read(dE[:])
	sViewBalanceScalar, err := kernel.ScReduce32(keys.Carrot.SViewBalance[:])
	require.NoError(t, err)
	shared := carrotSharedSecret(sViewBalanceScalar, dE)

	extG, err := carrotOnetimeExtension(shared, 0, dE)
	require.NoError(t, err)
	outputPoint := kernel.PointAdd(kernel.ScalarMultBase(extG), keys.Carrot.KSpend)
	var selfSendKey [32]byte
	copy(selfSendKey[:], outputPoint.Bytes())

	stakeTx := &ParsedTransaction{
		TxHash: [32]byte{5},
		TxPubKey: &dE,
		TxType: walletdb.TxTypeStake,
		Outputs: []Output{{
			Key: selfSendKey,
			IsCarrot: true,
		}},
		HasInputKeyImages: true,
	}

	returnMap := map[[32]byte]*ReturnOutputEntry{}
	stats := &Stats{}
	owned := scanner.ScanTransaction(stakeTx, returnMap, stats)
	require.Len(t, owned, 1)
	require.Equal(t, 1, stats.SelfSendDetected)
	require.Len(t, returnMap, 1)

	kReturn, err := returnAddressScalar(*keys.Carrot.SViewBalance, selfSendKey)
	require.NoError(t, err)
	expected, err := expectedReturnAddress(kReturn, selfSendKey)
	require.NoError(t, err)
	var returnKey [32]byte
	copy(returnKey[:], expected.Bytes())

	clearAmount := uint64(7_500_000)
	returnTx := &ParsedTransaction{
		TxHash: [32]byte{6},
		TxType: walletdb.TxTypeReturn,
		Outputs: []Output{{
			Key: returnKey,
			ClearAmount: &clearAmount,
			IsCarrot: true,
		}},
		HasInputKeyImages: false,
	}

	stats2 := &Stats{}
	owned2 := scanner.ScanTransaction(returnTx, returnMap, stats2)
	require.Len(t, owned2, 1)
	require.Equal(t, 1, stats2.ReturnOutputsMatched)
	require.Equal(t, clearAmount, owned2[0].Amount)
	require.Equal(t, byte(1), owned2[0].Mask[0])
}
