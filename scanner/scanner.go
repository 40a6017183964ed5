// Package scanner implements the detection algorithms that decide whether a
// transaction output belongs to a wallet: the legacy CN two-path detector,
// the CARROT detector (including the self-send/internal path), and the
// return-output fast path for matured stake payouts.
package scanner

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/walletdb"
)

// ReturnOutputEntry is what the self-send path records in the SyncEngine's
// returnOutputMap: enough material to build a full OwnedOutput the moment
// the matching RETURN payout is observed, without re-running any detection
// crypto on it.
type ReturnOutputEntry struct {
	KReturn *kernel.Scalar
	SubaddressIndex keychain.SubaddressIndex
	AssetType string
	SourceTxHash [32]byte
}

// Scanner holds the key material needed to recognize a wallet's own outputs.
// One Scanner instance is shared across an entire sync pass.
type Scanner struct {
	Keys *keychain.Manager
}

// New returns a Scanner over keys. keys may be a view-only Manager; output
// detection still works, only key-image construction (and therefore spend
// capability) is unavailable.
func New(keys *keychain.Manager) *Scanner {
	return &Scanner{Keys: keys}
}

// returnAddressScalar derives k_return deterministically from s_view_balance
// and the self-send output's own key, so the wallet never has to persist it
// separately: the SyncEngine can always recompute K_r from a stored
// ReturnOutputEntry plus the original output key.
func returnAddressScalar(sViewBalance [32]byte, selfSendOutputKey [32]byte) (*kernel.Scalar, error) {
	return kernel.HashToScalar([]byte("Carrot self-send return"), sViewBalance[:], selfSendOutputKey[:]), nil
}

// expectedReturnAddress computes K_r = k_return·G + Ko_selfsend.
func expectedReturnAddress(kReturn *kernel.Scalar, selfSendOutputKey [32]byte) (*kernel.Point, error) {
	ko, err := kernel.PointFromBytes(selfSendOutputKey[:])
	if err != nil {
		return nil, ErrMalformedOutput
	}
	return kernel.PointAdd(kernel.ScalarMultBase(kReturn), ko), nil
}

// ScanTransaction runs every output of tx through the CN path, the CARROT
// path, the CARROT self-send path, and the return-output fast path, in that
// order, recording any self-sends discovered into returnMap. It never
// returns an error for an output that simply isn't the wallet's: that is
// "not ours" and is silently skipped. Malformed outputs are counted in
// stats and skipped without aborting the rest of the batch.
func (s *Scanner) ScanTransaction(tx *ParsedTransaction, returnMap map[[32]byte]*ReturnOutputEntry, stats *Stats) []*walletdb.OwnedOutput {
	var owned []*walletdb.OwnedOutput

	var cnDeriv *kernel.Point
	var carrotShared [32]byte
	var haveCarrotShared bool

	if tx.TxPubKey != nil {
		if s.Keys.Legacy != nil && s.Keys.Legacy.ViewSecret != nil {
			if r, err := kernel.PointFromBytes(tx.TxPubKey[:]); err == nil {
				cnDeriv = cnDerivation(s.Keys.Legacy.ViewSecret, r)
			}
		}
		if s.Keys.Carrot != nil && s.Keys.Carrot.KViewIncoming != nil {
			carrotShared = carrotSharedSecret(s.Keys.Carrot.KViewIncoming, *tx.TxPubKey)
			haveCarrotShared = true
		}
	}

	for i, out := range tx.Outputs {
		stats.OutputsScanned++

		o, matched := s.scanOutput(tx, i, out, cnDeriv, carrotShared, haveCarrotShared, returnMap, stats)
		if matched {
			owned = append(owned, o)
			stats.OutputsOwned++
		}
	}
	return owned
}

func (s *Scanner) scanOutput(tx *ParsedTransaction, index int, out Output, cnDeriv *kernel.Point,
	carrotShared [32]byte, haveCarrotShared bool, returnMap map[[32]byte]*ReturnOutputEntry, stats *Stats) (*walletdb.OwnedOutput, bool) {

	if out.IsCarrot {
		if haveCarrotShared {
			if o, ok := s.tryCarrot(tx, index, out, carrotShared, *tx.TxPubKey, stats); ok {
				return o, true
			}
		}
		if s.Keys.Carrot != nil && s.Keys.Carrot.SViewBalance != nil && tx.TxPubKey != nil {
			if o, ok := s.trySelfSend(tx, index, out, *tx.TxPubKey, returnMap, stats); ok {
				return o, true
			}
		}
	} else if cnDeriv != nil {
		if o, ok := s.tryCN(tx, index, out, cnDeriv, stats); ok {
			return o, true
		}
	}

	if !tx.HasInputKeyImages {
		if o, ok := s.tryReturnFastPath(tx, index, out, returnMap, stats); ok {
			return o, true
		}
	}

	return nil, false
}

func (s *Scanner) tryCN(tx *ParsedTransaction, index int, out Output, d *kernel.Point, stats *Stats) (*walletdb.OwnedOutput, bool) {
	if out.ViewTag != nil && len(out.ViewTag) >= 1 {
		if cnViewTag(d, index) != out.ViewTag[0] {
			stats.ViewTagRejected++
			return nil, false
		}
	}

	scalarI := cnPerOutputScalar(d, index)
	idx, ok, err := cnStealthCheck(out.Key, scalarI, s.Keys.LegacySubaddresses)
	if err != nil {
		stats.MalformedSkipped++
		return nil, false
	}
	if !ok {
		return nil, false
	}

	o := &walletdb.OwnedOutput{
		PublicKey: out.Key,
		TxHash: tx.TxHash,
		OutputIndex: uint32(index),
		BlockHeight: tx.BlockHeight,
		SubaddressIndex: idx,
		UnlockTime: tx.UnlockTime,
		TxType: tx.TxType,
		TxPubKey: tx.TxPubKey,
		AssetType: tx.AssetType,
	}

	if out.EncryptedAmount != nil {
		amount := ecdhDecodeAmount(*out.EncryptedAmount, d)
		mask := cnCommitmentMask(d)
		commit := kernel.PedersenCommit(amount, mask)
		if out.OutPk != nil {
			outPkPoint, err := kernel.PointFromBytes(out.OutPk[:])
			if err != nil || !commit.Equal(outPkPoint) {
				stats.MalformedSkipped++
				return nil, false
			}
		}
		o.Amount = amount
		maskBytes := [32]byte{}
		copy(maskBytes[:], mask.Bytes())
		o.Mask = &maskBytes
	}

	if s.Keys.Legacy.SpendSecret != nil {
		var subScalar *kernel.Scalar
		if idx.Major != 0 || idx.Minor != 0 {
			subScalar = keychain.SubaddressSecretCN(s.Keys.Legacy.ViewSecret, idx.Major, idx.Minor)
		}
		ki := cnKeyImage(s.Keys.Legacy.SpendSecret, subScalar, scalarI, out.Key)
		kiBytes := [32]byte{}
		copy(kiBytes[:], ki.Bytes())
		o.KeyImage = &kiBytes
	}

	return o, true
}

func (s *Scanner) tryCarrot(tx *ParsedTransaction, index int, out Output, sharedSecret [32]byte, dE [32]byte, stats *Stats) (*walletdb.OwnedOutput, bool) {
	return s.carrotDetect(tx, index, out, sharedSecret, dE, false, stats)
}

func (s *Scanner) trySelfSend(tx *ParsedTransaction, index int, out Output, dE [32]byte, returnMap map[[32]byte]*ReturnOutputEntry, stats *Stats) (*walletdb.OwnedOutput, bool) {
	sViewBalanceScalar, err := kernel.ScReduce32(s.Keys.Carrot.SViewBalance[:])
	if err != nil {
		stats.MalformedSkipped++
		return nil, false
	}
	shared := carrotSharedSecret(sViewBalanceScalar, dE)

	o, ok := s.carrotDetect(tx, index, out, shared, dE, true, stats)
	if !ok {
		return nil, false
	}
	stats.SelfSendDetected++
	scnLog.Debugf("self-send detected in tx %x output %d", tx.TxHash, index)

	kReturn, err := returnAddressScalar(*s.Keys.Carrot.SViewBalance, out.Key)
	if err != nil {
		return o, true
	}
	kr, err := expectedReturnAddress(kReturn, out.Key)
	if err != nil {
		return o, true
	}
	var mapKey [32]byte
	copy(mapKey[:], kr.Bytes())
	returnMap[mapKey] = &ReturnOutputEntry{
		KReturn: kReturn,
		SubaddressIndex: o.SubaddressIndex,
		AssetType: tx.AssetType,
		SourceTxHash: tx.TxHash,
	}
	return o, true
}

// carrotDetect runs the common CARROT detection steps shared by the
// standard and self-send paths; the two differ only in which secret
// contextualizes sharedSecret, not in how the match is used afterward.
func (s *Scanner) carrotDetect(tx *ParsedTransaction, index int, out Output, sharedSecret [32]byte, dE [32]byte, selfSend bool, stats *Stats) (*walletdb.OwnedOutput, bool) {
	if out.ViewTag != nil && len(out.ViewTag) >= 3 {
		tag, err := carrotViewTag(sharedSecret, index, dE)
		if err != nil {
			stats.MalformedSkipped++
			return nil, false
		}
		if tag != [3]byte{out.ViewTag[0], out.ViewTag[1], out.ViewTag[2]} {
			if !selfSend {
				stats.ViewTagRejected++
			}
			return nil, false
		}
	}

	extG, err := carrotOnetimeExtension(sharedSecret, index, dE)
	if err != nil {
		stats.MalformedSkipped++
		return nil, false
	}

	idx, ok, err := carrotStealthCheck(out.Key, extG, s.Keys.CarrotSubaddresses)
	if err != nil {
		stats.MalformedSkipped++
		return nil, false
	}
	if !ok {
		return nil, false
	}

	o := &walletdb.OwnedOutput{
		PublicKey: out.Key,
		TxHash: tx.TxHash,
		OutputIndex: uint32(index),
		BlockHeight: tx.BlockHeight,
		SubaddressIndex: idx,
		UnlockTime: tx.UnlockTime,
		TxType: tx.TxType,
		TxPubKey: tx.TxPubKey,
		IsCarrot: true,
		AssetType: tx.AssetType,
	}

	if out.EncryptedAmount != nil && out.OutPk != nil {
		commitPoint, err := kernel.PointFromBytes(out.OutPk[:])
		if err != nil {
			stats.MalformedSkipped++
			return nil, false
		}
		amount, mask, enoteType, err := carrotAmount(sharedSecret, index, dE, *out.EncryptedAmount, commitPoint)
		if err != nil {
			return nil, false
		}
		o.Amount = amount
		maskBytes := [32]byte{}
		copy(maskBytes[:], mask.Bytes())
		o.Mask = &maskBytes
		et := uint8(enoteType)
		o.CarrotEnoteType = &et
	} else if out.ClearAmount != nil {
		o.Amount = *out.ClearAmount
	}

	if s.Keys.Carrot.KGenerateImage != nil {
		var subScalar *kernel.Scalar
		if (idx.Major != 0 || idx.Minor != 0) && s.Keys.Carrot.SGenerateAddress != nil {
			subScalar, _ = keychain.CarrotSubaddressScalar(*s.Keys.Carrot.SGenerateAddress, s.Keys.Carrot.KSpend, idx.Major, idx.Minor)
		}
		ki := carrotKeyImage(s.Keys.Carrot.KGenerateImage, subScalar, extG, out.Key)
		kiBytes := [32]byte{}
		copy(kiBytes[:], ki.Bytes())
		o.KeyImage = &kiBytes
	}

	return o, true
}

// tryReturnFastPath looks up a coinbase/protocol output directly in
// returnMap, skipping all detection crypto.
func (s *Scanner) tryReturnFastPath(tx *ParsedTransaction, index int, out Output, returnMap map[[32]byte]*ReturnOutputEntry, stats *Stats) (*walletdb.OwnedOutput, bool) {
	entry, ok := returnMap[out.Key]
	if !ok {
		return nil, false
	}
	stats.ReturnOutputsMatched++

	o := &walletdb.OwnedOutput{
		PublicKey: out.Key,
		TxHash: tx.TxHash,
		OutputIndex: uint32(index),
		BlockHeight: tx.BlockHeight,
		SubaddressIndex: entry.SubaddressIndex,
		UnlockTime: tx.UnlockTime,
		TxType: tx.TxType,
		TxPubKey: tx.TxPubKey,
		IsCarrot: true,
		AssetType: entry.AssetType,
	}
	if out.ClearAmount != nil {
		o.Amount = *out.ClearAmount
	}
	maskBytes := [32]byte{}
	maskBytes[0] = 1
	o.Mask = &maskBytes

	return o, true
}
