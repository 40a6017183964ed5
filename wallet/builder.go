// Package wallet implements the transaction Builder: coin selection, fee
// estimation, destination derivation, ring signing, and wire serialization,
// tying together the kernel, keychain, and the wallet/coinselect and
// wallet/txsign subpackages into one committed transaction.
package wallet

import (
	"sort"

	goerrors "github.com/go-errors/errors"

	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/wallet/coinselect"
	"github.com/salvium/walletcore/wallet/txsign"
	"github.com/salvium/walletcore/walletdb"
)

const (
	ringSizeCN     = 11
	ringSizeCarrot = 16
)

// Builder assembles signed, ready-to-broadcast transactions from the
// wallet's spendable outputs.
type Builder struct {
	Keys  *keychain.Manager
	Rings RingProvider
}

// New returns a Builder over keys, fetching decoy rings through rings.
func New(keys *keychain.Manager, rings RingProvider) *Builder {
	return &Builder{Keys: keys, Rings: rings}
}

func ringSizeFor(isCarrot bool) int {
	if isCarrot {
		return ringSizeCarrot
	}
	return ringSizeCN
}

func validate(req BuildRequest) error {
	if len(req.Destinations) == 0 {
		return ErrNoDestinations
	}
	asset := req.Destinations[0].AssetType
	for _, d := range req.Destinations[1:] {
		if d.AssetType != asset {
			return ErrMixedAssetDestinations
		}
	}
	if req.PreviousTxType != walletdb.TxTypeUnknown && !req.PreviousTxType.ValidTransition(req.TxType) {
		return ErrInvalidTxTypeTransition
	}
	return nil
}

// Build selects inputs, derives outputs, signs every ring, and serializes
// the resulting transaction. The returned BuiltTransaction.SpentOutputs must
// be marked spent by the caller once broadcast succeeds.
func (b *Builder) Build(req BuildRequest) (*BuiltTransaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	isCarrot := len(req.Candidates) > 0 && req.Candidates[0].IsCarrot
	ringSize := ringSizeFor(isCarrot)

	estimator := func(inputCount, outputCount int) uint64 {
		return EstimateFee(req.Priority, inputCount, outputCount, isCarrot, req.MedianBlockWeight)
	}

	selection, err := coinselect.Select(coinselect.Request{
		Strategy:        coinselect.LargestFirst,
		Candidates:      req.Candidates,
		Target:          totalOut(req.Destinations),
		OutputCount:     len(req.Destinations) + 1, // +1 for the change output; collapsed later if change is 0
		CurrentHeight:   req.CurrentHeight,
		UnlockWindow:    req.UnlockWindow,
		AssetType:       req.SourceAssetType,
		FrozenKeyImages: req.FrozenKeyImages,
		EstimateFee:     estimator,
	})
	if err != nil {
		return nil, err
	}

	destinations := append([]Destination(nil), req.Destinations...)
	if selection.Change > 0 {
		changeDest, err := b.selfDestination(isCarrot, selection.Change, req.SourceAssetType)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, *changeDest)
	}
	if req.SubtractFeeFromFirst {
		if err := subtractFeeFromAmount(destinations, selection.Fee); err != nil {
			return nil, err
		}
	}
	changeIndex := -1
	if selection.Change > 0 {
		changeIndex = len(destinations) - 1
	}

	outs, sharedR, additionalPubkeys, err := deriveDestinations(destinations, func(i int) byte {
		if i == changeIndex {
			return byte(EnoteTypeChange)
		}
		return byte(EnoteTypePayment)
	})
	if err != nil {
		return nil, err
	}

	signedInputs, err := b.signInputs(selection.Selected, outs, req.CurrentHeight, ringSize, req.SourceAssetType)
	if err != nil {
		return nil, err
	}

	proof, outputCommitments, err := buildRangeProof(outs)
	if err != nil {
		return nil, err
	}

	mainPubkey := sharedR
	if isCarrot {
		mainPubkey = nil // CARROT outputs each carry their own ephemeral key; no shared tx-level R
	}

	raw, err := serializeTransaction(serializedTxInput{
		TxType:               req.TxType,
		AmountBurnt:          req.AmountBurnt,
		SourceAssetType:      req.SourceAssetType,
		DestinationAssetType: req.DestinationAssetType,
		SlippageLimit:        req.SlippageLimit,
		Fee:                  selection.Fee,
		IsCarrot:             isCarrot,
		MainPubkey:           mainPubkey,
		AdditionalPubkeys:    additionalPubkeys,
		Outputs:              outs,
		Inputs:               signedInputs,
		Proof:                proof,
		OutputCommitments:    outputCommitments,
		ReturnAddress:        req.ReturnAddress,
	})
	if err != nil {
		return nil, err
	}

	txHash := kernel.Keccak256(raw)

	wLog.Infof("built transaction %x: %d inputs, %d outputs, fee=%d", txHash, len(signedInputs), len(outs), selection.Fee)

	return &BuiltTransaction{
		Raw:          raw,
		TxHash:       txHash,
		Fee:          selection.Fee,
		Change:       selection.Change,
		SpentOutputs: selection.Selected,
		TxType:       req.TxType,
	}, nil
}

func totalOut(dests []Destination) uint64 {
	var sum uint64
	for _, d := range dests {
		sum += d.Amount
	}
	return sum
}

// selfDestination builds a change Destination paying the wallet's own
// primary address in the given protocol.
func (b *Builder) selfDestination(isCarrot bool, amount uint64, assetType string) (*Destination, error) {
	if isCarrot {
		return &Destination{
			SpendPub:  b.Keys.Carrot.KSpend,
			ViewPub:   b.Keys.Carrot.AccountViewPub,
			IsCarrot:  true,
			Amount:    amount,
			AssetType: assetType,
		}, nil
	}
	return &Destination{
		SpendPub:  b.Keys.Legacy.SpendPub,
		ViewPub:   b.Keys.Legacy.ViewPub,
		Amount:    amount,
		AssetType: assetType,
	}, nil
}

// signedInput pairs a CLSAG or TCLSAG signature with the wire fields the
// serializer needs to emit the input.
type signedInput struct {
	KeyImage   [32]byte
	KeyOffsets []uint64
	AssetType  string
	CLSAG      *kernel.CLSAGSignature
	TCLSAG     *kernel.TCLSAGSignature
	PseudoOut  *kernel.Point
}

// signInputs builds and signs one ring per selected output, sorting the
// members (real output included) by ascending global index and balancing
// pseudo-out masks so their sum matches the sum of the output masks. The
// real output's ring position is whatever that order gives it; it is not
// drawn at random.
func (b *Builder) signInputs(selected []*walletdb.OwnedOutput, outs []*builtOutput, currentHeight uint64, ringSize int, assetType string) ([]signedInput, error) {
	pseudoMasks, err := balancedPseudoMasks(len(selected), outs)
	if err != nil {
		return nil, err
	}

	var message [32]byte
	copy(message[:], kernel.Keccak256([]byte("ring message"), outs[0].OutputKey[:])[:])

	result := make([]signedInput, len(selected))
	for i, o := range selected {
		var globalIndex uint64
		if o.GlobalIndex != nil {
			globalIndex = *o.GlobalIndex
		}
		members, err := b.Rings.FetchRing(assetType, globalIndex, ringSize-1)
		if err != nil {
			return nil, err
		}

		realOutputPoint, err := kernel.PointFromBytes(o.PublicKey[:])
		if err != nil {
			return nil, err
		}
		var realCommitPoint *kernel.Point
		if o.Commitment != nil {
			realCommitPoint, err = kernel.PointFromBytes(o.Commitment[:])
			if err != nil {
				return nil, err
			}
		} else {
			realCommitPoint = kernel.ZeroCommit(o.Amount)
		}

		entries := append([]RingMember{{GlobalIndex: globalIndex, OutputKey: realOutputPoint, Commitment: realCommitPoint}}, members...)
		sort.Slice(entries, func(a, c int) bool { return entries[a].GlobalIndex < entries[c].GlobalIndex })

		ring := kernel.CLSAGRing{
			OutputKeys:     make([]*kernel.Point, len(entries)),
			CommitmentKeys: make([]*kernel.Point, len(entries)),
		}
		keyOffsets := make([]uint64, len(entries))
		realIndex := 0
		for ri, e := range entries {
			ring.OutputKeys[ri] = e.OutputKey
			ring.CommitmentKeys[ri] = e.Commitment
			keyOffsets[ri] = e.GlobalIndex
			if e.GlobalIndex == globalIndex {
				realIndex = ri
			}
		}

		pseudoMask := pseudoMasks[i]
		pseudoOut := kernel.PedersenCommit(o.Amount, pseudoMask)

		decoyCount := ringSize - 1
		var ki [32]byte

		if o.IsCarrot {
			sig, err := b.signCarrotInput(o, ring, realIndex, pseudoMask, pseudoOut, message, decoyCount)
			if err != nil {
				return nil, err
			}
			result[i] = signedInput{
				KeyImage:   carrotKeyImageBytes(sig),
				KeyOffsets: keyOffsets,
				AssetType:  o.AssetType,
				TCLSAG:     sig,
				PseudoOut:  pseudoOut,
			}
			continue
		}

		sig, err := b.signCNInput(o, ring, realIndex, pseudoMask, pseudoOut, message, decoyCount)
		if err != nil {
			return nil, err
		}
		copy(ki[:], sig.I.Bytes())
		result[i] = signedInput{
			KeyImage:   ki,
			KeyOffsets: keyOffsets,
			AssetType:  o.AssetType,
			CLSAG:      sig,
			PseudoOut:  pseudoOut,
		}
	}
	return result, nil
}

func carrotKeyImageBytes(sig *kernel.TCLSAGSignature) [32]byte {
	var ki [32]byte
	copy(ki[:], sig.I.Bytes())
	return ki
}

func (b *Builder) signCNInput(o *walletdb.OwnedOutput, ring kernel.CLSAGRing, realIndex int, pseudoMask *kernel.Scalar, pseudoOut *kernel.Point, message [32]byte, decoyCount int) (*kernel.CLSAGSignature, error) {
	if b.Keys.Legacy.SpendSecret == nil {
		return nil, goerrors.Errorf("wallet: view-only wallet cannot sign CN input")
	}
	d, err := cnSharedSecretD(b.Keys.Legacy.ViewSecret, o.TxPubKey)
	if err != nil {
		return nil, err
	}
	var subScalar *kernel.Scalar
	if o.SubaddressIndex.Major != 0 || o.SubaddressIndex.Minor != 0 {
		subScalar = keychain.SubaddressSecretCN(b.Keys.Legacy.ViewSecret, o.SubaddressIndex.Major, o.SubaddressIndex.Minor)
	}
	mask, err := outputMaskScalar(o)
	if err != nil {
		return nil, err
	}

	nonce, err := randomScalar()
	if err != nil {
		return nil, err
	}
	decoys, err := randomScalars(decoyCount)
	if err != nil {
		return nil, err
	}

	desc := &txsign.CNInputDescriptor{
		Ring:             ring,
		RealIndex:        realIndex,
		SpendSecret:      b.Keys.Legacy.SpendSecret,
		SubaddressScalar: subScalar,
		SharedSecretD:    d,
		OutputIndex:      int(o.OutputIndex),
		MaskReal:         mask,
		MaskPseudo:       pseudoMask,
		PseudoOut:        pseudoOut,
		Message:          message,
		Nonce:            nonce,
		DecoyResponses:   decoys,
	}
	return txsign.SignCLSAG(desc)
}

func (b *Builder) signCarrotInput(o *walletdb.OwnedOutput, ring kernel.CLSAGRing, realIndex int, pseudoMask *kernel.Scalar, pseudoOut *kernel.Point, message [32]byte, decoyCount int) (*kernel.TCLSAGSignature, error) {
	if b.Keys.Carrot.IsViewOnly() {
		return nil, goerrors.Errorf("wallet: view-only wallet cannot sign CARROT input")
	}
	if o.CarrotSharedSecret == nil || o.CarrotEphemeralPubkey == nil {
		return nil, goerrors.Errorf("wallet: owned CARROT output missing shared secret")
	}
	var subScalar *kernel.Scalar
	if o.SubaddressIndex.Major != 0 || o.SubaddressIndex.Minor != 0 {
		s, err := keychain.CarrotSubaddressScalar(*b.Keys.Carrot.SGenerateAddress, b.Keys.Carrot.KSpend, o.SubaddressIndex.Major, o.SubaddressIndex.Minor)
		if err != nil {
			return nil, err
		}
		subScalar = s
	}
	mask, err := outputMaskScalar(o)
	if err != nil {
		return nil, err
	}

	nonceX, err := randomScalar()
	if err != nil {
		return nil, err
	}
	nonceY, err := randomScalar()
	if err != nil {
		return nil, err
	}
	decoyX, err := randomScalars(decoyCount)
	if err != nil {
		return nil, err
	}
	decoyY, err := randomScalars(decoyCount)
	if err != nil {
		return nil, err
	}

	desc := &txsign.CarrotInputDescriptor{
		Ring:             ring,
		RealIndex:        realIndex,
		KGenerateImage:   b.Keys.Carrot.KGenerateImage,
		KProveSpend:      b.Keys.Carrot.KProveSpend,
		SubaddressScalar: subScalar,
		SharedSecret:     *o.CarrotSharedSecret,
		EphemeralPubkey:  *o.CarrotEphemeralPubkey,
		OutputIndex:      int(o.OutputIndex),
		MaskReal:         mask,
		MaskPseudo:       pseudoMask,
		PseudoOut:        pseudoOut,
		Message:          message,
		NonceX:           nonceX,
		NonceY:           nonceY,
		DecoyX:           decoyX,
		DecoyY:           decoyY,
	}
	return txsign.SignTCLSAG(desc)
}

func outputMaskScalar(o *walletdb.OwnedOutput) (*kernel.Scalar, error) {
	if o.Mask == nil {
		return nil, goerrors.Errorf("wallet: owned output missing decrypted mask")
	}
	return kernel.ScalarFromCanonicalBytes(o.Mask[:])
}

// balancedPseudoMasks draws a random pseudo-out mask for every input except
// the last, whose mask is solved for so that sum(pseudoMasks) equals
// sum(outputMasks); this is what makes the RingCT balance equation close
// without revealing real input amounts.
func balancedPseudoMasks(inputCount int, outs []*builtOutput) ([]*kernel.Scalar, error) {
	if inputCount == 0 {
		return nil, goerrors.Errorf("wallet: no inputs selected")
	}
	masks := make([]*kernel.Scalar, inputCount)
	sumOut := outs[0].Mask
	for _, o := range outs[1:] {
		sumOut = kernel.ScAdd(sumOut, o.Mask)
	}

	sumPseudo := kernel.ScalarFromUint64(0)
	for i := 0; i < inputCount-1; i++ {
		m, err := randomScalar()
		if err != nil {
			return nil, err
		}
		masks[i] = m
		sumPseudo = kernel.ScAdd(sumPseudo, m)
	}
	masks[inputCount-1] = kernel.ScSub(sumOut, sumPseudo)
	return masks, nil
}

func randomScalars(n int) ([]*kernel.Scalar, error) {
	out := make([]*kernel.Scalar, n)
	for i := range out {
		s, err := randomScalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// cnSharedSecretD recomputes D = 8*(viewSecret*R) for an owned output's
// origin transaction, mirroring the scanner's detection-time derivation.
func cnSharedSecretD(viewSecret *kernel.Scalar, txPubKey *[32]byte) (*kernel.Point, error) {
	if txPubKey == nil {
		return nil, goerrors.Errorf("wallet: owned CN output missing tx pubkey")
	}
	r, err := kernel.PointFromBytes(txPubKey[:])
	if err != nil {
		return nil, err
	}
	rv := kernel.ScalarMultPoint(viewSecret, r)
	eight := kernel.ScalarFromUint64(8)
	return kernel.ScalarMultPoint(eight, rv), nil
}

func buildRangeProof(outs []*builtOutput) (*kernel.RangeProof, []*kernel.Point, error) {
	amounts := make([]uint64, len(outs))
	masks := make([]*kernel.Scalar, len(outs))
	commitments := make([]*kernel.Point, len(outs))
	for i, o := range outs {
		amounts[i] = o.Dest.Amount
		masks[i] = o.Mask
		commitments[i] = o.Commitment
	}
	proof, err := kernel.BulletproofPlusProve(amounts, masks, randomScalarUnchecked)
	if err != nil {
		return nil, nil, err
	}
	return proof, commitments, nil
}

func randomScalarUnchecked() *kernel.Scalar {
	s, err := randomScalar()
	if err != nil {
		panic(err)
	}
	return s
}
