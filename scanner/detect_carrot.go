package scanner

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/wire"
)

const (
	carrotLabelSharedSecret = "Carrot sender-receiver secret"
	carrotLabelOnetimeExt = "Carrot onetime extension"
	carrotLabelViewTag = "Carrot view tag"
	carrotLabelAmount = "Carrot amount"
	carrotLabelAmountBlinding = "Carrot amount blinding factor"
)

// carrotSharedSecret computes s_sr = X25519(k_view_incoming, D_e), the
// per-transaction ECDH shared secret for the CARROT path, using CARROT's
// non-standard clamping already baked into kernel.X25519.
func carrotSharedSecret(kViewIncoming *kernel.Scalar, dE [32]byte) [32]byte {
	var scalarBytes [32]byte
	copy(scalarBytes[:], kViewIncoming.Bytes())
	return kernel.X25519(scalarBytes, dE)
}

// carrotTranscriptSecret folds the shared secret, the per-output index and
// the sender's ephemeral pubkey into a single domain-separated scalar seed.
func carrotTranscriptSecret(label string, sharedSecret [32]byte, index int, dE [32]byte) ([]byte, error) {
	return kernel.Blake2b(32, sharedSecret[:], []byte(label), wire.Varint(uint64(index)), dE[:])
}

// carrotViewTag computes the 3-byte CARROT view tag, a cheap fast-reject
// check performed before the more expensive stealth recovery.
func carrotViewTag(sharedSecret [32]byte, index int, dE [32]byte) ([3]byte, error) {
	out, err := carrotTranscriptSecret(carrotLabelViewTag, sharedSecret, index, dE)
	var tag [3]byte
	if err != nil {
		return tag, err
	}
	copy(tag[:], out[:3])
	return tag, nil
}

// carrotOnetimeExtension derives the per-output scalar k_extG added to the
// subaddress spend scalar to form the onetime address.
func carrotOnetimeExtension(sharedSecret [32]byte, index int, dE [32]byte) (*kernel.Scalar, error) {
	out, err := carrotTranscriptSecret(carrotLabelOnetimeExt, sharedSecret, index, dE)
	if err != nil {
		return nil, err
	}
	return kernel.ScReduce32(out)
}

// carrotStealthCheck recovers the candidate subaddress spend key
// B' = outputKey - extG·G and looks it up in subs.
func carrotStealthCheck(outputKey [32]byte, extG *kernel.Scalar, subs *keychain.SubaddressMap) (keychain.SubaddressIndex, bool, error) {
	outPoint, err := kernel.PointFromBytes(outputKey[:])
	if err != nil {
		return keychain.SubaddressIndex{}, false, ErrMalformedOutput
	}
	bPrime := kernel.PointSub(outPoint, kernel.ScalarMultBase(extG))
	idx, ok := subs.Lookup(bPrime.Bytes())
	return idx, ok, nil
}

// carrotAmount derives the clear amount and blinding factor by trying both
// enote types (PAYMENT then CHANGE), matching the recovered mask against the
// output's public Pedersen commitment. Returns the winning enote type.
func carrotAmount(sharedSecret [32]byte, index int, dE [32]byte, enc [8]byte, commitment *kernel.Point) (uint64, *kernel.Scalar, EnoteType, error) {
	for _, enoteType := range []EnoteType{EnoteTypePayment, EnoteTypeChange} {
		amount, mask, err := carrotAmountForType(sharedSecret, index, dE, enc, enoteType)
		if err != nil {
			return 0, nil, 0, err
		}
		candidate := kernel.PedersenCommit(amount, mask)
		if candidate.Equal(commitment) {
			return amount, mask, enoteType, nil
		}
	}
	return 0, nil, 0, ErrNotOurs
}

func carrotAmountForType(sharedSecret [32]byte, index int, dE [32]byte, enc [8]byte, enoteType EnoteType) (uint64, *kernel.Scalar, error) {
	maskOut, err := kernel.Blake2b(32, sharedSecret[:], []byte(carrotLabelAmountBlinding),
		wire.Varint(uint64(index)), dE[:], []byte{byte(enoteType)})
	if err != nil {
		return 0, nil, err
	}
	mask, err := kernel.ScReduce32(maskOut)
	if err != nil {
		return 0, nil, err
	}

	xorPad, err := kernel.Blake2b(8, sharedSecret[:], []byte(carrotLabelAmount),
		wire.Varint(uint64(index)), dE[:], []byte{byte(enoteType)})
	if err != nil {
		return 0, nil, err
	}
	var xored [8]byte
	for i := range xored {
		xored[i] = enc[i] ^ xorPad[i]
	}
	return leUint64Decode(xored), mask, nil
}

// carrotKeyImage constructs KI = (k_gi·subScalar + extG)·H_p(outputKey),
// CARROT's key-image formula.
func carrotKeyImage(kGenerateImage *kernel.Scalar, subScalar *kernel.Scalar, extG *kernel.Scalar, outputKey [32]byte) *kernel.Point {
	base := kGenerateImage
	if subScalar != nil {
		base = kernel.ScMul(kGenerateImage, subScalar)
	}
	xPrime := kernel.ScAdd(base, extG)
	hp := kernel.HashToPoint(outputKey[:])
	return kernel.ScalarMultPoint(xPrime, hp)
}
