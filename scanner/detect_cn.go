package scanner

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/wire"
)

// cnDerivation is the per-transaction shared secret for the legacy CN path,
// D = 8·(viewSecret·R), computed once per transaction.
func cnDerivation(viewSecret *kernel.Scalar, txPubKey *kernel.Point) *kernel.Point {
	shared := kernel.ScalarMultPoint(viewSecret, txPubKey)
	return kernel.ScalarMultPoint(kernel.ScalarFromUint64(8), shared)
}

func cnViewTag(d *kernel.Point, index int) byte {
	digest := kernel.Keccak256([]byte("view_tag"), d.Bytes(), wire.Varint(uint64(index)))
	return digest[0]
}

func cnPerOutputScalar(d *kernel.Point, index int) *kernel.Scalar {
	return kernel.HashToScalar(d.Bytes(), wire.Varint(uint64(index)))
}

// cnStealthCheck recovers the candidate subaddress spend public key
// B' = outputKey - scalar_i·G and looks it up in subs.
func cnStealthCheck(outputKey [32]byte, scalarI *kernel.Scalar, subs *keychain.SubaddressMap) (keychain.SubaddressIndex, bool, error) {
	outPoint, err := kernel.PointFromBytes(outputKey[:])
	if err != nil {
		return keychain.SubaddressIndex{}, false, ErrMalformedOutput
	}
	bPrime := kernel.PointSub(outPoint, kernel.ScalarMultBase(scalarI))
	idx, ok := subs.Lookup(bPrime.Bytes())
	return idx, ok, nil
}

// ecdhDecodeAmount XORs the first 8 bytes of enc with the first 8 bytes of
// keccak256("amount"||sharedSecret).
func ecdhDecodeAmount(enc [8]byte, sharedSecret *kernel.Point) uint64 {
	mask := kernel.Keccak256([]byte("amount"), sharedSecret.Bytes())
	var xored [8]byte
	for i := range xored {
		xored[i] = enc[i] ^ mask[i]
	}
	return leUint64Decode(xored)
}

func cnCommitmentMask(sharedSecret *kernel.Point) *kernel.Scalar {
	return kernel.HashToScalar([]byte("commitment_mask"), sharedSecret.Bytes())
}

func leUint64Decode(b [8]byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// cnKeyImage constructs KI = x'·H_p(outputKey) where
// x' = spendSecret (+ subaddressScalar) + scalar_i.
func cnKeyImage(spendSecret *kernel.Scalar, subaddressScalar *kernel.Scalar, scalarI *kernel.Scalar, outputKey [32]byte) *kernel.Point {
	xPrime := kernel.ScAdd(spendSecret, scalarI)
	if subaddressScalar != nil {
		xPrime = kernel.ScAdd(xPrime, subaddressScalar)
	}
	hp := kernel.HashToPoint(outputKey[:])
	return kernel.ScalarMultPoint(xPrime, hp)
}
