package txsign

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/wire"
)

// cnPerOutputScalar re-derives the CN per-output scalar from the
// transaction's shared-secret derivation point D, mirroring the scanner's
// detection-time computation so the builder never has to persist it.
func cnPerOutputScalar(d *kernel.Point, index int) *kernel.Scalar {
	return kernel.HashToScalar(d.Bytes(), wire.Varint(uint64(index)))
}

// carrotOnetimeExtensionG and carrotOnetimeExtensionT re-derive the two
// CARROT onetime-extension scalars from the per-transaction shared secret,
// mirroring the scanner's ext_G derivation and extending it with a second,
// distinctly domain-separated label for the T-generator component that
// TCLSAG signing needs.
func carrotOnetimeExtensionG(sharedSecret [32]byte, index int, dE [32]byte) (*kernel.Scalar, error) {
	out, err := kernel.Blake2b(32, sharedSecret[:], []byte("Carrot onetime extension"), wire.Varint(uint64(index)), dE[:])
	if err != nil {
		return nil, err
	}
	return kernel.ScReduce32(out)
}

func carrotOnetimeExtensionT(sharedSecret [32]byte, index int, dE [32]byte) (*kernel.Scalar, error) {
	out, err := kernel.Blake2b(32, sharedSecret[:], []byte("Carrot onetime extension T"), wire.Varint(uint64(index)), dE[:])
	if err != nil {
		return nil, err
	}
	return kernel.ScReduce32(out)
}
