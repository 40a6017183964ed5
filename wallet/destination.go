package wallet

import (
	"crypto/rand"

	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/wire"
)

// builtOutput is one fully-derived transaction output: the stealth pubkey
// written on-chain plus everything the signer and serializer need to finish
// the RCT side (mask, encrypted amount, view tag).
type builtOutput struct {
	Dest            Destination
	OutputKey       [32]byte
	Mask            *kernel.Scalar
	Commitment      *kernel.Point
	EncryptedAmount [8]byte
	ViewTagCN       byte
	ViewTagCarrot   [3]byte
	TxPubKey        *kernel.Point // per-destination R for CN; nil for CARROT (ephemeral carried per-output)
	CarrotEphemeral *[32]byte
	NeedsAdditional bool
}

func randomScalar() (*kernel.Scalar, error) {
	var entropy [64]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		return nil, err
	}
	return kernel.RandomScalar(entropy[:])
}

func randomX25519Scalar() ([32]byte, error) {
	var s [32]byte
	if _, err := rand.Read(s[:]); err != nil {
		return s, err
	}
	return s, nil
}

// deriveDestinationCN derives a legacy CN output: D = 8*(r*viewPub), scalar_i
// from D and the output index, stealth key B' = spendPub + scalar_i*G,
// ECDH-masked amount and commitment mask.
func deriveDestinationCN(dest Destination, r *kernel.Scalar, index int) (*builtOutput, error) {
	rV := kernel.ScalarMultPoint(r, dest.ViewPub)
	eight := kernel.ScalarFromUint64(8)
	d := kernel.ScalarMultPoint(eight, rV)

	scalarI := kernel.HashToScalar(d.Bytes(), wire.Varint(uint64(index)))
	stealth := kernel.PointAdd(dest.SpendPub, kernel.ScalarMultBase(scalarI))

	mask := kernel.HashToScalar([]byte("commitment_mask"), d.Bytes())
	amountKeyBytes := kernel.Keccak256([]byte("amount"), d.Bytes())
	commitment := kernel.PedersenCommit(dest.Amount, mask)

	var encAmount [8]byte
	var amountLE [8]byte
	putUint64LE(amountLE[:], dest.Amount)
	for i := range encAmount {
		encAmount[i] = amountLE[i] ^ amountKeyBytes[i]
	}

	viewTagDigest := kernel.Keccak256([]byte("view_tag"), d.Bytes(), wire.Varint(uint64(index)))
	viewTag := viewTagDigest[0]

	var ok [32]byte
	copy(ok[:], stealth.Bytes())

	return &builtOutput{
		Dest:            dest,
		OutputKey:       ok,
		Mask:            mask,
		Commitment:      commitment,
		EncryptedAmount: encAmount,
		ViewTagCN:       viewTag,
		TxPubKey:        kernel.ScalarMultBase(r),
	}, nil
}

// deriveDestinationCarrot derives a CARROT output: s_sr = X25519(d_e,
// viewPub), then a Blake2b-keyed transcript per onetime-extension/view-tag/
// amount/mask, matching the scanner's detection-time recomputation exactly.
func deriveDestinationCarrot(dest Destination, dE [32]byte, index int, enoteType byte) (*builtOutput, error) {
	var viewPubBytes [32]byte
	copy(viewPubBytes[:], dest.ViewPub.Bytes())
	sharedSecretBytes := kernel.X25519(dE, viewPubBytes)

	label := []byte("Carrot onetime extension")
	extBytes, err := kernel.Blake2b(32, sharedSecretBytes[:], label, wire.Varint(uint64(index)), dE[:])
	if err != nil {
		return nil, err
	}
	extG, err := kernel.ScReduce32(extBytes)
	if err != nil {
		return nil, err
	}
	stealth := kernel.PointAdd(dest.SpendPub, kernel.ScalarMultBase(extG))

	tagBytes, err := kernel.Blake2b(3, sharedSecretBytes[:], []byte("Carrot view tag"), wire.Varint(uint64(index)), dE[:])
	if err != nil {
		return nil, err
	}
	var viewTag [3]byte
	copy(viewTag[:], tagBytes)

	maskBytes, err := kernel.Blake2b(32, sharedSecretBytes[:], []byte("Carrot amount blinding"), wire.Varint(uint64(index)), dE[:], []byte{enoteType})
	if err != nil {
		return nil, err
	}
	mask, err := kernel.ScReduce32(maskBytes)
	if err != nil {
		return nil, err
	}
	commitment := kernel.PedersenCommit(dest.Amount, mask)

	amountKeyBytes, err := kernel.Blake2b(8, sharedSecretBytes[:], []byte("Carrot amount"), wire.Varint(uint64(index)), dE[:], []byte{enoteType})
	if err != nil {
		return nil, err
	}
	var encAmount [8]byte
	var amountLE [8]byte
	putUint64LE(amountLE[:], dest.Amount)
	for i := range encAmount {
		encAmount[i] = amountLE[i] ^ amountKeyBytes[i]
	}

	var ok [32]byte
	copy(ok[:], stealth.Bytes())
	dECopy := dE

	return &builtOutput{
		Dest:            dest,
		OutputKey:       ok,
		Mask:            mask,
		Commitment:      commitment,
		EncryptedAmount: encAmount,
		ViewTagCarrot:   viewTag,
		CarrotEphemeral: &dECopy,
	}, nil
}

func putUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}

// deriveDestinations derives every output for a transaction, sharing one
// ephemeral scalar across all CN destinations (so a single tx_extra pubkey
// suffices) and emitting additional pubkeys when any CN destination is a
// subaddress. CARROT destinations each draw their own independent d_e.
// deriveDestinations returns the built outputs, the scalar behind the
// single tx_extra pubkey field (never nil, even when every destination is
// CARROT; with a CN subaddress destination it is the first CN output's
// own scalar), and
// any additional per-output pubkeys CN subaddress destinations require.
func deriveDestinations(dests []Destination, enoteTypeForIndex func(int) byte) ([]*builtOutput, *kernel.Scalar, [][32]byte, error) {
	anySubaddress := false
	for _, d := range dests {
		if !d.IsCarrot && d.IsSubaddress {
			anySubaddress = true
			break
		}
	}

	var sharedR *kernel.Scalar
	if !anySubaddress {
		r, err := randomScalar()
		if err != nil {
			return nil, nil, nil, err
		}
		sharedR = r
	}

	outs := make([]*builtOutput, 0, len(dests))
	var additional [][32]byte
	var mainR *kernel.Scalar

	for i, d := range dests {
		if d.IsCarrot {
			dE, err := randomX25519Scalar()
			if err != nil {
				return nil, nil, nil, err
			}
			out, err := deriveDestinationCarrot(d, dE, i, enoteTypeForIndex(i))
			if err != nil {
				return nil, nil, nil, err
			}
			outs = append(outs, out)
			continue
		}

		r := sharedR
		if anySubaddress {
			// Every CN destination gets its own ephemeral scalar when any
			// destination in this transaction is a subaddress; every CN
			// pubkey, the first included, goes into the additional-pubkeys
			// field, and the first one's scalar also backs the tx_extra
			// main pubkey.
			var err error
			r, err = randomScalar()
			if err != nil {
				return nil, nil, nil, err
			}
		}
		out, err := deriveDestinationCN(d, r, i)
		if err != nil {
			return nil, nil, nil, err
		}
		outs = append(outs, out)

		if anySubaddress {
			if mainR == nil {
				mainR = r
			}
			var pub [32]byte
			copy(pub[:], out.TxPubKey.Bytes())
			additional = append(additional, pub)
		}
	}

	if anySubaddress {
		sharedR = mainR
	}
	return outs, sharedR, additional, nil
}
