package wallet

import (
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/wire"
	"github.com/salvium/walletcore/walletdb"
)

const txFormatVersion = 2

// serializedTxInput carries everything serializeTransaction needs after
// selection, derivation, and signing are complete.
type serializedTxInput struct {
	TxType               walletdb.TxType
	AmountBurnt          uint64
	SourceAssetType      string
	DestinationAssetType string
	SlippageLimit        uint64
	Fee                  uint64
	IsCarrot             bool
	MainPubkey           *kernel.Scalar // r for CN; nil for CARROT (each output carries its own ephemeral key)
	AdditionalPubkeys    [][32]byte
	Outputs              []*builtOutput
	Inputs               []signedInput
	Proof                *kernel.RangeProof
	OutputCommitments    []*kernel.Point
	ReturnAddress        *Destination
}

// serializeTransaction lays out the tagged varint-encoded transaction
// structure: version, unlock time, inputs, outputs, tx_extra, protocol
// fields, RCT base, and RCT prunable block. No parser for this layout exists
// in this module; it is not byte-exact with any specific on-chain release.
func serializeTransaction(in serializedTxInput) ([]byte, error) {
	var buf []byte
	buf = wire.PutVarint(buf, txFormatVersion)
	buf = wire.PutVarint(buf, 0) // unlock_time; callers set per-protocol rules via TxType, not a raw field here

	buf = wire.PutVarint(buf, uint64(len(in.Inputs)))
	for _, inp := range in.Inputs {
		offsets := wire.DeltaEncodeOffsets(inp.KeyOffsets)
		buf = wire.PutTxInToKey(buf, 0, inp.AssetType, offsets, inp.KeyImage)
	}

	buf = wire.PutVarint(buf, uint64(len(in.Outputs)))
	for _, o := range in.Outputs {
		if o.Dest.IsCarrot {
			buf = wire.PutTxOutToCarrotV1(buf, o.Dest.AssetType, o.OutputKey, o.ViewTagCarrot, nil)
			continue
		}
		buf = wire.PutTxOutToTaggedKey(buf, o.Dest.AssetType, o.OutputKey, o.ViewTagCN)
	}

	buf = serializeTxExtra(buf, in)

	buf = wire.PutVarint(buf, uint64(in.TxType))
	buf = wire.PutVarint(buf, in.AmountBurnt)
	buf = wire.PutString(buf, in.SourceAssetType)
	buf = wire.PutString(buf, in.DestinationAssetType)
	buf = wire.PutVarint(buf, in.SlippageLimit)
	buf = serializeReturnAddress(buf, in.ReturnAddress)

	rctType := wire.RCTTypeSalviumZero
	if in.IsCarrot {
		rctType = wire.RCTTypeSalviumOne
	}
	buf = append(buf, byte(rctType))
	buf = wire.PutVarint(buf, in.Fee)

	for _, o := range in.OutputCommitments {
		buf = append(buf, o.Bytes()...)
	}
	for _, inp := range in.Inputs {
		buf = append(buf, inp.PseudoOut.Bytes()...)
	}

	buf = serializeRings(buf, in)
	buf = serializeRangeProof(buf, in.Proof)

	return buf, nil
}

func serializeTxExtra(buf []byte, in serializedTxInput) []byte {
	var extra []byte
	if in.MainPubkey != nil {
		var pub [32]byte
		copy(pub[:], kernel.ScalarMultBase(in.MainPubkey).Bytes())
		extra = wire.PutTxExtraPubkey(extra, pub)
	} else if len(in.Outputs) > 0 && in.Outputs[0].CarrotEphemeral != nil {
		extra = wire.PutTxExtraPubkey(extra, *in.Outputs[0].CarrotEphemeral)
	}
	if len(in.AdditionalPubkeys) > 0 {
		extra = wire.PutTxExtraAdditionalPubkeys(extra, in.AdditionalPubkeys)
	}
	buf = wire.PutVarint(buf, uint64(len(extra)))
	return append(buf, extra...)
}

func serializeReturnAddress(buf []byte, ret *Destination) []byte {
	if ret == nil {
		buf = append(buf, 0)
		return buf
	}
	buf = append(buf, 1)
	var spend, view [32]byte
	copy(spend[:], ret.SpendPub.Bytes())
	copy(view[:], ret.ViewPub.Bytes())
	buf = append(buf, spend[:]...)
	buf = append(buf, view[:]...)
	return buf
}

func serializeRings(buf []byte, in serializedTxInput) []byte {
	for _, inp := range in.Inputs {
		if inp.TCLSAG != nil {
			buf = append(buf, inp.TCLSAG.C1.Bytes()...)
			for i := range inp.TCLSAG.SX {
				buf = append(buf, inp.TCLSAG.SX[i].Bytes()...)
				buf = append(buf, inp.TCLSAG.SY[i].Bytes()...)
			}
			buf = append(buf, inp.TCLSAG.I.Bytes()...)
			buf = append(buf, inp.TCLSAG.D.Bytes()...)
			continue
		}
		buf = append(buf, inp.CLSAG.C1.Bytes()...)
		for _, s := range inp.CLSAG.S {
			buf = append(buf, s.Bytes()...)
		}
		buf = append(buf, inp.CLSAG.I.Bytes()...)
		buf = append(buf, inp.CLSAG.D.Bytes()...)
	}
	return buf
}

func serializeRangeProof(buf []byte, proof *kernel.RangeProof) []byte {
	buf = wire.PutVarint(buf, uint64(proof.NumValues))
	buf = append(buf, proof.A.Bytes()...)
	buf = append(buf, proof.S.Bytes()...)
	buf = append(buf, proof.T1.Bytes()...)
	buf = append(buf, proof.T2.Bytes()...)
	buf = append(buf, proof.TauX.Bytes()...)
	buf = append(buf, proof.Mu.Bytes()...)
	buf = append(buf, proof.THat.Bytes()...)
	buf = wire.PutVarint(buf, uint64(len(proof.L)))
	for i := range proof.L {
		buf = append(buf, proof.L[i].Bytes()...)
		buf = append(buf, proof.R[i].Bytes()...)
	}
	buf = append(buf, proof.AFinal.Bytes()...)
	buf = append(buf, proof.BFinal.Bytes()...)
	return buf
}
