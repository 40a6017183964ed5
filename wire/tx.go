package wire

// Tag bytes for the tagged-variant input/output types and tx_extra fields,
// following CryptoNote's on-chain numbering so historical data parses the
// same way regardless of which era produced it.
const (
	TxInGen   = 0xff
	TxInToKey = 0x02

	TxOutToScript     = 0x00
	TxOutToScriptHash = 0x01
	TxOutToKey        = 0x02
	TxOutToTaggedKey  = 0x03
	TxOutToCarrotV1   = 0x04

	TxExtraTagPubkey            = 0x01
	TxExtraTagNonce             = 0x02
	TxExtraTagAdditionalPubkeys = 0x04

	NonceTagPaymentID32 = 0x00
	NonceTagPaymentID8  = 0x01
)

// RCTType identifies the RingCT proof scheme carried by a transaction's RCT
// base. The builder uses SalviumZero for legacy-protocol transactions and
// SalviumOne for CARROT ones; Null
// marks coinbase/protocol transactions that carry no RCT data at all.
type RCTType byte

const (
	RCTTypeNull        RCTType = 0
	RCTTypeSalviumZero RCTType = 8
	RCTTypeSalviumOne  RCTType = 9
)

// PutTxExtraPubkey appends a tag-0x01 tx_extra field.
func PutTxExtraPubkey(dst []byte, pubkey [32]byte) []byte {
	dst = append(dst, TxExtraTagPubkey)
	return append(dst, pubkey[:]...)
}

// PutTxExtraAdditionalPubkeys appends a tag-0x04 tx_extra field.
func PutTxExtraAdditionalPubkeys(dst []byte, keys [][32]byte) []byte {
	dst = append(dst, TxExtraTagAdditionalPubkeys)
	dst = PutVarint(dst, uint64(len(keys)))
	for _, k := range keys {
		dst = append(dst, k[:]...)
	}
	return dst
}

// PutTxInToKey appends a txin_to_key input: amount varint (0 for RingCT,
// where amounts are hidden in commitments), asset-type string, key-offset
// varints (the decoy ring's global indices, delta-encoded ascending), and
// the 32-byte key image.
func PutTxInToKey(dst []byte, amount uint64, assetType string, keyOffsets []uint64, keyImage [32]byte) []byte {
	dst = append(dst, TxInToKey)
	dst = PutVarint(dst, amount)
	dst = PutString(dst, assetType)
	dst = PutVarint(dst, uint64(len(keyOffsets)))
	for _, off := range keyOffsets {
		dst = PutVarint(dst, off)
	}
	return append(dst, keyImage[:]...)
}

// DeltaEncodeOffsets converts ascending absolute global indices into the
// delta-encoded form txin_to_key stores on the wire (each entry is the gap
// from the previous one, first entry absolute).
func DeltaEncodeOffsets(absolute []uint64) []uint64 {
	out := make([]uint64, len(absolute))
	var prev uint64
	for i, v := range absolute {
		out[i] = v - prev
		prev = v
	}
	return out
}

// PutTxOutToKey appends a legacy txout_to_key output: one-time key only, no
// view tag.
func PutTxOutToKey(dst []byte, assetType string, outputKey [32]byte) []byte {
	dst = append(dst, TxOutToKey)
	dst = PutString(dst, assetType)
	return append(dst, outputKey[:]...)
}

// PutTxOutToTaggedKey appends a txout_to_tagged_key output: one-time key
// plus a 1-byte CN view tag.
func PutTxOutToTaggedKey(dst []byte, assetType string, outputKey [32]byte, viewTag byte) []byte {
	dst = append(dst, TxOutToTaggedKey)
	dst = PutString(dst, assetType)
	dst = append(dst, outputKey[:]...)
	return append(dst, viewTag)
}

// PutTxOutToCarrotV1 appends a txout_to_carrot_v1 output: one-time key,
// 3-byte CARROT view tag, and (for non-coinbase) the encrypted janus anchor.
func PutTxOutToCarrotV1(dst []byte, assetType string, outputKey [32]byte, viewTag [3]byte, encryptedJanusAnchor *[16]byte) []byte {
	dst = append(dst, TxOutToCarrotV1)
	dst = PutString(dst, assetType)
	dst = append(dst, outputKey[:]...)
	dst = append(dst, viewTag[:]...)
	if encryptedJanusAnchor != nil {
		dst = append(dst, 1)
		dst = append(dst, encryptedJanusAnchor[:]...)
	} else {
		dst = append(dst, 0)
	}
	return dst
}
