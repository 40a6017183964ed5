package wallet

// Per-byte base fee rates (atomic units) for each priority tier. Tiers scale
// the same piecewise curve rather than using independent formulas, so
// relative ordering between tiers always holds regardless of tx size.
var priorityFeePerByte = map[Priority]uint64{
	PrioritySlow:     1000,
	PriorityDefault:  2000,
	PriorityFast:     4000,
	PriorityPriority: 8000,
}

// baseTxOverheadBytes approximates the fixed-size portion of a serialized
// transaction (version, unlock time, tx_extra pubkey, protocol fields, RCT
// base) not attributable to any one input or output.
const baseTxOverheadBytes = 96

// perInputBytes and perOutputBytes approximate the marginal wire cost of one
// more input (txin_to_key + its CLSAG/TCLSAG ring contribution) or one more
// output (txout_to_*key plus its Bulletproof+ contribution), respectively.
const (
	perInputBytesCN     = 1060
	perInputBytesCarrot = 1450
	perOutputBytes      = 180
)

// EstimateFee computes the fee for a transaction with inputCount inputs and
// outputCount outputs at the given priority, scaled by how congested the
// chain is (medianBlockWeight relative to a reference weight). This is
// exposed standalone so callers can quote a fee before committing to a
// specific coin selection, in addition to the Builder's own internal
// iterative use of it once input count is fixed.
func EstimateFee(priority Priority, inputCount, outputCount int, isCarrot bool, medianBlockWeight uint64) uint64 {
	perInput := uint64(perInputBytesCN)
	if isCarrot {
		perInput = perInputBytesCarrot
	}
	size := uint64(baseTxOverheadBytes) + uint64(inputCount)*perInput + uint64(outputCount)*perOutputBytes

	rate, ok := priorityFeePerByte[priority]
	if !ok {
		rate = priorityFeePerByte[PriorityDefault]
	}

	fee := size * rate
	const referenceWeight = 300_000
	if medianBlockWeight > referenceWeight {
		congestion := medianBlockWeight * 100 / referenceWeight
		fee = fee * congestion / 100
	}
	return fee
}

// subtractFeeFromAmount reduces dests[0]'s amount by fee, failing if that
// would leave it at or below zero.
func subtractFeeFromAmount(dests []Destination, fee uint64) error {
	if len(dests) == 0 {
		return ErrNoDestinations
	}
	if dests[0].Amount <= fee {
		return ErrAmountUnderflow
	}
	dests[0].Amount -= fee
	return nil
}
