// Package coinselect implements UTXO selection for the transaction builder:
// ordering strategies, spendability filtering, and the iterative
// fee-reestimation loop that converges on a final input set.
package coinselect

import (
	"math/rand"
	"sort"

	"github.com/salvium/walletcore/walletdb"
)

// Strategy picks the order in which eligible UTXOs are offered to the
// selector.
type Strategy string

const (
	LargestFirst  Strategy = "LARGEST_FIRST"
	SmallestFirst Strategy = "SMALLEST_FIRST"
	FIFO          Strategy = "FIFO"
	Random        Strategy = "RANDOM"
)

// FeeEstimator returns the fee, in atomic units, for a transaction with the
// given input and output counts. The caller supplies this so coin selection
// stays independent of the priority-tier fee table.
type FeeEstimator func(inputCount, outputCount int) uint64

// Request describes one coin-selection call.
type Request struct {
	Strategy        Strategy
	Candidates      []*walletdb.OwnedOutput
	Target          uint64
	OutputCount     int
	CurrentHeight   uint64
	UnlockWindow    uint64
	AssetType       string
	DustThreshold   uint64
	FrozenKeyImages map[[32]byte]bool
	EstimateFee     FeeEstimator
}

// Result is the outcome of a successful selection.
type Result struct {
	Selected []*walletdb.OwnedOutput
	Fee      uint64
	Change   uint64
}

// Select filters req.Candidates down to spendable, matching-asset outputs,
// orders them per req.Strategy, then adds outputs one at a time until their
// sum covers Target plus a fee that is recomputed after every addition
// (the number of inputs changes the fee, which can pull in one more UTXO).
func Select(req Request) (*Result, error) {
	eligible := filterEligible(req)
	ordered := order(req.Strategy, eligible)

	var selected []*walletdb.OwnedOutput
	var sum uint64

	for _, o := range ordered {
		selected = append(selected, o)
		sum += o.Amount

		fee := req.EstimateFee(len(selected), req.OutputCount)
		if sum >= req.Target+fee {
			return &Result{
				Selected: selected,
				Fee:      fee,
				Change:   sum - req.Target - fee,
			}, nil
		}
	}

	fee := req.EstimateFee(len(selected), req.OutputCount)
	return nil, &ErrInsufficientFunds{AmountAvailable: sum, AmountNeeded: req.Target + fee}
}

func filterEligible(req Request) []*walletdb.OwnedOutput {
	eligible := make([]*walletdb.OwnedOutput, 0, len(req.Candidates))
	for _, o := range req.Candidates {
		if o.IsSpent {
			continue
		}
		if req.FrozenKeyImages != nil && o.KeyImage != nil && req.FrozenKeyImages[*o.KeyImage] {
			continue
		}
		if !o.IsSpendable(req.CurrentHeight, req.UnlockWindow, false) {
			continue
		}
		if req.AssetType != "" && o.AssetType != req.AssetType {
			continue
		}
		if o.IsCarrot && (o.CarrotSharedSecret == nil || o.Commitment == nil) {
			continue
		}
		eligible = append(eligible, o)
	}
	return eligible
}

func order(strategy Strategy, outputs []*walletdb.OwnedOutput) []*walletdb.OwnedOutput {
	ordered := make([]*walletdb.OwnedOutput, len(outputs))
	copy(ordered, outputs)

	switch strategy {
	case LargestFirst:
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Amount > ordered[j].Amount })
	case SmallestFirst:
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Amount < ordered[j].Amount })
	case FIFO:
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].BlockHeight < ordered[j].BlockHeight })
	case Random:
		rand.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
	}
	return ordered
}
