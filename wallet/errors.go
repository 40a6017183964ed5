package wallet

import goerrors "github.com/go-errors/errors"

var (
	// ErrNoDestinations is returned when a build request names no outputs.
	ErrNoDestinations = goerrors.Errorf("wallet: build request has no destinations")

	// ErrInvalidTxTypeTransition is returned when a caller asks the builder
	// to move a transaction to a TxType its current type cannot reach.
	ErrInvalidTxTypeTransition = goerrors.Errorf("wallet: invalid tx type transition")

	// ErrMixedAssetDestinations is returned when a single build request
	// names destinations across more than one asset type; conversions are
	// expressed through the dedicated source/destination asset fields, not
	// by mixing destination asset types within one transfer.
	ErrMixedAssetDestinations = goerrors.Errorf("wallet: destinations must share one asset type")

	// ErrAmountUnderflow is returned when subtracting the fee from the
	// first destination would leave it at or below zero.
	ErrAmountUnderflow = goerrors.Errorf("wallet: fee exceeds subtract-fee destination amount")
)
