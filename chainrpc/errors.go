package chainrpc

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

var (
	// ErrTimeout is not returned by any function in this package: a request
	// that exhausts its retry budget returns the last attempt's error, or
	// the context's error once the per-call timeout has expired.
	ErrTimeout = goerrors.Errorf("chainrpc: request timed out after retry budget")

	// ErrBulkEndpointUnsupported names a daemon without the bulk
	// getblocks_by_height call. GetBlocksByHeight does not return it; it
	// reports that case as ok=false with a nil error, and the caller then
	// fetches headers/blocks one height at a time.
	ErrBulkEndpointUnsupported = goerrors.Errorf("chainrpc: bulk-by-height endpoint not supported")

	errShortHex = goerrors.Errorf("chainrpc: hex field has the wrong length")
)

// RejectFlag names one reason a daemon gave for refusing a submitted
// transaction.
type RejectFlag string

const (
	RejectDoubleSpend  RejectFlag = "double_spend"
	RejectFeeTooLow    RejectFlag = "fee_too_low"
	RejectInvalidInput RejectFlag = "invalid_input"
	RejectTooBig       RejectFlag = "too_big"
	RejectNotRct       RejectFlag = "not_rct"
	RejectInvalid      RejectFlag = "invalid"
)

// DaemonReject is the typed decode of a sendRawTransaction failure: the
// daemon's free-text reason plus whichever of the known boolean reject
// flags it set.
type DaemonReject struct {
	Reason      string
	DoubleSpend bool
	FeeTooLow   bool
	InvalidInput bool
	TooBig      bool
	NotRct      bool
	Invalid     bool
}

func (e *DaemonReject) Error() string {
	return fmt.Sprintf("chainrpc: daemon rejected transaction: %s (%s)", e.Reason, e.flagString())
}

func (e *DaemonReject) flagString() string {
	flags := e.Flags()
	if len(flags) == 0 {
		return "no flags set"
	}
	s := ""
	for i, f := range flags {
		if i > 0 {
			s += ","
		}
		s += string(f)
	}
	return s
}

// Flags lists every reject flag the daemon set, in the taxonomy's fixed
// order.
func (e *DaemonReject) Flags() []RejectFlag {
	var out []RejectFlag
	if e.DoubleSpend {
		out = append(out, RejectDoubleSpend)
	}
	if e.FeeTooLow {
		out = append(out, RejectFeeTooLow)
	}
	if e.InvalidInput {
		out = append(out, RejectInvalidInput)
	}
	if e.TooBig {
		out = append(out, RejectTooBig)
	}
	if e.NotRct {
		out = append(out, RejectNotRct)
	}
	if e.Invalid {
		out = append(out, RejectInvalid)
	}
	return out
}

// rpcError is the JSON-RPC 2.0 error object shape the daemon returns for
// malformed or rejected requests not specific to sendRawTransaction.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("chainrpc: daemon error %d: %s", e.Code, e.Message)
}
