package sync

import goerrors "github.com/go-errors/errors"

var (
	// ErrAlreadySyncing is returned by Start when a sync pass is already
	// running.
	ErrAlreadySyncing = goerrors.Errorf("sync: engine is already running")

	// ErrNetworkTimeout is surfaced when a batch's RPCs exceed their
	// retry budget.
	ErrNetworkTimeout = goerrors.Errorf("sync: network timeout exhausted retry budget")

	// ErrNoCommonAncestor is returned when a reorg walk-back exhausts the
	// locally stored block-hash window without finding agreement with the
	// daemon, meaning the local chain view cannot be reconciled
	// incrementally and needs a full rescan.
	ErrNoCommonAncestor = goerrors.Errorf("sync: no common ancestor found within stored history")
)
