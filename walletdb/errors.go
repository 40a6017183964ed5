package walletdb

import goerrors "github.com/go-errors/errors"

// ErrNotFound is returned by single-row getters when no row matches.
var ErrNotFound = goerrors.Errorf("walletdb: not found")

// ErrDuplicateKeyImage is returned by PutOutput when the output's key image
// collides with an already-stored output from a different (txHash,
// outputIndex), violating the wallet-wide key-image uniqueness invariant.
var ErrDuplicateKeyImage = goerrors.Errorf("walletdb: duplicate key image")
