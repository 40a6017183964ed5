package keychain

import goerrors "github.com/go-errors/errors"

// ErrViewOnly is returned when an operation needs a spend-capable secret
// (k_prove_spend, s_master) but the Manager was built from a view-only key
// bundle.
var ErrViewOnly = goerrors.Errorf("keychain: spend secret unavailable on a view-only bundle")
