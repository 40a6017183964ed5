package scanner

import goerrors "github.com/go-errors/errors"

// ErrMalformedOutput is returned for an output whose key bytes do not decode
// to a valid curve point; the caller should skip this output and continue
// the batch, not abort scanning.
var ErrMalformedOutput = goerrors.Errorf("scanner: malformed output")

// ErrNotOurs is returned internally by CARROT amount recovery when neither
// enote type reproduces the output's commitment (a failed stealth check is
// reported as ok=false instead); callers treat it as "skip silently, not an error" and never
// surface it to the operator.
var ErrNotOurs = goerrors.Errorf("scanner: output not ours")
