package kernel

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ErrMalformedInput is returned when input bytes violate a documented length
// or canonicality constraint (wrong size, non-canonical scalar, point not on
// the curve). It is the only error kind the kernel raises; every other
// "not valid" condition is reported through a bool or ok-style return, never
// an error, per the propagation policy in the spec's error taxonomy.
var ErrMalformedInput = goerrors.Errorf("kernel: malformed input")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformedInput}, args...)...)
}
