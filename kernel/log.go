package kernel

import "github.com/decred/slog"

// kernLog is the package-level logger. It defaults to disabled until the
// caller wires a real backend with UseLogger, matching the convention used
// throughout this module.
var kernLog slog.Logger

func init() {
	UseLogger(slog.Disabled)
}

// UseLogger sets the logger used by this package. It should be called before
// any exported function if log output is desired.
func UseLogger(logger slog.Logger) {
	kernLog = logger
}
