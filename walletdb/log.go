package walletdb

import "github.com/decred/slog"

var wdbLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by walletdb.
func UseLogger(logger slog.Logger) { wdbLog = logger }
