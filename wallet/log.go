package wallet

import "github.com/decred/slog"

var wLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by wallet.
func UseLogger(logger slog.Logger) { wLog = logger }
