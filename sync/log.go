package sync

import "github.com/decred/slog"

var syncLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by sync.
func UseLogger(logger slog.Logger) { syncLog = logger }
