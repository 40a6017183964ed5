package scanner

import "github.com/decred/slog"

var scnLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by scanner.
func UseLogger(logger slog.Logger) { scnLog = logger }
