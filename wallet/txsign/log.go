package txsign

import "github.com/decred/slog"

var tsLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by txsign.
func UseLogger(logger slog.Logger) { tsLog = logger }
