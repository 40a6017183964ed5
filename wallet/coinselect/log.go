package coinselect

import "github.com/decred/slog"

var csLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by coinselect.
func UseLogger(logger slog.Logger) { csLog = logger }
