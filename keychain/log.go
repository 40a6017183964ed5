package keychain

import "github.com/decred/slog"

var kcLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by keychain. Called from the
// root SetupLoggers once the application's root logger is ready.
func UseLogger(logger slog.Logger) { kcLog = logger }
