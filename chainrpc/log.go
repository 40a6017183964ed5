package chainrpc

import "github.com/decred/slog"

var rpcLog slog.Logger

func init() { UseLogger(slog.Disabled) }

// UseLogger sets the package-wide logger used by chainrpc.
func UseLogger(logger slog.Logger) { rpcLog = logger }
