// Package walletcore ties every subpackage's logger to one rotating log
// file, registering each subsystem's logger against a single backend.
package walletcore

import (
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/salvium/walletcore/chainrpc"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/scanner"
	"github.com/salvium/walletcore/sync"
	"github.com/salvium/walletcore/wallet"
	"github.com/salvium/walletcore/wallet/coinselect"
	"github.com/salvium/walletcore/wallet/txsign"
	"github.com/salvium/walletcore/walletdb"
)

var (
	logRotator *rotator.Rotator
	backendLog *slog.Backend
)

// InitLogRotator opens logFile for writing, rolling it once it exceeds
// maxRollSizeMB megabytes and keeping at most maxRolls old copies.
func InitLogRotator(logFile string, maxRollSizeMB int64, maxRolls int) error {
	r, err := rotator.New(logFile, maxRollSizeMB, false, maxRolls)
	if err != nil {
		return err
	}
	logRotator = r
	backendLog = slog.NewBackend(r)
	return nil
}

// subLogger returns a levelled logger for subsystem, backed by the rotator
// if InitLogRotator has run, or a console-free no-op logger otherwise so
// packages never see a nil Logger.
func subLogger(subsystem string) slog.Logger {
	if backendLog == nil {
		return slog.Disabled
	}
	l := backendLog.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

// SetupLoggers wires every subpackage's UseLogger to a subsystem tag under
// the rotating log file opened by InitLogRotator. Safe to call before
// InitLogRotator: every subsystem just logs nowhere until a rotator exists.
func SetupLoggers() {
	kernel.UseLogger(subLogger("KRNL"))
	keychain.UseLogger(subLogger("KCHN"))
	walletdb.UseLogger(subLogger("WLDB"))
	scanner.UseLogger(subLogger("SCAN"))
	wallet.UseLogger(subLogger("WLET"))
	coinselect.UseLogger(subLogger("CSEL"))
	txsign.UseLogger(subLogger("TSGN"))
	sync.UseLogger(subLogger("SYNC"))
	chainrpc.UseLogger(subLogger("CRPC"))
}

// SetLogLevel adjusts the level of an already-registered subsystem logger.
// subsystem is the same tag passed to subLogger in SetupLoggers.
func SetLogLevel(subsystem string, level slog.Level) {
	if backendLog == nil {
		return
	}
	backendLog.Logger(subsystem).SetLevel(level)
}

// CloseLogRotator flushes and closes the underlying log file.
func CloseLogRotator() {
	if logRotator != nil {
		logRotator.Close()
	}
}
