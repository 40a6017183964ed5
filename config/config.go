// Package config parses the wallet core's runtime settings: which daemon to
// talk to, which chain parameter set to use, default send priority, and the
// sync engine's batch-size bounds. Parsed with go-flags into a single
// top-level struct, flags on top of struct tags and sane defaults.
package config

import (
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/salvium/walletcore/network"
	"github.com/salvium/walletcore/sync"
	"github.com/salvium/walletcore/wallet"
)

// Config is the wallet core's top-level runtime configuration.
type Config struct {
	DaemonURL string `long:"daemon" description:"Daemon JSON-RPC URL" default:"http://127.0.0.1:19091/json_rpc"`
	DaemonWS  string `long:"daemon_ws" description:"Daemon mempool-notification websocket URL"`

	Network string `long:"network" description:"Chain parameter set: mainnet, testnet, stagenet" default:"mainnet"`

	Priority string `long:"priority" description:"Default send priority: slow, default, fast, priority" default:"default"`

	MinBatchSize int `long:"min_batch_size" description:"Lower bound for the sync engine's adaptive batch size" default:"2"`
	MaxBatchSize int `long:"max_batch_size" description:"Upper bound for the sync engine's adaptive batch size" default:"500"`

	RequestTimeout time.Duration `long:"request_timeout" description:"Per-RPC-request timeout" default:"30s"`
}

// Default returns a Config populated with the same defaults go-flags would
// apply, for callers that construct one programmatically instead of
// parsing os.Args.
func Default() *Config {
	cfg := &Config{}
	if _, err := flags.NewParser(cfg, flags.Default).ParseArgs(nil); err != nil {
		// ParseArgs(nil) only fails on a malformed struct definition,
		// which is a programming error caught by this package's tests.
		panic(err)
	}
	return cfg
}

// Parse parses args (typically os.Args[1:]) into a new Config.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NetworkParams resolves the configured network name to its Params, falling
// back to mainnet for an unrecognized value.
func (c *Config) NetworkParams() network.Params {
	params, ok := network.ByName(network.Name(c.Network))
	if !ok {
		return network.MainNetParams
	}
	return params
}

// SendPriority resolves the configured priority name to a wallet.Priority,
// falling back to PriorityDefault for an unrecognized value.
func (c *Config) SendPriority() wallet.Priority {
	switch c.Priority {
	case "slow":
		return wallet.PrioritySlow
	case "fast":
		return wallet.PriorityFast
	case "priority":
		return wallet.PriorityPriority
	default:
		return wallet.PriorityDefault
	}
}

// BatchBounds clamps the configured batch-size range into the sync
// package's own [MinBatchSize, MaxBatchSize] bounds.
func (c *Config) BatchBounds() (min, max int) {
	min, max = c.MinBatchSize, c.MaxBatchSize
	if min < sync.MinBatchSize {
		min = sync.MinBatchSize
	}
	if max > sync.MaxBatchSize {
		max = sync.MaxBatchSize
	}
	if min > max {
		min = max
	}
	return min, max
}
