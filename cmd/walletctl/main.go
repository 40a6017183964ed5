// Command walletctl is a thin command-line boundary over the wallet core:
// it parses flags and arguments, calls straight into the keychain,
// scanner, sync, and wallet packages, and prints the result. It carries no
// business logic of its own; every command does no more than marshal
// arguments into a request and print the response.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/salvium/walletcore"
	"github.com/salvium/walletcore/chainrpc"
	"github.com/salvium/walletcore/config"
	"github.com/salvium/walletcore/keychain"
	"github.com/salvium/walletcore/scanner"
	"github.com/salvium/walletcore/sync"
	"github.com/salvium/walletcore/wallet"
	"github.com/salvium/walletcore/walletdb"
)

// app bundles the collaborators every command needs; newApp builds a fresh
// one at the start of each command action.
type app struct {
	cfg     *config.Config
	client  *chainrpc.HTTPDaemonClient
	keys    *keychain.Manager
	storage walletdb.Storage
	scanr   *scanner.Scanner
	builder *wallet.Builder
	engine  *sync.Engine
}

func newApp(ctx *cli.Context) (*app, error) {
	cfg, err := config.Parse(nil)
	if err != nil {
		return nil, err
	}
	if url := ctx.GlobalString("daemon"); url != "" {
		cfg.DaemonURL = url
	}
	if net := ctx.GlobalString("network"); net != "" {
		cfg.Network = net
	}

	seedHex := ctx.GlobalString("seed")
	sMasterHex := ctx.GlobalString("smaster")
	if seedHex == "" || sMasterHex == "" {
		return nil, fmt.Errorf("walletctl: --seed and --smaster are required")
	}
	seed, err := decodeSeed(seedHex)
	if err != nil {
		return nil, fmt.Errorf("walletctl: invalid --seed: %w", err)
	}
	sMaster, err := decodeSeed(sMasterHex)
	if err != nil {
		return nil, fmt.Errorf("walletctl: invalid --smaster: %w", err)
	}

	params := cfg.NetworkParams()
	keys, err := keychain.NewManager(seed, sMaster, params.LookaheadMajor, params.LookaheadMinor)
	if err != nil {
		return nil, err
	}

	client := chainrpc.NewHTTPDaemonClient(cfg.DaemonURL)
	storage := walletdb.NewMemStorage()
	scanr := scanner.New(keys)
	builder := wallet.New(keys, client)
	engine := sync.NewEngine(sync.EngineConfig{
		Storage: storage,
		Scanner: scanr,
		Source:  client,
	})

	return &app{
		cfg:     cfg,
		client:  client,
		keys:    keys,
		storage: storage,
		scanr:   scanr,
		builder: builder,
		engine:  engine,
	}, nil
}

func decodeSeed(hexStr string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func main() {
	walletcore.SetupLoggers()

	cliApp := cli.NewApp()
	cliApp.Name = "walletctl"
	cliApp.Usage = "command-line client for the wallet core"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "daemon", Usage: "daemon JSON-RPC URL"},
		cli.StringFlag{Name: "network", Usage: "mainnet, testnet, or stagenet"},
		cli.StringFlag{Name: "seed", Usage: "hex-encoded legacy CN seed"},
		cli.StringFlag{Name: "smaster", Usage: "hex-encoded CARROT s_master"},
	}
	cliApp.Commands = []cli.Command{
		statusCommand,
		syncCommand,
		sendCommand,
		sweepCommand,
		stakeCommand,
		convertCommand,
		burnCommand,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "walletctl: %v\n", err)
		os.Exit(1)
	}
}

// actionDecorator wraps a command action so any returned error is printed
// uniformly, matching the calling convention every command below expects.
func actionDecorator(f func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if err := f(ctx); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
}

