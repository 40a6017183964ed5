package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/salvium/walletcore/kernel"
	"github.com/salvium/walletcore/sync"
	"github.com/salvium/walletcore/wallet"
	"github.com/salvium/walletcore/walletdb"
)

var statusCommand = cli.Command{
	Name:   "status",
	Usage:  "print the wallet's current sync height and balance",
	Action: actionDecorator(statusAction),
}

func statusAction(ctx *cli.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	height, err := a.storage.GetSyncHeight()
	if err != nil {
		return err
	}
	outputs, err := a.storage.GetOutputs(walletdb.OutputFilter{})
	if err != nil {
		return err
	}

	var total uint64
	var unspent int
	for _, o := range outputs {
		if !o.IsSpent {
			total += o.Amount
			unspent++
		}
	}

	fmt.Printf("sync height: %d\n", height)
	fmt.Printf("unspent outputs: %d\n", unspent)
	fmt.Printf("balance: %d\n", total)
	return nil
}

var syncCommand = cli.Command{
	Name:   "sync",
	Usage:  "run a sync pass against the daemon and block until it completes",
	Action: actionDecorator(syncAction),
}

func syncAction(ctx *cli.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	a.engine.AddListener(printingListener{})
	if err := a.engine.Start(nil); err != nil {
		return err
	}
	a.engine.WaitForShutdown()
	return nil
}

// printingListener prints batch-complete, output-found, output-spent, reorg,
// sync-complete and sync-error events to stdout and ignores the other event
// kinds; the only command
// that needs progress feedback wires it in explicitly rather than every
// command paying for it.
type printingListener struct{}

func (printingListener) OnEvent(ev sync.Event) {
	switch ev.Kind {
	case sync.EventBatchComplete:
		fmt.Printf("synced to height %d (batch size %d, %.1fms/block)\n", ev.Height, ev.BatchSize, ev.MsPerBlock)
	case sync.EventOutputFound:
		fmt.Printf("found output: tx %x amount %d\n", ev.Output.TxHash, ev.Output.Amount)
	case sync.EventOutputSpent:
		fmt.Printf("spent output: tx %x amount %d\n", ev.Output.TxHash, ev.Output.Amount)
	case sync.EventReorg:
		fmt.Printf("reorg detected, common ancestor at height %d\n", ev.CommonAncestor)
	case sync.EventSyncComplete:
		fmt.Printf("sync complete at height %d\n", ev.Height)
	case sync.EventSyncError:
		fmt.Printf("sync error: %v\n", ev.Err)
	}
}

var sendCommand = cli.Command{
	Name:      "send",
	Usage:     "build, sign, and broadcast a transfer",
	ArgsUsage: "<spend_pub_hex> <view_pub_hex> <amount> <asset_type>",
	Action:    actionDecorator(sendAction),
}

func sendAction(ctx *cli.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	spendPub, viewPub, err := parseAddressArgs(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(ctx.Args().Get(2))
	if err != nil {
		return err
	}
	assetType := ctx.Args().Get(3)
	if assetType == "" {
		return fmt.Errorf("walletctl: send requires an asset type")
	}

	candidates, err := a.storage.GetOutputs(walletdb.OutputFilter{AssetType: &assetType})
	if err != nil {
		return err
	}

	req := wallet.BuildRequest{
		Destinations: []wallet.Destination{{
			SpendPub: spendPub, ViewPub: viewPub, Amount: amount, AssetType: assetType,
		}},
		Candidates:           candidates,
		TxType:               walletdb.TxTypeTransfer,
		PreviousTxType:       walletdb.TxTypeTransfer,
		SourceAssetType:      assetType,
		DestinationAssetType: assetType,
	}
	return buildAndBroadcast(a, req)
}

var sweepCommand = cli.Command{
	Name:      "sweep",
	Usage:     "sweep all spendable outputs to one destination",
	ArgsUsage: "<spend_pub_hex> <view_pub_hex> <asset_type>",
	Action:    actionDecorator(sweepAction),
}

func sweepAction(ctx *cli.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	spendPub, viewPub, err := parseAddressArgs(ctx.Args().Get(0), ctx.Args().Get(1))
	if err != nil {
		return err
	}
	assetType := ctx.Args().Get(2)
	if assetType == "" {
		return fmt.Errorf("walletctl: sweep requires an asset type")
	}

	candidates, err := a.storage.GetOutputs(walletdb.OutputFilter{AssetType: &assetType})
	if err != nil {
		return err
	}

	var total uint64
	for _, o := range candidates {
		if !o.IsSpent {
			total += o.Amount
		}
	}

	req := wallet.BuildRequest{
		Destinations: []wallet.Destination{{
			SpendPub: spendPub, ViewPub: viewPub, Amount: total, AssetType: assetType,
		}},
		Candidates:           candidates,
		TxType:               walletdb.TxTypeTransfer,
		PreviousTxType:       walletdb.TxTypeTransfer,
		SubtractFeeFromFirst: true,
		SourceAssetType:      assetType,
		DestinationAssetType: assetType,
	}
	return buildAndBroadcast(a, req)
}

var stakeCommand = cli.Command{
	Name:      "stake",
	Usage:     "build, sign, and broadcast a stake transaction",
	ArgsUsage: "<amount> <asset_type>",
	Action:    actionDecorator(stakeAction),
}

func stakeAction(ctx *cli.Context) error {
	return runSelfDirected(ctx, walletdb.TxTypeStake, walletdb.TxTypeStake)
}

var convertCommand = cli.Command{
	Name:      "convert",
	Usage:     "build, sign, and broadcast an asset conversion",
	ArgsUsage: "<amount> <source_asset> <dest_asset>",
	Action:    actionDecorator(convertAction),
}

func convertAction(ctx *cli.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	amount, err := parseAmountArg(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	sourceAsset := ctx.Args().Get(1)
	destAsset := ctx.Args().Get(2)
	if sourceAsset == "" || destAsset == "" {
		return fmt.Errorf("walletctl: convert requires source and destination asset types")
	}

	candidates, err := a.storage.GetOutputs(walletdb.OutputFilter{AssetType: &sourceAsset})
	if err != nil {
		return err
	}

	req := wallet.BuildRequest{
		Destinations:         []wallet.Destination{a.primaryDestination(destAsset, amount)},
		Candidates:           candidates,
		TxType:               walletdb.TxTypeConvert,
		PreviousTxType:       walletdb.TxTypeConvert,
		SourceAssetType:      sourceAsset,
		DestinationAssetType: destAsset,
		AmountBurnt:          amount,
	}
	return buildAndBroadcast(a, req)
}

// primaryDestination builds a Destination paying the wallet's own primary
// (non-subaddress) address, for commands with no externally supplied
// recipient: stake, burn, and the post-conversion leg of convert.
func (a *app) primaryDestination(assetType string, amount uint64) wallet.Destination {
	return wallet.Destination{
		SpendPub:  a.keys.Legacy.SpendPub,
		ViewPub:   a.keys.Legacy.ViewPub,
		Amount:    amount,
		AssetType: assetType,
	}
}

var burnCommand = cli.Command{
	Name:      "burn",
	Usage:     "build, sign, and broadcast a burn transaction",
	ArgsUsage: "<amount> <asset_type>",
	Action:    actionDecorator(burnAction),
}

func burnAction(ctx *cli.Context) error {
	return runSelfDirected(ctx, walletdb.TxTypeBurn, walletdb.TxTypeBurn)
}

// runSelfDirected handles the stake/burn commands, which have no external
// destination: the amount is taken from the wallet's own spendable outputs
// of the given asset type and recorded as burnt.
func runSelfDirected(ctx *cli.Context, txType, prevType walletdb.TxType) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	amount, err := parseAmountArg(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	assetType := ctx.Args().Get(1)
	if assetType == "" {
		return fmt.Errorf("walletctl: command requires an asset type")
	}

	candidates, err := a.storage.GetOutputs(walletdb.OutputFilter{AssetType: &assetType})
	if err != nil {
		return err
	}

	req := wallet.BuildRequest{
		Destinations:    []wallet.Destination{a.primaryDestination(assetType, amount)},
		Candidates:      candidates,
		TxType:          txType,
		PreviousTxType:  prevType,
		SourceAssetType: assetType,
		AmountBurnt:     amount,
	}
	return buildAndBroadcast(a, req)
}

func buildAndBroadcast(a *app, req wallet.BuildRequest) error {
	built, err := a.builder.Build(req)
	if err != nil {
		return err
	}
	if err := a.client.SendRawTransaction(built.Raw); err != nil {
		return err
	}
	fmt.Printf("broadcast tx %x (fee %d, change %d)\n", built.TxHash, built.Fee, built.Change)
	return nil
}

func parseAddressArgs(spendHex, viewHex string) (spendPub, viewPub *kernel.Point, err error) {
	spendBytes, err := hex.DecodeString(spendHex)
	if err != nil || len(spendBytes) != 32 {
		return nil, nil, fmt.Errorf("walletctl: invalid spend pubkey %q", spendHex)
	}
	viewBytes, err := hex.DecodeString(viewHex)
	if err != nil || len(viewBytes) != 32 {
		return nil, nil, fmt.Errorf("walletctl: invalid view pubkey %q", viewHex)
	}

	spendPub, err = kernel.PointFromBytes(spendBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("walletctl: malformed spend pubkey: %w", err)
	}
	viewPub, err = kernel.PointFromBytes(viewBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("walletctl: malformed view pubkey: %w", err)
	}
	return spendPub, viewPub, nil
}

func parseAmountArg(s string) (uint64, error) {
	var amount uint64
	if _, err := fmt.Sscanf(s, "%d", &amount); err != nil {
		return 0, fmt.Errorf("walletctl: invalid amount %q", s)
	}
	return amount, nil
}
