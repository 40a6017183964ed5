package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salvium/walletcore/network"
	"github.com/salvium/walletcore/wallet"
)

func TestDefaultPopulatesDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, "http://127.0.0.1:19091/json_rpc", cfg.DaemonURL)
	require.Equal(t, "mainnet", cfg.Network)
	require.Equal(t, wallet.PriorityDefault, cfg.SendPriority())
	require.Equal(t, network.MainNetParams, cfg.NetworkParams())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]string{"--daemon", "http://example:1234", "--network", "stagenet", "--priority", "fast"})
	require.NoError(t, err)
	require.Equal(t, "http://example:1234", cfg.DaemonURL)
	require.Equal(t, network.StageNetParams, cfg.NetworkParams())
	require.Equal(t, wallet.PriorityFast, cfg.SendPriority())
}

func TestNetworkParamsFallsBackToMainnet(t *testing.T) {
	cfg := &Config{Network: "not-a-real-network"}
	require.Equal(t, network.MainNetParams, cfg.NetworkParams())
}

func TestBatchBoundsClampsToSyncLimits(t *testing.T) {
	cfg := &Config{MinBatchSize: 0, MaxBatchSize: 100000}
	min, max := cfg.BatchBounds()
	require.Equal(t, 2, min)
	require.Equal(t, 500, max)
}
