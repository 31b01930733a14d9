package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SN_PUBKEY", strings.Repeat("01", 32))

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:22021", cfg.addr())
	require.Equal(t, 10*time.Second, cfg.PingPeersInterval)
	require.Equal(t, 4, cfg.ProbeConcurrency)
	require.Equal(t, 10, cfg.SyncEvery)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SN_PUBKEY", strings.Repeat("01", 32))
	t.Setenv("PING_PEERS_INTERVAL", "30s")
	t.Setenv("PROBE_CONCURRENCY", "8")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.PingPeersInterval)
	require.Equal(t, 8, cfg.ProbeConcurrency)
	require.Equal(t, "0.0.0.0:9000", cfg.addr())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SN_PUBKEY", "")
	_, err := loadConfig()
	require.ErrorContains(t, err, "SN_PUBKEY")

	t.Setenv("SN_PUBKEY", strings.Repeat("01", 32))
	t.Setenv("PING_PEERS_INTERVAL", "soon")
	_, err = loadConfig()
	require.ErrorContains(t, err, "PING_PEERS_INTERVAL")
}

func TestLoadConfig_RejectsZeroPubKey(t *testing.T) {
	t.Setenv("SN_PUBKEY", strings.Repeat("00", 32))
	_, err := loadConfig()
	require.ErrorContains(t, err, "zero key")
}
