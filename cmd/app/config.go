package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

type config struct {
	PubKey            reachability.PubKey
	Host              string
	Port              string
	NodesFile         string
	RegistryURL       string
	RegistryToken     string
	PingPeersInterval time.Duration
	ProbeTimeout      time.Duration
	ProbeSocks5       string
	ProbeConcurrency  int
	PeersPerRound     int
	SyncEvery         int
	LogLevel          string
}

func loadConfig() (config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg := config{
		Host:          getEnv("SERVER_HOST", "0.0.0.0"),
		Port:          getEnv("SERVER_PORT", "22021"),
		NodesFile:     getEnv("NODES_FILE", "configs/nodes.yaml"),
		RegistryURL:   getEnv("REGISTRY_URL", ""),
		RegistryToken: getEnv("REGISTRY_TOKEN", ""),
		ProbeSocks5:   getEnv("PROBE_SOCKS5", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.PingPeersInterval, err = getDuration("PING_PEERS_INTERVAL", reachability.DefaultPingPeersInterval); err != nil {
		return cfg, err
	}
	if cfg.ProbeTimeout, err = getDuration("PROBE_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ProbeConcurrency, err = getInt("PROBE_CONCURRENCY", 4); err != nil {
		return cfg, err
	}
	if cfg.PeersPerRound, err = getInt("PEERS_PER_ROUND", 1); err != nil {
		return cfg, err
	}
	if cfg.SyncEvery, err = getInt("SYNC_EVERY_ROUNDS", 10); err != nil {
		return cfg, err
	}

	raw := getEnv("SN_PUBKEY", "")
	if raw == "" {
		return cfg, fmt.Errorf("SN_PUBKEY is required")
	}
	if cfg.PubKey, err = reachability.ParsePubKey(raw); err != nil {
		return cfg, fmt.Errorf("SN_PUBKEY: %w", err)
	}
	if cfg.PubKey.IsZero() {
		return cfg, fmt.Errorf("SN_PUBKEY: zero key")
	}
	return cfg, nil
}

func (c config) addr() string { return fmt.Sprintf("%s:%s", c.Host, c.Port) }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid positive integer %q", key, v)
	}
	return n, nil
}
