package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/api"
	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sn-reachability",
		Short:        "Service node reachability tester and reporter",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newStatusCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var port, nodesFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer peer probes, test peers and report unreachable ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			if nodesFile != "" {
				cfg.NodesFile = nodesFile
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&nodesFile, "nodes", "", "service node list (overrides NODES_FILE)")
	return cmd
}

func serve(ctx context.Context, cfg config) error {
	printVersion(os.Stdout)
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := reachability.New(cfg.PingPeersInterval,
		reachability.WithLogger(logger.Named("reach")),
	)
	store := initPeers(cfg, logger)
	reporter := initReporter(cfg, ledger, store, logger)

	metrics.Init()
	go newScheduler(cfg, store, ledger, reporter, logger).run(ctx)

	handler := api.New(cfg.PubKey, ledger, store, logger).Routes()
	if err := startServer(ctx, cfg.addr(), handler, logger); err != nil {
		logger.Error("Server down", zap.Error(err))
		return err
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the reachability view of a running node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := fetchStatus(cmd.Context(), url)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:22021", "base URL of the node")
	return cmd
}

func fetchStatus(ctx context.Context, baseURL string) (api.StatusResponse, error) {
	var st api.StatusResponse
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/reachability", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("status failed with %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
