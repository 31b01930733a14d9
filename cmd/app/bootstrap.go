package main

import (
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/nodes"
	"github.com/shuliakovsky/sn-reachability/pkg/peers"
)

func initPeers(cfg config, logger *zap.Logger) *peers.Store {
	logger.Info("Node started",
		zap.Stringer("pubkey", cfg.PubKey),
		zap.String("addr", cfg.addr()),
	)

	store := peers.NewStore(cfg.PubKey)
	list, err := nodes.Load(cfg.NodesFile, logger)
	if err != nil {
		logger.Fatal("nodes_load_error", zap.String("file", cfg.NodesFile), zap.Error(err))
	}
	for _, p := range list {
		store.Add(p)
	}
	logger.Info("nodes_loaded", zap.Int("count", store.Len()))
	return store
}
