package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
	"github.com/shuliakovsky/sn-reachability/pkg/registry"
)

func initReporter(cfg config, ledger *reachability.Ledger, store *peers.Store, logger *zap.Logger) *registry.Reporter {
	var sub registry.Submitter
	if cfg.RegistryURL == "" {
		logger.Warn("registry_disabled", zap.String("hint", "set REGISTRY_URL to submit reports"))
		sub = dryRunSubmitter{store: store, logger: logger}
	} else {
		sub = registry.NewClient(cfg.RegistryURL, cfg.RegistryToken, cfg.PubKey, cfg.ProbeTimeout, logger)
	}
	return registry.NewReporter(sub, ledger, logger)
}

// dryRunSubmitter logs reports instead of sending them and treats every known peer as active.
type dryRunSubmitter struct {
	store  *peers.Store
	logger *zap.Logger
}

func (d dryRunSubmitter) Report(_ context.Context, sn reachability.PubKey, kind reachability.ReportType) error {
	d.logger.Info("registry_report_dry_run", zap.Stringer("sn", sn), zap.Stringer("kind", kind))
	return nil
}

func (d dryRunSubmitter) ActiveNodes(context.Context) ([]reachability.PubKey, error) {
	list := d.store.List()
	out := make([]reachability.PubKey, 0, len(list))
	for _, p := range list {
		out = append(out, p.PubKey)
	}
	return out, nil
}
