package main

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shuliakovsky/sn-reachability/pkg/health"
	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
	"github.com/shuliakovsky/sn-reachability/pkg/registry"
)

type scheduler struct {
	cfg      config
	store    *peers.Store
	ledger   *reachability.Ledger
	checker  *health.Checker
	reporter *registry.Reporter
	logger   *zap.Logger
	started  time.Time
}

func newScheduler(cfg config, store *peers.Store, ledger *reachability.Ledger, reporter *registry.Reporter, logger *zap.Logger) *scheduler {
	return &scheduler{
		cfg:      cfg,
		store:    store,
		ledger:   ledger,
		checker:  health.New(cfg.ProbeTimeout, cfg.ProbeSocks5, ledger, logger),
		reporter: reporter,
		logger:   logger,
		started:  time.Now(),
	}
}

func (s *scheduler) run(ctx context.Context) {
	t := time.NewTicker(s.cfg.PingPeersInterval)
	defer t.Stop()

	for round := 1; ; round++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		s.round(ctx, round)
	}
}

// round runs one scheduler tick. Reports are evaluated for every record after
// self-health is refreshed, so deferred or failed reports do not wait for the
// peer to be sampled again.
func (s *scheduler) round(ctx context.Context, n int) {
	if s.cfg.SyncEvery > 0 && n%s.cfg.SyncEvery == 0 {
		s.syncActive(ctx)
	}
	s.probeRound(ctx)
	s.ledger.CheckIncomingTests(s.started)
	s.reporter.EvaluateAll(ctx)
	metrics.ObserveLedger(s.ledger.Snapshot(), s.ledger.SelfHealth(), s.store.Len())
}

// targets picks random peers plus the peer whose failure evidence is the oldest.
func (s *scheduler) targets() []peers.Peer {
	list := s.store.Sample(s.cfg.PeersPerRound)
	sn, ok := s.ledger.NextToTest()
	if !ok {
		return list
	}
	for _, p := range list {
		if p.PubKey == sn {
			return list
		}
	}
	if p, ok := s.store.Get(sn); ok {
		list = append(list, p)
	}
	return list
}

func (s *scheduler) probeRound(ctx context.Context) {
	targets := s.targets()
	if len(targets) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ProbeConcurrency)
	for _, p := range targets {
		p := p
		g.Go(func() error {
			res := s.checker.Probe(gctx, p)
			if gctx.Err() == nil && !res.Reachable() {
				s.logger.Debug("peer_unreachable",
					zap.Stringer("sn", p.PubKey),
					zap.Bool("http_ok", res.HTTPOK),
					zap.Bool("messaging_ok", res.MessagingOK),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("probe_round_done", zap.Int("probed", len(targets)), zap.Int("tracked", s.ledger.Len()))
}

func (s *scheduler) syncActive(ctx context.Context) {
	active, err := s.reporter.SyncActive(ctx)
	if err != nil {
		s.logger.Warn("registry_sync_error", zap.Error(err))
		return
	}
	for _, pk := range s.store.Retain(active) {
		s.logger.Info("peer_deregistered", zap.Stringer("sn", pk))
	}
}
