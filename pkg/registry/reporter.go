package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

// Submitter delivers reports to the registry. *Client satisfies it.
type Submitter interface {
	Report(ctx context.Context, sn reachability.PubKey, kind reachability.ReportType) error
	ActiveNodes(ctx context.Context) ([]reachability.PubKey, error)
}

// Ledger is the part of *reachability.Ledger the reporter drives.
type Ledger interface {
	ShouldReportAs(sn reachability.PubKey, kind reachability.ReportType) bool
	SetReported(sn reachability.PubKey)
	Expire(sn reachability.PubKey) bool
	Snapshot() []reachability.Entry
	SelfHealth() reachability.SelfHealth
}

type Reporter struct {
	submitter Submitter
	ledger    Ledger
	logger    *zap.Logger
}

func NewReporter(submitter Submitter, ledger Ledger, logger *zap.Logger) *Reporter {
	return &Reporter{submitter: submitter, ledger: ledger, logger: logger}
}

// Evaluate reports sn if the ledger says a report is due. A successful bad report
// marks the streak as reported; a successful good report drops the record.
func (r *Reporter) Evaluate(ctx context.Context, sn reachability.PubKey) {
	switch {
	case r.ledger.ShouldReportAs(sn, reachability.Good):
		if r.submit(ctx, sn, reachability.Good) {
			r.ledger.Expire(sn)
		}
	case r.ledger.ShouldReportAs(sn, reachability.Bad):
		if self := r.ledger.SelfHealth(); !self.HTTPOK || !self.MessagingOK {
			r.logger.Warn("report_deferred_self_unhealthy",
				zap.Stringer("sn", sn),
				zap.Bool("self_http_ok", self.HTTPOK),
				zap.Bool("self_messaging_ok", self.MessagingOK),
			)
			metrics.ReportsTotal.WithLabelValues(reachability.Bad.String(), "deferred").Inc()
			return
		}
		if r.submit(ctx, sn, reachability.Bad) {
			r.ledger.SetReported(sn)
		}
	}
}

// EvaluateAll runs Evaluate for every peer in the ledger.
func (r *Reporter) EvaluateAll(ctx context.Context) {
	for _, e := range r.ledger.Snapshot() {
		if ctx.Err() != nil {
			return
		}
		r.Evaluate(ctx, e.PubKey)
	}
}

// SyncActive expires the record of every peer the registry no longer lists and
// returns the set of active keys.
func (r *Reporter) SyncActive(ctx context.Context) (map[reachability.PubKey]struct{}, error) {
	keys, err := r.submitter.ActiveNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active nodes: %w", err)
	}
	if len(keys) == 0 {
		return nil, errors.New("registry returned no active service nodes")
	}
	active := make(map[reachability.PubKey]struct{}, len(keys))
	for _, k := range keys {
		active[k] = struct{}{}
	}

	for _, e := range r.ledger.Snapshot() {
		if _, ok := active[e.PubKey]; ok {
			continue
		}
		if r.ledger.Expire(e.PubKey) {
			metrics.Expired.Inc()
			r.logger.Info("reach_record_expired", zap.Stringer("sn", e.PubKey))
		}
	}
	return active, nil
}

func (r *Reporter) submit(ctx context.Context, sn reachability.PubKey, kind reachability.ReportType) bool {
	if err := r.submitter.Report(ctx, sn, kind); err != nil {
		if errors.Is(err, ErrThrottled) {
			metrics.ReportsTotal.WithLabelValues(kind.String(), "throttled").Inc()
			r.logger.Info("registry_report_throttled",
				zap.Stringer("sn", sn),
				zap.Stringer("kind", kind),
				zap.Error(err),
			)
			return false
		}
		metrics.ReportsTotal.WithLabelValues(kind.String(), "error").Inc()
		r.logger.Warn("registry_report_error",
			zap.Stringer("sn", sn),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
		return false
	}
	metrics.ReportsTotal.WithLabelValues(kind.String(), "ok").Inc()
	return true
}
