// Package reachability keeps the local node's view of which service nodes stop
// answering probes and decides when that view is strong enough to report.
package reachability

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Option func(*Ledger)

// WithClock replaces time.Now. Every operation samples the clock once.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Ledger owns all reachability records and the local self-health state.
// All methods are safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger

	records map[PubKey]*Record

	maxWithoutPing time.Duration
	localOK        [numChannels]bool
	lastIncoming   [numChannels]time.Time
}

func New(pingPeersInterval time.Duration, opts ...Option) *Ledger {
	if pingPeersInterval <= 0 {
		pingPeersInterval = DefaultPingPeersInterval
	}
	l := &Ledger{
		now:            time.Now,
		logger:         zap.NewNop(),
		records:        make(map[PubKey]*Record),
		maxWithoutPing: MaxTimeWithoutPing(pingPeersInterval),
		localOK:        [numChannels]bool{true, true},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordReachable stores the outcome of probing sn on ch.
func (l *Ledger) RecordReachable(sn PubKey, ch Channel, ok bool) {
	if !ch.valid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.records[sn]
	if !exists {
		if ok {
			l.logger.Debug("reach_ok_no_record", zap.Stringer("sn", sn), zap.Stringer("channel", ch))
			return
		}
		rec = newRecord(l.now())
		rec.States[ch] = Failing
		l.records[sn] = rec
		l.logger.Debug("reach_record_created", zap.Stringer("sn", sn), zap.Stringer("channel", ch))
		return
	}

	reachableBefore := rec.Reachable()
	rec.States[ch] = stateOf(ok)
	l.logger.Debug("reach_update",
		zap.Stringer("sn", sn),
		zap.Stringer("channel", ch),
		zap.Stringer("state", rec.States[ch]),
	)
	if ok {
		return
	}

	now := l.now()
	if reachableBefore {
		// healthy -> failing starts a new streak
		rec.FirstFailure = now
	}
	rec.LastFailure = now
}

// ShouldReportAs tells whether sn should be reported to the registry as kind.
// It never mutates the ledger.
func (l *Ledger) ShouldReportAs(sn PubKey, kind ReportType) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[sn]
	if !ok {
		return false
	}

	reachable := rec.Reachable()
	if kind == Good {
		return reachable
	}
	if reachable {
		return false
	}
	if rec.Reported {
		l.logger.Debug("reach_already_reported", zap.Stringer("sn", sn))
		return false
	}

	elapsed := l.now().Sub(rec.FirstFailure)
	l.logger.Debug("reach_unreachable_for", zap.Stringer("sn", sn), zap.Duration("elapsed", elapsed))
	return elapsed > GracePeriod
}

// SetReported marks the current failure streak of sn as reported.
func (l *Ledger) SetReported(sn PubKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[sn]; ok {
		rec.Reported = true
	}
}

// Expire drops the record for sn and reports whether one existed.
func (l *Ledger) Expire(sn PubKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[sn]; !ok {
		return false
	}
	delete(l.records, sn)
	l.logger.Debug("reach_record_removed", zap.Stringer("sn", sn))
	return true
}

// Lookup returns a copy of the record for sn.
func (l *Ledger) Lookup(sn PubKey) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[sn]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Snapshot copies every record, oldest LastFailure first.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	out := make([]Entry, 0, len(l.records))
	for sn, rec := range l.records {
		out = append(out, Entry{
			PubKey:      sn,
			Record:      *rec,
			HTTPOK:      rec.OK(HTTP),
			MessagingOK: rec.OK(Messaging),
		})
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LastFailure.Before(out[j].LastFailure) })
	return out
}
