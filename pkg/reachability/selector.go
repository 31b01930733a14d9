package reachability

import "go.uber.org/zap"

// NextToTest picks the peer whose most recent failure is the oldest, so that
// stale evidence gets refreshed first.
func (l *Ledger) NextToTest() (PubKey, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		next   PubKey
		found  bool
		oldest *Record
	)
	for sn, rec := range l.records {
		if !found || rec.LastFailure.Before(oldest.LastFailure) {
			next, oldest, found = sn, rec, true
		}
	}
	if found {
		l.logger.Debug("reach_retest_selected", zap.Stringer("sn", next))
	}
	return next, found
}
