package reachability

import (
	"time"

	"go.uber.org/zap"
)

// RecordIncoming notes that this node just received a probe from a peer on ch.
func (l *Ledger) RecordIncoming(ch Channel) {
	if !ch.valid() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastIncoming[ch] = l.now()
}

// CheckIncomingTests re-evaluates whether peers can still reach this node on each
// channel. Staleness is measured from the later of resetTime and the last inbound probe.
func (l *Ledger) CheckIncomingTests(resetTime time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, ch := range Channels() {
		last := l.lastIncoming[ch]
		since := last
		if resetTime.After(since) {
			since = resetTime
		}
		elapsed := now.Sub(since)
		l.logger.Debug("selfhealth_last_ping", zap.Stringer("channel", ch), zap.Duration("elapsed", elapsed))

		if elapsed > l.maxWithoutPing {
			if last.IsZero() {
				l.logger.Warn("selfhealth_never_pinged", zap.Stringer("channel", ch))
			} else {
				l.logger.Warn("selfhealth_ping_stale",
					zap.Stringer("channel", ch),
					zap.Float64("minutes_ago", now.Sub(last).Minutes()),
				)
			}
			if l.localOK[ch] {
				l.logger.Warn("selfhealth_unreachable",
					zap.Stringer("channel", ch),
					zap.String("hint", "check the "+ch.String()+" port, being unreachable may lead to deregistration"),
				)
			}
			l.localOK[ch] = false
		} else if !l.localOK[ch] {
			l.localOK[ch] = true
			l.logger.Info("selfhealth_recovered", zap.Stringer("channel", ch))
		}
	}
}

func (l *Ledger) SelfHealth() SelfHealth {
	l.mu.Lock()
	defer l.mu.Unlock()
	return SelfHealth{
		HTTPOK:        l.localOK[HTTP],
		MessagingOK:   l.localOK[Messaging],
		LastHTTP:      l.lastIncoming[HTTP],
		LastMessaging: l.lastIncoming[Messaging],
	}
}
