package metrics

import "github.com/shuliakovsky/sn-reachability/pkg/reachability"

// ObserveLedger refreshes the ledger gauges from a snapshot.
func ObserveLedger(entries []reachability.Entry, self reachability.SelfHealth, known int) {
	KnownPeers.Set(float64(known))
	TrackedPeers.Set(float64(len(entries)))

	var failing [2]int
	for _, e := range entries {
		if !e.HTTPOK {
			failing[reachability.HTTP]++
		}
		if !e.MessagingOK {
			failing[reachability.Messaging]++
		}
	}
	UnreachablePeers.WithLabelValues(reachability.HTTP.String()).Set(float64(failing[reachability.HTTP]))
	UnreachablePeers.WithLabelValues(reachability.Messaging.String()).Set(float64(failing[reachability.Messaging]))

	SelfHealth.WithLabelValues(reachability.HTTP.String()).Set(boolGauge(self.HTTPOK))
	SelfHealth.WithLabelValues(reachability.Messaging.String()).Set(boolGauge(self.MessagingOK))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
