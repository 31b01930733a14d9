package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	KnownPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "snr_peers_known", Help: "Service nodes known to this node"},
	)
	UnreachablePeers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "snr_peers_unreachable", Help: "Peers currently failing per channel"},
		[]string{"channel"},
	)
	TrackedPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "snr_records_tracked", Help: "Reachability records held in the ledger"},
	)
	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "snr_probes_total", Help: "Outbound probes by channel and result"},
		[]string{"channel", "result"},
	)
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "snr_reports_total", Help: "Reports submitted to the registry"},
		[]string{"kind", "result"},
	)
	Expired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "snr_records_expired_total", Help: "Records dropped after deregistration"},
	)
	SelfHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "snr_self_reachable", Help: "1 if peers still reach this node on the channel"},
		[]string{"channel"},
	)
	IncomingPings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "snr_incoming_pings_total", Help: "Inbound pings received"},
		[]string{"channel"},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(KnownPeers, UnreachablePeers, TrackedPeers, Expired)
		prometheus.MustRegister(ProbesTotal, ReportsTotal, SelfHealth, IncomingPings)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
