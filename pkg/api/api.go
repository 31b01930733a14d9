package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/docs"
	"github.com/shuliakovsky/sn-reachability/pkg/health"
	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

// Ledger is what the HTTP surface reads and updates.
type Ledger interface {
	RecordIncoming(ch reachability.Channel)
	Snapshot() []reachability.Entry
	SelfHealth() reachability.SelfHealth
}

type PeerCounter interface {
	Len() int
}

type StatusResponse struct {
	PubKey     string                  `json:"pubkey"`
	KnownPeers int                     `json:"known_peers"`
	SelfHealth reachability.SelfHealth `json:"self_health"`
	Records    []reachability.Entry    `json:"records"`
	Now        time.Time               `json:"now"`
}

type API struct {
	Self   reachability.PubKey
	Ledger Ledger
	Peers  PeerCounter
	Logger *zap.Logger
}

func New(self reachability.PubKey, ledger Ledger, peers PeerCounter, logger *zap.Logger) *API {
	return &API{Self: self, Ledger: ledger, Peers: peers, Logger: logger}
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ping", a.Ping)
	r.Get("/ws/ping", a.ServeWSPing)
	r.Get("/reachability", a.Status)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/swagger/swagger.json", docs.JSONHandler)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/swagger.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))
	return r
}

// GET /ping
func (a *API) Ping(w http.ResponseWriter, r *http.Request) {
	a.Ledger.RecordIncoming(reachability.HTTP)
	metrics.IncomingPings.WithLabelValues(reachability.HTTP.String()).Inc()
	a.Logger.Debug("incoming_ping", zap.Stringer("channel", reachability.HTTP), zap.String("remote", r.RemoteAddr))
	writeJSON(w, http.StatusOK, health.PingResponse{Status: "ok", PubKey: a.Self.String()})
}

// GET /reachability
func (a *API) Status(w http.ResponseWriter, _ *http.Request) {
	records := a.Ledger.Snapshot()
	if records == nil {
		records = []reachability.Entry{}
	}
	known := 0
	if a.Peers != nil {
		known = a.Peers.Len()
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		PubKey:     a.Self.String(),
		KnownPeers: known,
		SelfHealth: a.Ledger.SelfHealth(),
		Records:    records,
		Now:        time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
