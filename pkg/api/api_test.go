package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/health"
	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

func key(b byte) reachability.PubKey {
	var pk reachability.PubKey
	pk[0] = b
	return pk
}

func newTestServer(t *testing.T) (*httptest.Server, *reachability.Ledger, reachability.PubKey) {
	t.Helper()
	self := key(42)
	ledger := reachability.New(reachability.DefaultPingPeersInterval)
	store := peers.NewStore(self)
	store.Add(peers.Peer{PubKey: key(1)})

	srv := httptest.NewServer(New(self, ledger, store, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv, ledger, self
}

func TestPing_RecordsIncomingHTTP(t *testing.T) {
	srv, ledger, self := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body health.PingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Equal(t, self.String(), body.PubKey)

	sh := ledger.SelfHealth()
	require.False(t, sh.LastHTTP.IsZero())
	require.True(t, sh.LastMessaging.IsZero())
}

func TestWSPing_RecordsIncomingMessaging(t *testing.T) {
	srv, ledger, self := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/ping", nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(health.PingMessage)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, health.PongFor(self), string(msg))
	}
	require.False(t, ledger.SelfHealth().LastMessaging.IsZero())
}

func TestProberAgainstAPI(t *testing.T) {
	srv, _, self := newTestServer(t)
	addr := strings.TrimPrefix(srv.URL, "http://")

	observer := reachability.New(reachability.DefaultPingPeersInterval)
	observer.RecordReachable(self, reachability.HTTP, false)

	c := health.New(2*time.Second, "", observer, zap.NewNop())
	res := c.Probe(context.Background(), peers.Peer{PubKey: self, HTTPAddr: addr, MessagingAddr: addr})
	require.True(t, res.Reachable())
	require.True(t, observer.ShouldReportAs(self, reachability.Good))
}

func TestStatus(t *testing.T) {
	srv, ledger, self := newTestServer(t)
	ledger.RecordReachable(key(1), reachability.Messaging, false)

	resp, err := http.Get(srv.URL + "/reachability")
	require.NoError(t, err)
	defer resp.Body.Close()

	var st StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	require.Equal(t, self.String(), st.PubKey)
	require.Equal(t, 1, st.KnownPeers)
	require.Len(t, st.Records, 1)
	require.Equal(t, key(1), st.Records[0].PubKey)
	require.True(t, st.Records[0].HTTPOK)
	require.False(t, st.Records[0].MessagingOK)
	require.True(t, st.SelfHealth.HTTPOK)
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwagger(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/swagger/swagger.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	for _, path := range []string{"/ping", "/ws/ping", "/reachability", "/healthz", "/metrics"} {
		require.Contains(t, doc.Paths, path)
	}

	ui, err := http.Get(srv.URL + "/swagger/index.html")
	require.NoError(t, err)
	ui.Body.Close()
	require.Equal(t, http.StatusOK, ui.StatusCode)
}
