package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/health"
	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

const wsIdleTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws/ping answers every text "ping" with a pong carrying this node's key.
func (a *API) ServeWSPing(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		a.Logger.Debug("ws_upgrade_failed", zap.Error(err))
		return
	}
	defer conn.Close()

	pong := []byte(health.PongFor(a.Self))
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.Logger.Debug("ws_ping_read_error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage || string(msg) != health.PingMessage {
			a.Logger.Debug("ws_ping_unexpected_message", zap.ByteString("msg", msg))
			continue
		}

		a.Ledger.RecordIncoming(reachability.Messaging)
		metrics.IncomingPings.WithLabelValues(reachability.Messaging.String()).Inc()

		_ = conn.SetWriteDeadline(time.Now().Add(wsIdleTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, pong); err != nil {
			a.Logger.Debug("ws_ping_write_error", zap.Error(err))
			return
		}
	}
}
