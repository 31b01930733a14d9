package health

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

const (
	PingMessage = "ping"
	PongMessage = "pong"
)

// PongFor is the reply a service node sends to a messaging ping.
func PongFor(pk reachability.PubKey) string { return PongMessage + " " + pk.String() }

func (c *Checker) checkMessaging(ctx context.Context, p peers.Peer) bool {
	dial, err := c.dialContext()
	if err != nil {
		c.Logger.Warn("messaging_probe_dialer_error", zap.Error(err))
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	d := websocket.Dialer{
		NetDialContext:   dial,
		HandshakeTimeout: c.Timeout,
	}
	conn, resp, err := d.DialContext(ctx, "ws://"+p.MessagingAddr+"/ws/ping", nil)
	if err != nil {
		c.Logger.Debug("messaging_probe_dial_error", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	deadline := time.Now().Add(c.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.SetReadDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(PingMessage)); err != nil {
		c.Logger.Debug("messaging_probe_write_error", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	mt, msg, err := conn.ReadMessage()
	if err != nil {
		c.Logger.Debug("messaging_probe_read_error", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	if mt != websocket.TextMessage || string(msg) != PongFor(p.PubKey) {
		c.Logger.Warn("messaging_probe_unexpected_reply",
			zap.Stringer("sn", p.PubKey),
			zap.ByteString("reply", msg),
		)
		return false
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return true
}
