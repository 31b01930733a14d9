package health

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/peers"
)

// PingResponse is what a service node answers on GET /ping.
type PingResponse struct {
	Status string `json:"status"`
	PubKey string `json:"pubkey"`
}

func (c *Checker) checkHTTP(ctx context.Context, p peers.Peer) bool {
	cl, err := c.httpClient()
	if err != nil {
		c.Logger.Warn("http_probe_dialer_error", zap.Error(err))
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+p.HTTPAddr+"/ping", nil)
	if err != nil {
		c.Logger.Warn("http_probe_request_error", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	resp, err := cl.Do(req)
	if err != nil {
		c.Logger.Debug("http_probe_unreachable", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Debug("http_probe_bad_status", zap.Stringer("sn", p.PubKey), zap.Int("status", resp.StatusCode))
		return false
	}

	var out PingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.Logger.Debug("http_probe_decode_error", zap.Stringer("sn", p.PubKey), zap.Error(err))
		return false
	}
	if out.PubKey != p.PubKey.String() {
		c.Logger.Warn("http_probe_pubkey_mismatch",
			zap.Stringer("sn", p.PubKey),
			zap.String("got", out.PubKey),
		)
		return false
	}
	return out.Status == "ok"
}
