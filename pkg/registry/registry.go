package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

func NewClient(baseURL, token string, self reachability.PubKey, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
		self:    self.String(),
	}
}

// Report submits a reachability verdict about sn.
func (c *Client) Report(ctx context.Context, sn reachability.PubKey, kind reachability.ReportType) error {
	body, err := json.Marshal(ReportRequest{
		ID:        uuid.NewString(),
		Reporter:  c.self,
		PubKey:    sn.String(),
		Reachable: kind == reachability.Good,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/report", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("report request failed: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if isRateLimited(resp, msg) {
			return fmt.Errorf("%w: status %s, retry after %q", ErrThrottled, resp.Status, resp.Header.Get("Retry-After"))
		}
		return fmt.Errorf("report rejected with status %s: %s", resp.Status, c.redact(string(msg)))
	}

	c.Logger.Info("registry_report_sent",
		zap.Stringer("sn", sn),
		zap.Stringer("kind", kind),
	)
	return nil
}

// ActiveNodes returns the keys of all service nodes the registry considers registered.
func (c *Client) ActiveNodes(ctx context.Context) ([]reachability.PubKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/service_nodes", nil)
	if err != nil {
		return nil, fmt.Errorf("build service nodes request: %w", err)
	}
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service nodes request failed: %s", c.redact(err.Error()))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service nodes failed with status %s", resp.Status)
	}

	var out ServiceNodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode service nodes: %w", err)
	}

	keys := make([]reachability.PubKey, 0, len(out.ServiceNodes))
	for _, sn := range out.ServiceNodes {
		if !sn.Active {
			continue
		}
		pk, err := reachability.ParsePubKey(sn.PubKey)
		if err != nil {
			c.Logger.Warn("registry_bad_pubkey", zap.String("pubkey", sn.PubKey), zap.Error(err))
			continue
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}
