package health

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"

	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

// Recorder receives probe outcomes. *reachability.Ledger satisfies it.
type Recorder interface {
	RecordReachable(sn reachability.PubKey, ch reachability.Channel, ok bool)
}

type Result struct {
	PubKey      reachability.PubKey
	HTTPOK      bool
	MessagingOK bool
}

func (r Result) Reachable() bool { return r.HTTPOK && r.MessagingOK }

type Checker struct {
	Timeout time.Duration
	Socks5  string
	Logger  *zap.Logger

	recorder Recorder

	once    sync.Once
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
	dialErr error
}

func New(timeout time.Duration, socks5 string, recorder Recorder, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{Timeout: timeout, Socks5: socks5, Logger: logger, recorder: recorder}
}

func (c *Checker) dialContext() (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	c.once.Do(func() {
		if c.Socks5 == "" {
			d := &net.Dialer{Timeout: c.Timeout}
			c.dial = d.DialContext
			return
		}
		dialer, err := proxy.SOCKS5("tcp", c.Socks5, nil, proxy.Direct)
		if err != nil {
			c.dialErr = err
			return
		}
		c.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	})
	return c.dial, c.dialErr
}

func (c *Checker) httpClient() (*http.Client, error) {
	dial, err := c.dialContext()
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		DialContext:         dial,
		MaxIdleConns:        100,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 8 * time.Second,
		DisableKeepAlives:   true,
	}
	return &http.Client{Transport: transport, Timeout: c.Timeout}, nil
}

// Probe tests p on both channels and feeds the outcomes into the recorder.
func (c *Checker) Probe(ctx context.Context, p peers.Peer) Result {
	res := Result{PubKey: p.PubKey}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.HTTPOK = c.checkHTTP(ctx, p)
	}()
	go func() {
		defer wg.Done()
		res.MessagingOK = c.checkMessaging(ctx, p)
	}()
	wg.Wait()

	if ctx.Err() != nil {
		c.Logger.Debug("probe_cancelled", zap.Stringer("sn", p.PubKey))
		return res
	}
	c.record(p.PubKey, reachability.HTTP, res.HTTPOK)
	c.record(p.PubKey, reachability.Messaging, res.MessagingOK)

	c.Logger.Debug("probe_done",
		zap.Stringer("sn", p.PubKey),
		zap.Bool("http_ok", res.HTTPOK),
		zap.Bool("messaging_ok", res.MessagingOK),
	)
	return res
}

func (c *Checker) record(sn reachability.PubKey, ch reachability.Channel, ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	metrics.ProbesTotal.WithLabelValues(ch.String(), result).Inc()
	c.recorder.RecordReachable(sn, ch, ok)
}
