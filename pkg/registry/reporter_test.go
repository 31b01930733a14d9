package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shuliakovsky/sn-reachability/pkg/metrics"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

type report struct {
	sn   reachability.PubKey
	kind reachability.ReportType
}

type fakeSubmitter struct {
	reports []report
	fail    error
	active  []reachability.PubKey
}

func (f *fakeSubmitter) Report(_ context.Context, sn reachability.PubKey, kind reachability.ReportType) error {
	if f.fail != nil {
		return f.fail
	}
	f.reports = append(f.reports, report{sn, kind})
	return nil
}

func (f *fakeSubmitter) ActiveNodes(context.Context) ([]reachability.PubKey, error) {
	return f.active, f.fail
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newLedger() (*reachability.Ledger, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return reachability.New(reachability.DefaultPingPeersInterval, reachability.WithClock(clk.now)), clk
}

func TestReporter_BadAfterGracePeriodOnce(t *testing.T) {
	ledger, clk := newLedger()
	sub := &fakeSubmitter{}
	r := NewReporter(sub, ledger, zap.NewNop())
	sn := key(1)

	ledger.RecordReachable(sn, reachability.HTTP, false)
	r.Evaluate(context.Background(), sn)
	require.Empty(t, sub.reports, "too early to report")

	clk.t = clk.t.Add(reachability.GracePeriod + time.Minute)
	r.Evaluate(context.Background(), sn)
	r.Evaluate(context.Background(), sn)
	require.Equal(t, []report{{sn, reachability.Bad}}, sub.reports)

	rec, ok := ledger.Lookup(sn)
	require.True(t, ok)
	require.True(t, rec.Reported)
}

func TestReporter_FailedSubmitIsRetried(t *testing.T) {
	ledger, clk := newLedger()
	sub := &fakeSubmitter{fail: errors.New("registry down")}
	r := NewReporter(sub, ledger, zap.NewNop())
	sn := key(1)

	ledger.RecordReachable(sn, reachability.Messaging, false)
	clk.t = clk.t.Add(3 * time.Hour)

	r.Evaluate(context.Background(), sn)
	rec, _ := ledger.Lookup(sn)
	require.False(t, rec.Reported)

	sub.fail = nil
	r.Evaluate(context.Background(), sn)
	require.Len(t, sub.reports, 1)
}

func TestReporter_GoodExpiresRecord(t *testing.T) {
	ledger, _ := newLedger()
	sub := &fakeSubmitter{}
	r := NewReporter(sub, ledger, zap.NewNop())
	sn := key(1)

	ledger.RecordReachable(sn, reachability.HTTP, false)
	ledger.RecordReachable(sn, reachability.HTTP, true)

	r.EvaluateAll(context.Background())
	require.Equal(t, []report{{sn, reachability.Good}}, sub.reports)
	require.Equal(t, 0, ledger.Len())
}

func TestReporter_DefersBadWhileSelfUnhealthy(t *testing.T) {
	ledger, clk := newLedger()
	sub := &fakeSubmitter{}
	r := NewReporter(sub, ledger, zap.NewNop())
	sn := key(1)

	reset := clk.t
	ledger.RecordReachable(sn, reachability.HTTP, false)
	clk.t = clk.t.Add(reachability.GracePeriod + time.Minute)
	ledger.CheckIncomingTests(reset)
	require.False(t, ledger.SelfHealth().HTTPOK)

	r.Evaluate(context.Background(), sn)
	require.Empty(t, sub.reports)

	ledger.RecordIncoming(reachability.HTTP)
	ledger.RecordIncoming(reachability.Messaging)
	ledger.CheckIncomingTests(reset)
	r.Evaluate(context.Background(), sn)
	require.Equal(t, []report{{sn, reachability.Bad}}, sub.reports)
}

func TestReporter_SyncActive(t *testing.T) {
	ledger, _ := newLedger()
	sub := &fakeSubmitter{active: []reachability.PubKey{key(1), key(3)}}
	r := NewReporter(sub, ledger, zap.NewNop())

	for _, b := range []byte{1, 2, 3} {
		ledger.RecordReachable(key(b), reachability.HTTP, false)
	}

	active, err := r.SyncActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, 2, ledger.Len())
	_, ok := ledger.Lookup(key(2))
	require.False(t, ok)
}

func TestReporter_SyncActiveKeepsRecordsOnEmptyList(t *testing.T) {
	ledger, _ := newLedger()
	r := NewReporter(&fakeSubmitter{}, ledger, zap.NewNop())
	ledger.RecordReachable(key(1), reachability.HTTP, false)

	_, err := r.SyncActive(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, ledger.Len())
}

func TestReporter_ThrottledIsCountedAndRetried(t *testing.T) {
	ledger, clk := newLedger()
	sub := &fakeSubmitter{fail: fmt.Errorf("%w: status 429", ErrThrottled)}
	r := NewReporter(sub, ledger, zap.NewNop())
	sn := key(1)

	ledger.RecordReachable(sn, reachability.HTTP, false)
	clk.t = clk.t.Add(3 * time.Hour)

	throttled := metrics.ReportsTotal.WithLabelValues(reachability.Bad.String(), "throttled")
	before := testutil.ToFloat64(throttled)
	r.Evaluate(context.Background(), sn)
	require.Equal(t, before+1, testutil.ToFloat64(throttled))

	rec, _ := ledger.Lookup(sn)
	require.False(t, rec.Reported, "a throttled report is not a delivered report")

	sub.fail = nil
	r.Evaluate(context.Background(), sn)
	require.Equal(t, []report{{sn, reachability.Bad}}, sub.reports)
}
