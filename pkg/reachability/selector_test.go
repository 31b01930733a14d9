package reachability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextToTest_Empty(t *testing.T) {
	l, _ := newTestLedger()
	_, ok := l.NextToTest()
	require.False(t, ok)
}

func TestNextToTest_OldestLastFailure(t *testing.T) {
	l, clk := newTestLedger()

	l.RecordReachable(testKey(1), HTTP, false)
	clk.Advance(time.Minute)
	l.RecordReachable(testKey(2), HTTP, false)
	clk.Advance(time.Minute)
	l.RecordReachable(testKey(3), Messaging, false)

	sn, ok := l.NextToTest()
	require.True(t, ok)
	require.Equal(t, testKey(1), sn)

	// a fresh failure moves the peer to the back of the queue
	clk.Advance(time.Minute)
	l.RecordReachable(testKey(1), Messaging, false)

	sn, ok = l.NextToTest()
	require.True(t, ok)
	require.Equal(t, testKey(2), sn)

	l.Expire(testKey(2))
	sn, _ = l.NextToTest()
	require.Equal(t, testKey(3), sn)
}
