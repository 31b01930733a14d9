package peers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

func key(b byte) reachability.PubKey {
	var pk reachability.PubKey
	pk[0] = b
	return pk
}

func TestStore_AddSkipsSelf(t *testing.T) {
	s := NewStore(key(1))
	s.Add(Peer{PubKey: key(1), HTTPAddr: "self:1"})
	s.Add(Peer{PubKey: key(2), HTTPAddr: "a:1"})

	require.Equal(t, 1, s.Len())
	require.False(t, s.Exists(key(1)))
	p, ok := s.Get(key(2))
	require.True(t, ok)
	require.Equal(t, "a:1", p.HTTPAddr)
}

func TestStore_Retain(t *testing.T) {
	s := NewStore(key(0))
	for i := byte(1); i <= 4; i++ {
		s.Add(Peer{PubKey: key(i)})
	}

	removed := s.Retain(map[reachability.PubKey]struct{}{key(1): {}, key(3): {}})
	require.ElementsMatch(t, []reachability.PubKey{key(2), key(4)}, removed)
	require.Equal(t, 2, s.Len())
	require.True(t, s.Exists(key(3)))
}

func TestStore_Sample(t *testing.T) {
	s := NewStore(key(0))
	for i := byte(1); i <= 10; i++ {
		s.Add(Peer{PubKey: key(i)})
	}

	got := s.Sample(3)
	require.Len(t, got, 3)
	seen := map[reachability.PubKey]bool{}
	for _, p := range got {
		require.False(t, seen[p.PubKey], "sample must not repeat peers")
		seen[p.PubKey] = true
	}

	require.Len(t, s.Sample(50), 10)
	require.Empty(t, NewStore(key(0)).Sample(3))
}
