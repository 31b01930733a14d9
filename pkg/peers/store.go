package peers

import (
	"math/rand"

	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

// NewStore creates an empty store. Peers with the self key are never stored.
func NewStore(self reachability.PubKey) *Store {
	return &Store{
		self:  self,
		peers: make(map[reachability.PubKey]Peer),
	}
}

func (s *Store) Add(p Peer) {
	if p.PubKey == s.self {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[p.PubKey] = p
}

// Retain drops every peer whose key is not in active and returns the removed keys.
func (s *Store) Retain(active map[reachability.PubKey]struct{}) []reachability.PubKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []reachability.PubKey
	for pk := range s.peers {
		if _, ok := active[pk]; !ok {
			delete(s.peers, pk)
			removed = append(removed, pk)
		}
	}
	return removed
}

func (s *Store) List() []Peer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Peer, 0, len(s.peers))
	for _, p := range s.peers {
		out = append(out, p)
	}
	return out
}

func (s *Store) Get(pk reachability.PubKey) (Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[pk]
	return p, ok
}

func (s *Store) Exists(pk reachability.PubKey) bool {
	_, ok := s.Get(pk)
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

// Sample returns up to n distinct peers in random order.
func (s *Store) Sample(n int) []Peer {
	plist := s.List()
	rand.Shuffle(len(plist), func(i, j int) { plist[i], plist[j] = plist[j], plist[i] })
	if n < len(plist) {
		plist = plist[:n]
	}
	return plist
}
