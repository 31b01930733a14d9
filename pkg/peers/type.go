package peers

import (
	"sync"

	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

type Peer struct {
	PubKey        reachability.PubKey `json:"pubkey"`
	HTTPAddr      string              `json:"http_addr"`
	MessagingAddr string              `json:"messaging_addr"`
}

type Store struct {
	mu    sync.RWMutex
	self  reachability.PubKey
	peers map[reachability.PubKey]Peer
}
