package reachability

import (
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// GracePeriod is how long a peer has to stay unreachable before it may be reported as bad.
	GracePeriod = 120 * time.Minute

	// DefaultPingPeersInterval is the expected cadence of peer probes across the network.
	DefaultPingPeersInterval = 10 * time.Second

	// missedPingRounds is how many probe rounds may pass without an inbound ping before
	// a local channel is considered unreachable.
	missedPingRounds = 18
)

// MaxTimeWithoutPing returns the self-health staleness threshold for a given probe cadence.
func MaxTimeWithoutPing(pingPeersInterval time.Duration) time.Duration {
	return missedPingRounds * pingPeersInterval
}

type Channel uint8

const (
	HTTP Channel = iota
	Messaging

	numChannels = 2
)

func (c Channel) String() string {
	switch c {
	case HTTP:
		return "http"
	case Messaging:
		return "messaging"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

func (c Channel) valid() bool { return c < numChannels }

// Channels lists every probed channel in a stable order.
func Channels() []Channel { return []Channel{HTTP, Messaging} }

type ReportType uint8

const (
	Good ReportType = iota
	Bad
)

func (r ReportType) String() string {
	if r == Good {
		return "good"
	}
	return "bad"
}

// ChannelState is the per-channel health of a peer as last observed.
type ChannelState uint8

const (
	Healthy ChannelState = iota
	Failing
)

func (s ChannelState) String() string {
	if s == Healthy {
		return "healthy"
	}
	return "failing"
}

func stateOf(ok bool) ChannelState {
	if ok {
		return Healthy
	}
	return Failing
}

// PubKey identifies a service node. Its bytes are never interpreted.
type PubKey [32]byte

func ParsePubKey(s string) (PubKey, error) {
	var pk PubKey
	b, err := hex.DecodeString(s)
	if err != nil {
		return pk, fmt.Errorf("decode pubkey: %w", err)
	}
	if len(b) != len(pk) {
		return pk, fmt.Errorf("pubkey must be %d bytes, got %d", len(pk), len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

func (pk PubKey) String() string { return hex.EncodeToString(pk[:]) }

func (pk PubKey) IsZero() bool { return pk == PubKey{} }

func (pk PubKey) MarshalText() ([]byte, error) { return []byte(pk.String()), nil }

func (pk *PubKey) UnmarshalText(b []byte) error {
	parsed, err := ParsePubKey(string(b))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Record is the bookkeeping kept for a peer seen failing on at least one channel.
type Record struct {
	FirstFailure time.Time                 `json:"first_failure"`
	LastFailure  time.Time                 `json:"last_failure"`
	States       [numChannels]ChannelState `json:"-"`
	Reported     bool                      `json:"reported"`
}

func newRecord(now time.Time) *Record {
	return &Record{FirstFailure: now, LastFailure: now}
}

func (r Record) OK(ch Channel) bool { return r.States[ch] == Healthy }

// Reachable reports whether every channel is currently healthy.
func (r Record) Reachable() bool {
	for _, s := range r.States {
		if s != Healthy {
			return false
		}
	}
	return true
}

// Entry pairs a record with the peer it belongs to.
type Entry struct {
	PubKey PubKey `json:"pubkey"`
	Record
	HTTPOK      bool `json:"http_ok"`
	MessagingOK bool `json:"messaging_ok"`
}

// SelfHealth is the local node's view of its own inbound reachability.
type SelfHealth struct {
	HTTPOK        bool      `json:"http_ok"`
	MessagingOK   bool      `json:"messaging_ok"`
	LastHTTP      time.Time `json:"last_http"`
	LastMessaging time.Time `json:"last_messaging"`
}
