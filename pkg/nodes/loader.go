package nodes

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shuliakovsky/sn-reachability/pkg/peers"
	"github.com/shuliakovsky/sn-reachability/pkg/reachability"
)

var envRef = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// Load reads a service node list. ${VAR} references are expanded from the environment.
func Load(path string, logger *zap.Logger) ([]peers.Peer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = envRef.ReplaceAllFunc(b, func(m []byte) []byte {
		k := string(envRef.FindSubmatch(m)[1])
		val := os.Getenv(k)
		if val == "" {
			logger.Warn("env variable is empty during nodes expansion",
				zap.String("file", path),
				zap.String("var", k))
		}
		return []byte(val)
	})

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make([]peers.Peer, 0, len(f.Nodes))
	seen := make(map[reachability.PubKey]struct{}, len(f.Nodes))
	for i, n := range f.Nodes {
		pk, err := reachability.ParsePubKey(n.PubKey)
		if err != nil {
			return nil, fmt.Errorf("%s: node %d: %w", path, i, err)
		}
		if n.HTTP == "" || n.Messaging == "" {
			return nil, fmt.Errorf("%s: node %s: http and messaging addresses are required", path, pk)
		}
		if pk.IsZero() {
			return nil, fmt.Errorf("%s: node %d: zero pubkey", path, i)
		}
		for _, addr := range []string{n.HTTP, n.Messaging} {
			if err := validateAddr(addr); err != nil {
				return nil, fmt.Errorf("%s: node %s: %w", path, pk, err)
			}
		}
		if _, dup := seen[pk]; dup {
			logger.Warn("duplicate node in list", zap.String("file", path), zap.Stringer("pubkey", pk))
			continue
		}
		seen[pk] = struct{}{}
		out = append(out, peers.Peer{PubKey: pk, HTTPAddr: n.HTTP, MessagingAddr: n.Messaging})
	}
	return out, nil
}

func validateAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("address %q: %w", addr, err)
	}
	if host == "" || port == "" {
		return fmt.Errorf("address %q: host and port are required", addr)
	}
	if strings.ContainsAny(host, " \t/") {
		return fmt.Errorf("address %q: invalid host", addr)
	}
	return nil
}
