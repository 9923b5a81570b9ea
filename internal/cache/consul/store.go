// Package consul caches metadata in the Consul KV store, for managed desktop
// fleets where a local agent is always present.
package consul

import (
	"context"
	"fmt"

	consulapi "github.com/hashicorp/consul/api"

	"github.com/asimihsan/manup/pkg/gate"
)

// DefaultPrefix namespaces cache keys in the KV tree.
const DefaultPrefix = "manup/"

// Store implements gate.CacheStore on Consul KV.
type Store struct {
	kv     *consulapi.KV
	prefix string
}

var _ gate.CacheStore = (*Store)(nil)

// New creates a Store talking to the agent at addr. An empty addr uses the
// client defaults (CONSUL_HTTP_ADDR or 127.0.0.1:8500).
func New(addr, prefix string) (*Store, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: consul client: %v", gate.ErrCacheUnavailable, err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{kv: cli.KV(), prefix: prefix}, nil
}

// Get implements gate.CacheStore.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	pair, _, err := s.kv.Get(s.prefix+key, (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("consul get %s: %w", key, err)
	}
	if pair == nil {
		return "", gate.ErrCacheMiss
	}
	return string(pair.Value), nil
}

// Set implements gate.CacheStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	pair := &consulapi.KVPair{Key: s.prefix + key, Value: []byte(value)}
	if _, err := s.kv.Put(pair, (&consulapi.WriteOptions{}).WithContext(ctx)); err != nil {
		return fmt.Errorf("consul put %s: %w", key, err)
	}
	return nil
}
