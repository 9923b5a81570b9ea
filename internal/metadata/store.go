// Package metadata acquires the policy document, falling back to the last
// cached copy when the remote source cannot be used.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/asimihsan/manup/internal/logger"
	"github.com/asimihsan/manup/internal/metrics"
	"github.com/asimihsan/manup/pkg/gate"
)

// errNoCache is returned when the store was built without a cache.
var errNoCache = fmt.Errorf("%w: %w", gate.ErrCacheUnavailable, gate.ErrStorageNotConfigured)

// Store fetches policy metadata and keeps the last good copy in a cache.
type Store struct {
	fetcher      gate.Fetcher
	cache        gate.CacheStore
	cacheBackend string
	log          *slog.Logger
}

// New creates a Store. cache may be nil, in which case nothing is persisted
// and a fetch failure cannot be recovered from.
func New(fetcher gate.Fetcher, cache gate.CacheStore, log *slog.Logger) *Store {
	return &Store{
		fetcher:      fetcher,
		cache:        cache,
		cacheBackend: fmt.Sprintf("%T", cache),
		log:          logger.WithComponent(log, "metadata"),
	}
}

// Fetch retrieves sourceURL. On success the document is written to the cache
// (best effort) and returned; on any failure the cached copy is returned.
func (s *Store) Fetch(ctx context.Context, sourceURL string) (gate.PolicyDocument, error) {
	doc, err := s.fetchRemote(ctx, sourceURL)
	if err != nil {
		metrics.CacheFallbacks.Inc()
		s.log.Warn("remote metadata unavailable, using cache", "url", sourceURL, "error", err)

		cached, cacheErr := s.LoadFromCache(ctx)
		if cacheErr != nil {
			return nil, errors.Join(err, cacheErr)
		}
		return cached, nil
	}

	if s.cache != nil {
		if err := s.Save(ctx, doc); err != nil {
			metrics.CacheWriteErrors.WithLabelValues(s.cacheBackend).Inc()
			s.log.Warn("caching metadata failed", "error", err)
		}
	}
	return doc, nil
}

func (s *Store) fetchRemote(ctx context.Context, sourceURL string) (gate.PolicyDocument, error) {
	raw, err := s.fetcher.Get(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	doc, err := gate.ParsePolicyDocument(raw)
	switch {
	case errors.Is(err, gate.ErrEmptyResponse):
		metrics.MetadataFetchErrors.WithLabelValues("empty_response").Inc()
		return nil, err
	case err != nil:
		metrics.MetadataFetchErrors.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("%w: %v", gate.ErrNetworkFailure, err)
	}
	return doc, nil
}

// LoadFromCache returns the last successfully cached document.
func (s *Store) LoadFromCache(ctx context.Context) (gate.PolicyDocument, error) {
	if s.cache == nil {
		return nil, errNoCache
	}

	timer := prometheus.NewTimer(metrics.MetadataFetchLatency.WithLabelValues("cache"))
	defer timer.ObserveDuration()

	raw, err := s.cache.Get(ctx, gate.CacheKey)
	if err != nil {
		return nil, fmt.Errorf("reading cached metadata: %w", err)
	}

	doc, err := gate.ParsePolicyDocument([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: cached metadata unreadable: %w", gate.ErrCacheMiss, err)
	}
	return doc, nil
}

// Save serializes doc into the cache.
func (s *Store) Save(ctx context.Context, doc gate.PolicyDocument) error {
	if s.cache == nil {
		return errNoCache
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := s.cache.Set(ctx, gate.CacheKey, string(b)); err != nil {
		return fmt.Errorf("writing cached metadata: %w", err)
	}
	return nil
}
