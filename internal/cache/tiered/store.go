// Package tiered layers several cache stores, e.g. a fast local store in front
// of a shared one.
package tiered

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/asimihsan/manup/pkg/gate"
)

// Layer is a named cache store.
type Layer struct {
	Name  string
	Store gate.CacheStore
}

// Store reads layers in order and writes to all of them in parallel.
type Store struct {
	layers []Layer
}

var _ gate.CacheStore = (*Store)(nil)

// New creates a tiered store. Earlier layers are consulted first.
func New(layers ...Layer) *Store {
	return &Store{layers: layers}
}

// Get returns the first hit. Layer errors are skipped as long as a later layer
// answers; if nothing hits, the first error wins over a plain miss.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var firstErr error
	for _, layer := range s.layers {
		v, err := layer.Store.Get(ctx, key)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, gate.ErrCacheMiss) && firstErr == nil {
			firstErr = fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", gate.ErrCacheMiss
}

// Set writes to every layer concurrently and reports the first failure.
func (s *Store) Set(ctx context.Context, key, value string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, layer := range s.layers {
		layer := layer
		g.Go(func() error {
			if err := layer.Store.Set(gctx, key, value); err != nil {
				return fmt.Errorf("layer %s: %w", layer.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
