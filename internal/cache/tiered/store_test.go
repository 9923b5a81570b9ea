package tiered

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimihsan/manup/internal/cache/memory"
	"github.com/asimihsan/manup/pkg/gate"
)

// brokenStore fails every operation
type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) (string, error) { return "", b.err }
func (b brokenStore) Set(context.Context, string, string) error   { return b.err }

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Set writes every layer", func(t *testing.T) {
		local, shared := memory.New(), memory.New()
		s := New(Layer{"local", local}, Layer{"shared", shared})

		require.NoError(t, s.Set(ctx, gate.CacheKey, "{}"))

		for _, m := range []*memory.Store{local, shared} {
			v, err := m.Get(ctx, gate.CacheKey)
			require.NoError(t, err)
			assert.Equal(t, "{}", v)
		}
	})

	t.Run("Get prefers earlier layers", func(t *testing.T) {
		local, shared := memory.New(), memory.New()
		require.NoError(t, local.Set(ctx, gate.CacheKey, "local"))
		require.NoError(t, shared.Set(ctx, gate.CacheKey, "shared"))

		v, err := New(Layer{"local", local}, Layer{"shared", shared}).Get(ctx, gate.CacheKey)
		require.NoError(t, err)
		assert.Equal(t, "local", v)
	})

	t.Run("Get falls through misses and errors", func(t *testing.T) {
		shared := memory.New()
		require.NoError(t, shared.Set(ctx, gate.CacheKey, "shared"))

		s := New(
			Layer{"empty", memory.New()},
			Layer{"broken", brokenStore{err: errors.New("disk gone")}},
			Layer{"shared", shared},
		)
		v, err := s.Get(ctx, gate.CacheKey)
		require.NoError(t, err)
		assert.Equal(t, "shared", v)
	})

	t.Run("Get reports miss or first error", func(t *testing.T) {
		_, err := New(Layer{"a", memory.New()}, Layer{"b", memory.New()}).Get(ctx, gate.CacheKey)
		assert.ErrorIs(t, err, gate.ErrCacheMiss)

		boom := errors.New("boom")
		_, err = New(Layer{"a", memory.New()}, Layer{"b", brokenStore{err: boom}}).Get(ctx, gate.CacheKey)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "layer b")
	})

	t.Run("Set reports failure", func(t *testing.T) {
		boom := errors.New("boom")
		err := New(Layer{"ok", memory.New()}, Layer{"bad", brokenStore{err: boom}}).Set(ctx, gate.CacheKey, "{}")
		assert.ErrorIs(t, err, boom)
	})
}
