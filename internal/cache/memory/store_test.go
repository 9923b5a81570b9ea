package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asimihsan/manup/pkg/gate"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, gate.CacheKey)
	assert.ErrorIs(t, err, gate.ErrCacheMiss)

	require.NoError(t, s.Set(ctx, gate.CacheKey, `{"ios":null}`))
	v, err := s.Get(ctx, gate.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, `{"ios":null}`, v)

	require.NoError(t, s.Set(ctx, gate.CacheKey, `{}`))
	v, err = s.Get(ctx, gate.CacheKey)
	require.NoError(t, err)
	assert.Equal(t, `{}`, v)
}
