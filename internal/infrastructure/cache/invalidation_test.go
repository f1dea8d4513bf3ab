package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carbure/backend/internal/domain/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCache struct {
	calls int
}

func (c *failingCache) Get(ctx context.Context, scope view.Scope, queryKey string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *failingCache) Set(ctx context.Context, scope view.Scope, queryKey string, payload []byte, ttl time.Duration) error {
	return nil
}

func (c *failingCache) Invalidate(ctx context.Context, scopes []view.Scope) error {
	c.calls++
	return errors.New("redis gone")
}

func (c *failingCache) Close() error { return nil }

func TestInvalidationDispatcher_MergesAndInvalidates(t *testing.T) {
	cache := NewInMemoryScopeCache()
	defer cache.Close()
	ctx := context.Background()

	in := testScope(view.StatusIn)
	out := testScope(view.StatusOut)
	require.NoError(t, cache.Set(ctx, in, "page-1", []byte("a"), 0))
	require.NoError(t, cache.Set(ctx, out, "page-1", []byte("b"), 0))

	dispatcher := NewInvalidationDispatcher(cache, zap.NewNop())
	dispatcher.Dispatch(ctx, []view.Scope{in, out}, []view.Scope{in})

	assert.Equal(t, 0, cache.Count())
}

func TestInvalidationDispatcher_EmptyScopesIsNoOp(t *testing.T) {
	cache := &failingCache{}

	dispatcher := NewInvalidationDispatcher(cache, zap.NewNop())
	dispatcher.Dispatch(context.Background(), nil, []view.Scope{})

	assert.Equal(t, 0, cache.calls)
}

func TestInvalidationDispatcher_SwallowsCacheFailures(t *testing.T) {
	cache := &failingCache{}

	dispatcher := NewInvalidationDispatcher(cache, zap.NewNop())
	dispatcher.Dispatch(context.Background(), []view.Scope{testScope(view.StatusIn)})

	assert.Equal(t, 1, cache.calls)
}
