package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
)

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "otp:s1", []byte("123456"), 3*time.Minute))
	require.NoError(t, store.Set(ctx, "short", []byte("x"), 0))

	got, err := store.Get(ctx, "otp:s1")
	require.NoError(t, err)
	require.Equal(t, "123456", string(got))

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "short")
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "otp:s1")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "otp:s1"))
	_, err = store.Get(ctx, "otp:s1")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.Error(t, store.Set(ctx, "", []byte("x"), time.Minute))
}

func TestPrefixStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	inner := NewMemoryStore(time.Minute)
	store := prefixed(inner, "fleet:")

	require.NoError(t, store.Set(ctx, "packer:orders:all", []byte("[]"), time.Minute))

	raw, err := inner.Get(ctx, "fleet:packer:orders:all")
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))

	_, err = store.Get(ctx, "")
	require.ErrorIs(t, err, ErrCacheMiss)
	require.Same(t, inner, prefixed(inner, ""))
}

func TestNewStore_Drivers(t *testing.T) {
	t.Parallel()

	lc := fxtest.NewLifecycle(t)
	logger := zap.NewNop()

	store, err := NewStore(lc, config.Config{Cache: config.Cache{Driver: "noop"}}, logger)
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "anything")
	require.ErrorIs(t, err, ErrCacheMiss)

	store, err = NewStore(lc, config.Config{Cache: config.Cache{Driver: "memory", KeyPrefix: "fleet:"}}, logger)
	require.NoError(t, err)
	require.IsType(t, prefixStore{}, store)

	_, err = NewStore(lc, config.Config{Cache: config.Cache{Driver: "memcached"}}, logger)
	require.EqualError(t, err, "unsupported cache driver: memcached")
}
