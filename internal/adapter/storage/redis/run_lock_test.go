package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), mr
}

func TestRunLock_AcquireRelease(t *testing.T) {
	client, _ := newTestClient(t)
	lock := NewRunLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquire while held fails, even from the same instance.
	ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx))

	ok, err = lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunLock_ExcludesOtherInstances(t *testing.T) {
	client, _ := newTestClient(t)
	first := NewRunLock(client)
	second := NewRunLock(client)
	ctx := context.Background()

	ok, err := first.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunLock_ReleaseOnlyOwnLock(t *testing.T) {
	client, _ := newTestClient(t)
	first := NewRunLock(client)
	second := NewRunLock(client)
	ctx := context.Background()

	ok, err := first.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A non-owner release must not free the lock.
	require.NoError(t, second.Release(ctx))

	ok, err = second.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunLock_ExpiresWithTTL(t *testing.T) {
	client, mr := newTestClient(t)
	lock := NewRunLock(client)
	ctx := context.Background()

	ok, err := lock.Acquire(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = lock.Acquire(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be acquirable after TTL expiry")
}
