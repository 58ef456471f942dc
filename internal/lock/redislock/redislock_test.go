package redislock

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := strings.TrimSpace(os.Getenv("LIBRARY_REDIS_ADDR"))
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis is not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testKey() string {
	return "test-" + uuid.NewString()
}

func TestLocker_LockAndRelease(t *testing.T) {
	client := newTestClient(t)
	locker := New(client, Options{TTL: time.Second, Wait: 200 * time.Millisecond}, nil)
	ctx := context.Background()
	key := testKey()

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, key)
	require.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()

	exists, err := client.Exists(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	require.Zero(t, exists)

	again, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	again()
}

func TestLocker_ReleaseDoesNotDeleteForeignToken(t *testing.T) {
	client := newTestClient(t)
	locker := New(client, Options{TTL: 50 * time.Millisecond, Wait: time.Second}, nil)
	ctx := context.Background()
	key := testKey()

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	other, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	unlock()
	exists, err := client.Exists(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, exists, "stale unlock must not remove the new owner's key")

	other()
}

func TestLocker_WaitsForRelease(t *testing.T) {
	client := newTestClient(t)
	locker := New(client, Options{TTL: time.Second, Wait: time.Second, RetryDelay: 5 * time.Millisecond}, nil)
	ctx := context.Background()
	key := testKey()

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		unlock()
	}()

	second, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	second()
}

func TestLocker_CanceledContext(t *testing.T) {
	client := newTestClient(t)
	locker := New(client, Options{TTL: time.Second, Wait: time.Second}, nil)
	key := testKey()

	unlock, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, key)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "unexpected error: %v", err)
}

func TestLocker_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	locker := New(client, Options{Wait: 200 * time.Millisecond}, nil)
	_, err := locker.Lock(context.Background(), testKey())
	require.Error(t, err)
	require.Error(t, locker.Ping(context.Background()))
}

func TestNew_Defaults(t *testing.T) {
	locker := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), Options{}, nil)
	require.Equal(t, DefaultTTL, locker.opts.TTL)
	require.Equal(t, DefaultWait, locker.opts.Wait)
	require.Equal(t, defaultRetryDelay, locker.opts.RetryDelay)
}
