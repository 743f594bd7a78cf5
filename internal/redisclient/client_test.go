package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "storefront:session:abc", c.Key("session", "abc"))
	assert.Equal(t, "storefront:lock:abc", c.Key("lock", "abc"))
}

func TestGetSetDel(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	c := NewWithCmdable(mock)

	_, err := c.Get(ctx, "k")
	assert.True(t, IsNil(err))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, time.Minute, mock.TTL("k"))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Del(ctx, "k"))
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLock(t *testing.T) {
	ctx := context.Background()
	c := NewWithCmdable(NewMock())

	token, ok, err := c.AcquireLock(ctx, "s1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquireLock(ctx, "s1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := c.ReleaseLock(ctx, "s1", token)
	require.NoError(t, err)
	assert.True(t, released)

	next, ok, err := c.AcquireLock(ctx, "s1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, token, next)
}

func TestReleaseLockKeepsOtherHoldersLock(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	c := NewWithCmdable(mock)

	stale, ok, err := c.AcquireLock(ctx, "s1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// the first holder's lock expires and a second holder takes it
	require.NoError(t, c.Del(ctx, c.Key("lock", "s1")))
	_, ok, err = c.AcquireLock(ctx, "s1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := c.ReleaseLock(ctx, "s1", stale)
	require.NoError(t, err)
	assert.False(t, released)

	held, err := c.Exists(ctx, c.Key("lock", "s1"))
	require.NoError(t, err)
	assert.True(t, held)
}

func TestMockFailures(t *testing.T) {
	mock := NewMock()
	mock.Err = redis.ErrClosed
	c := NewWithCmdable(mock)

	assert.ErrorIs(t, c.Ping(context.Background()), redis.ErrClosed)
	assert.ErrorIs(t, c.Set(context.Background(), "k", nil, 0), redis.ErrClosed)
}
